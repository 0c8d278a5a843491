// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/pkg/textnorm"
)

// memoryStore backs both repositories with maps and rolls back failed transactions.
type memoryStore struct {
	txLock sync.Mutex
	mu     sync.Mutex

	profiles   map[string]Profile // keyed by account ID
	selections map[string][]SelectedLifeArea

	archetypes map[string]*Archetype
	lifeModes  map[string]*LifeMode
	lifeAreas  map[string]*LifeArea
	inactive   map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		profiles:   map[string]Profile{},
		selections: map[string][]SelectedLifeArea{},
		archetypes: map[string]*Archetype{},
		lifeModes:  map[string]*LifeMode{},
		lifeAreas:  map[string]*LifeArea{},
		inactive:   map[string]bool{},
	}
}

type memoryTxKey struct{}

func (store *memoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) != nil {
		return fn(ctx)
	}

	store.txLock.Lock()
	defer store.txLock.Unlock()

	store.mu.Lock()
	snapshotProfiles := maps.Clone(store.profiles)
	snapshotSelections := maps.Clone(store.selections)
	store.mu.Unlock()

	if err := fn(context.WithValue(ctx, memoryTxKey{}, true)); err != nil {
		store.mu.Lock()
		store.profiles = snapshotProfiles
		store.selections = snapshotSelections
		store.mu.Unlock()
		return err
	}
	return nil
}

// # Profiles

type memoryProfiles struct{ store *memoryStore }

func (repository memoryProfiles) FindByAccountID(_ context.Context, accountID string) (*Profile, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	stored, ok := repository.store.profiles[accountID]
	if !ok {
		return nil, apperr.NotFound(msgProfileResource)
	}

	profile := stored
	if profile.ArchetypeID != nil {
		profile.Archetype = repository.store.archetypes[*profile.ArchetypeID]
	}
	if profile.LifeModeID != nil {
		profile.LifeMode = repository.store.lifeModes[*profile.LifeModeID]
	}
	profile.LifeAreas = slices.Clone(repository.store.selections[profile.ID])
	if profile.LifeAreas == nil {
		profile.LifeAreas = []SelectedLifeArea{}
	}
	return &profile, nil
}

func (repository memoryProfiles) FindNameOwner(_ context.Context, nameKey string) (string, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	for accountID, profile := range repository.store.profiles {
		if textnorm.Key(profile.PlayerName) == nameKey {
			return accountID, nil
		}
	}
	return "", apperr.NotFound("Player name")
}

func (repository memoryProfiles) Create(_ context.Context, profile *Profile) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	if _, ok := repository.store.profiles[profile.AccountID]; ok {
		return apperr.Conflict(msgProfileAlreadyExists)
	}
	if err := repository.nameTakenLocked(profile); err != nil {
		return err
	}
	repository.store.profiles[profile.AccountID] = *profile
	return nil
}

func (repository memoryProfiles) Update(_ context.Context, profile *Profile) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	if _, ok := repository.store.profiles[profile.AccountID]; !ok {
		return apperr.NotFound(msgProfileResource)
	}
	if err := repository.nameTakenLocked(profile); err != nil {
		return err
	}
	stored := *profile
	stored.Archetype, stored.LifeMode, stored.LifeAreas = nil, nil, nil
	repository.store.profiles[profile.AccountID] = stored
	return nil
}

func (repository memoryProfiles) nameTakenLocked(profile *Profile) error {
	for accountID, other := range repository.store.profiles {
		if accountID != profile.AccountID && textnorm.Key(other.PlayerName) == textnorm.Key(profile.PlayerName) {
			return apperr.Conflict(msgPlayerNameTaken)
		}
	}
	return nil
}

func (repository memoryProfiles) ReplaceLifeAreas(_ context.Context, profileID string, ids []string, selectedAt time.Time) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	selection := make([]SelectedLifeArea, 0, len(ids))
	for index, id := range ids {
		area, ok := repository.store.lifeAreas[id]
		if !ok {
			return apperr.ValidationError(msgInvalidLifeArea)
		}
		selection = append(selection, SelectedLifeArea{LifeArea: *area, Priority: index + 1, SelectedAt: selectedAt})
	}
	repository.store.selections[profileID] = selection
	return nil
}

// # Catalog

type memoryCatalog struct{ store *memoryStore }

func (catalog memoryCatalog) ListArchetypes(context.Context) ([]*Archetype, error) {
	return activeSorted(catalog.store, catalog.store.archetypes, func(a *Archetype) (string, string) { return a.ID, a.Name }), nil
}

func (catalog memoryCatalog) ListLifeModes(context.Context) ([]*LifeMode, error) {
	return activeSorted(catalog.store, catalog.store.lifeModes, func(m *LifeMode) (string, string) { return m.ID, m.Name }), nil
}

func (catalog memoryCatalog) ListLifeAreas(context.Context) ([]*LifeArea, error) {
	return activeSorted(catalog.store, catalog.store.lifeAreas, func(a *LifeArea) (string, string) { return a.ID, a.Name }), nil
}

func (catalog memoryCatalog) FindArchetype(_ context.Context, id string) (*Archetype, error) {
	if archetype, ok := catalog.store.archetypes[id]; ok && !catalog.store.inactive[id] {
		return archetype, nil
	}
	return nil, apperr.NotFound("Archetype")
}

func (catalog memoryCatalog) FindLifeMode(_ context.Context, id string) (*LifeMode, error) {
	if lifeMode, ok := catalog.store.lifeModes[id]; ok && !catalog.store.inactive[id] {
		return lifeMode, nil
	}
	return nil, apperr.NotFound("Life mode")
}

func (catalog memoryCatalog) CountLifeAreas(_ context.Context, ids []string) (int, error) {
	seen := map[string]bool{}
	for _, id := range ids {
		if _, ok := catalog.store.lifeAreas[id]; ok && !catalog.store.inactive[id] {
			seen[id] = true
		}
	}
	return len(seen), nil
}

func activeSorted[T any](store *memoryStore, items map[string]*T, key func(*T) (string, string)) []*T {
	result := []*T{}
	for _, item := range items {
		if id, _ := key(item); !store.inactive[id] {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		_, left := key(result[i])
		_, right := key(result[j])
		return left < right
	})
	return result
}
