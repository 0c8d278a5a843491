// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"time"
)

// Repository persists player profiles and their life-area selection.
//
// Lookups that find nothing return an apperr NotFound error.
type Repository interface {
	// FindByAccountID loads the profile with its archetype, life mode and life areas.
	FindByAccountID(ctx context.Context, accountID string) (*Profile, error)

	// FindNameOwner returns the account holding the player name key.
	FindNameOwner(ctx context.Context, nameKey string) (string, error)

	Create(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, profile *Profile) error

	// ReplaceLifeAreas swaps the selection; priority follows slice order starting at 1.
	ReplaceLifeAreas(ctx context.Context, profileID string, lifeAreaIDs []string, selectedAt time.Time) error
}

// CatalogRepository reads the archetype, life mode and life area catalogs.
// Only active rows are ever returned.
type CatalogRepository interface {
	ListArchetypes(ctx context.Context) ([]*Archetype, error)
	ListLifeModes(ctx context.Context) ([]*LifeMode, error)
	ListLifeAreas(ctx context.Context) ([]*LifeArea, error)

	FindArchetype(ctx context.Context, id string) (*Archetype, error)
	FindLifeMode(ctx context.Context, id string) (*LifeMode, error)

	// CountLifeAreas counts how many of ids name an active life area.
	CountLifeAreas(ctx context.Context, ids []string) (int, error)
}
