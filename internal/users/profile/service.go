// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/internal/platform/ctxutil"
	"github.com/taibuivan/lifequest/pkg/pointer"
	"github.com/taibuivan/lifequest/pkg/textnorm"
	"github.com/taibuivan/lifequest/pkg/uuid"
)

// Transactor runs a unit of work inside one database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements profile reads, updates and onboarding.
type Service struct {
	transactor Transactor
	profiles   Repository
	catalog    CatalogRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(transactor Transactor, profiles Repository, catalog CatalogRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		transactor: transactor,
		profiles:   profiles,
		catalog:    catalog,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for locks and selections.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

// # Inputs & Results

// UpdateInput is a partial update. Nil fields are left untouched; an empty
// AvatarURL or Bio clears the value.
type UpdateInput struct {
	PlayerName  *string
	ArchetypeID *string
	LifeModeID  *string
	AvatarURL   *string
	Bio         *string
	Timezone    *string
}

// OnboardingInput carries the identity chosen during onboarding.
type OnboardingInput struct {
	PlayerName  string
	ArchetypeID string
	LifeModeID  string
	LifeAreaIDs []string
	AvatarURL   *string
	Bio         *string
	Timezone    string
}

// OnboardingResult is returned once onboarding completes.
type OnboardingResult struct {
	Profile             *Profile  `json:"profile"`
	Message             string    `json:"message"`
	IdentityLockedUntil time.Time `json:"identity_locked_until"`
}

// # Queries

// GetProfile returns the caller's profile, or NotFound when onboarding has not created one.
func (service *Service) GetProfile(context context.Context, accountID string) (*Profile, error) {
	return service.profiles.FindByAccountID(context, accountID)
}

// ListArchetypes returns the active archetypes.
func (service *Service) ListArchetypes(context context.Context) ([]*Archetype, error) {
	return service.catalog.ListArchetypes(context)
}

// ListLifeModes returns the active life modes.
func (service *Service) ListLifeModes(context context.Context) ([]*LifeMode, error) {
	return service.catalog.ListLifeModes(context)
}

// ListLifeAreas returns the active life areas.
func (service *Service) ListLifeAreas(context context.Context) ([]*LifeArea, error) {
	return service.catalog.ListLifeAreas(context)
}

// # Commands

/*
UpdateProfile applies a partial update to the caller's profile.

Description: Identity fields are checked against the lock before anything else
is read. A new player name must be free under case folding; renaming to a
different casing of one's own name is allowed.

Parameters:
  - context: context.Context
  - accountID: string
  - input: UpdateInput

Returns:
  - *Profile: The reloaded profile
  - error: NotFound, IdentityLocked, Conflict, Validation or storage errors
*/
func (service *Service) UpdateProfile(context context.Context, accountID string, input UpdateInput) (*Profile, error) {
	if input.PlayerName != nil {
		input.PlayerName = pointer.To(textnorm.Name(*input.PlayerName))
	}

	var updated *Profile

	err := service.transactor.WithinTx(context, func(context context.Context) error {
		profile, err := service.profiles.FindByAccountID(context, accountID)
		if err != nil {
			return err
		}

		if err := CheckIdentityChange(profile, input, service.now()); err != nil {
			return err
		}

		if pointer.Changed(input.PlayerName, profile.PlayerName) {
			if err := service.ensureNameAvailable(context, accountID, *input.PlayerName); err != nil {
				return err
			}
			profile.PlayerName = *input.PlayerName
		}

		if pointer.Changed(input.ArchetypeID, pointer.Val(profile.ArchetypeID)) {
			if err := service.ensureArchetype(context, *input.ArchetypeID); err != nil {
				return err
			}
			profile.ArchetypeID = input.ArchetypeID
		}

		if pointer.Changed(input.LifeModeID, pointer.Val(profile.LifeModeID)) {
			if err := service.ensureLifeMode(context, *input.LifeModeID); err != nil {
				return err
			}
			profile.LifeModeID = input.LifeModeID
		}

		if input.AvatarURL != nil {
			profile.AvatarURL = pointer.NilIfZero(*input.AvatarURL)
		}
		if input.Bio != nil {
			profile.Bio = pointer.NilIfZero(*input.Bio)
		}
		if input.Timezone != nil {
			profile.Timezone = *input.Timezone
		}

		if err := service.profiles.Update(context, profile); err != nil {
			return err
		}

		updated, err = service.profiles.FindByAccountID(context, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

/*
CompleteOnboarding creates (or finishes) the caller's profile and locks its identity.

Description: All checks and writes share one transaction:
 1. A profile that already completed onboarding is rejected.
 2. The player name must be free, the catalog references active and the life
    areas 1..3 distinct active rows.
 3. The profile is created or updated, the life-area selection replaced with
    priorities in request order, and the identity lock set to now+30d.

Parameters:
  - context: context.Context
  - accountID: string
  - input: OnboardingInput

Returns:
  - *OnboardingResult: The profile, a confirmation message and the lock end
  - error: Conflict, Validation or storage errors
*/
func (service *Service) CompleteOnboarding(context context.Context, accountID string, input OnboardingInput) (*OnboardingResult, error) {
	name := textnorm.Name(input.PlayerName)
	timezone := input.Timezone
	if timezone == "" {
		timezone = DefaultTimezone
	}

	now := service.now()
	lockedUntil := LockUntil(now)

	var completed *Profile

	err := service.transactor.WithinTx(context, func(context context.Context) error {
		existing, err := service.profiles.FindByAccountID(context, accountID)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		if existing != nil && existing.OnboardingCompleted {
			return apperr.Conflict(msgOnboardingCompleted)
		}

		if err := service.ensureNameAvailable(context, accountID, name); err != nil {
			return err
		}
		if err := service.ensureArchetype(context, input.ArchetypeID); err != nil {
			return err
		}
		if err := service.ensureLifeMode(context, input.LifeModeID); err != nil {
			return err
		}
		if err := service.ensureLifeAreas(context, input.LifeAreaIDs); err != nil {
			return err
		}

		profile := existing
		if profile == nil {
			profile = &Profile{
				ID:        uuid.New(),
				AccountID: accountID,
				Level:     1,
			}
		}

		profile.PlayerName = name
		profile.ArchetypeID = pointer.To(input.ArchetypeID)
		profile.LifeModeID = pointer.To(input.LifeModeID)
		profile.AvatarURL = pointer.NilIfZero(pointer.Val(input.AvatarURL))
		profile.Bio = pointer.NilIfZero(pointer.Val(input.Bio))
		profile.Timezone = timezone
		profile.OnboardingCompleted = true
		profile.IdentityLockedUntil = &lockedUntil

		if existing == nil {
			err = service.profiles.Create(context, profile)
		} else {
			err = service.profiles.Update(context, profile)
		}
		if err != nil {
			return err
		}

		if err := service.profiles.ReplaceLifeAreas(context, profile.ID, input.LifeAreaIDs, now); err != nil {
			return err
		}

		completed, err = service.profiles.FindByAccountID(context, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "profile_onboarding_completed",
		slog.String("profile_id", completed.ID),
		slog.Time("identity_locked_until", lockedUntil),
	)

	return &OnboardingResult{
		Profile:             completed,
		Message:             msgOnboardingSucceeded,
		IdentityLockedUntil: lockedUntil,
	}, nil
}

// # Helpers

func (service *Service) ensureNameAvailable(context context.Context, accountID, name string) error {
	owner, err := service.profiles.FindNameOwner(context, textnorm.Key(name))
	switch {
	case err == nil:
		if owner != accountID {
			return apperr.Conflict(msgPlayerNameTaken)
		}
		return nil
	case apperr.Is(err, apperr.KindNotFound):
		return nil
	default:
		return err
	}
}

func (service *Service) ensureArchetype(context context.Context, id string) error {
	if _, err := service.catalog.FindArchetype(context, id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.ValidationError(msgInvalidArchetype, apperr.FieldError{Field: FieldArchetypeID, Message: msgInvalidArchetype})
		}
		return err
	}
	return nil
}

func (service *Service) ensureLifeMode(context context.Context, id string) error {
	if _, err := service.catalog.FindLifeMode(context, id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.ValidationError(msgInvalidLifeMode, apperr.FieldError{Field: FieldLifeModeID, Message: msgInvalidLifeMode})
		}
		return err
	}
	return nil
}

// ensureLifeAreas expects ids to be distinct; handlers check that.
func (service *Service) ensureLifeAreas(context context.Context, ids []string) error {
	if len(ids) < MinLifeAreas || len(ids) > MaxLifeAreas {
		return apperr.ValidationError("Select between 1 and 3 life areas")
	}

	count, err := service.catalog.CountLifeAreas(context, ids)
	if err != nil {
		return err
	}
	if count != len(ids) {
		return apperr.ValidationError(msgInvalidLifeArea, apperr.FieldError{Field: FieldLifeAreaIDs, Message: msgInvalidLifeArea})
	}
	return nil
}
