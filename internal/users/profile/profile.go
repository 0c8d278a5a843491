// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile manages the player's game identity: the profile created during
onboarding, the archetype and life mode catalogs, and the life areas a player
focuses on.

# Identity Lock

Completing onboarding locks the identity fields (player name, archetype and
life mode) for [IdentityLockDuration]. Presentation fields stay editable.
*/
package profile

import "time"

// # Catalog Entities

// Archetype is a playstyle a player identifies with (Explorer, Builder, ...).
type Archetype struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    *string        `json:"description"`
	PassiveBonuses map[string]any `json:"passive_bonuses"`
}

// LifeMode is an operating mode that tunes gameplay (Discipline, Growth, Recovery).
type LifeMode struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Modifiers   map[string]any `json:"modifiers"`
}

// LifeArea is one of the core life domains a player can focus on.
type LifeArea struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Emoji       *string `json:"emoji"`
	Description *string `json:"description"`
}

// SelectedLifeArea is a life area chosen by a player, ranked by priority (1 is highest).
type SelectedLifeArea struct {
	LifeArea
	Priority   int       `json:"priority"`
	SelectedAt time.Time `json:"selected_at"`
}

// # Profile Entity

// Profile is the game identity of one account. There is at most one per account.
type Profile struct {
	ID                  string             `json:"id"`
	AccountID           string             `json:"account_id"`
	PlayerName          string             `json:"player_name"`
	ArchetypeID         *string            `json:"archetype_id"`
	LifeModeID          *string            `json:"life_mode_id"`
	Archetype           *Archetype         `json:"archetype"`
	LifeMode            *LifeMode          `json:"life_mode"`
	Level               int                `json:"level"`
	TotalCoreXP         int64              `json:"total_core_xp"`
	AvatarURL           *string            `json:"avatar_url"`
	Bio                 *string            `json:"bio"`
	Timezone            string             `json:"timezone"`
	OnboardingCompleted bool               `json:"onboarding_completed"`
	IdentityLockedUntil *time.Time         `json:"identity_locked_until"`
	LifeAreas           []SelectedLifeArea `json:"life_areas"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// # Constants

const (
	// DefaultTimezone applies when onboarding omits a time zone.
	DefaultTimezone = "UTC"

	PlayerNameMinLength = 3
	PlayerNameMaxLength = 50
	BioMaxLength        = 500
	AvatarURLMaxLength  = 500

	MinLifeAreas = 1
	MaxLifeAreas = 3
)

const (
	msgProfileResource      = "Profile"
	msgPlayerNameTaken      = "Player name already taken"
	msgOnboardingCompleted  = "Onboarding already completed"
	msgOnboardingSucceeded  = "Onboarding completed successfully! Your identity is locked for 30 days."
	msgInvalidArchetype     = "Invalid archetype ID"
	msgInvalidLifeMode      = "Invalid life mode ID"
	msgInvalidLifeArea      = "Invalid life area ID"
	msgProfileAlreadyExists = "Profile already exists"
)

const (
	FieldPlayerName  = "player_name"
	FieldArchetypeID = "archetype_id"
	FieldLifeModeID  = "life_mode_id"
	FieldLifeAreaIDs = "life_area_ids"
	FieldAvatarURL   = "avatar_url"
	FieldBio         = "bio"
	FieldTimezone    = "timezone"
)
