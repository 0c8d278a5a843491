// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ProfilePlayerProfileTable represents the 'profile.player_profile' table
type ProfilePlayerProfileTable struct {
	Table               string
	ID                  string
	AccountID           string
	PlayerName          string
	PlayerNameKey       string
	ArchetypeID         string
	LifeModeID          string
	Level               string
	TotalCoreXP         string
	AvatarURL           string
	Bio                 string
	Timezone            string
	OnboardingCompleted string
	IdentityLockedUntil string
	CreatedAt           string
	UpdatedAt           string

	// UniquePlayerNameKey enforces case-insensitive player name uniqueness.
	UniquePlayerNameKey string
	UniquePlayerName    string
	UniqueAccount       string
}

// PlayerProfile is the schema definition for profile.player_profile
var PlayerProfile = ProfilePlayerProfileTable{
	Table:               "profile.player_profile",
	ID:                  "id",
	AccountID:           "account_id",
	PlayerName:          "player_name",
	PlayerNameKey:       "player_name_key",
	ArchetypeID:         "archetype_id",
	LifeModeID:          "life_mode_id",
	Level:               "level",
	TotalCoreXP:         "total_core_xp",
	AvatarURL:           "avatar_url",
	Bio:                 "bio",
	Timezone:            "timezone",
	OnboardingCompleted: "onboarding_completed",
	IdentityLockedUntil: "identity_locked_until",
	CreatedAt:           "created_at",
	UpdatedAt:           "updated_at",
	UniquePlayerNameKey: "uq_player_profile_name_key",
	UniquePlayerName:    "uq_player_profile_name",
	UniqueAccount:       "uq_player_profile_account",
}

// Columns returns all standard column names
func (t ProfilePlayerProfileTable) Columns() []string {
	return []string{
		t.ID, t.AccountID, t.PlayerName, t.ArchetypeID, t.LifeModeID, t.Level,
		t.TotalCoreXP, t.AvatarURL, t.Bio, t.Timezone, t.OnboardingCompleted,
		t.IdentityLockedUntil, t.CreatedAt, t.UpdatedAt,
	}
}

// ProfilePlayerLifeAreaTable represents the 'profile.player_life_area' table
type ProfilePlayerLifeAreaTable struct {
	Table      string
	ProfileID  string
	LifeAreaID string
	Priority   string
	SelectedAt string
}

// PlayerLifeArea is the schema definition for profile.player_life_area
var PlayerLifeArea = ProfilePlayerLifeAreaTable{
	Table:      "profile.player_life_area",
	ProfileID:  "profile_id",
	LifeAreaID: "life_area_id",
	Priority:   "priority",
	SelectedAt: "selected_at",
}
