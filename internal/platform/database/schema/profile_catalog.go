// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ProfileArchetypeTable represents the 'profile.archetype' table
type ProfileArchetypeTable struct {
	Table          string
	ID             string
	Name           string
	Description    string
	PassiveBonuses string
	IsActive       string
}

// ProfileArchetype is the schema definition for profile.archetype
var ProfileArchetype = ProfileArchetypeTable{
	Table:          "profile.archetype",
	ID:             "id",
	Name:           "name",
	Description:    "description",
	PassiveBonuses: "passive_bonuses",
	IsActive:       "is_active",
}

func (t ProfileArchetypeTable) Columns() []string {
	return []string{t.ID, t.Name, t.Description, t.PassiveBonuses}
}

// ProfileLifeModeTable represents the 'profile.life_mode' table
type ProfileLifeModeTable struct {
	Table       string
	ID          string
	Name        string
	Description string
	Modifiers   string
	IsActive    string
}

// ProfileLifeMode is the schema definition for profile.life_mode
var ProfileLifeMode = ProfileLifeModeTable{
	Table:       "profile.life_mode",
	ID:          "id",
	Name:        "name",
	Description: "description",
	Modifiers:   "modifiers",
	IsActive:    "is_active",
}

func (t ProfileLifeModeTable) Columns() []string {
	return []string{t.ID, t.Name, t.Description, t.Modifiers}
}

// ProfileLifeAreaTable represents the 'profile.life_area' table
type ProfileLifeAreaTable struct {
	Table       string
	ID          string
	Name        string
	Emoji       string
	Description string
	IsActive    string
}

// ProfileLifeArea is the schema definition for profile.life_area
var ProfileLifeArea = ProfileLifeAreaTable{
	Table:       "profile.life_area",
	ID:          "id",
	Name:        "name",
	Emoji:       "emoji",
	Description: "description",
	IsActive:    "is_active",
}

func (t ProfileLifeAreaTable) Columns() []string {
	return []string{t.ID, t.Name, t.Emoji, t.Description}
}
