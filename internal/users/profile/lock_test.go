// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/pkg/pointer"
)

/*
TestCheckIdentityChange covers the lock window and each identity field.
*/
func TestCheckIdentityChange(t *testing.T) {
	completedAt := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)
	lockedUntil := LockUntil(completedAt)

	locked := &Profile{
		PlayerName:          "Shadow Walker",
		ArchetypeID:         pointer.To("arch-1"),
		LifeModeID:          pointer.To("mode-1"),
		IdentityLockedUntil: &lockedUntil,
	}

	tests := []struct {
		name    string
		update  UpdateInput
		now     time.Time
		blocked []string
	}{
		{"same_values", UpdateInput{PlayerName: pointer.To("Shadow Walker"), ArchetypeID: pointer.To("arch-1"), LifeModeID: pointer.To("mode-1")}, completedAt, nil},
		{"presentation_only", UpdateInput{Bio: pointer.To("new bio"), Timezone: pointer.To("Asia/Tokyo")}, completedAt, nil},
		{"rename", UpdateInput{PlayerName: pointer.To("Light Walker")}, completedAt, []string{FieldPlayerName}},
		{"archetype_and_mode", UpdateInput{ArchetypeID: pointer.To("arch-2"), LifeModeID: pointer.To("mode-2")}, completedAt, []string{FieldArchetypeID, FieldLifeModeID}},
		{"last_locked_instant", UpdateInput{ArchetypeID: pointer.To("arch-2")}, lockedUntil.Add(-time.Nanosecond), []string{FieldArchetypeID}},
		{"lock_expired", UpdateInput{PlayerName: pointer.To("Light Walker"), ArchetypeID: pointer.To("arch-2")}, lockedUntil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckIdentityChange(locked, tt.update, tt.now)
			if tt.blocked == nil {
				assert.NoError(t, err)
				return
			}

			require.True(t, apperr.Is(err, apperr.KindIdentityLocked))
			fields := make([]string, 0, len(tt.blocked))
			for _, detail := range apperr.As(err).Details {
				fields = append(fields, detail.Field)
			}
			assert.Equal(t, tt.blocked, fields)
		})
	}
}

func TestIdentityLocked_NeverOnboarded(t *testing.T) {
	profile := &Profile{PlayerName: "Rookie"}

	assert.False(t, profile.IdentityLocked(time.Now()))
	assert.NoError(t, CheckIdentityChange(profile, UpdateInput{PlayerName: pointer.To("Veteran")}, time.Now()))
}

func TestLockUntil(t *testing.T) {
	completedAt := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), LockUntil(completedAt))
}
