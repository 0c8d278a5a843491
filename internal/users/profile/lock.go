// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"time"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/pkg/pointer"
)

// IdentityLockDuration is how long identity fields stay frozen after onboarding.
const IdentityLockDuration = 30 * 24 * time.Hour

// LockUntil returns the end of the identity lock for onboarding completed at completedAt.
func LockUntil(completedAt time.Time) time.Time {
	return completedAt.Add(IdentityLockDuration)
}

// IdentityLocked reports whether the identity fields are frozen at now.
func (profile *Profile) IdentityLocked(now time.Time) bool {
	return profile.IdentityLockedUntil != nil && now.Before(*profile.IdentityLockedUntil)
}

/*
CheckIdentityChange rejects an update that changes a locked identity field.

Description: Re-sending the current value is not a change. Presentation fields
(avatar, bio, timezone) are never checked. PlayerName in update must already be
normalized.

Returns:
  - error: apperr.IdentityLocked listing each offending field, or nil
*/
func CheckIdentityChange(profile *Profile, update UpdateInput, now time.Time) error {
	if !profile.IdentityLocked(now) {
		return nil
	}

	var details []apperr.FieldError
	if pointer.Changed(update.PlayerName, profile.PlayerName) {
		details = append(details, lockedField(FieldPlayerName))
	}
	if pointer.Changed(update.ArchetypeID, pointer.Val(profile.ArchetypeID)) {
		details = append(details, lockedField(FieldArchetypeID))
	}
	if pointer.Changed(update.LifeModeID, pointer.Val(profile.LifeModeID)) {
		details = append(details, lockedField(FieldLifeModeID))
	}

	if len(details) == 0 {
		return nil
	}

	lockError := apperr.IdentityLocked("Identity is locked until " + profile.IdentityLockedUntil.UTC().Format(time.RFC3339))
	lockError.Details = details
	return lockError
}

func lockedField(field string) apperr.FieldError {
	return apperr.FieldError{Field: field, Message: "Cannot be changed while the identity is locked"}
}
