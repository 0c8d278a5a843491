// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account exposes the signed-in account and its device sessions.

It is a read-mostly view over the auth package: the account row and the
session rows are owned by the session manager, this package only shapes them
for transport and lets a caller revoke one of their own devices.

# Architecture

  - Entities: View, SessionView (DTOs).
  - Domain: Depends on the auth package for Account and Session.
  - Security: Every route requires an access token; sessions are scoped to
    the caller.
*/
package account

import (
	"time"

	"github.com/taibuivan/lifequest/internal/users/auth"
)

// # Transport Views

// View is the account as returned by GET /users/me.
type View struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"email_verified"`
	IsActive      bool       `json:"is_active"`
	HasPassword   bool       `json:"has_password"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SessionView is a safety-mapped session. The token fingerprint never leaves the server.
type SessionView struct {
	ID         string    `json:"id"`
	DeviceInfo string    `json:"device_info"` // e.g. "Chrome 120.0 on Windows 10"
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func newView(account *auth.Account) *View {
	return &View{
		ID:            account.ID,
		Email:         account.Email,
		EmailVerified: account.EmailVerified,
		IsActive:      account.IsActive,
		HasPassword:   account.HasPassword(),
		LastLoginAt:   account.LastLoginAt,
		CreatedAt:     account.CreatedAt,
	}
}

func newSessionView(session *auth.Session) SessionView {
	return SessionView{
		ID:         session.ID,
		DeviceInfo: session.DeviceInfo,
		IPAddress:  session.IPAddress,
		CreatedAt:  session.CreatedAt,
		ExpiresAt:  session.ExpiresAt,
	}
}
