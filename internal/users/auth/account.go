// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the authentication and session lifecycle of LifeQuest.

An inbound credential (email and password, or a Google ID token) is validated,
resolved to an [Account], and exchanged for an access/refresh [TokenPair]. Every
refresh token is mirrored by one [Session] row so it can be revoked before its
signed expiry.

Architecture:

  - Entities: Account, ExternalIdentity, Session (this file).
  - Repository: Postgres-backed contracts in store.go.
  - Service: The session manager flows (register, login, refresh, logout,
    logoutAll, resolveCurrentAccount, googleLogin).
  - Handler: chi routes under /api/v1/auth.

Access tokens are stateless and re-resolved on every protected call. Refresh
tokens are stateful and rotate on use.
*/
package auth

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// # Domain Entities

// Account is the authentication identity, distinct from the in-game profile.
type Account struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  *string    `json:"-"` // nil for OAuth-only accounts
	EmailVerified bool       `json:"email_verified"`
	IsActive      bool       `json:"is_active"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HasPassword reports whether the account can sign in with a password.
func (account *Account) HasPassword() bool {
	return account.PasswordHash != nil && *account.PasswordHash != ""
}

// ExternalIdentity is a federated identity bound to an [Account].
type ExternalIdentity struct {
	ID             string            `json:"id"`
	AccountID      string            `json:"account_id"`
	Provider       string            `json:"provider"`
	ProviderUserID string            `json:"provider_user_id"`
	AccessToken    *string           `json:"-"`
	RefreshToken   *string           `json:"-"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	ProviderData   map[string]string `json:"provider_data,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Session is a persisted, revocable record backing one live refresh token.
//
// Only the SHA-256 fingerprint of the token is stored. A session is logically
// dead once ExpiresAt has passed, whether or not the row was reaped yet.
type Session struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"-"`
	TokenHash  string    `json:"-"`
	DeviceInfo string    `json:"device_info,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IsLive reports whether the session can still back a refresh.
func (session *Session) IsLive(now time.Time) bool {
	return now.Before(session.ExpiresAt)
}

// TokenPair is the outbound result of every successful sign-in flow.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	IsNewUser    bool   `json:"is_new_user"`
}

// Client is the advisory device and network descriptor recorded on a session.
type Client struct {
	DeviceInfo string
	IPAddress  string
}

// NormalizeEmail trims and lower-cases an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}
