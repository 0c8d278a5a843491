// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// Lookups that find nothing return an [apperr.KindNotFound] error; callers
// branch on it with apperr.Is. Every method joins the transaction carried by
// the context, if any.

// # Account Data Access

// AccountRepository defines the data access contract for accounts.
type AccountRepository interface {

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - account: *Account (Email must already be normalized)

		Returns:
		  - error: apperr.AccountExists on a duplicate email, or persistence failures
	*/
	Create(context context.Context, account *Account) error

	// FindByID returns the account with the given ID.
	FindByID(context context.Context, id string) (*Account, error)

	// FindByEmail returns the account with the given normalized email.
	FindByEmail(context context.Context, email string) (*Account, error)

	// TouchLastLogin stamps last_login_at.
	TouchLastLogin(context context.Context, id string, at time.Time) error
}

// # External Identity Data Access

// IdentityRepository defines the data access contract for OAuth links.
type IdentityRepository interface {

	// FindByProviderSubject resolves a (provider, provider_user_id) pair.
	FindByProviderSubject(context context.Context, provider, providerUserID string) (*ExternalIdentity, error)

	// FindByAccountProvider returns the single link an account has for a provider.
	FindByAccountProvider(context context.Context, accountID, provider string) (*ExternalIdentity, error)

	/*
		Create links a new external identity.

		Returns:
		  - error: apperr.Conflict when either uniqueness constraint is violated
	*/
	Create(context context.Context, identity *ExternalIdentity) error

	// UpdateProviderData replaces the cached provider profile JSON.
	UpdateProviderData(context context.Context, id string, data map[string]string) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {

	// Create persists a new session row.
	Create(context context.Context, session *Session) error

	/*
		FindLiveByTokenHash returns the session for a refresh token fingerprint.

		Description: Rows past expires_at are treated as absent.

		Parameters:
		  - context: context.Context
		  - tokenHash: string (SHA-256 hex)

		Returns:
		  - *Session: The live session
		  - error: apperr.NotFound when missing or expired
	*/
	FindLiveByTokenHash(context context.Context, tokenHash string) (*Session, error)

	// DeleteByTokenHash removes one session and reports whether a row existed.
	DeleteByTokenHash(context context.Context, tokenHash string) (bool, error)

	// DeleteByID removes a session only if it belongs to accountID.
	DeleteByID(context context.Context, accountID, id string) (bool, error)

	// DeleteAllForAccount removes every session of the account.
	DeleteAllForAccount(context context.Context, accountID string) (int64, error)

	// ListLive returns the unexpired sessions of an account, newest first.
	ListLive(context context.Context, accountID string) ([]*Session, error)

	// DeleteExpired purges every row past its expiry.
	DeleteExpired(context context.Context) (int64, error)
}
