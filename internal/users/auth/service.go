// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/internal/platform/constants"
	"github.com/taibuivan/lifequest/internal/platform/ctxutil"
	"github.com/taibuivan/lifequest/internal/platform/metrics"
	"github.com/taibuivan/lifequest/internal/platform/oauth"
	"github.com/taibuivan/lifequest/internal/platform/sec"
	"github.com/taibuivan/lifequest/pkg/uuid"
)

// # Contracts

// Transactor runs a unit of work inside one database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenCodec mints and decodes the signed access and refresh tokens.
type TokenCodec interface {
	IssueAccess(accountID string, extra map[string]any) (string, error)
	IssueRefresh(accountID string) (string, time.Time, error)
	Decode(token string) (*sec.Claims, error)
}

// PasswordCredential hashes and verifies passwords.
type PasswordCredential interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// GoogleVerifier validates a Google ID token.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*oauth.GoogleIdentity, error)
}

// LoginThrottle bounds failed password attempts per email.
type LoginThrottle interface {
	Check(ctx context.Context, email string) error
	Fail(ctx context.Context, email string)
	Reset(ctx context.Context, email string)
}

// Dependencies groups everything the session manager is built from.
// Throttle, Metrics, Logger and Now are optional.
type Dependencies struct {
	Transactor Transactor
	Accounts   AccountRepository
	Identities IdentityRepository
	Sessions   SessionRepository
	Tokens     TokenCodec
	Passwords  PasswordCredential
	Google     GoogleVerifier
	Throttle   LoginThrottle
	Metrics    *metrics.Registry
	Logger     *slog.Logger
	Now        func() time.Time
}

// Service is the session manager. It owns every transition of the
// account/session state machine.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// rotation or account linking must be reviewed together with their tests.
type Service struct {
	transactor         Transactor
	accountRepository  AccountRepository
	identityRepository IdentityRepository
	sessionRepository  SessionRepository
	tokens             TokenCodec
	passwords          PasswordCredential
	google             GoogleVerifier
	throttle           LoginThrottle
	metrics            *metrics.Registry
	logger             *slog.Logger
	now                func() time.Time
}

// NewService constructs a new [Service] from its dependencies.
func NewService(deps Dependencies) *Service {
	service := &Service{
		transactor:         deps.Transactor,
		accountRepository:  deps.Accounts,
		identityRepository: deps.Identities,
		sessionRepository:  deps.Sessions,
		tokens:             deps.Tokens,
		passwords:          deps.Passwords,
		google:             deps.Google,
		throttle:           deps.Throttle,
		metrics:            deps.Metrics,
		logger:             deps.Logger,
		now:                deps.Now,
	}
	if service.throttle == nil {
		service.throttle = noThrottle{}
	}
	if service.logger == nil {
		service.logger = slog.Default()
	}
	if service.now == nil {
		service.now = func() time.Time { return time.Now().UTC() }
	}
	return service
}

type noThrottle struct{}

func (noThrottle) Check(context.Context, string) error { return nil }
func (noThrottle) Fail(context.Context, string)        {}
func (noThrottle) Reset(context.Context, string)       {}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email    string
	Password string
	Client   Client
}

/*
Register creates a password account and opens its first session.

Description: The password policy is checked before any store access. The
existence check and the insert share one transaction; the unique constraint
on email settles concurrent registrations.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *TokenPair: Fresh tokens with IsNewUser=true
  - error: Validation, AccountExists or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (pair *TokenPair, err error) {
	defer service.observe(FlowRegister, time.Now(), &err)

	if err := sec.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	email := NormalizeEmail(input.Email)

	passwordHash, err := service.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	err = service.transactor.WithinTx(context, func(context context.Context) error {
		_, findErr := service.accountRepository.FindByEmail(context, email)
		if findErr == nil {
			return apperr.AccountExists(msgAccountExists)
		}
		if !apperr.Is(findErr, apperr.KindNotFound) {
			return findErr
		}

		account := &Account{
			ID:            uuid.New(),
			Email:         email,
			PasswordHash:  &passwordHash,
			EmailVerified: false,
			IsActive:      true,
		}
		if err := service.accountRepository.Create(context, account); err != nil {
			return err
		}

		pair, err = service.openSession(context, account.ID, input.Client)
		return err
	})
	if err != nil {
		return nil, err
	}

	pair.IsNewUser = true
	return pair, nil
}

// # Authentication Flow

// LoginInput defines credentials for a password authentication attempt.
type LoginInput struct {
	Email    string
	Password string
	Client   Client
}

/*
Login authenticates with email and password.

Description: Absent account, OAuth-only account and wrong password are reported
identically. Each attempt opens a new session, so concurrent devices each hold
their own refresh token.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenPair: Fresh tokens with IsNewUser=false
  - error: RateLimited, InvalidCredentials or storage errors
*/
func (service *Service) Login(context context.Context, input LoginInput) (pair *TokenPair, err error) {
	defer service.observe(FlowLogin, time.Now(), &err)

	email := NormalizeEmail(input.Email)

	if err := service.throttle.Check(context, email); err != nil {
		return nil, err
	}

	err = service.transactor.WithinTx(context, func(context context.Context) error {
		account, err := service.accountRepository.FindByEmail(context, email)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return apperr.InvalidCredentials(msgInvalidCredentials)
			}
			return err
		}

		if !account.HasPassword() || !service.passwords.Verify(input.Password, *account.PasswordHash) {
			return apperr.InvalidCredentials(msgInvalidCredentials)
		}

		if !account.IsActive {
			return apperr.InvalidCredentials(msgAccountDeactivated)
		}

		if err := service.accountRepository.TouchLastLogin(context, account.ID, service.now()); err != nil {
			return err
		}

		pair, err = service.openSession(context, account.ID, input.Client)
		return err
	})
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidCredentials) {
			service.throttle.Fail(context, email)
		}
		return nil, err
	}

	service.throttle.Reset(context, email)
	return pair, nil
}

// # Session Rotation

/*
Refresh exchanges a refresh token for a new pair and rotates its session.

Description: The presented token must still be backed by a live session row.
That row is deleted in the same transaction that opens the new session, so a
refresh token works exactly once and logoutAll revokes every outstanding one.

Parameters:
  - context: context.Context
  - refreshToken: string
  - client: Client

Returns:
  - *TokenPair: Fresh tokens with IsNewUser=false
  - error: InvalidToken or storage errors
*/
func (service *Service) Refresh(context context.Context, refreshToken string, client Client) (pair *TokenPair, err error) {
	defer service.observe(FlowRefresh, time.Now(), &err)

	accountID, err := service.subjectOf(refreshToken, sec.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	tokenHash := sec.HashToken(refreshToken)

	err = service.transactor.WithinTx(context, func(context context.Context) error {
		session, err := service.sessionRepository.FindLiveByTokenHash(context, tokenHash)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return apperr.InvalidToken(msgInvalidToken)
			}
			return err
		}
		if session.AccountID != accountID {
			return apperr.InvalidToken(msgInvalidToken)
		}

		account, err := service.accountRepository.FindByID(context, accountID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return apperr.InvalidToken(msgInvalidToken)
			}
			return err
		}
		if !account.IsActive {
			return apperr.InvalidToken(msgAccountDeactivated)
		}

		// A concurrent refresh of the same token loses here.
		deleted, err := service.sessionRepository.DeleteByTokenHash(context, tokenHash)
		if err != nil {
			return err
		}
		if !deleted {
			return apperr.InvalidToken(msgInvalidToken)
		}

		pair, err = service.openSession(context, account.ID, client)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// # Session Termination

// Logout deletes the session backing refreshToken. Unknown tokens are a no-op.
func (service *Service) Logout(context context.Context, refreshToken string) (err error) {
	defer service.observe(FlowLogout, time.Now(), &err)

	if refreshToken == "" {
		return nil
	}

	deleted, err := service.sessionRepository.DeleteByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return err
	}

	if deleted {
		ctxutil.GetLogger(context).InfoContext(context, "session_logged_out")
	}
	return nil
}

// LogoutAll deletes every session of the account. It is idempotent.
func (service *Service) LogoutAll(context context.Context, accountID string) (err error) {
	defer service.observe(FlowLogoutAll, time.Now(), &err)

	count, err := service.sessionRepository.DeleteAllForAccount(context, accountID)
	if err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "sessions_logged_out",
		slog.String("account_id", accountID),
		slog.Int64("count", count),
	)
	return nil
}

// # Authorization

/*
ResolveCurrentAccount maps an access token to its account.

Description: Runs on every protected call and never caches, so deactivation
and deletion take effect on the next request.

Parameters:
  - context: context.Context
  - accessToken: string

Returns:
  - *Account: The resolved, active account
  - error: InvalidToken or AccountNotFound
*/
func (service *Service) ResolveCurrentAccount(context context.Context, accessToken string) (*Account, error) {
	accountID, err := service.subjectOf(accessToken, sec.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.AccountNotFound(msgAccountNotFound)
		}
		return nil, err
	}

	if !account.IsActive {
		return nil, apperr.InvalidToken(msgAccountDeactivated)
	}

	return account, nil
}

// ResolvePrincipal adapts [Service.ResolveCurrentAccount] for the auth middleware.
func (service *Service) ResolvePrincipal(context context.Context, accessToken string) (*ctxutil.Principal, error) {
	account, err := service.ResolveCurrentAccount(context, accessToken)
	if err != nil {
		return nil, err
	}
	return &ctxutil.Principal{AccountID: account.ID, Email: account.Email}, nil
}

// # Account & Session Queries

// GetAccount loads an account by ID; a missing row is AccountNotFound.
func (service *Service) GetAccount(context context.Context, accountID string) (*Account, error) {
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.AccountNotFound(msgAccountNotFound)
		}
		return nil, err
	}
	return account, nil
}

// ListSessions returns the caller's live sessions.
func (service *Service) ListSessions(context context.Context, accountID string) ([]*Session, error) {
	return service.sessionRepository.ListLive(context, accountID)
}

// RevokeSession deletes one session owned by accountID.
func (service *Service) RevokeSession(context context.Context, accountID, sessionID string) error {
	deleted, err := service.sessionRepository.DeleteByID(context, accountID, sessionID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.NotFound("Session")
	}
	return nil
}

// # Helpers

// subjectOf decodes token, enforces its type and returns the subject.
func (service *Service) subjectOf(token string, expected sec.TokenType) (string, error) {
	claims, err := service.tokens.Decode(token)
	if err != nil {
		return "", err
	}
	if claims.Type != expected {
		return "", apperr.InvalidToken(msgInvalidTokenType)
	}
	if claims.AccountID() == "" {
		return "", apperr.InvalidToken(msgInvalidToken)
	}
	return claims.AccountID(), nil
}

// openSession mints a token pair and persists the session mirroring its refresh token.
func (service *Service) openSession(context context.Context, accountID string, client Client) (*TokenPair, error) {
	accessToken, err := service.tokens.IssueAccess(accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, expiresAt, err := service.tokens.IssueRefresh(accountID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	session := &Session{
		ID:         uuid.New(),
		AccountID:  accountID,
		TokenHash:  sec.HashToken(refreshToken),
		DeviceInfo: client.DeviceInfo,
		IPAddress:  client.IPAddress,
		CreatedAt:  service.now(),
		ExpiresAt:  expiresAt,
	}
	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_create_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    constants.TokenTypeBearer,
	}, nil
}

func (service *Service) observe(flow string, started time.Time, err *error) {
	service.metrics.ObserveAuth(flow, started, *err)
}
