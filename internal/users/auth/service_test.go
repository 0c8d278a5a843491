// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/internal/platform/metrics"
	"github.com/taibuivan/lifequest/internal/platform/oauth"
	"github.com/taibuivan/lifequest/internal/platform/sec"
	"github.com/taibuivan/lifequest/pkg/pointer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const strongPassword = "longenough!"

type fixture struct {
	service   *Service
	store     *memoryStore
	codec     *sec.TokenCodec
	throttle  *recordingThrottle
	google    *oauth.GoogleIdentity
	googleErr error
}

func newFixture(t *testing.T, registry *metrics.Registry) *fixture {
	t.Helper()

	current := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	codec, err := sec.NewTokenCodec("test-secret-value", "HS256", "lifequest.app", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	codec.WithClock(now)

	fx := &fixture{
		store:    newMemoryStore(now),
		codec:    codec,
		throttle: &recordingThrottle{},
	}

	fx.service = NewService(Dependencies{
		Transactor: fx.store,
		Accounts:   memoryAccounts{fx.store},
		Identities: memoryIdentities{fx.store},
		Sessions:   memorySessions{fx.store},
		Tokens:     codec,
		Passwords:  sec.NewPasswordHasher(4),
		Google: googleVerifierFunc(func(context.Context, string) (*oauth.GoogleIdentity, error) {
			return fx.google, fx.googleErr
		}),
		Throttle: fx.throttle,
		Metrics:  registry,
		Now:      now,
	})
	return fx
}

func (fx *fixture) register(t *testing.T, email string) *TokenPair {
	t.Helper()
	pair, err := fx.service.Register(context.Background(), RegisterInput{Email: email, Password: strongPassword})
	require.NoError(t, err)
	return pair
}

func (fx *fixture) sessionCount() int {
	fx.store.mu.Lock()
	defer fx.store.mu.Unlock()
	return len(fx.store.sessions)
}

func (fx *fixture) identityCount() int {
	fx.store.mu.Lock()
	defer fx.store.mu.Unlock()
	return len(fx.store.identities)
}

func (fx *fixture) accountByEmail(t *testing.T, email string) *Account {
	t.Helper()
	account, err := memoryAccounts{fx.store}.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return account
}

func (fx *fixture) setActive(t *testing.T, email string, active bool) {
	t.Helper()
	fx.store.mu.Lock()
	defer fx.store.mu.Unlock()
	for id, account := range fx.store.accounts {
		if account.Email == email {
			copied := *account
			copied.IsActive = active
			fx.store.accounts[id] = &copied
			return
		}
	}
	t.Fatalf("account %s not found", email)
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperr.Is(err, kind), "expected %s, got %v", kind, err)
}

// # Register

/*
TestRegister_Success verifies the account, token pair and session created by registration.
*/
func TestRegister_Success(t *testing.T) {
	fx := newFixture(t, nil)

	pair := fx.register(t, "  Seeker@LifeQuest.app ")

	assert.True(t, pair.IsNewUser)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 1, fx.sessionCount())

	account := fx.accountByEmail(t, "seeker@lifequest.app")
	assert.False(t, account.EmailVerified)
	assert.True(t, account.IsActive)
	assert.True(t, account.HasPassword())
	assert.NotEqual(t, strongPassword, *account.PasswordHash)

	claims, err := fx.codec.Decode(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID())
	assert.Equal(t, sec.TokenTypeAccess, claims.Type)
}

/*
TestRegister_DuplicateEmailIsCaseInsensitive registers the same address with different casing.
*/
func TestRegister_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	fx := newFixture(t, nil)
	fx.register(t, "A@x.com")

	_, err := fx.service.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: strongPassword})

	assertKind(t, err, apperr.KindAccountExists)
	assert.Equal(t, 1, fx.sessionCount())
}

/*
TestRegister_PasswordPolicy checks that policy failures happen before any store access.
*/
func TestRegister_PasswordPolicy(t *testing.T) {
	tests := []struct {
		password string
		message  string
	}{
		{"short!", "Password must be at least 8 characters long"},
		{"longenoughnospecial", "Password must contain at least one special character"},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			fx := newFixture(t, nil)

			_, err := fx.service.Register(context.Background(), RegisterInput{Email: "p@x.com", Password: tt.password})

			assertKind(t, err, apperr.KindValidation)
			assert.Contains(t, err.Error(), tt.message)
			assert.Empty(t, fx.store.accounts)
		})
	}
}

/*
TestRegister_Concurrent races several registrations of one email; exactly one wins.
*/
func TestRegister_Concurrent(t *testing.T) {
	fx := newFixture(t, nil)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.service.Register(context.Background(), RegisterInput{Email: "race@x.com", Password: strongPassword})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperr.Is(err, apperr.KindAccountExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, conflicts)
	assert.Len(t, fx.store.accounts, 1)
}

type failingSessions struct {
	memorySessions
}

func (failingSessions) Create(context.Context, *Session) error {
	return errors.New("disk full")
}

/*
TestRegister_RollsBackOnSessionFailure leaves no account behind when the flow aborts.
*/
func TestRegister_RollsBackOnSessionFailure(t *testing.T) {
	fx := newFixture(t, nil)
	fx.service.sessionRepository = failingSessions{memorySessions{fx.store}}

	_, err := fx.service.Register(context.Background(), RegisterInput{Email: "retry@x.com", Password: strongPassword})
	require.Error(t, err)
	assert.False(t, apperr.IsAppError(err))

	fx.service.sessionRepository = memorySessions{fx.store}
	pair := fx.register(t, "retry@x.com")
	assert.True(t, pair.IsNewUser)
}

// # Login

/*
TestLogin covers every credential failure and the success path.
*/
func TestLogin(t *testing.T) {
	fx := newFixture(t, nil)
	fx.register(t, "hero@x.com")

	t.Run("wrong_password", func(t *testing.T) {
		_, err := fx.service.Login(context.Background(), LoginInput{Email: "hero@x.com", Password: "wrong-pass!"})
		assertKind(t, err, apperr.KindInvalidCredentials)
		assert.Equal(t, msgInvalidCredentials, err.Error())
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := fx.service.Login(context.Background(), LoginInput{Email: "ghost@x.com", Password: strongPassword})
		assertKind(t, err, apperr.KindInvalidCredentials)
		assert.Equal(t, msgInvalidCredentials, err.Error())
	})

	t.Run("success_opens_additional_session", func(t *testing.T) {
		before := fx.sessionCount()

		pair, err := fx.service.Login(context.Background(), LoginInput{Email: "HERO@x.com", Password: strongPassword})
		require.NoError(t, err)

		assert.False(t, pair.IsNewUser)
		assert.Equal(t, before+1, fx.sessionCount())
		assert.NotNil(t, fx.accountByEmail(t, "hero@x.com").LastLoginAt)
		assert.Equal(t, 1, fx.throttle.resets)
	})

	t.Run("inactive_account", func(t *testing.T) {
		fx.setActive(t, "hero@x.com", false)
		defer fx.setActive(t, "hero@x.com", true)

		_, err := fx.service.Login(context.Background(), LoginInput{Email: "hero@x.com", Password: strongPassword})
		assertKind(t, err, apperr.KindInvalidCredentials)
		assert.Equal(t, msgAccountDeactivated, err.Error())
	})

	assert.Equal(t, 3, fx.throttle.failures)
}

/*
TestLogin_OAuthOnlyAccount rejects password sign-in for an account without a hash.
*/
func TestLogin_OAuthOnlyAccount(t *testing.T) {
	fx := newFixture(t, nil)
	fx.google = &oauth.GoogleIdentity{Email: "g@x.com", Subject: "google-sub-1", EmailVerified: true}

	_, err := fx.service.GoogleLogin(context.Background(), "id-token", Client{})
	require.NoError(t, err)

	for _, password := range []string{"", strongPassword, "anything"} {
		_, err := fx.service.Login(context.Background(), LoginInput{Email: "g@x.com", Password: password})
		assertKind(t, err, apperr.KindInvalidCredentials)
	}
}

/*
TestLogin_Throttled stops before any password check once the budget is spent.
*/
func TestLogin_Throttled(t *testing.T) {
	fx := newFixture(t, nil)
	fx.register(t, "hero@x.com")
	fx.throttle.blocked = true

	_, err := fx.service.Login(context.Background(), LoginInput{Email: "hero@x.com", Password: strongPassword})

	assertKind(t, err, apperr.KindRateLimited)
	assert.Equal(t, 0, fx.throttle.failures)
}

/*
TestLogin_RecordsMetrics labels auth events by flow and outcome.
*/
func TestLogin_RecordsMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	fx := newFixture(t, metrics.NewWith(registry, registry))

	_, _ = fx.service.Login(context.Background(), LoginInput{Email: "ghost@x.com", Password: strongPassword})

	expected := `
# HELP lifequest_auth_events_total Authentication flow executions by outcome
# TYPE lifequest_auth_events_total counter
lifequest_auth_events_total{flow="login",outcome="invalid_credentials"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "lifequest_auth_events_total"))
}

// # Refresh

/*
TestRefresh_RotatesSession lets a refresh token work exactly once.
*/
func TestRefresh_RotatesSession(t *testing.T) {
	fx := newFixture(t, nil)
	first := fx.register(t, "hero@x.com")

	second, err := fx.service.Refresh(context.Background(), first.RefreshToken, Client{DeviceInfo: "Firefox 120 on Linux"})
	require.NoError(t, err)
	assert.False(t, second.IsNewUser)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, 1, fx.sessionCount())

	_, err = fx.service.Refresh(context.Background(), first.RefreshToken, Client{})
	assertKind(t, err, apperr.KindInvalidToken)

	_, err = fx.service.Refresh(context.Background(), second.RefreshToken, Client{})
	require.NoError(t, err)
}

/*
TestRefresh_RejectsInvalidInput covers decode, type and account failures.
*/
func TestRefresh_RejectsInvalidInput(t *testing.T) {
	fx := newFixture(t, nil)
	pair := fx.register(t, "hero@x.com")

	_, err := fx.service.Refresh(context.Background(), "garbage", Client{})
	assertKind(t, err, apperr.KindInvalidToken)

	_, err = fx.service.Refresh(context.Background(), pair.AccessToken, Client{})
	assertKind(t, err, apperr.KindInvalidToken)
	assert.Equal(t, msgInvalidTokenType, err.Error())

	fx.setActive(t, "hero@x.com", false)
	_, err = fx.service.Refresh(context.Background(), pair.RefreshToken, Client{})
	assertKind(t, err, apperr.KindInvalidToken)
	assert.Equal(t, 1, fx.sessionCount(), "a rejected refresh must not consume the session")
}

// # Logout

/*
TestLogout_Idempotent never fails for unknown or already revoked tokens.
*/
func TestLogout_Idempotent(t *testing.T) {
	fx := newFixture(t, nil)
	pair := fx.register(t, "hero@x.com")

	require.NoError(t, fx.service.Logout(context.Background(), pair.RefreshToken))
	assert.Equal(t, 0, fx.sessionCount())

	require.NoError(t, fx.service.Logout(context.Background(), pair.RefreshToken))
	require.NoError(t, fx.service.Logout(context.Background(), "never-issued"))
	require.NoError(t, fx.service.Logout(context.Background(), ""))

	_, err := fx.service.Refresh(context.Background(), pair.RefreshToken, Client{})
	assertKind(t, err, apperr.KindInvalidToken)
}

/*
TestLogoutAll_RevokesEveryRefreshToken rejects all prior refresh tokens of the account.
*/
func TestLogoutAll_RevokesEveryRefreshToken(t *testing.T) {
	fx := newFixture(t, nil)
	registered := fx.register(t, "hero@x.com")
	other := fx.register(t, "other@x.com")

	tokens := []string{registered.RefreshToken}
	for range 2 {
		pair, err := fx.service.Login(context.Background(), LoginInput{Email: "hero@x.com", Password: strongPassword})
		require.NoError(t, err)
		tokens = append(tokens, pair.RefreshToken)
	}

	account := fx.accountByEmail(t, "hero@x.com")
	require.NoError(t, fx.service.LogoutAll(context.Background(), account.ID))
	require.NoError(t, fx.service.LogoutAll(context.Background(), account.ID))

	for _, token := range tokens {
		_, err := fx.service.Refresh(context.Background(), token, Client{})
		assertKind(t, err, apperr.KindInvalidToken)
	}

	_, err := fx.service.Refresh(context.Background(), other.RefreshToken, Client{})
	require.NoError(t, err, "other accounts keep their sessions")
}

// # Authorization

/*
TestResolveCurrentAccount checks token type enforcement and account state.
*/
func TestResolveCurrentAccount(t *testing.T) {
	fx := newFixture(t, nil)
	pair := fx.register(t, "hero@x.com")

	account, err := fx.service.ResolveCurrentAccount(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "hero@x.com", account.Email)

	_, err = fx.service.ResolveCurrentAccount(context.Background(), pair.RefreshToken)
	assertKind(t, err, apperr.KindInvalidToken)

	_, err = fx.service.ResolveCurrentAccount(context.Background(), "not.a.jwt")
	assertKind(t, err, apperr.KindInvalidToken)

	fx.setActive(t, "hero@x.com", false)
	_, err = fx.service.ResolveCurrentAccount(context.Background(), pair.AccessToken)
	assertKind(t, err, apperr.KindInvalidToken)
	assert.Equal(t, msgAccountDeactivated, err.Error())

	orphan, err := fx.codec.IssueAccess("0190a4c6-9a0e-7c3e-8f1d-2b8e4a6f7c01", nil)
	require.NoError(t, err)
	_, err = fx.service.ResolveCurrentAccount(context.Background(), orphan)
	assertKind(t, err, apperr.KindAccountNotFound)

	principal, err := fx.service.ResolvePrincipal(context.Background(), orphan)
	assert.Nil(t, principal)
	assertKind(t, err, apperr.KindAccountNotFound)
}

// # Google

/*
TestGoogleLogin_CreatesAccount registers a password-less account on first sight.
*/
func TestGoogleLogin_CreatesAccount(t *testing.T) {
	fx := newFixture(t, nil)
	fx.google = &oauth.GoogleIdentity{Email: "New@Gmail.com", Subject: "sub-1", EmailVerified: true, Picture: "https://lh3/p.png"}

	pair, err := fx.service.GoogleLogin(context.Background(), "id-token", Client{})
	require.NoError(t, err)
	assert.True(t, pair.IsNewUser)

	account := fx.accountByEmail(t, "new@gmail.com")
	assert.False(t, account.HasPassword())
	assert.True(t, account.EmailVerified)
	assert.NotNil(t, account.LastLoginAt)
	assert.Equal(t, 1, fx.identityCount())

	again, err := fx.service.GoogleLogin(context.Background(), "id-token", Client{})
	require.NoError(t, err)
	assert.False(t, again.IsNewUser)
	assert.Equal(t, 1, fx.identityCount())
}

/*
TestGoogleLogin_LinksExistingPasswordAccount links silently and never duplicates the identity.
*/
func TestGoogleLogin_LinksExistingPasswordAccount(t *testing.T) {
	fx := newFixture(t, nil)
	fx.register(t, "hero@x.com")
	fx.google = &oauth.GoogleIdentity{Email: "hero@x.com", Subject: "sub-hero", GivenName: "Hero"}

	pair, err := fx.service.GoogleLogin(context.Background(), "id-token", Client{})
	require.NoError(t, err)
	assert.False(t, pair.IsNewUser)
	assert.Equal(t, 1, fx.identityCount())

	fx.google.GivenName = "Renamed Hero"
	_, err = fx.service.GoogleLogin(context.Background(), "id-token", Client{})
	require.NoError(t, err)
	assert.Equal(t, 1, fx.identityCount())

	identity, err := memoryIdentities{fx.store}.FindByProviderSubject(context.Background(), oauth.ProviderGoogle, "sub-hero")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Hero", identity.ProviderData["given_name"])

	_, err = fx.service.Login(context.Background(), LoginInput{Email: "hero@x.com", Password: strongPassword})
	require.NoError(t, err, "the password keeps working after linking")
}

/*
TestGoogleLogin_Failures covers missing claims, verifier errors and link conflicts.
*/
func TestGoogleLogin_Failures(t *testing.T) {
	fx := newFixture(t, nil)

	fx.google = &oauth.GoogleIdentity{Email: "", Subject: "sub"}
	_, err := fx.service.GoogleLogin(context.Background(), "id-token", Client{})
	assertKind(t, err, apperr.KindInvalidCredentials)
	assert.Equal(t, msgGoogleMissingClaim, err.Error())

	fx.google = nil
	fx.googleErr = apperr.OAuth("Invalid Google token: Token expired")
	_, err = fx.service.GoogleLogin(context.Background(), "id-token", Client{})
	assertKind(t, err, apperr.KindOAuth)

	fx.googleErr = nil
	fx.google = &oauth.GoogleIdentity{Email: "hero@x.com", Subject: "sub-a"}
	_, err = fx.service.GoogleLogin(context.Background(), "id-token", Client{})
	require.NoError(t, err)

	fx.google = &oauth.GoogleIdentity{Email: "hero@x.com", Subject: "sub-b"}
	_, err = fx.service.GoogleLogin(context.Background(), "id-token", Client{})
	assertKind(t, err, apperr.KindInvalidCredentials)
	assert.Equal(t, 1, fx.identityCount())

	fx.setActive(t, "hero@x.com", false)
	fx.google = &oauth.GoogleIdentity{Email: "hero@x.com", Subject: "sub-a"}
	_, err = fx.service.GoogleLogin(context.Background(), "id-token", Client{})
	assertKind(t, err, apperr.KindInvalidCredentials)
}

// # Sessions

/*
TestRevokeSession only deletes sessions owned by the caller.
*/
func TestRevokeSession(t *testing.T) {
	fx := newFixture(t, nil)
	fx.register(t, "hero@x.com")
	fx.register(t, "other@x.com")

	hero := fx.accountByEmail(t, "hero@x.com")
	other := fx.accountByEmail(t, "other@x.com")

	sessions, err := fx.service.ListSessions(context.Background(), hero.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	err = fx.service.RevokeSession(context.Background(), other.ID, sessions[0].ID)
	assertKind(t, err, apperr.KindNotFound)

	require.NoError(t, fx.service.RevokeSession(context.Background(), hero.ID, sessions[0].ID))
	sessions, err = fx.service.ListSessions(context.Background(), hero.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

/*
TestReaper_Sweep purges only expired rows.
*/
func TestReaper_Sweep(t *testing.T) {
	fx := newFixture(t, nil)
	now := fx.store.now()

	sessions := memorySessions{fx.store}
	require.NoError(t, sessions.Create(context.Background(), &Session{ID: "live", AccountID: "a", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, sessions.Create(context.Background(), &Session{ID: "dead", AccountID: "a", ExpiresAt: now.Add(-time.Hour)}))

	reaper := NewReaper(sessions, time.Minute, nil, fx.service.logger)

	assert.Equal(t, int64(1), reaper.Sweep(context.Background()))
	assert.Equal(t, 1, fx.sessionCount())
}

/*
TestReaper_RunStopsOnCancel returns once the context is cancelled.
*/
func TestReaper_RunStopsOnCancel(t *testing.T) {
	fx := newFixture(t, nil)
	reaper := NewReaper(memorySessions{fx.store}, time.Millisecond, nil, fx.service.logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}

	NewReaper(nil, 0, nil, nil).Run(context.Background())
}

func TestAccount_HasPassword(t *testing.T) {
	assert.False(t, (&Account{}).HasPassword())
	assert.False(t, (&Account{PasswordHash: pointer.To("")}).HasPassword())
	assert.True(t, (&Account{PasswordHash: pointer.To("$2a$04$hash")}).HasPassword())
}

func TestGetAccount(t *testing.T) {
	fx := newFixture(t, nil)
	fx.register(t, "hero@x.com")
	hero := fx.accountByEmail(t, "hero@x.com")

	account, err := fx.service.GetAccount(context.Background(), hero.ID)
	require.NoError(t, err)
	assert.Equal(t, "hero@x.com", account.Email)

	_, err = fx.service.GetAccount(context.Background(), "0190a4c6-9999-7000-8000-000000000000")
	assertKind(t, err, apperr.KindAccountNotFound)
}
