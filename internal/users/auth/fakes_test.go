// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/internal/platform/oauth"
)

// memoryStore is an in-memory stand-in for the users schema. A transaction
// holds the store lock and works on a copy that is swapped in on commit, so
// concurrent flows behave like serializable transactions.
type memoryStore struct {
	txLock sync.Mutex

	mu         sync.Mutex
	accounts   map[string]*Account
	identities map[string]*ExternalIdentity
	sessions   map[string]*Session
	now        func() time.Time
}

func newMemoryStore(now func() time.Time) *memoryStore {
	return &memoryStore{
		accounts:   map[string]*Account{},
		identities: map[string]*ExternalIdentity{},
		sessions:   map[string]*Session{},
		now:        now,
	}
}

type memoryTxKey struct{}

func (store *memoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) != nil {
		return fn(ctx)
	}

	store.txLock.Lock()
	defer store.txLock.Unlock()

	store.mu.Lock()
	snapshotAccounts := maps.Clone(store.accounts)
	snapshotIdentities := maps.Clone(store.identities)
	snapshotSessions := maps.Clone(store.sessions)
	store.mu.Unlock()

	if err := fn(context.WithValue(ctx, memoryTxKey{}, true)); err != nil {
		store.mu.Lock()
		store.accounts = snapshotAccounts
		store.identities = snapshotIdentities
		store.sessions = snapshotSessions
		store.mu.Unlock()
		return err
	}
	return nil
}

// # Accounts

type memoryAccounts struct{ store *memoryStore }

func (repository memoryAccounts) Create(_ context.Context, account *Account) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	for _, existing := range repository.store.accounts {
		if existing.Email == account.Email {
			return apperr.AccountExists(msgAccountExists)
		}
	}
	account.CreatedAt = repository.store.now()
	account.UpdatedAt = account.CreatedAt
	copied := *account
	repository.store.accounts[account.ID] = &copied
	return nil
}

func (repository memoryAccounts) FindByID(_ context.Context, id string) (*Account, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	if account, ok := repository.store.accounts[id]; ok {
		copied := *account
		return &copied, nil
	}
	return nil, apperr.NotFound("Account")
}

func (repository memoryAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	for _, account := range repository.store.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repository memoryAccounts) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	account, ok := repository.store.accounts[id]
	if !ok {
		return apperr.NotFound("Account")
	}
	copied := *account
	copied.LastLoginAt = &at
	repository.store.accounts[id] = &copied
	return nil
}

// # Identities

type memoryIdentities struct{ store *memoryStore }

func (repository memoryIdentities) FindByProviderSubject(_ context.Context, provider, subject string) (*ExternalIdentity, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	for _, identity := range repository.store.identities {
		if identity.Provider == provider && identity.ProviderUserID == subject {
			copied := *identity
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("External identity")
}

func (repository memoryIdentities) FindByAccountProvider(_ context.Context, accountID, provider string) (*ExternalIdentity, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	for _, identity := range repository.store.identities {
		if identity.AccountID == accountID && identity.Provider == provider {
			copied := *identity
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("External identity")
}

func (repository memoryIdentities) Create(_ context.Context, identity *ExternalIdentity) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	for _, existing := range repository.store.identities {
		if existing.Provider == identity.Provider &&
			(existing.ProviderUserID == identity.ProviderUserID || existing.AccountID == identity.AccountID) {
			return apperr.Conflict("External identity already exists")
		}
	}
	copied := *identity
	repository.store.identities[identity.ID] = &copied
	return nil
}

func (repository memoryIdentities) UpdateProviderData(_ context.Context, id string, data map[string]string) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	identity, ok := repository.store.identities[id]
	if !ok {
		return apperr.NotFound("External identity")
	}
	copied := *identity
	copied.ProviderData = data
	repository.store.identities[id] = &copied
	return nil
}

// # Sessions

type memorySessions struct{ store *memoryStore }

func (repository memorySessions) Create(_ context.Context, session *Session) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	copied := *session
	repository.store.sessions[session.ID] = &copied
	return nil
}

func (repository memorySessions) FindLiveByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	for _, session := range repository.store.sessions {
		if session.TokenHash == tokenHash && session.IsLive(repository.store.now()) {
			copied := *session
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (repository memorySessions) DeleteByTokenHash(_ context.Context, tokenHash string) (bool, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	for id, session := range repository.store.sessions {
		if session.TokenHash == tokenHash {
			delete(repository.store.sessions, id)
			return true, nil
		}
	}
	return false, nil
}

func (repository memorySessions) DeleteByID(_ context.Context, accountID, id string) (bool, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	session, ok := repository.store.sessions[id]
	if !ok || session.AccountID != accountID {
		return false, nil
	}
	delete(repository.store.sessions, id)
	return true, nil
}

func (repository memorySessions) DeleteAllForAccount(_ context.Context, accountID string) (int64, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	var count int64
	for id, session := range repository.store.sessions {
		if session.AccountID == accountID {
			delete(repository.store.sessions, id)
			count++
		}
	}
	return count, nil
}

func (repository memorySessions) ListLive(_ context.Context, accountID string) ([]*Session, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	var sessions []*Session
	for _, session := range repository.store.sessions {
		if session.AccountID == accountID && session.IsLive(repository.store.now()) {
			copied := *session
			sessions = append(sessions, &copied)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	return sessions, nil
}

func (repository memorySessions) DeleteExpired(_ context.Context) (int64, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	var count int64
	for id, session := range repository.store.sessions {
		if !session.IsLive(repository.store.now()) {
			delete(repository.store.sessions, id)
			count++
		}
	}
	return count, nil
}

// # Collaborators

type googleVerifierFunc func(ctx context.Context, idToken string) (*oauth.GoogleIdentity, error)

func (fn googleVerifierFunc) Verify(ctx context.Context, idToken string) (*oauth.GoogleIdentity, error) {
	return fn(ctx, idToken)
}

type recordingThrottle struct {
	mu       sync.Mutex
	blocked  bool
	failures int
	resets   int
}

func (throttle *recordingThrottle) Check(context.Context, string) error {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	if throttle.blocked {
		return apperr.RateLimited(60)
	}
	return nil
}

func (throttle *recordingThrottle) Fail(context.Context, string) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	throttle.failures++
}

func (throttle *recordingThrottle) Reset(context.Context, string) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	throttle.resets++
}
