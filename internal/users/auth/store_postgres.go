// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/internal/platform/database/schema"
	"github.com/taibuivan/lifequest/internal/platform/dberr"
	"github.com/taibuivan/lifequest/internal/platform/postgres"
	"github.com/taibuivan/lifequest/pkg/pointer"
)

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] on users.account.
type PostgresAccountRepository struct {
	db postgres.DBTX
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(db postgres.DBTX) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

var accountColumns = schema.List(schema.UserAccount.Columns())

/*
Create persists a new account into the users.account table.

Description: The uq_account_email constraint is the race backstop for concurrent
registrations; its violation is reported as AccountExists, never as a fault.

Parameters:
  - context: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: apperr.AccountExists or database errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	table := schema.UserAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		table.Table,
		table.ID, table.Email, table.PasswordHash, table.EmailVerified, table.IsActive, table.CreatedAt, table.UpdatedAt,
	)

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := postgres.Conn(context, repository.db).Exec(context, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.EmailVerified,
		account.IsActive,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := dberr.UniqueViolation(err); ok && constraint == table.UniqueEmail {
			return apperr.AccountExists(msgAccountExists).WithCause(err)
		}
		return fmt.Errorf("postgres_account_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves an account by primary key.
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, accountColumns, schema.UserAccount.Table, schema.UserAccount.ID)
	account, err := scanAccount(postgres.Conn(context, repository.db).QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Account", "postgres_account_repo_find_by_id_failed")
	}
	return account, nil
}

// FindByEmail retrieves an account by its normalized email.
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, accountColumns, schema.UserAccount.Table, schema.UserAccount.Email)
	account, err := scanAccount(postgres.Conn(context, repository.db).QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "Account", "postgres_account_repo_find_by_email_failed")
	}
	return account, nil
}

// TouchLastLogin stamps last_login_at and updated_at.
func (repository *PostgresAccountRepository) TouchLastLogin(context context.Context, id string, at time.Time) error {
	table := schema.UserAccount
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $2 WHERE %s = $1`,
		table.Table, table.LastLoginAt, table.UpdatedAt, table.ID)

	tag, err := postgres.Conn(context, repository.db).Exec(context, query, id, at)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_touch_last_login_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}
	return nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.EmailVerified,
		&account.IsActive,
		&account.LastLoginAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// # External Identity Repository

// PostgresIdentityRepository implements [IdentityRepository] on users.external_identity.
type PostgresIdentityRepository struct {
	db postgres.DBTX
}

// NewIdentityRepository creates a new PostgreSQL implementation of the IdentityRepository.
func NewIdentityRepository(db postgres.DBTX) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{db: db}
}

var identityColumns = schema.List(schema.UserExternalIdentity.Columns())

// FindByProviderSubject resolves the identity for (provider, provider_user_id).
func (repository *PostgresIdentityRepository) FindByProviderSubject(context context.Context, provider, providerUserID string) (*ExternalIdentity, error) {
	table := schema.UserExternalIdentity
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		identityColumns, table.Table, table.Provider, table.ProviderUserID)
	identity, err := scanIdentity(postgres.Conn(context, repository.db).QueryRow(context, query, provider, providerUserID))
	if err != nil {
		return nil, dberr.Wrap(err, "External identity", "postgres_identity_repo_find_by_subject_failed")
	}
	return identity, nil
}

// FindByAccountProvider returns the account's link for one provider.
func (repository *PostgresIdentityRepository) FindByAccountProvider(context context.Context, accountID, provider string) (*ExternalIdentity, error) {
	table := schema.UserExternalIdentity
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		identityColumns, table.Table, table.AccountID, table.Provider)
	identity, err := scanIdentity(postgres.Conn(context, repository.db).QueryRow(context, query, accountID, provider))
	if err != nil {
		return nil, dberr.Wrap(err, "External identity", "postgres_identity_repo_find_by_account_failed")
	}
	return identity, nil
}

/*
Create links a new external identity to an account.

Parameters:
  - context: context.Context
  - identity: *ExternalIdentity

Returns:
  - error: apperr.Conflict on either uniqueness constraint, or database errors
*/
func (repository *PostgresIdentityRepository) Create(context context.Context, identity *ExternalIdentity) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		schema.UserExternalIdentity.Table, identityColumns)

	now := time.Now().UTC()
	identity.CreatedAt = now
	identity.UpdatedAt = now

	_, err := postgres.Conn(context, repository.db).Exec(context, query,
		identity.ID,
		identity.AccountID,
		identity.Provider,
		identity.ProviderUserID,
		identity.AccessToken,
		identity.RefreshToken,
		identity.ExpiresAt,
		providerDataOrEmpty(identity.ProviderData),
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	return dberr.Wrap(err, "External identity", "postgres_identity_repo_create_failed")
}

// UpdateProviderData refreshes the cached provider profile.
func (repository *PostgresIdentityRepository) UpdateProviderData(context context.Context, id string, data map[string]string) error {
	table := schema.UserExternalIdentity
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		table.Table, table.ProviderData, table.UpdatedAt, table.ID)

	if _, err := postgres.Conn(context, repository.db).Exec(context, query, id, providerDataOrEmpty(data)); err != nil {
		return fmt.Errorf("postgres_identity_repo_update_data_failed: %w", err)
	}
	return nil
}

func providerDataOrEmpty(data map[string]string) map[string]string {
	if data == nil {
		return map[string]string{}
	}
	return data
}

func scanIdentity(row pgx.Row) (*ExternalIdentity, error) {
	identity := &ExternalIdentity{}
	err := row.Scan(
		&identity.ID,
		&identity.AccountID,
		&identity.Provider,
		&identity.ProviderUserID,
		&identity.AccessToken,
		&identity.RefreshToken,
		&identity.ExpiresAt,
		&identity.ProviderData,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] on users.session.
type PostgresSessionRepository struct {
	db postgres.DBTX
}

// NewSessionRepository creates a new PostgreSQL implementation of the SessionRepository.
func NewSessionRepository(db postgres.DBTX) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

var sessionColumns = schema.List(schema.UserSession.Columns())

// Create persists a new session row.
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		schema.UserSession.Table, sessionColumns)

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	_, err := postgres.Conn(context, repository.db).Exec(context, query,
		session.ID,
		session.AccountID,
		session.TokenHash,
		pointer.NilIfZero(session.DeviceInfo),
		pointer.NilIfZero(session.IPAddress),
		session.CreatedAt,
		session.ExpiresAt,
	)
	return dberr.Wrap(err, "Session", "postgres_session_repo_create_failed")
}

// FindLiveByTokenHash is a point lookup on the unique token_hash index.
func (repository *PostgresSessionRepository) FindLiveByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	table := schema.UserSession
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s > NOW()`,
		sessionColumns, table.Table, table.TokenHash, table.ExpiresAt)
	session, err := scanSession(postgres.Conn(context, repository.db).QueryRow(context, query, tokenHash))
	if err != nil {
		return nil, dberr.Wrap(err, "Session", "postgres_session_repo_find_by_hash_failed")
	}
	return session, nil
}

// DeleteByTokenHash removes one session by its token fingerprint.
func (repository *PostgresSessionRepository) DeleteByTokenHash(context context.Context, tokenHash string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserSession.Table, schema.UserSession.TokenHash)

	tag, err := postgres.Conn(context, repository.db).Exec(context, query, tokenHash)
	if err != nil {
		return false, fmt.Errorf("postgres_session_repo_delete_by_hash_failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByID removes a session only when it belongs to the given account.
func (repository *PostgresSessionRepository) DeleteByID(context context.Context, accountID, id string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.UserSession.Table, schema.UserSession.ID, schema.UserSession.AccountID)

	tag, err := postgres.Conn(context, repository.db).Exec(context, query, id, accountID)
	if err != nil {
		return false, fmt.Errorf("postgres_session_repo_delete_by_id_failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteAllForAccount removes every session of an account.
func (repository *PostgresSessionRepository) DeleteAllForAccount(context context.Context, accountID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserSession.Table, schema.UserSession.AccountID)

	tag, err := postgres.Conn(context, repository.db).Exec(context, query, accountID)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_delete_all_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListLive returns the account's unexpired sessions, newest first.
func (repository *PostgresSessionRepository) ListLive(context context.Context, accountID string) ([]*Session, error) {
	table := schema.UserSession
	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE %s = $1 AND %s > NOW()
		ORDER BY %s DESC`,
		sessionColumns, table.Table, table.AccountID, table.ExpiresAt, table.CreatedAt)

	rows, err := postgres.Conn(context, repository.db).Query(context, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_list_failed: %w", err)
	}

	sessions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Session, error) {
		return scanSession(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_list_scan_failed: %w", err)
	}
	return sessions, nil
}

// DeleteExpired purges dead rows. Reads already ignore them.
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= NOW()`, schema.UserSession.Table, schema.UserSession.ExpiresAt)

	tag, err := postgres.Conn(context, repository.db).Exec(context, query)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_delete_expired_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*Session, error) {
	session := &Session{}
	var deviceInfo, ipAddress *string
	err := row.Scan(
		&session.ID,
		&session.AccountID,
		&session.TokenHash,
		&deviceInfo,
		&ipAddress,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	session.DeviceInfo = pointer.Val(deviceInfo)
	session.IPAddress = pointer.Val(ipAddress)
	return session, nil
}
