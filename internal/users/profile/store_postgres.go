// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
	"github.com/taibuivan/lifequest/internal/platform/database/schema"
	"github.com/taibuivan/lifequest/internal/platform/dberr"
	"github.com/taibuivan/lifequest/internal/platform/postgres"
	"github.com/taibuivan/lifequest/pkg/textnorm"
)

// # Profile Repository

// PostgresRepository implements [Repository] on the profile schema.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
FindByAccountID loads the profile together with its catalog references.

Description: Archetype and life mode are LEFT JOINed in one statement; the
life-area selection is read by a second query ordered by priority.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Profile: The hydrated profile
  - error: apperr.NotFound("Profile") or database errors
*/
func (repository *PostgresRepository) FindByAccountID(context context.Context, accountID string) (*Profile, error) {
	table := schema.PlayerProfile
	archetype := schema.ProfileArchetype
	lifeMode := schema.ProfileLifeMode

	query := fmt.Sprintf(`
		SELECT %s, %s, %s
		FROM %s p
		LEFT JOIN %s a ON a.%s = p.%s
		LEFT JOIN %s m ON m.%s = p.%s
		WHERE p.%s = $1`,
		schema.Qualified("p", table.Columns()),
		schema.Qualified("a", archetype.Columns()),
		schema.Qualified("m", lifeMode.Columns()),
		table.Table,
		archetype.Table, archetype.ID, table.ArchetypeID,
		lifeMode.Table, lifeMode.ID, table.LifeModeID,
		table.AccountID,
	)

	conn := postgres.Conn(context, repository.db)

	profile, err := scanProfile(conn.QueryRow(context, query, accountID))
	if err != nil {
		return nil, dberr.Wrap(err, msgProfileResource, "postgres_profile_repo_find_failed")
	}

	profile.LifeAreas, err = repository.selectedLifeAreas(context, conn, profile.ID)
	if err != nil {
		return nil, err
	}

	return profile, nil
}

func (repository *PostgresRepository) selectedLifeAreas(context context.Context, conn postgres.DBTX, profileID string) ([]SelectedLifeArea, error) {
	selection := schema.PlayerLifeArea
	area := schema.ProfileLifeArea

	query := fmt.Sprintf(`
		SELECT %s, s.%s, s.%s
		FROM %s s
		JOIN %s la ON la.%s = s.%s
		WHERE s.%s = $1
		ORDER BY s.%s ASC`,
		schema.Qualified("la", area.Columns()), selection.Priority, selection.SelectedAt,
		selection.Table,
		area.Table, area.ID, selection.LifeAreaID,
		selection.ProfileID,
		selection.Priority,
	)

	rows, err := conn.Query(context, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_life_areas_failed: %w", err)
	}

	selected, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SelectedLifeArea, error) {
		var item SelectedLifeArea
		err := row.Scan(&item.ID, &item.Name, &item.Emoji, &item.Description, &item.Priority, &item.SelectedAt)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_life_areas_scan_failed: %w", err)
	}

	if selected == nil {
		selected = []SelectedLifeArea{}
	}
	return selected, nil
}

// FindNameOwner resolves the account that holds a folded player name.
func (repository *PostgresRepository) FindNameOwner(context context.Context, nameKey string) (string, error) {
	table := schema.PlayerProfile
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, table.AccountID, table.Table, table.PlayerNameKey)

	var accountID string
	if err := postgres.Conn(context, repository.db).QueryRow(context, query, nameKey).Scan(&accountID); err != nil {
		return "", dberr.Wrap(err, "Player name", "postgres_profile_repo_find_name_failed")
	}
	return accountID, nil
}

/*
Create inserts a new profile row.

Description: The folded name key is derived here so uniqueness can never be
bypassed by a caller.

Returns:
  - error: apperr.Conflict on a taken name or an existing profile, or database errors
*/
func (repository *PostgresRepository) Create(context context.Context, profile *Profile) error {
	table := schema.PlayerProfile
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		table.Table,
		table.ID, table.AccountID, table.PlayerName, table.PlayerNameKey, table.ArchetypeID,
		table.LifeModeID, table.Level, table.TotalCoreXP, table.AvatarURL, table.Bio,
		table.Timezone, table.OnboardingCompleted, table.IdentityLockedUntil, table.CreatedAt, table.UpdatedAt,
	)

	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := postgres.Conn(context, repository.db).Exec(context, query,
		profile.ID,
		profile.AccountID,
		profile.PlayerName,
		textnorm.Key(profile.PlayerName),
		profile.ArchetypeID,
		profile.LifeModeID,
		profile.Level,
		profile.TotalCoreXP,
		profile.AvatarURL,
		profile.Bio,
		profile.Timezone,
		profile.OnboardingCompleted,
		profile.IdentityLockedUntil,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return mapWriteError(err, "postgres_profile_repo_create_failed")
}

// Update overwrites every mutable column of the profile.
func (repository *PostgresRepository) Update(context context.Context, profile *Profile) error {
	table := schema.PlayerProfile
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $2, %s = $3, %s = $4, %s = $5, %s = $6,
			%s = $7, %s = $8, %s = $9, %s = $10, %s = $11
		WHERE %s = $1`,
		table.Table,
		table.PlayerName, table.PlayerNameKey, table.ArchetypeID, table.LifeModeID, table.AvatarURL,
		table.Bio, table.Timezone, table.OnboardingCompleted, table.IdentityLockedUntil, table.UpdatedAt,
		table.ID,
	)

	profile.UpdatedAt = time.Now().UTC()

	tag, err := postgres.Conn(context, repository.db).Exec(context, query,
		profile.ID,
		profile.PlayerName,
		textnorm.Key(profile.PlayerName),
		profile.ArchetypeID,
		profile.LifeModeID,
		profile.AvatarURL,
		profile.Bio,
		profile.Timezone,
		profile.OnboardingCompleted,
		profile.IdentityLockedUntil,
		profile.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "postgres_profile_repo_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgProfileResource)
	}
	return nil
}

// ReplaceLifeAreas deletes the current selection and inserts the new one in a single round of statements.
func (repository *PostgresRepository) ReplaceLifeAreas(context context.Context, profileID string, lifeAreaIDs []string, selectedAt time.Time) error {
	selection := schema.PlayerLifeArea
	conn := postgres.Conn(context, repository.db)

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, selection.Table, selection.ProfileID)
	if _, err := conn.Exec(context, deleteQuery, profileID); err != nil {
		return fmt.Errorf("postgres_profile_repo_clear_life_areas_failed: %w", err)
	}

	if len(lifeAreaIDs) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		SELECT $1, area.id, area.priority, $3
		FROM unnest($2::uuid[]) WITH ORDINALITY AS area(id, priority)`,
		selection.Table, selection.ProfileID, selection.LifeAreaID, selection.Priority, selection.SelectedAt,
	)
	if _, err := conn.Exec(context, insertQuery, profileID, lifeAreaIDs, selectedAt); err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.ValidationError(msgInvalidLifeArea).WithCause(err)
		}
		return fmt.Errorf("postgres_profile_repo_insert_life_areas_failed: %w", err)
	}
	return nil
}

func mapWriteError(err error, action string) error {
	if err == nil {
		return nil
	}
	if constraint, ok := dberr.UniqueViolation(err); ok {
		switch constraint {
		case schema.PlayerProfile.UniquePlayerNameKey, schema.PlayerProfile.UniquePlayerName:
			return apperr.Conflict(msgPlayerNameTaken).WithCause(err)
		case schema.PlayerProfile.UniqueAccount:
			return apperr.Conflict(msgProfileAlreadyExists).WithCause(err)
		}
	}
	if dberr.IsForeignKeyViolation(err) {
		return apperr.ValidationError("Unknown catalog reference").WithCause(err)
	}
	return dberr.Wrap(err, msgProfileResource, action)
}

func scanProfile(row pgx.Row) (*Profile, error) {
	profile := &Profile{}

	var (
		archetypeID, archetypeName, archetypeDescription *string
		lifeModeID, lifeModeName, lifeModeDescription    *string
		passiveBonuses, modifiers                        map[string]any
	)

	err := row.Scan(
		&profile.ID,
		&profile.AccountID,
		&profile.PlayerName,
		&profile.ArchetypeID,
		&profile.LifeModeID,
		&profile.Level,
		&profile.TotalCoreXP,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.Timezone,
		&profile.OnboardingCompleted,
		&profile.IdentityLockedUntil,
		&profile.CreatedAt,
		&profile.UpdatedAt,
		&archetypeID, &archetypeName, &archetypeDescription, &passiveBonuses,
		&lifeModeID, &lifeModeName, &lifeModeDescription, &modifiers,
	)
	if err != nil {
		return nil, err
	}

	if archetypeID != nil {
		profile.Archetype = &Archetype{ID: *archetypeID, Name: *archetypeName, Description: archetypeDescription, PassiveBonuses: passiveBonuses}
	}
	if lifeModeID != nil {
		profile.LifeMode = &LifeMode{ID: *lifeModeID, Name: *lifeModeName, Description: lifeModeDescription, Modifiers: modifiers}
	}
	return profile, nil
}

// # Catalog Repository

// PostgresCatalogRepository implements [CatalogRepository].
type PostgresCatalogRepository struct {
	db postgres.DBTX
}

// NewCatalogRepository creates a new PostgreSQL implementation of the CatalogRepository.
func NewCatalogRepository(db postgres.DBTX) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

// ListArchetypes returns active archetypes ordered by name.
func (repository *PostgresCatalogRepository) ListArchetypes(context context.Context) ([]*Archetype, error) {
	table := schema.ProfileArchetype
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s ASC`,
		schema.List(table.Columns()), table.Table, table.IsActive, table.Name)

	rows, err := postgres.Conn(context, repository.db).Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_catalog_repo_list_archetypes_failed: %w", err)
	}
	return collect(rows, scanArchetype, "postgres_catalog_repo_scan_archetype_failed")
}

// ListLifeModes returns active life modes ordered by name.
func (repository *PostgresCatalogRepository) ListLifeModes(context context.Context) ([]*LifeMode, error) {
	table := schema.ProfileLifeMode
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s ASC`,
		schema.List(table.Columns()), table.Table, table.IsActive, table.Name)

	rows, err := postgres.Conn(context, repository.db).Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_catalog_repo_list_life_modes_failed: %w", err)
	}
	return collect(rows, scanLifeMode, "postgres_catalog_repo_scan_life_mode_failed")
}

// ListLifeAreas returns active life areas ordered by name.
func (repository *PostgresCatalogRepository) ListLifeAreas(context context.Context) ([]*LifeArea, error) {
	table := schema.ProfileLifeArea
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s ASC`,
		schema.List(table.Columns()), table.Table, table.IsActive, table.Name)

	rows, err := postgres.Conn(context, repository.db).Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_catalog_repo_list_life_areas_failed: %w", err)
	}
	return collect(rows, scanLifeArea, "postgres_catalog_repo_scan_life_area_failed")
}

// FindArchetype returns an active archetype by ID.
func (repository *PostgresCatalogRepository) FindArchetype(context context.Context, id string) (*Archetype, error) {
	table := schema.ProfileArchetype
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s`,
		schema.List(table.Columns()), table.Table, table.ID, table.IsActive)

	archetype, err := scanArchetype(postgres.Conn(context, repository.db).QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Archetype", "postgres_catalog_repo_find_archetype_failed")
	}
	return archetype, nil
}

// FindLifeMode returns an active life mode by ID.
func (repository *PostgresCatalogRepository) FindLifeMode(context context.Context, id string) (*LifeMode, error) {
	table := schema.ProfileLifeMode
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s`,
		schema.List(table.Columns()), table.Table, table.ID, table.IsActive)

	lifeMode, err := scanLifeMode(postgres.Conn(context, repository.db).QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Life mode", "postgres_catalog_repo_find_life_mode_failed")
	}
	return lifeMode, nil
}

// CountLifeAreas counts the active life areas among ids.
func (repository *PostgresCatalogRepository) CountLifeAreas(context context.Context, ids []string) (int, error) {
	table := schema.ProfileLifeArea
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ANY($1::uuid[]) AND %s`,
		table.Table, table.ID, table.IsActive)

	var count int
	if err := postgres.Conn(context, repository.db).QueryRow(context, query, ids).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_catalog_repo_count_life_areas_failed: %w", err)
	}
	return count, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error), action string) ([]*T, error) {
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*T, error) {
		return scan(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if items == nil {
		items = []*T{}
	}
	return items, nil
}

func scanArchetype(row pgx.Row) (*Archetype, error) {
	archetype := &Archetype{}
	if err := row.Scan(&archetype.ID, &archetype.Name, &archetype.Description, &archetype.PassiveBonuses); err != nil {
		return nil, err
	}
	return archetype, nil
}

func scanLifeMode(row pgx.Row) (*LifeMode, error) {
	lifeMode := &LifeMode{}
	if err := row.Scan(&lifeMode.ID, &lifeMode.Name, &lifeMode.Description, &lifeMode.Modifiers); err != nil {
		return nil, err
	}
	return lifeMode, nil
}

func scanLifeArea(row pgx.Row) (*LifeArea, error) {
	area := &LifeArea{}
	if err := row.Scan(&area.ID, &area.Name, &area.Emoji, &area.Description); err != nil {
		return nil, err
	}
	return area, nil
}
