// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the versioned SQL files under data/migrations
// (users and profile schemas) through golang-migrate before the API serves traffic.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers the "pgx5" scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Result reports the schema version before and after a run.
type Result struct {
	From    uint
	To      uint
	Applied bool
}

/*
RunUp applies all pending UP migrations.

Parameters:
  - dsn: postgres://, postgresql:// or pgx5:// URL
  - migrationsPath: Filesystem path to the migrations directory
  - logger: Structured logger for migration events

Returns:
  - Result: Version bookkeeping for the startup log
  - error: Initialization, dirty state or apply failure
*/
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) (Result, error) {
	migrator, err := migrate.New("file://"+migrationsPath, pgx5DSN(dsn))
	if err != nil {
		return Result{}, fmt.Errorf("migration_init_failed: %w", err)
	}
	defer func() {
		sourceError, dbError := migrator.Close()
		if sourceError != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
		}
		if dbError != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", dbError))
		}
	}()

	migrator.Log = &migrateLogger{logger: logger}

	currentVersion, isDirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return Result{}, fmt.Errorf("migration_version_failed: %w", err)
	}
	if isDirty {
		return Result{From: currentVersion}, fmt.Errorf("migration_dirty_state: version %d requires manual intervention", currentVersion)
	}

	result := Result{From: currentVersion, To: currentVersion}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date", slog.Uint64("version", uint64(currentVersion)))
			return result, nil
		}
		return result, fmt.Errorf("migration_up_failed: %w", err)
	}

	newVersion, _, _ := migrator.Version()
	result.To = newVersion
	result.Applied = true

	logger.Info("migration_successful",
		slog.Uint64("from_version", uint64(result.From)),
		slog.Uint64("to_version", uint64(result.To)),
	)

	return result, nil
}

// pgx5DSN rewrites libpq URL schemes to the pgx5:// scheme golang-migrate registers.
func pgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger *slog.Logger
}

func (adapter *migrateLogger) Printf(format string, args ...any) {
	adapter.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (adapter *migrateLogger) Verbose() bool { return false }
