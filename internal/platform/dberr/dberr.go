// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/lifequest/internal/platform/apperr"
)

// IsNoRows reports whether err means the query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// UniqueViolation returns the violated constraint name when err is a
// unique-key failure (SQLSTATE 23505).
func UniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsForeignKeyViolation reports a reference to a missing row (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

/*
Wrap classifies a database error for the service layer.

  - pgx.ErrNoRows becomes a NotFound for the named resource.
  - A unique violation becomes a Conflict that still carries the original error.
  - Anything else is returned wrapped with the action name and is reported as
    an internal failure at the HTTP boundary.
*/
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	if IsNoRows(err) {
		return apperr.NotFound(resource).WithCause(err)
	}

	if constraint, ok := UniqueViolation(err); ok {
		return apperr.Conflict(resource + " already exists").WithCause(fmt.Errorf("%s: constraint %s: %w", action, constraint, err))
	}

	return fmt.Errorf("%s: %w", action, err)
}
