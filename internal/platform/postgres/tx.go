// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// # Query Surface

// DBTX is the query surface shared by [pgxpool.Pool] and [pgx.Tx].
// Repositories depend on it so the same code runs inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Database is a [DBTX] that can open transactions.
type Database interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type txKey struct{}

// Conn returns the transaction bound to ctx, or fallback when there is none.
func Conn(ctx context.Context, fallback DBTX) DBTX {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return fallback
}

// # Transactions

// TxManager runs units of work inside a single database transaction.
type TxManager struct {
	db Database
}

// NewTxManager wraps a pool (or any [Database]) in a transaction manager.
func NewTxManager(db Database) *TxManager {
	return &TxManager{db: db}
}

/*
WithinTx executes fn inside one transaction bound to the context it receives.

A transaction already present on ctx is reused, so nested calls join the outer
unit of work. The transaction commits only if fn returns nil. An error, a panic
or a cancelled request rolls everything back.
*/
func (manager *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := manager.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_tx_begin_failed: %w", err)
	}

	// Rollback must still reach the server when the request context is gone.
	rollbackCtx := context.WithoutCancel(ctx)

	defer func() {
		if recovered := recover(); recovered != nil {
			_ = tx.Rollback(rollbackCtx)
			panic(recovered)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rollbackErr := tx.Rollback(rollbackCtx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("postgres_tx_rollback_failed: %w", rollbackErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_tx_commit_failed: %w", err)
	}

	return nil
}
