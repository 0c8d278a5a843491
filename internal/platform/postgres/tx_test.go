// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lifequest/internal/platform/postgres"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

/*
TestWithinTx_Commit runs statements on the bound transaction and commits.
*/
func TestWithinTx_Commit(t *testing.T) {
	mock := newMock(t)
	manager := postgres.NewTxManager(mock)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users.session").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := manager.WithinTx(context.Background(), func(ctx context.Context) error {
		_, err := postgres.Conn(ctx, mock).Exec(ctx, "DELETE FROM users.session WHERE id = $1", "s-1")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestWithinTx_RollbackOnError returns the callback error untouched after rollback.
*/
func TestWithinTx_RollbackOnError(t *testing.T) {
	mock := newMock(t)
	manager := postgres.NewTxManager(mock)
	failure := errors.New("account_exists")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := manager.WithinTx(context.Background(), func(ctx context.Context) error {
		return failure
	})

	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestWithinTx_Nested joins the outer transaction instead of opening another one.
*/
func TestWithinTx_Nested(t *testing.T) {
	mock := newMock(t)
	manager := postgres.NewTxManager(mock)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := manager.WithinTx(context.Background(), func(outer context.Context) error {
		return manager.WithinTx(outer, func(inner context.Context) error {
			assert.Equal(t, postgres.Conn(outer, mock), postgres.Conn(inner, mock))
			return nil
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestWithinTx_Panic rolls back and re-raises.
*/
func TestWithinTx_Panic(t *testing.T) {
	mock := newMock(t)
	manager := postgres.NewTxManager(mock)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = manager.WithinTx(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestConn_FallsBackOutsideTx returns the pool when no transaction is bound.
*/
func TestConn_FallsBackOutsideTx(t *testing.T) {
	mock := newMock(t)
	assert.Equal(t, postgres.DBTX(mock), postgres.Conn(context.Background(), mock))
}
