package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartapi/internal/db"
)

// txRunner is the part of a pgx or database/sql transaction that runInTx drives.
type txRunner struct {
	commit   func() error
	rollback func() error
	// returned by rollback once the transaction has already ended
	done error
}

// runInTx calls fn and commits; any error from fn or the commit rolls back.
func runInTx[T any](tx txRunner, fn func() (T, error)) (_ T, txErr error) {
	var zero T

	defer func() {
		if txErr == nil {
			return
		}
		if err := tx.rollback(); err != nil && !errors.Is(err, tx.done) {
			txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", err))
		}
	}()

	result, err := fn()
	if err != nil {
		return zero, err
	}

	if err := tx.commit(); err != nil {
		return zero, fmt.Errorf("tx.Commit: %w", err)
	}

	return result, nil
}

// withTx runs fn on queries bound to a new transaction. A nil pool means q is already bound to a caller-owned one.
func withTx[T any](ctx context.Context, pool *pgxpool.Pool, q *db.Queries, fn func(q *db.Queries) (T, error)) (T, error) {
	if pool == nil {
		return fn(q)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("pool.Begin: %w", err)
	}

	return runInTx(txRunner{
		commit:   func() error { return tx.Commit(ctx) },
		rollback: func() error { return tx.Rollback(ctx) },
		done:     pgx.ErrTxClosed,
	}, func() (T, error) {
		return fn(q.WithTx(tx))
	})
}

func withSQLTx[T any](ctx context.Context, sqlDB *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("db.BeginTx: %w", err)
	}

	return runInTx(txRunner{
		commit:   tx.Commit,
		rollback: tx.Rollback,
		done:     sql.ErrTxDone,
	}, func() (T, error) {
		return fn(tx)
	})
}
