// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a helper to run functions inside a transaction and the per-subject lock
// that serializes read-then-write sequences for one chat.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    // use tx instead of db
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// LockSubject takes a PostgreSQL transaction-scoped advisory lock keyed by
// the chat id. It is released on commit or rollback.
func LockSubject(ctx context.Context, tx DBTX, chatID int64) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, chatID); err != nil {
		return fmt.Errorf("lock error: %w", err)
	}
	return nil
}

// WithSubject runs fn in a transaction that holds the subject lock, so that
// the dispatcher and an inbound reply for the same chat never interleave.
func WithSubject(ctx context.Context, db *sql.DB, chatID int64, fn func(ctx context.Context, tx DBTX) error) error {
	return WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		if err := LockSubject(ctx, tx, chatID); err != nil {
			return err
		}
		return fn(ctx, tx)
	})
}
