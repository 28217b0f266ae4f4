// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// and a helper that runs functions inside a transaction.
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

// InTx runs fn with a transactional handle derived from q.
//
// When q is a *sql.DB a new transaction is started and committed if fn
// returns nil, or rolled back on error or panic (panics are rethrown).
// When q is already a *sql.Tx, fn joins it and the outermost InTx decides
// the outcome.
//
//	err := dbx.InTx(ctx, db, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "DELETE FROM metadata WHERE key = ?", k)
//	    return err
//	})
func InTx(ctx context.Context, q DBTX, fn func(ctx context.Context, tx DBTX) error) (err error) {
	var db *sql.DB
	switch v := q.(type) {
	case *sql.Tx:
		return fn(ctx, v)
	case *sql.DB:
		db = v
	default:
		return fmt.Errorf("cannot start a transaction on %T", q)
	}

	tx, beginErr := db.BeginTx(ctx, nil)
	if beginErr != nil {
		return fmt.Errorf("failed to begin transaction: %w", beginErr)
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

	return fn(ctx, tx)
}
