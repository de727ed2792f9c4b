package repository

import (
	"context"
	"database/sql"
)

// DBTX is the statement surface shared by *sql.DB and *sql.Tx, so lookups
// can run either on the pool or inside an open transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Pool is a connection pool that can also start transactions.  *sql.DB
// satisfies it.
type Pool interface {
	DBTX
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// withTx runs fn inside a transaction checked out from pool.  The
// transaction is rolled back unless fn returns nil and the commit succeeds;
// either way its connection goes back to the pool before withTx returns.
func withTx(ctx context.Context, pool Pool, fn func(tx *sql.Tx) error) error {
	tx, err := pool.BeginTx(ctx, nil)
	if err != nil {
		return persist("begin tx", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return persist("commit tx", err)
	}
	committed = true
	return nil
}

// nullableID converts an optional id into a driver value.
func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

// nullIfEmpty stores empty optional text as NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
