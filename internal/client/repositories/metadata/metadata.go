// Package metadata is a small key/value repository over the local SQLite
// "metadata" table. The client keeps its persisted session data here.
package metadata

import (
	"context"
	"database/sql"
)

// Repository stores opaque values by key. Get returns (nil, nil) when the key
// does not exist.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Querier is the part of database/sql the repository needs. Both *sql.DB and
// *sql.Tx satisfy it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Update runs fn against a repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise. A panic in
// fn rolls back and is rethrown.
func Update(ctx context.Context, db *sql.DB, fn func(ctx context.Context, repo Repository) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
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

	return fn(ctx, NewSQLiteRepository(tx))
}
