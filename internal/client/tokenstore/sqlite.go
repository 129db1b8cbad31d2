package tokenstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/familyorganizer/internal/client/migrations"
	"github.com/dmitrijs2005/familyorganizer/internal/client/repositories/metadata"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	keyToken   = "auth_token"
	keySavedAt = "auth_token_saved_at"
)

// RunMigrations applies the embedded goose migrations to db. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// SQLiteStore keeps the token in the local SQLite metadata table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open token db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate token db: %w", err)
	}

	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) Read(ctx context.Context) (string, bool, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, keyToken)
	if err != nil {
		return "", false, fmt.Errorf("read token: %w", err)
	}
	if len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}

// Write persists token together with the time it was saved. An empty token
// removes both rows.
func (s *SQLiteStore) Write(ctx context.Context, token string) error {
	err := metadata.Update(ctx, s.db, func(ctx context.Context, repo metadata.Repository) error {
		if token == "" {
			return repo.Delete(ctx, keyToken, keySavedAt)
		}

		if err := repo.Set(ctx, keyToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, keySavedAt, []byte(s.now().UTC().Format(time.RFC3339)))
	})
	if err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// SavedAt returns when the current token was written, if one is stored.
func (s *SQLiteStore) SavedAt(ctx context.Context) (time.Time, bool, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, keySavedAt)
	if err != nil {
		return time.Time{}, false, err
	}
	if len(v) == 0 {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, string(v))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse saved_at: %w", err)
	}
	return t, true, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
