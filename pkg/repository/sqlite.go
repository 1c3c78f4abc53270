package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	_ "modernc.org/sqlite"
)

// sqliteRepo implements Repository on a local SQLite database
type sqliteRepo struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens (or creates) the database at path and bootstraps the
// slots table.
func NewSQLite(path string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create store directory", goerr.V("path", path))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open store", goerr.V("path", path))
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to initialize store schema")
	}

	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to read slot", goerr.V("key", key))
	}
	return value, true, nil
}

func (r *sqliteRepo) Put(ctx context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO slots (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	); err != nil {
		return goerr.Wrap(err, "failed to write slot", goerr.V("key", key))
	}
	return nil
}

func (r *sqliteRepo) Close() error {
	return r.db.Close()
}
