package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	sqlRoster
}

type SQLiteOptions struct {
	// MigrationsDir overrides the embedded migrations when set.
	MigrationsDir string
}

func NewSQLiteStore(path string, opts SQLiteOptions) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer avoids SQLITE_BUSY during roster swaps
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	migrations, err := migrationsFS(opts.MigrationsDir, "sqlite")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(db, migrations, questionBind); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{sqlRoster{db: db, bind: questionBind}}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
