package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	sqlRoster
}

type PostgresOptions struct {
	// MigrationsDir overrides the embedded migrations when set.
	MigrationsDir string
}

func NewPostgresStore(dsn string, opts PostgresOptions) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	migrations, err := migrationsFS(opts.MigrationsDir, "postgres")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(db, migrations, dollarBind); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{sqlRoster{db: db, bind: dollarBind}}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
