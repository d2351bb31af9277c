// Package storage wires the local SQLite database used for offline
// metadata and the encrypted entry cache, applying embedded goose
// migrations on open.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/sparkleapp/sparkle-cli/internal/client/migrations"
	"github.com/sparkleapp/sparkle-cli/internal/client/repositories/entries"
	"github.com/sparkleapp/sparkle-cli/internal/client/repositories/metadata"
)

// Store bundles the open database handle with the repositories built
// on top of it.
type Store struct {
	DB       *sql.DB
	Metadata metadata.Repository
	Entries  entries.Repository
}

// RunMigrations applies all embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if necessary) the SQLite database at dsn,
// runs migrations and returns the ready-to-use repositories.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
		Entries:  entries.NewSQLiteRepository(db),
	}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}
