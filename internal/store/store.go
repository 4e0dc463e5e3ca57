// Package store provides SQLite storage for map readings and settings.
package store

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Store represents a SQLite database connection for readings and settings.
type Store struct {
	db   *sql.DB
	path string
	log  zerolog.Logger
}

// New creates a new Store with the given database path.
// It opens the database connection and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; this also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:   db,
		path: dbPath,
		log:  log.With().Str("module", "store").Logger(),
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s.log.Debug().Str("path", dbPath).Msg("database ready")
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}
