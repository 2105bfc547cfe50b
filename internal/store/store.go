// Package store provides the SQLite persistence layer for site state: the
// key/value options store, imported pages, payment forms, the product
// catalog, course settings, and the active state recorder sink.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/siteforge/demoimport/internal/config"
)

// Store is the site state database handle. Its accessor methods hand out the
// narrow gateway views the pipeline and stages consume.
type Store struct {
	DB       *sql.DB
	features config.FeatureConfig
}

// Open opens (or creates) the SQLite database at path, applies pragmas and
// the schema, and records which subsystems the deployment has installed.
func Open(path string, features config.FeatureConfig) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{DB: db, features: features}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
