package store

import (
	"context"
	"database/sql"
	"errors"
)

// Get returns the value for one option and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM options WHERE name = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts one option. Last writer wins; callers serialize import runs.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO options (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes one option. Used by the undo path when a snapshot records
// that the option did not previously exist.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM options WHERE name = ?`, key)
	return err
}

// FindBySlug resolves a page id by slug.
func (s *Store) FindBySlug(ctx context.Context, slug string) (int64, bool, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, `SELECT id FROM pages WHERE slug = ?`, slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// InsertPage creates a page row. The content importer populates pages; this
// is also used by tests and seeding.
func (s *Store) InsertPage(ctx context.Context, slug, title string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `INSERT INTO pages (slug, title) VALUES (?, ?)`, slug, title)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
