package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/siteforge/demoimport/internal/site"
)

// Courses returns the course platform gateway view of the store.
func (s *Store) Courses() site.Courses {
	return &coursesGateway{store: s}
}

type coursesGateway struct {
	store *Store
}

// Installed reports whether the course platform is present on this site.
func (g *coursesGateway) Installed(ctx context.Context) bool {
	return g.store.features.Courses
}

// SetSetting writes one course platform setting. Values are JSON-encoded so
// nested setting structures survive the round trip.
func (g *coursesGateway) SetSetting(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = g.store.DB.ExecContext(ctx,
		`INSERT INTO course_settings (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		key, string(encoded),
	)
	return err
}

// CourseSetting reads one course platform setting back. Used by tests.
func (s *Store) CourseSetting(ctx context.Context, key string) (any, bool, error) {
	var raw string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM course_settings WHERE name = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false, err
	}
	return value, true, nil
}
