package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/siteforge/demoimport/internal/recorder"
)

// Append durably stores one active state snapshot. Implements recorder.Sink.
func (s *Store) Append(ctx context.Context, snap recorder.Snapshot) error {
	entries, err := json.Marshal(snap.Entries)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO active_state (namespace, entries, created_at) VALUES (?, ?, ?)`,
		string(snap.Namespace), string(entries), time.Now().Unix(),
	)
	return err
}

// Snapshots returns every recorded snapshot for one namespace, oldest first.
// The undo path replays these in reverse.
func (s *Store) Snapshots(ctx context.Context, ns recorder.Namespace) ([]recorder.Snapshot, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT entries FROM active_state WHERE namespace = ? ORDER BY id`, string(ns),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []recorder.Snapshot
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var entries map[string]any
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return nil, err
		}
		snaps = append(snaps, recorder.Snapshot{Namespace: ns, Entries: entries})
	}
	return snaps, rows.Err()
}

var _ recorder.Sink = (*Store)(nil)
