package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/siteforge/demoimport/internal/site"
)

// Forms returns the payment forms gateway view of the store.
func (s *Store) Forms() site.Forms {
	return &formsGateway{store: s}
}

type formsGateway struct {
	store *Store
}

// Active reports whether the forms subsystem is installed on this site.
func (g *formsGateway) Active(ctx context.Context) bool {
	return g.store.features.Forms
}

// Ops builds the dispatch table. The store supports every (layout, type)
// combination; deployments without a given combination simply ship a gateway
// with a smaller table.
func (g *formsGateway) Ops() map[site.FormKey]site.FormOps {
	layouts := []string{"inline", "checkout"}
	types := []string{"payment", "subscription", "donation"}

	ops := make(map[site.FormKey]site.FormOps, len(layouts)*len(types))
	for _, layout := range layouts {
		for _, formType := range types {
			layout, formType := layout, formType
			ops[site.FormKey{Layout: layout, Type: formType}] = site.FormOps{
				FindByName: func(ctx context.Context, name string) (bool, error) {
					return g.store.formExists(ctx, layout, formType, name)
				},
				Insert: func(ctx context.Context, name string, data map[string]any) error {
					return g.store.insertForm(ctx, layout, formType, name, data)
				},
			}
		}
	}
	return ops
}

func (s *Store) formExists(ctx context.Context, layout, formType, name string) (bool, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT id FROM payment_forms WHERE layout = ? AND type = ? AND name = ?`,
		layout, formType, name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) insertForm(ctx context.Context, layout, formType, name string, data map[string]any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO payment_forms (layout, type, name, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		layout, formType, name, string(encoded), time.Now().Unix(),
	)
	return err
}

// FormData returns the stored data payload of one form. Used by tests and
// the admin inspection path.
func (s *Store) FormData(ctx context.Context, layout, formType, name string) (map[string]any, error) {
	var raw string
	err := s.DB.QueryRowContext(ctx,
		`SELECT data FROM payment_forms WHERE layout = ? AND type = ? AND name = ?`,
		layout, formType, name,
	).Scan(&raw)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// CountForms returns the number of stored forms for one identity triple.
func (s *Store) CountForms(ctx context.Context, layout, formType, name string) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payment_forms WHERE layout = ? AND type = ? AND name = ?`,
		layout, formType, name,
	).Scan(&n)
	return n, err
}
