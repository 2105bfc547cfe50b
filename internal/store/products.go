package store

import (
	"context"
	"time"

	"github.com/siteforge/demoimport/internal/site"
)

// Shop returns the e-commerce gateway view of the store.
func (s *Store) Shop() site.Shop {
	return &shopGateway{store: s}
}

type shopGateway struct {
	store *Store
}

// Active reports whether the e-commerce subsystem is installed.
func (g *shopGateway) Active(ctx context.Context) bool {
	return g.store.features.Shop
}

// Catalog returns the product catalog view of the store.
func (s *Store) Catalog() site.ProductCatalog {
	return &catalogGateway{store: s}
}

type catalogGateway struct {
	store *Store
}

// Exists reports whether the product catalog subsystem is present.
func (g *catalogGateway) Exists(ctx context.Context) bool {
	return g.store.features.Shop
}

// ProductIDs lists every product id, unpaginated. The post-import rebuild is
// an O(n) pass over the whole catalog, accepted for correctness of the
// derived lookup fields.
func (g *catalogGateway) ProductIDs(ctx context.Context) ([]int64, error) {
	rows, err := g.store.DB.QueryContext(ctx, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Resave recomputes the derived lookup fields of one product from its raw
// imported columns.
func (g *catalogGateway) Resave(ctx context.Context, id int64) error {
	_, err := g.store.DB.ExecContext(ctx,
		`UPDATE products SET lookup_price_cents = price_cents, lookup_rebuilt_at = ? WHERE id = ?`,
		time.Now().Unix(), id,
	)
	return err
}

// InsertProduct creates a product row without lookup fields, mirroring what
// the raw content import produces. Used by tests and seeding.
func (s *Store) InsertProduct(ctx context.Context, name string, priceCents int64) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`INSERT INTO products (name, price_cents) VALUES (?, ?)`, name, priceCents,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
