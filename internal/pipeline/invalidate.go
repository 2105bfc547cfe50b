package pipeline

import (
	"context"

	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/site"
)

// Invalidator runs the post-import cache and derived-data maintenance: clear
// the page builder cache and re-save every product so derived lookup fields
// the raw import does not populate get recomputed. Both operations are best
// effort; failures are logged and never fail the run.
type Invalidator struct {
	cache   site.BuilderCache
	catalog site.ProductCatalog
	log     *logger.Logger
}

// NewInvalidator creates an invalidator. Either dependency may be nil when
// the deployment lacks that subsystem.
func NewInvalidator(cache site.BuilderCache, catalog site.ProductCatalog, log *logger.Logger) *Invalidator {
	return &Invalidator{cache: cache, catalog: catalog, log: log.WithComponent("invalidate")}
}

// Run performs both maintenance passes.
func (inv *Invalidator) Run(ctx context.Context) {
	inv.clearBuilderCache(ctx)
	inv.rebuildProducts(ctx)
}

func (inv *Invalidator) clearBuilderCache(ctx context.Context) {
	if inv.cache == nil || !inv.cache.Ready(ctx) {
		return
	}
	inv.log.Progress("clearing page builder cache")
	if err := inv.cache.Clear(ctx); err != nil {
		inv.log.Error(err, "clearing page builder cache failed")
	}
}

// rebuildProducts re-saves the whole catalog, not just imported products.
// O(n) over the catalog, accepted for correctness of the lookup fields.
func (inv *Invalidator) rebuildProducts(ctx context.Context) {
	if inv.catalog == nil || !inv.catalog.Exists(ctx) {
		return
	}
	inv.log.Progress("rebuilding product lookup data")

	ids, err := inv.catalog.ProductIDs(ctx)
	if err != nil {
		inv.log.Error(err, "listing products failed")
		return
	}
	for _, id := range ids {
		if err := inv.catalog.Resave(ctx, id); err != nil {
			inv.log.WithFields(map[string]any{"product_id": id}).Error(err, "product re-save failed")
		}
	}
}
