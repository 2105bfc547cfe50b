package stage

import (
	"context"
	"sort"
	"strconv"

	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/model"
	"github.com/siteforge/demoimport/internal/recorder"
	"github.com/siteforge/demoimport/internal/site"
	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

// ShopPages points e-commerce page options (shop, cart, checkout, ...) at
// imported pages resolved by demo-scoped slug.
type ShopPages struct {
	shop    site.Shop
	options site.ConfigStore
	pages   site.PageFinder
	rec     recorder.Recorder
	log     *logger.Logger
}

// NewShopPages creates the shop pages stage.
func NewShopPages(shop site.Shop, options site.ConfigStore, pages site.PageFinder, rec recorder.Recorder, log *logger.Logger) *ShopPages {
	return &ShopPages{shop: shop, options: options, pages: pages, rec: rec, log: log.WithComponent(model.StageShopPages)}
}

func (s *ShopPages) Name() string { return model.StageShopPages }

// Apply maps each (option key, slug) pair to an imported page id. Unmatched
// slugs are skipped per pair; the stage records one snapshot covering every
// option it overwrites, before the first write.
func (s *ShopPages) Apply(ctx context.Context, req *model.ImportRequest) model.StageResult {
	if !present(req.ShopPages) {
		return model.Skipped(s.Name(), "no shop pages payload")
	}

	s.log.Progress("setting up shop pages")

	if !s.shop.Active(ctx) {
		s.log.Info("no e-commerce subsystem")
		return model.Skipped(s.Name(), "no e-commerce subsystem")
	}

	var pages map[string]string
	if err := decodePayload(req.ShopPages, &pages); err != nil {
		return model.Skipped(s.Name(), "shop pages payload is not structured")
	}

	keys := make([]string, 0, len(pages))
	for key := range pages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	snap := recorder.NewSnapshot(recorder.NamespaceShopPage)
	resolved := make(map[string]int64)
	for _, optionKey := range keys {
		slug := pages[optionKey]
		if slug == "" {
			continue
		}
		id, found, err := s.pages.FindBySlug(ctx, demoScopedSlug(slug, req.DemoSlug))
		if err != nil {
			return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), "page lookup failed", err))
		}
		if !found {
			continue
		}
		resolved[optionKey] = id
		s.snapshotOption(ctx, snap, optionKey)
	}

	if len(resolved) == 0 {
		return model.Skipped(s.Name(), "no matching shop pages")
	}

	if err := s.rec.Record(ctx, *snap); err != nil {
		return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), "recording previous state failed", err))
	}

	for _, optionKey := range keys {
		id, ok := resolved[optionKey]
		if !ok {
			continue
		}
		if err := s.options.Set(ctx, optionKey, strconv.FormatInt(id, 10)); err != nil {
			return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), "setting "+optionKey+" failed", err))
		}
	}

	s.log.Info("shop pages set up")
	return model.Applied(s.Name(), "shop pages configured")
}

func (s *ShopPages) snapshotOption(ctx context.Context, snap *recorder.Snapshot, key string) {
	value, found, err := s.options.Get(ctx, key)
	if err != nil || !found {
		snap.Put(key, nil)
		return
	}
	snap.Put(key, value)
}
