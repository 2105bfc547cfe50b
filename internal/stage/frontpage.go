package stage

import (
	"context"
	"strconv"

	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/model"
	"github.com/siteforge/demoimport/internal/recorder"
	"github.com/siteforge/demoimport/internal/site"
	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

// Settings keys the front page stage owns.
const (
	OptionShowOnFront  = "show_on_front"
	OptionPageOnFront  = "page_on_front"
	OptionPageForPosts = "page_for_posts"
)

// frontPagePayload is the stage's slice of the request.
type frontPagePayload struct {
	FrontPage *string `json:"front_page"`
	BlogPage  *string `json:"blog_page"`
}

// FrontPage points the site's front and posts pages at imported pages,
// switching the site to static front page mode.
type FrontPage struct {
	options site.ConfigStore
	pages   site.PageFinder
	rec     recorder.Recorder
	log     *logger.Logger
}

// NewFrontPage creates the front page stage.
func NewFrontPage(options site.ConfigStore, pages site.PageFinder, rec recorder.Recorder, log *logger.Logger) *FrontPage {
	return &FrontPage{options: options, pages: pages, rec: rec, log: log.WithComponent(model.StageFrontPage)}
}

func (s *FrontPage) Name() string { return model.StageFrontPage }

// Apply resolves the demo-scoped front_page and blog_page slugs and rewires
// the front page settings to the matching pages. Per-field misses are silent
// skips; the stage yields a front page id only when front_page matched.
func (s *FrontPage) Apply(ctx context.Context, req *model.ImportRequest) model.StageResult {
	if !present(req.FrontPage) {
		return model.Skipped(s.Name(), "no front page payload")
	}

	var payload frontPagePayload
	if err := decodePayload(req.FrontPage, &payload); err != nil {
		return model.Skipped(s.Name(), "front page payload is not structured")
	}

	if emptyStr(payload.FrontPage) && emptyStr(payload.BlogPage) {
		s.log.Info("no front page to set up")
		return model.Skipped(s.Name(), "no front page to set up")
	}

	// Resolve everything read-only first so the snapshot covers exactly the
	// settings about to change, then record, then mutate.
	snap := recorder.NewSnapshot(recorder.NamespaceFrontPage)
	s.snapshotOption(ctx, snap, OptionShowOnFront)

	var frontID, blogID *int64
	if !emptyStr(payload.FrontPage) {
		id, found, err := s.pages.FindBySlug(ctx, demoScopedSlug(*payload.FrontPage, req.DemoSlug))
		if err != nil {
			return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), "front page lookup failed", err))
		}
		if found {
			frontID = &id
			s.snapshotOption(ctx, snap, OptionPageOnFront)
		}
	}
	if !emptyStr(payload.BlogPage) {
		id, found, err := s.pages.FindBySlug(ctx, demoScopedSlug(*payload.BlogPage, req.DemoSlug))
		if err != nil {
			return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), "blog page lookup failed", err))
		}
		if found {
			blogID = &id
			s.snapshotOption(ctx, snap, OptionPageForPosts)
		}
	}

	if err := s.rec.Record(ctx, *snap); err != nil {
		return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), "recording previous state failed", err))
	}

	if err := s.options.Set(ctx, OptionShowOnFront, "page"); err != nil {
		return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), "setting "+OptionShowOnFront+" failed", err))
	}
	if frontID != nil {
		if err := s.options.Set(ctx, OptionPageOnFront, strconv.FormatInt(*frontID, 10)); err != nil {
			return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), "setting "+OptionPageOnFront+" failed", err))
		}
	}
	if blogID != nil {
		if err := s.options.Set(ctx, OptionPageForPosts, strconv.FormatInt(*blogID, 10)); err != nil {
			return model.Failed(s.Name(), apperrors.NewStageError(s.Name(), "setting "+OptionPageForPosts+" failed", err))
		}
	}

	result := model.Applied(s.Name(), "front page configured")
	if frontID != nil {
		s.log.WithFields(map[string]any{"page_id": *frontID}).Info("front page set up")
		result.FrontPageID = frontID
	} else {
		s.log.Info("no front page id")
	}
	return result
}

// snapshotOption stores the option's current value in the snapshot, nil when
// the option does not exist yet.
func (s *FrontPage) snapshotOption(ctx context.Context, snap *recorder.Snapshot, key string) {
	value, found, err := s.options.Get(ctx, key)
	if err != nil || !found {
		snap.Put(key, nil)
		return
	}
	snap.Put(key, value)
}

func emptyStr(s *string) bool {
	return s == nil || *s == ""
}
