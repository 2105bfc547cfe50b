package main

import (
	"github.com/siteforge/demoimport/internal/config"
	"github.com/siteforge/demoimport/internal/events"
	"github.com/siteforge/demoimport/internal/importer"
	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/pipeline"
	"github.com/siteforge/demoimport/internal/recorder"
	"github.com/siteforge/demoimport/internal/site"
	"github.com/siteforge/demoimport/internal/source"
	"github.com/siteforge/demoimport/internal/stage"
	"github.com/siteforge/demoimport/internal/store"
)

// app holds the wired application: configuration, store handle, and the
// assembled pipeline.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *store.Store
	pipeline *pipeline.Pipeline
}

// buildApp loads configuration and wires the pipeline with its production
// dependencies: SQLite-backed site state and recorder sink, the exec
// importer delegate, and the event publisher.
func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{
		Level:         cfg.Logging.Level,
		HumanReadable: cfg.Logging.Format == "console",
	})
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Database, cfg.Features)
	if err != nil {
		return nil, err
	}

	delegate, err := importer.NewExecDelegate(cfg.Importer.Command, log)
	if err != nil {
		st.Close()
		return nil, err
	}

	pub := events.NewPublisher(log)
	rec := recorder.NewService(st, pub, log)
	resolver := source.NewResolver(nil, cfg.UploadsDir, cfg.Catalog, cfg.SiteURL, log)

	var cache site.BuilderCache
	if cfg.BuilderCacheDir != "" {
		cache = &site.DirBuilderCache{Dir: cfg.BuilderCacheDir}
	}
	invalidator := pipeline.NewInvalidator(cache, st.Catalog(), log)

	stages := []stage.Stage{
		stage.NewFrontPage(st, st, rec, log),
		stage.NewShopPages(st.Shop(), st, st, rec, log),
		stage.NewPaymentForms(st.Forms(), rec, log),
		stage.NewCourseSettings(st.Courses(), log),
	}

	return &app{
		cfg:      cfg,
		log:      log,
		store:    st,
		pipeline: pipeline.New(resolver, delegate, invalidator, stages, pub, log),
	}, nil
}

// close releases the app's resources.
func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
}
