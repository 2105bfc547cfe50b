// Package pipeline implements the import orchestration pipeline: request
// validation, source resolution, delegation to the content importer, cache
// invalidation, and the fixed sequence of setup stages. The pipeline never
// rolls back partial success; it reports the furthest point reached and what
// the recorder captured along the way.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/siteforge/demoimport/internal/events"
	"github.com/siteforge/demoimport/internal/importer"
	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/model"
	"github.com/siteforge/demoimport/internal/stage"
	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

// Resolver maps a content source to a local file path.
type Resolver interface {
	Resolve(ctx context.Context, src model.Source, location string) (string, error)
}

// checkpoints maps each stage to the event fired after its slot, whether or
// not the stage ran.
var checkpoints = map[string]string{
	model.StageFrontPage:      events.EventFrontPageDone,
	model.StageShopPages:      events.EventShopPagesDone,
	model.StagePaymentForms:   events.EventPaymentFormsDone,
	model.StageCourseSettings: events.EventCourseSettingsDone,
}

// Pipeline coordinates one import run end to end. Concurrent runs are not
// safe; callers serialize imports per site.
type Pipeline struct {
	resolver    Resolver
	delegate    importer.Delegate
	invalidator *Invalidator
	stages      []stage.Stage
	events      *events.Publisher
	log         *logger.Logger
}

// New assembles a pipeline. The stages slice fixes execution order.
func New(resolver Resolver, delegate importer.Delegate, invalidator *Invalidator, stages []stage.Stage, pub *events.Publisher, log *logger.Logger) *Pipeline {
	return &Pipeline{
		resolver:    resolver,
		delegate:    delegate,
		invalidator: invalidator,
		stages:      stages,
		events:      pub,
		log:         log.WithComponent("pipeline"),
	}
}

// Run executes the pipeline for one request. Authorization happens upstream;
// Run assumes an authorized caller. Validation failures return before any
// network or file I/O; an importer failure aborts every setup stage; stage
// failures are isolated and aggregated.
func (p *Pipeline) Run(ctx context.Context, req model.ImportRequest) model.ImportResult {
	if req.ContentFile == "" {
		p.log.Warn("no content file to import")
		return model.Failure(apperrors.TokenContentMissing)
	}
	if req.Source == "" {
		p.log.Warn("no source defined for the import")
		return model.Failure(apperrors.TokenSourceMissing)
	}
	if req.DemoSlug == "" {
		req.DemoSlug = model.DefaultDemoSlug
	}

	// The run is long and write-heavy; a client disconnect must not abort it
	// partway through a mutation sequence.
	ctx = context.WithoutCancel(ctx)

	p.events.Publish(ctx, events.Event{Type: events.EventBeforeImport, Payload: req.ContentFile})

	path, err := p.resolver.Resolve(ctx, req.Source, req.ContentFile)
	if err != nil {
		// Best-effort fetch: a missing staging file hard-fails at the import
		// step instead.
		p.log.Error(err, "remote fetch failed")
	}

	importErr := p.importContent(ctx, path, req.Editor)

	if req.Source == model.SourceRemote {
		// The staging file is removed once the importer returns, success or
		// failure. Pre-existing local files are never touched.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.log.Error(err, "removing staged content file failed")
		}
	}

	if importErr != nil {
		p.log.Error(importErr, "content import failed")
		return model.Failure(errorPayload(importErr))
	}

	p.events.Publish(ctx, events.Event{Type: events.EventAfterImport, Payload: path})

	p.invalidator.Run(ctx)

	result := model.ImportResult{Success: true}
	for _, st := range p.stages {
		outcome := p.runStage(ctx, st, &req)
		result.Stages = append(result.Stages, outcome)
		if outcome.FrontPageID != nil {
			result.FrontPageID = outcome.FrontPageID
		}
		if checkpoint, ok := checkpoints[st.Name()]; ok {
			p.events.Publish(ctx, events.Event{Type: checkpoint, Payload: outcome})
		}
	}

	if result.FrontPageID == nil {
		p.log.Info("no front page id")
	}
	return result
}

// importContent gates the delegate behind the readability check so every
// delegate shares the same missing-file semantics.
func (p *Pipeline) importContent(ctx context.Context, path, editorHint string) error {
	if err := importer.CheckReadable(path); err != nil {
		return err
	}
	p.log.Progress("starting content import")
	return p.delegate.Import(ctx, path, editorHint)
}

// runStage isolates stage faults: a panicking stage yields a failed outcome
// and the pipeline moves on to the next stage.
func (p *Pipeline) runStage(ctx context.Context, st stage.Stage, req *model.ImportRequest) (outcome model.StageResult) {
	defer func() {
		if r := recover(); r != nil {
			err := apperrors.NewStageError(st.Name(), fmt.Sprintf("panic: %v", r), nil)
			p.log.Error(err, "stage panicked")
			outcome = model.Failed(st.Name(), err)
		}
	}()
	return st.Apply(ctx, req)
}

// errorPayload shapes a fatal import error for the response body.
func errorPayload(err error) any {
	switch e := err.(type) {
	case *apperrors.ContentFileError:
		return map[string]string{"code": apperrors.TokenContentFile, "message": e.Error()}
	case *apperrors.ImporterError:
		return map[string]string{"code": e.Code, "message": e.Message}
	default:
		return map[string]string{"code": "demo_import_failed", "message": err.Error()}
	}
}
