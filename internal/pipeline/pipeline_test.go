package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siteforge/demoimport/internal/events"
	"github.com/siteforge/demoimport/internal/importer"
	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/model"
	"github.com/siteforge/demoimport/internal/recorder"
	"github.com/siteforge/demoimport/internal/stage"
	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

// fakeResolver returns a fixed path and optionally stages a file there.
type fakeResolver struct {
	path    string
	write   bool
	err     error
	calls   int
	content string
}

func (f *fakeResolver) Resolve(_ context.Context, src model.Source, _ string) (string, error) {
	f.calls++
	if f.write {
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return f.path, err
		}
	}
	return f.path, f.err
}

// fakeDelegate records import calls.
type fakeDelegate struct {
	err   error
	calls int
	path  string
}

func (f *fakeDelegate) Import(_ context.Context, path, _ string) error {
	f.calls++
	f.path = path
	return f.err
}

// stubStage returns a canned result, optionally panicking.
type stubStage struct {
	name   string
	result model.StageResult
	panics bool
	calls  int
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Apply(context.Context, *model.ImportRequest) model.StageResult {
	s.calls++
	if s.panics {
		panic("boom")
	}
	return s.result
}

func newTestPipeline(resolver Resolver, delegate importer.Delegate, stages []stage.Stage) (*Pipeline, *events.Publisher) {
	log := logger.NewNop()
	pub := events.NewPublisher(log)
	inv := NewInvalidator(nil, nil, log)
	return New(resolver, delegate, inv, stages, pub, log), pub
}

func stagedFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "demo-import-content.xml")
}

func TestRun_MissingContentFileFailsBeforeAnyIO(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{}
	delegate := &fakeDelegate{}
	p, _ := newTestPipeline(resolver, delegate, nil)

	result := p.Run(context.Background(), model.ImportRequest{Source: model.SourceLocal})

	require.False(t, result.Success)
	require.Equal(t, apperrors.TokenContentMissing, result.Data)
	require.Zero(t, resolver.calls)
	require.Zero(t, delegate.calls)
}

func TestRun_MissingSourceFailsBeforeAnyIO(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{}
	delegate := &fakeDelegate{}
	p, _ := newTestPipeline(resolver, delegate, nil)

	result := p.Run(context.Background(), model.ImportRequest{ContentFile: "/tmp/demo.xml"})

	require.False(t, result.Success)
	require.Equal(t, apperrors.TokenSourceMissing, result.Data)
	require.Zero(t, resolver.calls)
	require.Zero(t, delegate.calls)
}

func TestRun_UnreadablePathFailsWithContentFileToken(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{path: filepath.Join(t.TempDir(), "missing.xml")}
	delegate := &fakeDelegate{}
	p, _ := newTestPipeline(resolver, delegate, nil)

	result := p.Run(context.Background(), model.ImportRequest{ContentFile: "/tmp/demo.xml", Source: model.SourceLocal})

	require.False(t, result.Success)
	payload, ok := result.Data.(map[string]string)
	require.True(t, ok)
	require.Equal(t, apperrors.TokenContentFile, payload["code"])
	require.Zero(t, delegate.calls, "delegate must not run without a readable file")
}

func TestRun_ImporterFailureAbortsStagesAndCleansStaging(t *testing.T) {
	t.Parallel()

	path := stagedFile(t)
	resolver := &fakeResolver{path: path, write: true, content: "<xml/>"}
	delegate := &fakeDelegate{err: apperrors.NewImporterError("parse_failed", "malformed content", nil)}
	st := &stubStage{name: model.StageFrontPage, result: model.Applied(model.StageFrontPage, "")}
	p, _ := newTestPipeline(resolver, delegate, []stage.Stage{st})

	result := p.Run(context.Background(), model.ImportRequest{ContentFile: "http://x/demo.xml", Source: model.SourceRemote})

	require.False(t, result.Success)
	require.Empty(t, result.Stages, "no stage outcome after importer failure")
	require.Zero(t, st.calls)

	payload, ok := result.Data.(map[string]string)
	require.True(t, ok)
	require.Equal(t, "parse_failed", payload["code"])
	require.Equal(t, "malformed content", payload["message"])

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "staging file must be deleted after a failed import")
}

func TestRun_RemoteSuccessDeletesStagingAndReturnsFrontPageID(t *testing.T) {
	t.Parallel()

	path := stagedFile(t)
	resolver := &fakeResolver{path: path, write: true, content: "<xml/>"}
	delegate := &fakeDelegate{}
	id := int64(11)
	front := model.Applied(model.StageFrontPage, "front page configured")
	front.FrontPageID = &id
	st := &stubStage{name: model.StageFrontPage, result: front}
	p, _ := newTestPipeline(resolver, delegate, []stage.Stage{st})

	result := p.Run(context.Background(), model.ImportRequest{
		ContentFile: "http://x/demo.xml",
		Source:      model.SourceRemote,
		DemoSlug:    "acme",
		FrontPage:   json.RawMessage(`{"front_page":"home"}`),
	})

	require.True(t, result.Success)
	require.NotNil(t, result.FrontPageID)
	require.Equal(t, int64(11), *result.FrontPageID)
	require.Equal(t, path, delegate.path, "importer must receive the staged path")

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "staging file must be deleted after a successful import")
}

func TestRun_LocalFileIsNeverDeleted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "local.xml")
	require.NoError(t, os.WriteFile(path, []byte("<xml/>"), 0o644))
	resolver := &fakeResolver{path: path}
	p, _ := newTestPipeline(resolver, &fakeDelegate{}, nil)

	result := p.Run(context.Background(), model.ImportRequest{ContentFile: path, Source: model.SourceLocal})

	require.True(t, result.Success)
	_, err := os.Stat(path)
	require.NoError(t, err, "pre-existing local files survive the run")
}

func TestRun_FetchErrorIsNotFatalWhenFileStaged(t *testing.T) {
	t.Parallel()

	path := stagedFile(t)
	resolver := &fakeResolver{path: path, write: true, content: "<xml/>", err: apperrors.NewFetchError("http://x", errors.New("timeout"))}
	delegate := &fakeDelegate{}
	p, _ := newTestPipeline(resolver, delegate, nil)

	result := p.Run(context.Background(), model.ImportRequest{ContentFile: "http://x/demo.xml", Source: model.SourceRemote})

	require.True(t, result.Success, "fetch errors propagate through the file check, not directly")
	require.Equal(t, 1, delegate.calls)
}

func TestRun_StageFaultIsolation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "local.xml")
	require.NoError(t, os.WriteFile(path, []byte("<xml/>"), 0o644))

	panicking := &stubStage{name: model.StageFrontPage, panics: true}
	next := &stubStage{name: model.StageShopPages, result: model.Applied(model.StageShopPages, "")}
	p, _ := newTestPipeline(&fakeResolver{path: path}, &fakeDelegate{}, []stage.Stage{panicking, next})

	result := p.Run(context.Background(), model.ImportRequest{ContentFile: path, Source: model.SourceLocal})

	require.True(t, result.Success)
	require.Len(t, result.Stages, 2)
	require.Equal(t, model.StatusFailed, result.Stages[0].Status)
	require.Equal(t, model.StatusApplied, result.Stages[1].Status)
	require.Equal(t, 1, next.calls, "a failing stage must not block its siblings")
}

func TestRun_PublishesCheckpointsInOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "local.xml")
	require.NoError(t, os.WriteFile(path, []byte("<xml/>"), 0o644))

	st := &stubStage{name: model.StageFrontPage, result: model.Skipped(model.StageFrontPage, "no front page payload")}
	p, pub := newTestPipeline(&fakeResolver{path: path}, &fakeDelegate{}, []stage.Stage{st})

	var mu sync.Mutex
	var seen []string
	record := func(name string) events.Handler {
		return func(context.Context, events.Event) error {
			mu.Lock()
			seen = append(seen, name)
			mu.Unlock()
			return nil
		}
	}
	pub.Subscribe(events.EventBeforeImport, record(events.EventBeforeImport))
	pub.Subscribe(events.EventAfterImport, record(events.EventAfterImport))
	pub.Subscribe(events.EventFrontPageDone, record(events.EventFrontPageDone))

	result := p.Run(context.Background(), model.ImportRequest{ContentFile: path, Source: model.SourceLocal})

	require.True(t, result.Success)
	require.Equal(t, []string{events.EventBeforeImport, events.EventAfterImport, events.EventFrontPageDone}, seen)
}

func TestRun_InactiveShopSubsystemDegradesNotFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "local.xml")
	require.NoError(t, os.WriteFile(path, []byte("<xml/>"), 0o644))

	log := logger.NewNop()
	shopStage := stage.NewShopPages(inactiveShop{}, &mapOptions{values: map[string]string{}}, &mapPages{}, recorder.NewMemory(), log)
	p, _ := newTestPipeline(&fakeResolver{path: path}, &fakeDelegate{}, []stage.Stage{shopStage})

	result := p.Run(context.Background(), model.ImportRequest{
		ContentFile: path,
		Source:      model.SourceLocal,
		ShopPages:   json.RawMessage(`{"shop_page_id":"shop"}`),
	})

	require.True(t, result.Success, "a missing subsystem degrades the stage, not the run")
	require.Len(t, result.Stages, 1)
	require.Equal(t, model.StatusSkipped, result.Stages[0].Status)
	require.Equal(t, "no e-commerce subsystem", result.Stages[0].Message)
}

// replayOptions is the undo-side view of the round-trip property: applying
// recorded snapshots in reverse restores the original option values.
func TestRun_SnapshotsRoundTripRestoreConfiguration(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "local.xml")
	require.NoError(t, os.WriteFile(path, []byte("<xml/>"), 0o644))

	options := map[string]string{
		stage.OptionShowOnFront: "posts",
		stage.OptionPageOnFront: "3",
		"shop_page_id":          "4",
	}
	original := make(map[string]string, len(options))
	for k, v := range options {
		original[k] = v
	}

	optionsStore := &mapOptions{values: options}
	pages := &mapPages{pages: map[string]int64{"home-acme": 11, "shop-acme": 31}}
	rec := recorder.NewMemory()
	log := logger.NewNop()

	stages := []stage.Stage{
		stage.NewFrontPage(optionsStore, pages, rec, log),
		stage.NewShopPages(activeShop{}, optionsStore, pages, rec, log),
	}
	p, _ := newTestPipeline(&fakeResolver{path: path}, &fakeDelegate{}, stages)

	result := p.Run(context.Background(), model.ImportRequest{
		ContentFile: path,
		Source:      model.SourceLocal,
		DemoSlug:    "acme",
		FrontPage:   json.RawMessage(`{"front_page":"home"}`),
		ShopPages:   json.RawMessage(`{"shop_page_id":"shop"}`),
	})
	require.True(t, result.Success)
	require.NotEqual(t, original, optionsStore.values, "the run must have mutated configuration")

	// Replay in reverse: every mutated key has exactly one recorded prior
	// value; restoring them undoes the import's configuration changes.
	snaps := rec.Snapshots()
	for i := len(snaps) - 1; i >= 0; i-- {
		for key, prev := range snaps[i].Entries {
			if prev == nil {
				delete(optionsStore.values, key)
				continue
			}
			optionsStore.values[key] = prev.(string)
		}
	}
	require.Equal(t, original, optionsStore.values)
}

type mapOptions struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *mapOptions) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapOptions) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type mapPages struct {
	pages map[string]int64
}

func (m *mapPages) FindBySlug(_ context.Context, slug string) (int64, bool, error) {
	id, ok := m.pages[slug]
	return id, ok, nil
}

type activeShop struct{}

func (activeShop) Active(context.Context) bool { return true }

type inactiveShop struct{}

func (inactiveShop) Active(context.Context) bool { return false }
