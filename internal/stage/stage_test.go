package stage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/siteforge/demoimport/internal/recorder"
	"github.com/siteforge/demoimport/internal/site"
)

// fakeOptions is an in-memory site.ConfigStore.
type fakeOptions struct {
	mu     sync.Mutex
	values map[string]string
	sets   []string
}

func newFakeOptions(values map[string]string) *fakeOptions {
	if values == nil {
		values = make(map[string]string)
	}
	return &fakeOptions{values: values}
}

func (f *fakeOptions) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	return value, ok, nil
}

func (f *fakeOptions) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	f.sets = append(f.sets, key)
	return nil
}

func (f *fakeOptions) value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	return value, ok
}

// fakePages resolves slugs from a fixed map.
type fakePages struct {
	pages map[string]int64
}

func (f *fakePages) FindBySlug(_ context.Context, slug string) (int64, bool, error) {
	id, ok := f.pages[slug]
	return id, ok, nil
}

type fakeShop struct {
	active bool
}

func (f *fakeShop) Active(context.Context) bool { return f.active }

// fakeForms is an in-memory site.Forms with a configurable dispatch table.
type fakeForms struct {
	active  bool
	mu      sync.Mutex
	rows    map[string]map[string]any
	missing map[site.FormKey]bool
}

func newFakeForms(active bool) *fakeForms {
	return &fakeForms{active: active, rows: make(map[string]map[string]any), missing: make(map[site.FormKey]bool)}
}

func (f *fakeForms) Active(context.Context) bool { return f.active }

func (f *fakeForms) Ops() map[site.FormKey]site.FormOps {
	ops := make(map[site.FormKey]site.FormOps)
	for _, layout := range []string{"inline", "checkout"} {
		for _, formType := range []string{"payment", "subscription", "donation"} {
			key := site.FormKey{Layout: layout, Type: formType}
			if f.missing[key] {
				continue
			}
			ops[key] = site.FormOps{
				FindByName: func(_ context.Context, name string) (bool, error) {
					f.mu.Lock()
					defer f.mu.Unlock()
					_, ok := f.rows[formRowKey(key, name)]
					return ok, nil
				},
				Insert: func(_ context.Context, name string, data map[string]any) error {
					f.mu.Lock()
					defer f.mu.Unlock()
					f.rows[formRowKey(key, name)] = data
					return nil
				},
			}
		}
	}
	return ops
}

func (f *fakeForms) row(key site.FormKey, name string) (map[string]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.rows[formRowKey(key, name)]
	return data, ok
}

func (f *fakeForms) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func formRowKey(key site.FormKey, name string) string {
	return fmt.Sprintf("%s/%s/%s", key.Layout, key.Type, name)
}

// fakeCourses records settings writes.
type fakeCourses struct {
	installed bool
	mu        sync.Mutex
	settings  map[string]any
}

func newFakeCourses(installed bool) *fakeCourses {
	return &fakeCourses{installed: installed, settings: make(map[string]any)}
}

func (f *fakeCourses) Installed(context.Context) bool { return f.installed }

func (f *fakeCourses) SetSetting(_ context.Context, key string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[key] = value
	return nil
}

// failingRecorder fails every record, for snapshot-before-mutation tests.
type failingRecorder struct{}

func (failingRecorder) Record(context.Context, recorder.Snapshot) error {
	return errors.New("sink unavailable")
}
