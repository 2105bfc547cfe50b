// Package site defines the narrow capabilities the setup stages consume.
// Stages never reach into ambient global state: every read or write of site
// configuration goes through one of these interfaces, which keeps the stages
// deterministic under an in-memory fake store.
package site

import "context"

// ConfigStore is the key/value settings store shared by the whole site.
// Get reports whether the key existed; absent keys are not an error.
type ConfigStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// PageFinder resolves an imported page by its (demo-scoped) slug.
type PageFinder interface {
	FindBySlug(ctx context.Context, slug string) (int64, bool, error)
}

// Shop reports whether the e-commerce subsystem is active. Shop page options
// themselves are written through the ConfigStore.
type Shop interface {
	Active(ctx context.Context) bool
}

// FormKey identifies one payment form flavor. Every form table lookup and
// insert is keyed by layout and type.
type FormKey struct {
	Layout string
	Type   string
}

// FormOps is one dispatch table entry: an existence check and an insert for
// a single (layout, type) combination. Either func may be nil when the
// subsystem does not support that combination; the stage treats a nil Insert
// as a stage-local error, not a silent no-op.
type FormOps struct {
	FindByName func(ctx context.Context, name string) (bool, error)
	Insert     func(ctx context.Context, name string, data map[string]any) error
}

// Forms is the payment forms subsystem: an activation check plus the
// explicit dispatch table keyed by (layout, type).
type Forms interface {
	Active(ctx context.Context) bool
	Ops() map[FormKey]FormOps
}

// Courses is the course platform's settings surface.
type Courses interface {
	Installed(ctx context.Context) bool
	SetSetting(ctx context.Context, key string, value any) error
}

// BuilderCache is the page-builder cache manager. Ready reports whether the
// manager is present and initialized; Clear drops its compiled assets.
type BuilderCache interface {
	Ready(ctx context.Context) bool
	Clear(ctx context.Context) error
}

// ProductCatalog exposes the product re-save surface used after import to
// recompute derived lookup fields the raw import does not populate.
type ProductCatalog interface {
	Exists(ctx context.Context) bool
	ProductIDs(ctx context.Context) ([]int64, error)
	Resave(ctx context.Context, id int64) error
}
