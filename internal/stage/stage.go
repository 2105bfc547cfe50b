// Package stage implements the setup stages that bring dependent subsystems
// in line with freshly imported demo content. Stages run after a successful
// content import, in fixed order, each independently optional and fault
// isolated: a failing stage marks its own outcome and never blocks siblings.
//
// Every stage follows the same shape: check the target subsystem is present,
// decode and validate its slice of the request payload, record the previous
// values it is about to overwrite, then mutate. Recording always precedes
// mutation so the undo path can reverse everything that was actually applied.
package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/siteforge/demoimport/internal/model"
)

// Stage is one post-import setup unit.
type Stage interface {
	// Name returns the stage identifier used in outcomes and logs.
	Name() string
	// Apply runs the stage against its slice of the request. It reports a
	// skip when the payload is absent or the subsystem is missing, and an
	// error outcome on failure; it never panics a run.
	Apply(ctx context.Context, req *model.ImportRequest) model.StageResult
}

// present reports whether a raw stage payload was supplied. A JSON null is
// treated the same as an absent key.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// decodePayload unmarshals a stage payload. A decode failure means the
// payload is not structured the way the stage expects, which is a skip.
func decodePayload(raw json.RawMessage, v any) error {
	return json.Unmarshal(raw, v)
}

// demoScopedSlug qualifies a page slug with the importing demo package's
// slug, so packages reusing generic slugs like "home" cannot collide.
func demoScopedSlug(slug, demoSlug string) string {
	return fmt.Sprintf("%s-%s", slug, demoSlug)
}
