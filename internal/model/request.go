package model

import (
	"encoding/json"
)

// Source identifies where the content package comes from.
type Source string

const (
	// SourceRemote downloads the content package from a catalog URL.
	SourceRemote Source = "remote"
	// SourceLocal imports a file already present on disk.
	SourceLocal Source = "local"
)

// DefaultDemoSlug namespaces slug lookups when the request does not name a
// demo package, so multiple installable packages can coexist.
const DefaultDemoSlug = "neve"

// ImportRequest is the immutable input of one pipeline run. Stage payloads
// stay raw: each stage decodes its own slice and treats a malformed payload
// as a skip, never as a request-level failure.
type ImportRequest struct {
	ContentFile   string          `json:"contentFile"`
	Source        Source          `json:"source"`
	Editor        string          `json:"editor,omitempty"`
	DemoSlug      string          `json:"demoSlug,omitempty"`
	FrontPage     json.RawMessage `json:"frontPage,omitempty"`
	ShopPages     json.RawMessage `json:"shopPages,omitempty"`
	PaymentForms  json.RawMessage `json:"paymentForms,omitempty"`
	MasteriyoData json.RawMessage `json:"masteriyoData,omitempty"`
}

// PaymentFormSpec describes one payment form to insert. Data keys matching
// *FormID are foreign-system identifiers and are stripped before insertion.
type PaymentFormSpec struct {
	Type   string         `json:"type"`
	Layout string         `json:"layout"`
	Name   string         `json:"name"`
	Data   map[string]any `json:"data"`
}
