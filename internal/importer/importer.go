// Package importer defines the content importer delegate contract. The
// pipeline treats the importer as opaque: given a readable file path it
// either succeeds or returns a structured failure.
package importer

import (
	"context"
	"os"

	apperrors "github.com/siteforge/demoimport/pkg/errors"
)

// Delegate performs the actual structured-content import.
type Delegate interface {
	Import(ctx context.Context, path, editorHint string) error
}

// Func adapts a plain function to the Delegate interface.
type Func func(ctx context.Context, path, editorHint string) error

// Import calls the wrapped function.
func (f Func) Import(ctx context.Context, path, editorHint string) error {
	return f(ctx, path, editorHint)
}

// CheckReadable gates every delegate behind the same missing-file semantics:
// an empty, missing, or unreadable path is a ContentFileError.
func CheckReadable(path string) error {
	if path == "" {
		return apperrors.NewContentFileError(path, nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewContentFileError(path, err)
	}
	return f.Close()
}
