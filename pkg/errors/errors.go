package errors

import (
	"fmt"
)

// Response tokens returned to the caller on fatal paths. Clients key their
// messaging off these values, so they are part of the wire contract.
const (
	TokenPermission     = "demo_import_permission_err_1"
	TokenContentMissing = "demo_import_content_err_1"
	TokenSourceMissing  = "demo_import_source_err_2"
	TokenContentFile    = "demo_import_content_err_3"
)

// ValidationError rejects a request before any side effect occurs. Token is
// the fixed response token for the failed check.
type ValidationError struct {
	Token   string
	Field   string
	Message string
}

// NewValidationError constructs a ValidationError.
func NewValidationError(token, field, message string) error {
	return &ValidationError{Token: token, Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// FetchError reports a failed remote content download. It is logged by the
// resolver and never aborts a run on its own; the missing staging file
// surfaces later as a ContentFileError.
type FetchError struct {
	URL string
	Err error
}

// NewFetchError constructs a FetchError for the given URL.
func NewFetchError(url string, err error) error {
	return &FetchError{URL: url, Err: err}
}

func (e *FetchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("remote fetch failed: %s: %v", e.URL, e.Err)
}

// Unwrap exposes the transport error.
func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ContentFileError means the resolved content path is missing or unreadable
// at import time. Fatal: the importer never runs without a readable file.
type ContentFileError struct {
	Path string
	Err  error
}

// NewContentFileError constructs a ContentFileError.
func NewContentFileError(path string, err error) error {
	return &ContentFileError{Path: path, Err: err}
}

func (e *ContentFileError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("no content file at %s", e.Path)
}

// Unwrap exposes the underlying filesystem error.
func (e *ContentFileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ImporterError is a structured failure from the content importer delegate.
// Fatal: no setup stage runs after an importer failure.
type ImporterError struct {
	Code    string
	Message string
	Err     error
}

// NewImporterError constructs an ImporterError.
func NewImporterError(code, message string, err error) error {
	return &ImporterError{Code: code, Message: message, Err: err}
}

func (e *ImporterError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("importer error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("importer error: %s", e.Message)
}

// Unwrap exposes the root error.
func (e *ImporterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StageError is a failure inside a single setup stage. Stage errors are
// isolated: they mark that stage's outcome failed and never abort siblings.
type StageError struct {
	Stage   string
	Message string
	Err     error
}

// NewStageError constructs a StageError for the named stage.
func NewStageError(stage, message string, err error) error {
	return &StageError{Stage: stage, Message: message, Err: err}
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stage != "" {
		return fmt.Sprintf("stage error [%s]: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("stage error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
