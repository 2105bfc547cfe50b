package model

const (
	// StatusApplied marks a stage that mutated site state.
	StatusApplied = "applied"
	// StatusSkipped marks a stage that found nothing to do.
	StatusSkipped = "skipped"
	// StatusFailed marks a stage that errored. Stage failures never abort
	// sibling stages.
	StatusFailed = "failed"
)

// Stage identifiers, in pipeline execution order.
const (
	StageFrontPage      = "front_page"
	StageShopPages      = "shop_pages"
	StagePaymentForms   = "payment_forms"
	StageCourseSettings = "course_settings"
)

// StageResult captures the outcome of one setup stage.
type StageResult struct {
	Stage   string `json:"stage"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   error  `json:"-"`

	// FrontPageID is set only by the front page stage, and only when the
	// front_page slug resolved to a real page.
	FrontPageID *int64 `json:"-"`
}

// Applied builds an applied outcome for the named stage.
func Applied(stage, message string) StageResult {
	return StageResult{Stage: stage, Status: StatusApplied, Message: message}
}

// Skipped builds a skipped outcome with the reason it was skipped.
func Skipped(stage, reason string) StageResult {
	return StageResult{Stage: stage, Status: StatusSkipped, Message: reason}
}

// Failed builds a failed outcome carrying the stage error.
func Failed(stage string, err error) StageResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return StageResult{Stage: stage, Status: StatusFailed, Message: msg, Error: err}
}

// ImportResult is the aggregate outcome of a pipeline run. Data carries the
// fixed error token (or structured importer error) on fatal paths and is
// empty otherwise. Stages is empty when the run failed before stage setup.
type ImportResult struct {
	Success     bool          `json:"success"`
	FrontPageID *int64        `json:"frontpage_id,omitempty"`
	Data        any           `json:"data,omitempty"`
	Stages      []StageResult `json:"stages,omitempty"`
}

// Failure builds a failed result carrying the response token or error object.
func Failure(data any) ImportResult {
	return ImportResult{Success: false, Data: data}
}
