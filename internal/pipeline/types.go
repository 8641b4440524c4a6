package pipeline

import (
	"time"

	"espresso/internal/experiment"
)

// Load step identifiers. Step IDs are stable wire values: the broadcaster
// keys snapshot entries by them and the frontend matches on them.
const (
	StepIDValidate = "validate"
	StepIDRead     = "read"
	StepIDAssemble = "assemble"
)

// Human-readable load step names.
const (
	StepNameValidate = "Folder Validation"
	StepNameRead     = "Source Reading"
	StepNameAssemble = "Table Assembly"
)

// WebSocket event types, in the frontend's event:verb format.
const (
	EventTypeLoadSnapshot = "load:snapshot"
)

// Default per-step timeouts.
const (
	DefaultStepTimeout     = 10 * time.Minute
	DefaultValidateTimeout = 1 * time.Minute
	DefaultReadTimeout     = 10 * time.Minute
	DefaultAssembleTimeout = 5 * time.Minute
)

// LoadRequest describes one load operation: which session folder to ingest
// and, for folders recorded without FeedStats files, the experiment duration.
type LoadRequest struct {
	// ID identifies the operation. Left empty, the manager assigns one.
	ID string `json:"id,omitempty"`

	// Folder is the session folder holding the CSV triplets.
	Folder string `json:"folder"`

	// DurationSeconds overrides the experiment duration when no FeedStats
	// file exists. Ignored when any triplet carries measured minutes.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// LoadResponse reports the outcome of a load operation.
type LoadResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatus       `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`

	// Experiment is the loaded aggregate, nil unless Status is completed.
	// It rides along for the service layer and never serializes.
	Experiment *experiment.Experiment `json:"-"`
}
