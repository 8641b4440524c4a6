// Package api contains the API contract definitions for the ESPRESSO
// analysis server. Version v1 represents the current stable API version.
package api

import (
	"espresso/pkg/contracts/domain"
)

// Experiment API requests

// LoadRequest asks the server to load a session folder of CSV triplets
// into the active experiment. Progress streams over the WebSocket while
// the load runs.
type LoadRequest struct {
	// Folder is the session directory holding the FeedLog/MetaData/
	// FeedStats triplets.
	Folder string `json:"folder" validate:"required"`

	// DurationSeconds overrides the experiment duration when the folder
	// carries no FeedStats files. Ignored when FeedStats are present.
	DurationSeconds float64 `json:"duration_seconds,omitempty" validate:"omitempty,gt=0"`
}

// LabelAttachRequest adds one label column to both experiment tables.
type LabelAttachRequest struct {
	Name string           `json:"name" validate:"required"`
	Spec domain.LabelSpec `json:"spec" validate:"required"`
}

// LabelRemoveRequest removes previously attached label columns. An empty
// Names list removes every attached label.
type LabelRemoveRequest struct {
	Names []string `json:"names,omitempty" validate:"omitempty,dive,required"`
}

// CombineRequest merges a second experiment, opened from a bundle on the
// server's filesystem, into the active one.
type CombineRequest struct {
	BundlePath string `json:"bundle_path" validate:"required"`
}

// SaveRequest persists the active experiment as a bundle.
type SaveRequest struct {
	Path string `json:"path" validate:"required"`
}

// OpenRequest replaces the active experiment with one opened from a
// bundle.
type OpenRequest struct {
	Path string `json:"path" validate:"required"`
}

// ExportRequest writes the experiment tables, and optionally view tables,
// to CSV files or an Excel workbook.
type ExportRequest struct {
	// Format selects the output: "csv" writes one file per table into a
	// directory, "excel" writes a single workbook.
	Format string `json:"format" validate:"required,oneof=csv excel"`

	// Path is the destination directory (csv) or workbook file (excel).
	Path string `json:"path" validate:"required"`

	// Views names the grouped views to export alongside the feed and fly
	// tables.
	Views []string `json:"views,omitempty" validate:"omitempty,dive,oneof=feed-totals latency percent-feeding"`

	// BOM prefixes CSV files with a UTF-8 byte-order mark so the µl and
	// nl/s column headers survive spreadsheet imports.
	BOM bool `json:"bom,omitempty"`
}

// Views API requests

// ViewParams carries the query parameters shared by the grouped view
// endpoints.
type ViewParams struct {
	// GroupBy overrides the default grouping columns
	// (Temperature, Genotype, FoodChoice, FlyID).
	GroupBy []string `json:"group_by,omitempty" query:"group_by"`
}

// PercentFeedingParams extends ViewParams with the percent-feeding time
// window and grouping column.
type PercentFeedingParams struct {
	// GroupColumn is the categorical column whose members are summarised,
	// one output row per member.
	GroupColumn string `json:"group_column,omitempty" query:"group_column"`

	// StartMin and EndMin bound the window, in minutes since experiment
	// start, inside which a feed counts. Zero values select the full
	// experiment duration.
	StartMin float64 `json:"start_min,omitempty" query:"start_min" validate:"omitempty,gte=0"`
	EndMin   float64 `json:"end_min,omitempty" query:"end_min" validate:"omitempty,gte=0,gtefield=StartMin"`
}

// Health API requests

// HealthCheckRequest selects how much detail the health endpoint returns.
type HealthCheckRequest struct {
	Verbose bool `json:"verbose" query:"verbose"`
}
