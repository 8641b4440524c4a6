package http

import (
	"context"

	"espresso/internal/pipeline"
	"espresso/internal/services"
	api "espresso/pkg/contracts/api/v1"
	"espresso/pkg/contracts/domain"
)

// ExperimentServiceInterface defines the experiment operations the handler
// delegates to. The concrete implementation is services.ExperimentService.
type ExperimentServiceInterface interface {
	Load(ctx context.Context, folder string, durationSeconds float64) (*pipeline.LoadResponse, error)
	Summary(ctx context.Context) (domain.ExperimentSummary, error)
	Feeds(ctx context.Context) ([]domain.FeedEvent, error)
	Flies(ctx context.Context) ([]domain.Fly, error)
	AttachLabel(ctx context.Context, name string, spec domain.LabelSpec) (domain.ExperimentSummary, error)
	RemoveLabels(ctx context.Context, names ...string) ([]string, error)
	Combine(ctx context.Context, path string) (domain.ExperimentSummary, error)
	Save(ctx context.Context, path string) error
	Open(ctx context.Context, path string) (domain.ExperimentSummary, error)
}

// ExportServiceInterface defines the table/view export operation.
type ExportServiceInterface interface {
	Export(ctx context.Context, req api.ExportRequest) (*services.ExportResult, error)
}
