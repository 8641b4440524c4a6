package services

import (
	"context"
	"log/slog"

	"espresso/internal/views"
	"espresso/pkg/contracts/domain"
)

// ViewsService computes the grouped analysis views over the currently
// loaded experiment. It owns no state of its own; every call snapshots the
// aggregate through the experiment service and recomputes, so view rows
// always reflect the latest labels and combines.
type ViewsService struct {
	experiments *ExperimentService
	calc        *views.Calculator
	logger      *slog.Logger
}

// NewViewsService creates the views service. A nil logger falls back to
// slog.Default.
func NewViewsService(experiments *ExperimentService, calc *views.Calculator, logger *slog.Logger) *ViewsService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("ViewsService initialized")

	return &ViewsService{
		experiments: experiments,
		calc:        calc,
		logger:      logger,
	}
}

// FeedTotals returns the per-fly feed totals view.
func (vs *ViewsService) FeedTotals(ctx context.Context) ([]domain.FeedTotalsRow, error) {
	feeds, err := vs.experiments.Feeds(ctx)
	if err != nil {
		return nil, err
	}
	return vs.calc.FeedTotals(ctx, feeds)
}

// Latency returns the latency-to-first-feed view.
func (vs *ViewsService) Latency(ctx context.Context) ([]domain.LatencyRow, error) {
	feeds, err := vs.experiments.Feeds(ctx)
	if err != nil {
		return nil, err
	}
	return vs.calc.Latency(ctx, feeds)
}

// PercentFeeding returns the percent-feeding summary for the requested
// grouping column and time window. Zero options fall back to grouping by
// genotype over the first six hours.
func (vs *ViewsService) PercentFeeding(ctx context.Context, opts views.PercentFeedingOptions) ([]domain.PercentFeedingRow, error) {
	feeds, flies, _, err := vs.experiments.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return vs.calc.PercentFeeding(ctx, flies, feeds, opts)
}
