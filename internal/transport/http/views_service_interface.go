package http

import (
	"context"

	"espresso/internal/views"
	"espresso/pkg/contracts/domain"
)

// ViewsServiceInterface defines the grouped-view reads for the views handler
type ViewsServiceInterface interface {
	FeedTotals(ctx context.Context) ([]domain.FeedTotalsRow, error)
	Latency(ctx context.Context) ([]domain.LatencyRow, error)
	PercentFeeding(ctx context.Context, opts views.PercentFeedingOptions) ([]domain.PercentFeedingRow, error)
}
