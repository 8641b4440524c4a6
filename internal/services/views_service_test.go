package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"espresso/internal/views"
)

func newTestViewsService(t *testing.T) (*ViewsService, *ExperimentService) {
	t.Helper()

	experiments, _ := newTestExperimentService(t)
	calc := views.NewCalculator(nil, views.CalculatorConfig{})
	return NewViewsService(experiments, calc, nil), experiments
}

func TestViewsServiceBeforeLoad(t *testing.T) {
	svc, _ := newTestViewsService(t)
	ctx := context.Background()

	_, err := svc.FeedTotals(ctx)
	assert.ErrorIs(t, err, ErrNoExperiment)

	_, err = svc.Latency(ctx)
	assert.ErrorIs(t, err, ErrNoExperiment)

	_, err = svc.PercentFeeding(ctx, views.PercentFeedingOptions{})
	assert.ErrorIs(t, err, ErrNoExperiment)
}

func TestViewsServiceFeedTotals(t *testing.T) {
	svc, experiments := newTestViewsService(t)
	loadSessionA(t, experiments)

	rows, err := svc.FeedTotals(context.Background())
	require.NoError(t, err)

	// One row per (fly, configured tube): two flies, one tube each.
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "w1118", row.Genotype)
		assert.Equal(t, "5% sucrose", row.FoodChoice)
		assert.Equal(t, 1.0, row.TotalFeedCountPerFly)
	}
}

func TestViewsServiceLatency(t *testing.T) {
	svc, experiments := newTestViewsService(t)
	loadSessionA(t, experiments)

	rows, err := svc.Latency(context.Background())
	require.NoError(t, err)

	// Both flies fed once; latency is their first feed in minutes.
	require.Len(t, rows, 2)
	latencies := map[string]float64{}
	for _, row := range rows {
		latencies[row.FlyID] = row.LatencyToFirstFeed
	}
	assert.Equal(t, 1.0, latencies[tokenA+"_Fly1"])
	assert.Equal(t, 1.5, latencies[tokenA+"_Fly2"])
}

func TestViewsServicePercentFeeding(t *testing.T) {
	svc, experiments := newTestViewsService(t)
	loadSessionA(t, experiments)

	rows, err := svc.PercentFeeding(context.Background(), views.PercentFeedingOptions{})
	require.NoError(t, err)

	require.Len(t, rows, 1, "one genotype group")
	row := rows[0]
	assert.Equal(t, "w1118", row.Group)
	assert.Equal(t, 2, row.FliesTotal)
	assert.Equal(t, 2, row.FliesFeeding)
	assert.Equal(t, 100.0, row.PercentFeeding)
	assert.LessOrEqual(t, row.CIUpper, 100.0, "interval clamped to the percent scale")
	assert.GreaterOrEqual(t, row.CILower, 0.0)
}
