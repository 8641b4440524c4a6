// Package views derives the grouped tabular views handed to the statistics
// collaborator: per-fly feed totals, latency to first feed and the
// percent-feeding summary. Views are pure computations over the merged feed
// and fly tables; they never mutate their inputs and they never drop rows the
// munging pipeline chose to keep.
package views

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	apperrors "espresso/internal/errors"
	"espresso/pkg/contracts/domain"
)

// DefaultWindowEndMinutes bounds the percent-feeding window when the caller
// does not supply one: the first six hours of the assay.
const DefaultWindowEndMinutes = 360

// Calculator is the Single Source of Truth for view generation. The HTTP
// handlers, the exporter and the CLI all obtain their grouped tables here so
// that the numbers agree across every output surface.
type Calculator struct {
	logger          *slog.Logger
	confidenceLevel float64
}

// CalculatorConfig holds configuration options for the Calculator.
type CalculatorConfig struct {
	ConfidenceLevel float64 // Width of the percent-feeding interval, e.g. 0.95
}

// PercentFeedingOptions selects the grouping column and time window for the
// percent-feeding view. Zero values fall back to grouping by genotype over
// the first DefaultWindowEndMinutes minutes of the assay.
type PercentFeedingOptions struct {
	// GroupBy names the fly-table column whose values partition the flies.
	// Added labels are valid grouping columns.
	GroupBy string

	// StartMinutes and EndMinutes bound the window, in minutes since
	// experiment start. A fly counts as feeding when it has at least one
	// valid feed event inside the closed window.
	StartMinutes float64
	EndMinutes   float64
}

// NewCalculator creates a view calculator. A nil logger falls back to
// slog.Default; a zero or out-of-range confidence level falls back to 95%.
func NewCalculator(logger *slog.Logger, config CalculatorConfig) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}

	if config.ConfidenceLevel <= 0 || config.ConfidenceLevel >= 1 {
		config.ConfidenceLevel = 0.95
	}

	return &Calculator{
		logger:          logger,
		confidenceLevel: config.ConfidenceLevel,
	}
}

// viewKey identifies one fly under one experimental condition. Flies in
// two-choice assays appear once per food choice.
type viewKey struct {
	temperature string
	genotype    string
	foodChoice  string
	flyID       string
}

func keyOf(e domain.FeedEvent) viewKey {
	return viewKey{
		temperature: e.Temperature,
		genotype:    e.Genotype,
		foodChoice:  e.FoodChoice,
		flyID:       e.FlyID,
	}
}

type totalsAccumulator struct {
	feedCount  float64
	volume     float64
	durationMs float64
}

// FeedTotals computes the per-fly totals view: for every combination of
// temperature, genotype, food choice and fly, the summed per-fly attributed
// feed count, volume (µl) and feeding time (minutes), plus the overall feed
// speed in nl/s. Unrecorded measurements contribute zero to the totals, so a
// fly that never fed keeps its row with zero totals and a NaN speed.
func (c *Calculator) FeedTotals(ctx context.Context, feeds []domain.FeedEvent) ([]domain.FeedTotalsRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "computing feed totals view",
		slog.Int("event_count", len(feeds)))

	groups := make(map[viewKey]*totalsAccumulator)
	for _, event := range feeds {
		key := keyOf(event)
		acc, ok := groups[key]
		if !ok {
			acc = &totalsAccumulator{}
			groups[key] = acc
		}
		acc.feedCount += zeroIfNaN(event.AvgFeedCountPerFly)
		acc.volume += zeroIfNaN(event.AvgFeedVolPerFly)
		acc.durationMs += zeroIfNaN(event.FeedDurationMs)
	}

	rows := make([]domain.FeedTotalsRow, 0, len(groups))
	for key, acc := range groups {
		rows = append(rows, domain.FeedTotalsRow{
			Temperature:            key.temperature,
			Genotype:               key.genotype,
			FoodChoice:             key.foodChoice,
			FlyID:                  key.flyID,
			TotalFeedCountPerFly:   acc.feedCount,
			TotalFeedVolumePerFly:  acc.volume,
			TotalTimeFeedingPerFly: acc.durationMs / 60000,
			// 0/0 yields NaN for flies that never fed.
			FeedSpeedPerFly: acc.volume / acc.durationMs * 1e6,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return lessTotalsRow(rows[i], rows[j])
	})

	c.logger.InfoContext(ctx, "feed totals view computed",
		slog.Int("row_count", len(rows)))

	return rows, nil
}

// Latency computes the latency-to-first-feed view: for every combination of
// temperature, genotype, food choice and fly, the time of the fly's earliest
// valid feed in minutes since experiment start. Flies with no valid feed have
// no latency row.
func (c *Calculator) Latency(ctx context.Context, feeds []domain.FeedEvent) ([]domain.LatencyRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "computing latency view",
		slog.Int("event_count", len(feeds)))

	earliest := make(map[viewKey]float64)
	for _, event := range feeds {
		if !event.Valid {
			continue
		}
		key := keyOf(event)
		first, ok := earliest[key]
		if !ok || event.RelativeTimeS < first {
			earliest[key] = event.RelativeTimeS
		}
	}

	rows := make([]domain.LatencyRow, 0, len(earliest))
	for key, seconds := range earliest {
		rows = append(rows, domain.LatencyRow{
			Temperature:        key.temperature,
			Genotype:           key.genotype,
			FoodChoice:         key.foodChoice,
			FlyID:              key.flyID,
			LatencyToFirstFeed: seconds / 60,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return lessLatencyRow(rows[i], rows[j])
	})

	c.logger.InfoContext(ctx, "latency view computed",
		slog.Int("row_count", len(rows)))

	return rows, nil
}

type percentAccumulator struct {
	total   int
	feeding int
}

// PercentFeeding computes, for every member of the grouping column, the share
// of flies with at least one valid feed inside the queried time window, with
// a confidence interval on the proportion (normal approximation, bounds
// clamped to [0,100]).
func (c *Calculator) PercentFeeding(ctx context.Context, flies []domain.Fly, feeds []domain.FeedEvent, opts PercentFeedingOptions) ([]domain.PercentFeedingRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	groupBy := opts.GroupBy
	if groupBy == "" {
		groupBy = domain.ColGenotype
	}
	endMinutes := opts.EndMinutes
	if endMinutes == 0 {
		endMinutes = DefaultWindowEndMinutes
	}
	if opts.StartMinutes < 0 {
		return nil, apperrors.NewUserInputError(
			fmt.Sprintf("time window start %g min must not be negative", opts.StartMinutes))
	}
	if endMinutes <= opts.StartMinutes {
		return nil, apperrors.NewUserInputError(
			fmt.Sprintf("time window end %g min must be after its start %g min", endMinutes, opts.StartMinutes))
	}

	c.logger.InfoContext(ctx, "computing percent-feeding view",
		slog.String("group_by", groupBy),
		slog.Float64("start_min", opts.StartMinutes),
		slog.Float64("end_min", endMinutes),
		slog.Int("fly_count", len(flies)))

	if len(flies) == 0 {
		return []domain.PercentFeedingRow{}, nil
	}
	if _, ok := flies[0].Column(groupBy); !ok {
		return nil, apperrors.NewUserInputError(
			fmt.Sprintf("%s is not a column of the fly table", groupBy))
	}

	startS := opts.StartMinutes * 60
	endS := endMinutes * 60
	fed := make(map[string]bool)
	for _, event := range feeds {
		if !event.Valid {
			continue
		}
		if event.RelativeTimeS < startS || event.RelativeTimeS > endS {
			continue
		}
		fed[event.FlyID] = true
	}

	groups := make(map[string]*percentAccumulator)
	for _, fly := range flies {
		value, ok := fly.Column(groupBy)
		if !ok {
			continue
		}
		group := domain.FormatColumnValue(value)
		acc, found := groups[group]
		if !found {
			acc = &percentAccumulator{}
			groups[group] = acc
		}
		acc.total++
		if fed[fly.FlyID] {
			acc.feeding++
		}
	}

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.5 + c.confidenceLevel/2)

	rows := make([]domain.PercentFeedingRow, 0, len(groups))
	for group, acc := range groups {
		proportion := float64(acc.feeding) / float64(acc.total)
		percent := proportion * 100
		halfWidth := z * math.Sqrt(proportion*(1-proportion)/float64(acc.total)) * 100
		rows = append(rows, domain.PercentFeedingRow{
			Group:          group,
			FliesTotal:     acc.total,
			FliesFeeding:   acc.feeding,
			PercentFeeding: percent,
			CILower:        clampPercent(percent - halfWidth),
			CIUpper:        clampPercent(percent + halfWidth),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Group < rows[j].Group
	})

	c.logger.InfoContext(ctx, "percent-feeding view computed",
		slog.Int("group_count", len(rows)))

	return rows, nil
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func lessTotalsRow(a, b domain.FeedTotalsRow) bool {
	if a.Temperature != b.Temperature {
		return a.Temperature < b.Temperature
	}
	if a.Genotype != b.Genotype {
		return a.Genotype < b.Genotype
	}
	if a.FoodChoice != b.FoodChoice {
		return a.FoodChoice < b.FoodChoice
	}
	return a.FlyID < b.FlyID
}

func lessLatencyRow(a, b domain.LatencyRow) bool {
	if a.Temperature != b.Temperature {
		return a.Temperature < b.Temperature
	}
	if a.Genotype != b.Genotype {
		return a.Genotype < b.Genotype
	}
	if a.FoodChoice != b.FoodChoice {
		return a.FoodChoice < b.FoodChoice
	}
	return a.FlyID < b.FlyID
}
