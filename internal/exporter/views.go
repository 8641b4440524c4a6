package exporter

import (
	"log/slog"

	"espresso/internal/config"
	"espresso/pkg/contracts/domain"
)

// ViewExporter writes the grouped analysis views as CSV files. Column
// names match the csv tags on the view row types, so exported views read
// back into the same shapes.
type ViewExporter struct {
	csvWriter *CSVWriter
}

// NewViewExporter creates a new view exporter
func NewViewExporter(paths *config.Paths) *ViewExporter {
	return &ViewExporter{csvWriter: NewCSVWriter(paths)}
}

// ExportFeedTotals writes the per-fly feed totals view to outputPath.
func (v *ViewExporter) ExportFeedTotals(rows []domain.FeedTotalsRow, outputPath string, bom bool) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Temperature,
			row.Genotype,
			row.FoodChoice,
			row.FlyID,
			formatFloat(row.TotalFeedCountPerFly),
			formatFloat(row.TotalFeedVolumePerFly),
			formatFloat(row.TotalTimeFeedingPerFly),
			formatFloat(row.FeedSpeedPerFly),
		})
	}

	if err := v.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   v.feedTotalsHeaders(),
		Records:   records,
		BOMPrefix: bom,
	}); err != nil {
		return err
	}

	slog.Info("feed totals view exported",
		slog.String("path", outputPath),
		slog.Int("rows", len(rows)))
	return nil
}

// ExportLatency writes the latency-to-first-feed view to outputPath.
func (v *ViewExporter) ExportLatency(rows []domain.LatencyRow, outputPath string, bom bool) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Temperature,
			row.Genotype,
			row.FoodChoice,
			row.FlyID,
			formatFloat(row.LatencyToFirstFeed),
		})
	}

	if err := v.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   v.latencyHeaders(),
		Records:   records,
		BOMPrefix: bom,
	}); err != nil {
		return err
	}

	slog.Info("latency view exported",
		slog.String("path", outputPath),
		slog.Int("rows", len(rows)))
	return nil
}

// ExportPercentFeeding writes the percent-feeding summary to outputPath.
func (v *ViewExporter) ExportPercentFeeding(rows []domain.PercentFeedingRow, outputPath string, bom bool) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Group,
			formatInt(row.FliesTotal),
			formatInt(row.FliesFeeding),
			formatFloat(row.PercentFeeding),
			formatFloat(row.CILower),
			formatFloat(row.CIUpper),
		})
	}

	if err := v.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   v.percentFeedingHeaders(),
		Records:   records,
		BOMPrefix: bom,
	}); err != nil {
		return err
	}

	slog.Info("percent feeding view exported",
		slog.String("path", outputPath),
		slog.Int("rows", len(rows)))
	return nil
}

// feedTotalsHeaders returns the CSV headers for the feed totals view
func (v *ViewExporter) feedTotalsHeaders() []string {
	return []string{
		"Temperature", "Genotype", "FoodChoice", "FlyID",
		"TotalFeedCountPerFly", "TotalFeedVolumePerFly_µl",
		"TotalTimeFeedingPerFly_min", "FeedSpeedPerFly_nl/s",
	}
}

// latencyHeaders returns the CSV headers for the latency view
func (v *ViewExporter) latencyHeaders() []string {
	return []string{
		"Temperature", "Genotype", "FoodChoice", "FlyID",
		"LatencyToFirstFeed_min",
	}
}

// percentFeedingHeaders returns the CSV headers for the percent-feeding view
func (v *ViewExporter) percentFeedingHeaders() []string {
	return []string{
		"Group", "FliesTotal", "FliesFeeding",
		"PercentFeeding", "CILower", "CIUpper",
	}
}
