package exporter

import (
	"fmt"
	"log/slog"

	"espresso/internal/config"
	"espresso/pkg/contracts/domain"
)

// TableExporter writes the experiment's tables as CSV files laid out like
// the bundle tables: fixed schema columns, Tube1..TubeN for the widest
// tube configuration, then added labels in attachment order.
type TableExporter struct {
	csvWriter *CSVWriter
}

// NewTableExporter creates a new table exporter
func NewTableExporter(paths *config.Paths) *TableExporter {
	return &TableExporter{csvWriter: NewCSVWriter(paths)}
}

// ExportFeeds streams the merged feed table to outputPath. The feed table
// is the largest output by far, so rows go out one at a time.
func (t *TableExporter) ExportFeeds(feeds []domain.FeedEvent, labels []string, outputPath string, bom bool) error {
	headers := feedHeaders(feeds, labels)

	stream, err := t.csvWriter.CreateStreamWriter(outputPath, headers, bom)
	if err != nil {
		return err
	}

	record := make([]string, len(headers))
	for _, event := range feeds {
		for i, col := range headers {
			v, _ := event.Column(col)
			record[i] = domain.FormatColumnValue(v)
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return err
		}
	}
	if err := stream.Close(); err != nil {
		return err
	}

	slog.Info("feed table exported",
		slog.String("path", outputPath),
		slog.Int("rows", len(feeds)))
	return nil
}

// ExportFlies writes the fly table to outputPath.
func (t *TableExporter) ExportFlies(flies []domain.Fly, labels []string, outputPath string, bom bool) error {
	headers := flyHeaders(flies, labels)

	records := make([][]string, 0, len(flies))
	for _, fly := range flies {
		record := make([]string, len(headers))
		for i, col := range headers {
			v, _ := fly.Column(col)
			record[i] = domain.FormatColumnValue(v)
		}
		records = append(records, record)
	}

	if err := t.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: bom,
	}); err != nil {
		return err
	}

	slog.Info("fly table exported",
		slog.String("path", outputPath),
		slog.Int("rows", len(flies)))
	return nil
}

// feedHeaders builds the feed table's full column set.
func feedHeaders(feeds []domain.FeedEvent, labels []string) []string {
	maxTubes := 0
	for _, event := range feeds {
		if len(event.Tubes) > maxTubes {
			maxTubes = len(event.Tubes)
		}
	}
	return tableHeaders(domain.FeedColumns, maxTubes, labels)
}

// flyHeaders builds the fly table's full column set.
func flyHeaders(flies []domain.Fly, labels []string) []string {
	maxTubes := 0
	for _, fly := range flies {
		if len(fly.Tubes) > maxTubes {
			maxTubes = len(fly.Tubes)
		}
	}
	return tableHeaders(domain.FlyColumns, maxTubes, labels)
}

func tableHeaders(fixed []string, maxTubes int, labels []string) []string {
	headers := append([]string(nil), fixed...)
	for n := 1; n <= maxTubes; n++ {
		headers = append(headers, fmt.Sprintf("%s%d", domain.TubePrefix, n))
	}
	return append(headers, labels...)
}
