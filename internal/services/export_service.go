package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"espresso/internal/config"
	"espresso/internal/exporter"
	"espresso/internal/views"
	api "espresso/pkg/contracts/api/v1"
)

// Export formats accepted by export requests and the CLI.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

// View names accepted by export requests and the CLI.
const (
	ViewFeedTotals     = "feed-totals"
	ViewLatency        = "latency"
	ViewPercentFeeding = "percent-feeding"
)

// Filenames of a CSV-format export.
const (
	feedsFilename          = "feeds.csv"
	fliesFilename          = "flies.csv"
	feedTotalsFilename     = "feed_totals.csv"
	latencyFilename        = "latency.csv"
	percentFeedingFilename = "percent_feeding.csv"
)

// ExportResult reports what an export wrote.
type ExportResult struct {
	Format string   `json:"format"`
	Files  []string `json:"files"`
}

// ExportService writes the current experiment's tables, and any requested
// views, to CSV files or an Excel workbook.
type ExportService struct {
	experiments *ExperimentService
	calc        *views.Calculator
	tables      *exporter.TableExporter
	viewsOut    *exporter.ViewExporter
	excel       *exporter.ExcelWriter
	logger      *slog.Logger
}

// NewExportService creates the export service. A nil logger falls back to
// slog.Default.
func NewExportService(experiments *ExperimentService, calc *views.Calculator, paths *config.Paths, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("ExportService initialized")

	return &ExportService{
		experiments: experiments,
		calc:        calc,
		tables:      exporter.NewTableExporter(paths),
		viewsOut:    exporter.NewViewExporter(paths),
		excel:       exporter.NewExcelWriter(paths),
		logger:      logger,
	}
}

// Export snapshots the current experiment, computes the requested views
// and writes everything in the requested format. For the CSV format
// req.Path is a directory receiving one file per table and view; for the
// Excel format it is the workbook filename. Views listed in the request
// use their default grouping and window.
func (xs *ExportService) Export(ctx context.Context, req api.ExportRequest) (*ExportResult, error) {
	feeds, flies, labels, err := xs.experiments.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	wb := exporter.Workbook{Feeds: feeds, Flies: flies, Labels: labels}
	for _, view := range req.Views {
		switch view {
		case ViewFeedTotals:
			wb.FeedTotals, err = xs.calc.FeedTotals(ctx, feeds)
		case ViewLatency:
			wb.Latency, err = xs.calc.Latency(ctx, feeds)
		case ViewPercentFeeding:
			wb.PercentFeeding, err = xs.calc.PercentFeeding(ctx, flies, feeds, views.PercentFeedingOptions{})
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
		}
		if err != nil {
			return nil, err
		}
	}

	var result *ExportResult
	switch req.Format {
	case FormatCSV:
		result, err = xs.exportCSV(req.Path, req.BOM, wb)
	case FormatExcel:
		result, err = xs.exportExcel(req.Path, wb)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExportFormat, req.Format)
	}
	if err != nil {
		return nil, err
	}

	xs.logger.InfoContext(ctx, "export completed",
		slog.String("format", result.Format),
		slog.Int("file_count", len(result.Files)))
	return result, nil
}

func (xs *ExportService) exportCSV(dir string, bom bool, wb exporter.Workbook) (*ExportResult, error) {
	files := make([]string, 0, 5)

	feedsPath := filepath.Join(dir, feedsFilename)
	if err := xs.tables.ExportFeeds(wb.Feeds, wb.Labels, feedsPath, bom); err != nil {
		return nil, err
	}
	files = append(files, feedsPath)

	fliesPath := filepath.Join(dir, fliesFilename)
	if err := xs.tables.ExportFlies(wb.Flies, wb.Labels, fliesPath, bom); err != nil {
		return nil, err
	}
	files = append(files, fliesPath)

	if wb.FeedTotals != nil {
		path := filepath.Join(dir, feedTotalsFilename)
		if err := xs.viewsOut.ExportFeedTotals(wb.FeedTotals, path, bom); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	if wb.Latency != nil {
		path := filepath.Join(dir, latencyFilename)
		if err := xs.viewsOut.ExportLatency(wb.Latency, path, bom); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	if wb.PercentFeeding != nil {
		path := filepath.Join(dir, percentFeedingFilename)
		if err := xs.viewsOut.ExportPercentFeeding(wb.PercentFeeding, path, bom); err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	return &ExportResult{Format: FormatCSV, Files: files}, nil
}

func (xs *ExportService) exportExcel(path string, wb exporter.Workbook) (*ExportResult, error) {
	if err := xs.excel.WriteWorkbook(path, wb); err != nil {
		return nil, err
	}
	return &ExportResult{Format: FormatExcel, Files: []string{path}}, nil
}
