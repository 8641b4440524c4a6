package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"espresso/internal/experiment"
	"espresso/internal/exporter"
	"espresso/internal/views"
	"espresso/pkg/contracts/domain"
)

func newExportCommand() *cobra.Command {
	var (
		format    string
		outDir    string
		withViews bool
		bom       bool
	)

	cmd := &cobra.Command{
		Use:   "export <bundle>",
		Short: "Export bundle tables to CSV files or an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := openBundle(args[0])
			if err != nil {
				return err
			}

			stem := bundleStem(args[0])
			switch format {
			case "csv":
				return exportCSV(cmd, exp, stem, outDir, withViews, bom)
			case "excel":
				return exportExcel(cmd, exp, stem, outDir, withViews)
			default:
				return fmt.Errorf("unsupported format %q (use csv or excel)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv or excel")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory for exported files")
	cmd.Flags().BoolVar(&withViews, "views", false, "Also export the feed totals, latency and percent feeding views")
	cmd.Flags().BoolVar(&bom, "bom", false, "Prefix CSV files with a UTF-8 byte order mark")

	return cmd
}

func exportCSV(cmd *cobra.Command, exp *experiment.Experiment, stem, outDir string, withViews, bom bool) error {
	tables := exporter.NewTableExporter(nil)
	labels := exp.AddedLabels()

	feedsPath := filepath.Join(outDir, stem+"_feeds.csv")
	if err := tables.ExportFeeds(exp.Feeds(), labels, feedsPath, bom); err != nil {
		return fmt.Errorf("export feeds: %w", err)
	}
	fliesPath := filepath.Join(outDir, stem+"_flies.csv")
	if err := tables.ExportFlies(exp.Flies(), labels, fliesPath, bom); err != nil {
		return fmt.Errorf("export flies: %w", err)
	}
	written := []string{feedsPath, fliesPath}

	if withViews {
		totals, latency, percent, err := computeViews(cmd.Context(), exp)
		if err != nil {
			return err
		}

		viewFiles := exporter.NewViewExporter(nil)
		totalsPath := filepath.Join(outDir, stem+"_feed_totals.csv")
		if err := viewFiles.ExportFeedTotals(totals, totalsPath, bom); err != nil {
			return fmt.Errorf("export feed totals: %w", err)
		}
		latencyPath := filepath.Join(outDir, stem+"_latency.csv")
		if err := viewFiles.ExportLatency(latency, latencyPath, bom); err != nil {
			return fmt.Errorf("export latency: %w", err)
		}
		percentPath := filepath.Join(outDir, stem+"_percent_feeding.csv")
		if err := viewFiles.ExportPercentFeeding(percent, percentPath, bom); err != nil {
			return fmt.Errorf("export percent feeding: %w", err)
		}
		written = append(written, totalsPath, latencyPath, percentPath)
	}

	for _, path := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
	}
	return nil
}

func exportExcel(cmd *cobra.Command, exp *experiment.Experiment, stem, outDir string, withViews bool) error {
	wb := exporter.Workbook{
		Feeds:  exp.Feeds(),
		Flies:  exp.Flies(),
		Labels: exp.AddedLabels(),
	}

	if withViews {
		totals, latency, percent, err := computeViews(cmd.Context(), exp)
		if err != nil {
			return err
		}
		wb.FeedTotals = totals
		wb.Latency = latency
		wb.PercentFeeding = percent
	}

	path := filepath.Join(outDir, stem+".xlsx")
	if err := exporter.NewExcelWriter(nil).WriteWorkbook(path, wb); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
	return nil
}

func computeViews(ctx context.Context, exp *experiment.Experiment) ([]domain.FeedTotalsRow, []domain.LatencyRow, []domain.PercentFeedingRow, error) {
	calc := views.NewCalculator(nil, views.CalculatorConfig{})

	totals, err := calc.FeedTotals(ctx, exp.Feeds())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compute feed totals: %w", err)
	}
	latency, err := calc.Latency(ctx, exp.Feeds())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compute latency: %w", err)
	}
	percent, err := calc.PercentFeeding(ctx, exp.Flies(), exp.Feeds(), views.PercentFeedingOptions{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compute percent feeding: %w", err)
	}
	return totals, latency, percent, nil
}
