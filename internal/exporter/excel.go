package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"espresso/internal/config"
	apperrors "espresso/internal/errors"
	"espresso/pkg/contracts/domain"
)

// Sheet names of an exported workbook.
const (
	feedsSheet          = "Feeds"
	fliesSheet          = "Flies"
	feedTotalsSheet     = "FeedTotals"
	latencySheet        = "Latency"
	percentFeedingSheet = "PercentFeeding"
)

// Workbook collects the tables and views bound for one Excel file. The two
// tables are always written; a nil view slice skips its sheet.
type Workbook struct {
	Feeds          []domain.FeedEvent
	Flies          []domain.Fly
	Labels         []string
	FeedTotals     []domain.FeedTotalsRow
	Latency        []domain.LatencyRow
	PercentFeeding []domain.PercentFeedingRow
}

// ExcelWriter writes experiment workbooks
type ExcelWriter struct {
	paths *config.Paths
}

// NewExcelWriter creates a new Excel writer instance
func NewExcelWriter(paths *config.Paths) *ExcelWriter {
	return &ExcelWriter{paths: paths}
}

// WriteWorkbook writes the workbook to path: a Feeds and a Flies sheet,
// plus one sheet per populated view. Numeric cells stay numeric so the
// collaborator can chart them directly; NaN becomes the empty cell.
func (w *ExcelWriter) WriteWorkbook(path string, wb Workbook) error {
	fullPath := path
	if !filepath.IsAbs(path) && w.paths != nil {
		fullPath = w.paths.GetExportPath(path)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("creating export directory %s", dir), err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), feedsSheet); err != nil {
		return apperrors.NewStorageError("naming the feeds sheet", err)
	}
	if err := w.writeFeedsSheet(f, wb.Feeds, wb.Labels); err != nil {
		return err
	}

	if err := w.writeFliesSheet(f, wb.Flies, wb.Labels); err != nil {
		return err
	}

	sheets := []string{feedsSheet, fliesSheet}
	if wb.FeedTotals != nil {
		if err := w.writeFeedTotalsSheet(f, wb.FeedTotals); err != nil {
			return err
		}
		sheets = append(sheets, feedTotalsSheet)
	}
	if wb.Latency != nil {
		if err := w.writeLatencySheet(f, wb.Latency); err != nil {
			return err
		}
		sheets = append(sheets, latencySheet)
	}
	if wb.PercentFeeding != nil {
		if err := w.writePercentFeedingSheet(f, wb.PercentFeeding); err != nil {
			return err
		}
		sheets = append(sheets, percentFeedingSheet)
	}

	if err := f.SaveAs(fullPath); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("saving workbook %s", fullPath), err)
	}

	slog.Info("workbook exported",
		slog.String("path", fullPath),
		slog.Any("sheets", sheets))
	return nil
}

func (w *ExcelWriter) writeFeedsSheet(f *excelize.File, feeds []domain.FeedEvent, labels []string) error {
	headers := feedHeaders(feeds, labels)
	rows := make([][]interface{}, 0, len(feeds))
	for _, event := range feeds {
		row := make([]interface{}, len(headers))
		for i, col := range headers {
			v, _ := event.Column(col)
			row[i] = sheetCell(v)
		}
		rows = append(rows, row)
	}
	return writeSheet(f, feedsSheet, headers, rows)
}

func (w *ExcelWriter) writeFliesSheet(f *excelize.File, flies []domain.Fly, labels []string) error {
	if _, err := f.NewSheet(fliesSheet); err != nil {
		return apperrors.NewStorageError("creating the flies sheet", err)
	}

	headers := flyHeaders(flies, labels)
	rows := make([][]interface{}, 0, len(flies))
	for _, fly := range flies {
		row := make([]interface{}, len(headers))
		for i, col := range headers {
			v, _ := fly.Column(col)
			row[i] = sheetCell(v)
		}
		rows = append(rows, row)
	}
	return writeSheet(f, fliesSheet, headers, rows)
}

func (w *ExcelWriter) writeFeedTotalsSheet(f *excelize.File, totals []domain.FeedTotalsRow) error {
	if _, err := f.NewSheet(feedTotalsSheet); err != nil {
		return apperrors.NewStorageError("creating the feed totals sheet", err)
	}

	headers := []string{
		"Temperature", "Genotype", "FoodChoice", "FlyID",
		"TotalFeedCountPerFly", "TotalFeedVolumePerFly_µl",
		"TotalTimeFeedingPerFly_min", "FeedSpeedPerFly_nl/s",
	}
	rows := make([][]interface{}, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, []interface{}{
			row.Temperature, row.Genotype, row.FoodChoice, row.FlyID,
			sheetCell(row.TotalFeedCountPerFly),
			sheetCell(row.TotalFeedVolumePerFly),
			sheetCell(row.TotalTimeFeedingPerFly),
			sheetCell(row.FeedSpeedPerFly),
		})
	}
	return writeSheet(f, feedTotalsSheet, headers, rows)
}

func (w *ExcelWriter) writeLatencySheet(f *excelize.File, latencies []domain.LatencyRow) error {
	if _, err := f.NewSheet(latencySheet); err != nil {
		return apperrors.NewStorageError("creating the latency sheet", err)
	}

	headers := []string{
		"Temperature", "Genotype", "FoodChoice", "FlyID",
		"LatencyToFirstFeed_min",
	}
	rows := make([][]interface{}, 0, len(latencies))
	for _, row := range latencies {
		rows = append(rows, []interface{}{
			row.Temperature, row.Genotype, row.FoodChoice, row.FlyID,
			sheetCell(row.LatencyToFirstFeed),
		})
	}
	return writeSheet(f, latencySheet, headers, rows)
}

func (w *ExcelWriter) writePercentFeedingSheet(f *excelize.File, percents []domain.PercentFeedingRow) error {
	if _, err := f.NewSheet(percentFeedingSheet); err != nil {
		return apperrors.NewStorageError("creating the percent feeding sheet", err)
	}

	headers := []string{
		"Group", "FliesTotal", "FliesFeeding",
		"PercentFeeding", "CILower", "CIUpper",
	}
	rows := make([][]interface{}, 0, len(percents))
	for _, row := range percents {
		rows = append(rows, []interface{}{
			row.Group, row.FliesTotal, row.FliesFeeding,
			sheetCell(row.PercentFeeding),
			sheetCell(row.CILower),
			sheetCell(row.CIUpper),
		})
	}
	return writeSheet(f, percentFeedingSheet, headers, rows)
}

// writeSheet writes a header row and the data rows to an existing sheet.
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := setRow(f, sheet, 1, headerRow); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return apperrors.NewStorageError(
			fmt.Sprintf("addressing row %d in sheet %s", row, sheet), err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return apperrors.NewStorageError(
			fmt.Sprintf("writing row %d to sheet %s", row, sheet), err)
	}
	return nil
}

// sheetCell maps a column value onto an Excel cell value. NaN has no xlsx
// representation and becomes the empty cell.
func sheetCell(v interface{}) interface{} {
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return nil
	}
	return v
}
