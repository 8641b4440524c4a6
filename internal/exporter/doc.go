// Package exporter writes the experiment's tables and analysis views to
// files the collaborators can open directly.
//
// This package contains four main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and an optional UTF-8 BOM for Excel compatibility.
//
// TableExporter: Writes the merged feed table and the fly table with the
// same column layout the bundle store uses, so exported and persisted
// tables agree.
//
// ViewExporter: Writes the grouped analysis views (feed totals, latency,
// percent feeding).
//
// ExcelWriter: Writes a multi-sheet .xlsx workbook via excelize, one sheet
// per table plus one per requested view.
//
// Example usage:
//
//	tables := exporter.NewTableExporter(paths)
//	err := tables.ExportFeeds(exp.Feeds(), exp.AddedLabels(), "feeds.csv", true)
//
//	excel := exporter.NewExcelWriter(paths)
//	err = excel.WriteWorkbook("session.xlsx", exporter.Workbook{
//	    Feeds:  exp.Feeds(),
//	    Flies:  exp.Flies(),
//	    Labels: exp.AddedLabels(),
//	})
package exporter
