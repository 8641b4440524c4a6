package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"espresso/internal/config"
	apperrors "espresso/internal/errors"
)

// utf8BOM is prepended on request so Excel opens the file as UTF-8. The
// food labels regularly carry µ and other non-ASCII characters.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance. A nil paths value leaves
// relative output paths unresolved.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("creating export directory %s", dir), err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("creating export file %s", fullPath), err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("writing BOM to %s", fullPath), err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("writing headers to %s", fullPath), err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError(
				fmt.Sprintf("writing record %d to %s", i, fullPath), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("flushing export file %s", fullPath), err)
	}
	return nil
}

// StreamWriter provides streaming CSV writing for large tables
type StreamWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, bom bool) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("creating export directory %s", dir), err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("creating export file %s", fullPath), err)
	}

	if bom {
		if _, err := file.Write(utf8BOM); err != nil {
			file.Close()
			return nil, apperrors.NewStorageError(fmt.Sprintf("writing BOM to %s", fullPath), err)
		}
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, apperrors.NewStorageError(fmt.Sprintf("writing headers to %s", fullPath), err)
		}
	}

	return &StreamWriter{
		path:   fullPath,
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("writing record to %s", s.path), err)
	}
	return nil
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return apperrors.NewStorageError(fmt.Sprintf("flushing export file %s", s.path), err)
	}
	if err := s.file.Close(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("closing export file %s", s.path), err)
	}
	return nil
}

// resolvePath resolves relative output paths into the exports directory.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetExportPath(filePath)
}
