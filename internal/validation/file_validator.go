package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"espresso/internal/config"
	apperrors "espresso/internal/errors"
	"espresso/internal/files"
	"espresso/internal/munge"
)

// FileValidator validates a session folder before the load pipeline touches
// it. Every problem with a load attempt is accumulated and reported together
// so the user fixes the folder once, not one error at a time.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateSessionFolder checks a whole assay session folder: every FeedLog
// must have its MetaData counterpart, a FeedStats counterpart unless an
// explicit duration override is supplied (requireStats=false), and every
// present file must be a readable, non-empty CSV carrying its required
// columns. All failures are returned in one *multierror.Error.
func (v *FileValidator) ValidateSessionFolder(dir string, requireStats bool) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Session folder does not exist",
			slog.String("directory", dir))
		return apperrors.NewUserInputError(fmt.Sprintf("session folder %s does not exist", dir))
	}
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", dir), err)
	}
	if !info.IsDir() {
		return apperrors.NewUserInputError(fmt.Sprintf("%s is not a directory", dir))
	}

	discovery := files.NewDiscovery(dir)
	feedlogs, err := discovery.FindFeedLogs(".")
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to scan %s", dir), err)
	}
	if len(feedlogs) == 0 {
		v.logger.Warn("No feed logs in session folder",
			slog.String("directory", dir))
		return apperrors.NewUserInputError(
			fmt.Sprintf("no %s_*.csv files found in %s", config.FeedLogPrefix, dir))
	}

	var result *multierror.Error

	for _, feedlog := range feedlogs {
		if err := v.validateCSVContent(feedlog.Path, munge.CheckFeedLogColumns); err != nil {
			result = multierror.Append(result, err)
		}

		metadataPath := filepath.Join(dir, files.CounterpartName(feedlog.Name, config.MetaDataPrefix))
		if !fileExists(metadataPath) {
			result = multierror.Append(result,
				apperrors.NewMissingFileError(feedlog.Name, config.MetaDataPrefix))
		} else if err := v.validateCSVContent(metadataPath, munge.CheckMetadataColumns); err != nil {
			result = multierror.Append(result, err)
		}

		statsPath := filepath.Join(dir, files.CounterpartName(feedlog.Name, config.FeedStatsPrefix))
		switch {
		case fileExists(statsPath):
			if err := v.validateCSVContent(statsPath, munge.CheckFeedStatsColumns); err != nil {
				result = multierror.Append(result, err)
			}
		case requireStats:
			result = multierror.Append(result,
				apperrors.NewMissingDurationError(feedlog.Name))
		}
	}

	if result != nil {
		v.logger.Error("Session folder failed validation",
			slog.String("directory", dir),
			slog.Int("feedlog_count", len(feedlogs)),
			slog.Int("problem_count", result.Len()))
		return result.ErrorOrNil()
	}

	v.logger.Info("Session folder validated",
		slog.String("directory", dir),
		slog.Int("feedlog_count", len(feedlogs)))
	return nil
}

// validateCSVContent runs the shared file checks, then the role-specific
// column check.
func (v *FileValidator) validateCSVContent(path string, checkColumns func(string) error) error {
	if err := v.ValidateCSVFile(path); err != nil {
		return err
	}
	return checkColumns(path)
}

// ValidateFile checks if a specific file exists, is readable and non-empty
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s does not exist", path))
	}
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}
	if info.Size() == 0 {
		v.logger.Error("File is empty",
			slog.String("file", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is empty", path))
	}

	// Check if file is readable by opening it
	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is not readable", path))
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks if a file is a valid, non-empty CSV file
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != config.CSVExtension {
		v.logger.Error("File is not a CSV file",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewAppValidationError(
			fmt.Sprintf("file %s is not a CSV file (extension: %s)", path, ext))
	}

	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Info("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// CountFiles counts files matching a pattern in a directory
func (v *FileValidator) CountFiles(dir string, pattern string) (int, error) {
	fullPattern := filepath.Join(dir, pattern)
	matches, err := filepath.Glob(fullPattern)
	if err != nil {
		v.logger.Error("Failed to count files",
			slog.String("pattern", fullPattern),
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to count files: %w", err)
	}

	// Filter out directories from matches
	fileCount := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err == nil && !info.IsDir() {
			fileCount++
		}
	}

	v.logger.Debug("Files counted",
		slog.String("directory", dir),
		slog.String("pattern", pattern),
		slog.Int("count", fileCount))
	return fileCount, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
