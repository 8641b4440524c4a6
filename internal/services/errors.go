package services

import "errors"

// Service layer errors. The transport layer maps these onto problem
// responses; the CLI prints them as-is.
var (
	// Experiment errors
	ErrNoExperiment = errors.New("no experiment loaded")

	// Export errors
	ErrUnknownView         = errors.New("unknown view name")
	ErrUnknownExportFormat = errors.New("unknown export format")
)
