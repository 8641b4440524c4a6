package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMissingFile     ErrorType = "MISSING_FILE"
	ErrTypeMissingDuration ErrorType = "MISSING_DURATION"
	ErrTypeDataIntegrity   ErrorType = "DATA_INTEGRITY"
	ErrTypeUserInput       ErrorType = "USER_INPUT"
	ErrTypeParsing         ErrorType = "PARSING"
	ErrTypeStorage         ErrorType = "STORAGE"
	ErrTypeValidation      ErrorType = "VALIDATION"
	ErrTypeNotFound        ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Helper functions for common error types

// NewMissingFileError reports an absent companion file for a feedlog.
func NewMissingFileError(feedlog, missing string) *AppError {
	return NewAppError(ErrTypeMissingFile,
		fmt.Sprintf("a %s file for %s cannot be found", missing, feedlog), nil).
		WithContext("feedlog", feedlog).
		WithContext("missing_role", missing)
}

// NewMissingDurationError reports that no FeedStats file was found and no
// explicit experiment duration was supplied.
func NewMissingDurationError(feedlog string) *AppError {
	return NewAppError(ErrTypeMissingDuration,
		fmt.Sprintf("a FeedStats file for %s cannot be found and no experiment duration was supplied", feedlog), nil).
		WithContext("feedlog", feedlog)
}

// NewDataIntegrityError creates a data integrity error
func NewDataIntegrityError(message string, cause error) *AppError {
	return NewAppError(ErrTypeDataIntegrity, message, cause)
}

// NewUserInputError creates a user input error
func NewUserInputError(message string) *AppError {
	return NewAppError(ErrTypeUserInput, message, nil)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}
