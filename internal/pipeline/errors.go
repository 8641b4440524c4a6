package pipeline

import (
	"fmt"
)

// ErrorType classifies operation-level failures. Step-level causes keep
// their own taxonomy and are reachable through Unwrap.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeInvalidState ErrorType = "invalid_state"
)

// OperationError is the pipeline's own error envelope: which step failed,
// how, and the underlying cause.
type OperationError struct {
	Type    ErrorType `json:"type"`
	Step    string    `json:"step,omitempty"`
	Message string    `json:"message"`
	Cause   error     `json:"cause,omitempty"`
}

func (e *OperationError) Error() string {
	if e == nil {
		return "unknown operation error"
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewCancellationError reports a step interrupted by context cancellation.
func NewCancellationError(step string, cause error) *OperationError {
	return &OperationError{
		Type:    ErrorTypeCancellation,
		Step:    step,
		Message: "operation was cancelled",
		Cause:   cause,
	}
}

// NewTimeoutError reports a step that exceeded its configured timeout.
func NewTimeoutError(step string, timeout string) *OperationError {
	return &OperationError{
		Type:    ErrorTypeTimeout,
		Step:    step,
		Message: fmt.Sprintf("step exceeded timeout of %s", timeout),
	}
}

// WrapError attaches operation context to a step failure. An existing
// OperationError gains the step name if it lacked one.
func WrapError(err error, step string, message string) *OperationError {
	if err == nil {
		return nil
	}

	if opErr, ok := err.(*OperationError); ok {
		if opErr.Step == "" {
			opErr.Step = step
		}
		return opErr
	}

	return &OperationError{
		Type:    ErrorTypeExecution,
		Step:    step,
		Message: message,
		Cause:   err,
	}
}

// GetErrorType returns the operation-level classification of err.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ""
	}
	if opErr, ok := err.(*OperationError); ok {
		return opErr.Type
	}
	return ErrorTypeExecution
}

// Common operation errors.
var (
	// ErrOperationNotFound is returned when an operation cannot be found.
	ErrOperationNotFound = &OperationError{
		Type:    ErrorTypeNotFound,
		Message: "operation not found",
	}

	// ErrLoadInProgress is returned when a second load is requested while
	// one is still running. The aggregate has one owner, so loads queue
	// behind the caller, never behind the server.
	ErrLoadInProgress = &OperationError{
		Type:    ErrorTypeInvalidState,
		Message: "a load operation is already running",
	}
)
