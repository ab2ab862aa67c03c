package errors

import (
	"fmt"
)

// AppError represents a structured refusal: invalid configuration or input
// that makes a computation meaningless. It carries a machine-readable code
// and a human-readable message, and is reserved for boundary validation --
// the per-cell statistical hot path degrades to guarded results instead.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Refusal codes for configuration boundary validation.
const (
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeNoWaves       = "NO_WAVES"
	CodeDuplicateWave = "DUPLICATE_WAVE"
	CodeBadBaseline   = "BAD_BASELINE"
	CodeBadAlpha      = "BAD_ALPHA"
	CodeInternal      = "INTERNAL_ERROR"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// CodeOf extracts the refusal code, empty for non-refusals.
func CodeOf(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ""
}
