package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrQuestionNotFound = fmt.Errorf("%w: question", ErrNotFound)
	ErrWaveNotFound     = fmt.Errorf("%w: wave", ErrNotFound)
	ErrCrosstabNotFound = fmt.Errorf("%w: crosstab", ErrNotFound)

	// Validation errors
	ErrInvalidConfig    = errors.New("invalid run configuration")
	ErrNoWaves          = fmt.Errorf("%w: no waves configured", ErrInvalidConfig)
	ErrDuplicateWave    = fmt.Errorf("%w: duplicate wave id", ErrInvalidConfig)
	ErrBaselineUnknown  = fmt.Errorf("%w: baseline wave not in wave list", ErrInvalidConfig)
	ErrInvalidAlpha     = fmt.Errorf("%w: alpha outside (0, 1)", ErrInvalidConfig)
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
