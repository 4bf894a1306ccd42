package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Validation errors
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidStrategy  = errors.New("invalid imputation strategy")
	ErrShapeMismatch    = errors.New("shape mismatch")

	// Computation errors
	ErrEmptyColumn = errors.New("column has no observed values")
	ErrEmptyBatch  = errors.New("no trial results to aggregate")
	ErrFitError    = errors.New("model fit failed")

	// Input errors
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// Error constructors with context
func NewInvalidParameterError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, field, reason)
}

func NewInvalidStrategyError(name string) error {
	return fmt.Errorf("%w: %q (want mean, median or constant)", ErrInvalidStrategy, name)
}

func NewEmptyColumnError(column int) error {
	return fmt.Errorf("%w: column %d", ErrEmptyColumn, column)
}

func NewFitError(reason string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFitError, reason, err)
	}
	return fmt.Errorf("%w: %s", ErrFitError, reason)
}

func NewShapeMismatchError(what string, want, got int) error {
	return fmt.Errorf("%w: %s: want %d, got %d", ErrShapeMismatch, what, want, got)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrInvalidStrategy) ||
		errors.Is(err, ErrShapeMismatch)
}

func IsComputationError(err error) bool {
	return errors.Is(err, ErrEmptyColumn) ||
		errors.Is(err, ErrEmptyBatch) ||
		errors.Is(err, ErrFitError)
}
