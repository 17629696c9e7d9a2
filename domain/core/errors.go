package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrParse         = errors.New("failed to parse input data")
	ErrMissingColumn = fmt.Errorf("%w: required column missing", ErrParse)
	ErrBadDate       = fmt.Errorf("%w: unrecognized date format", ErrParse)

	// Configuration errors
	ErrInvalidRatio     = errors.New("invalid partition ratios")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrColumnUnknown    = errors.New("unknown column")
	ErrColumnImmutable  = errors.New("column cannot be rescaled")

	// Model lifecycle errors
	ErrNotFitted  = errors.New("estimator is not fitted")
	ErrNoFeatures = errors.New("feature list is empty")
)

// Error constructors with context

func NewParseError(row int, column string, reason string) error {
	return fmt.Errorf("%w: row %d, column %q: %s", ErrParse, row, column, reason)
}

func NewDateError(row int, raw string) error {
	return fmt.Errorf("%w: row %d, value %q", ErrBadDate, row, raw)
}

func NewRatioError(train, validation, test float64, reason string) error {
	return fmt.Errorf("%w: %.3f/%.3f/%.3f: %s", ErrInvalidRatio, train, validation, test, reason)
}

func NewInsufficientDataError(need, got int) error {
	return fmt.Errorf("%w: need at least %d rows, got %d", ErrInsufficientData, need, got)
}

// Error checking helpers

func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

func IsRatioError(err error) bool {
	return errors.Is(err, ErrInvalidRatio)
}
