// Package errors provides error handling for survtime.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Typed error classes for the engine's failure taxonomy
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check error class
//	if errors.IsConfigurationError(err) {
//	    // abort before processing
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// The engine's failure taxonomy. Every fatal error returned by a stage
// wraps exactly one of these sentinels so callers can classify failures
// with errors.Is without string matching.
var (
	// ErrConfiguration indicates an invalid or contradictory option set.
	// Configuration errors abort before any processing begins.
	ErrConfiguration = New("configuration error")

	// ErrSchema indicates malformed input tables: a missing column, a
	// value outside its domain, or sub-day date precision.
	ErrSchema = New("schema error")

	// ErrDataQuality indicates an input defect severe enough to abort,
	// such as a cohort mismatch across intersected timelines or an empty
	// input with no valid study windows.
	ErrDataQuality = New("data quality error")

	// ErrCohortMismatch is the specific data-quality failure raised when
	// person IDs differ across timelines being intersected. It wraps
	// ErrDataQuality.
	ErrCohortMismatch = Wrap(ErrDataQuality, "cohort mismatch")

	// ErrEmptyInput is raised when a run has no valid study windows.
	// It wraps ErrDataQuality.
	ErrEmptyInput = Wrap(ErrDataQuality, "empty input")
)

// IsConfigurationError checks if an error is or wraps ErrConfiguration.
func IsConfigurationError(err error) bool {
	return err != nil && Is(err, ErrConfiguration)
}

// IsSchemaError checks if an error is or wraps ErrSchema.
func IsSchemaError(err error) bool {
	return err != nil && Is(err, ErrSchema)
}

// IsDataQualityError checks if an error is or wraps ErrDataQuality.
func IsDataQualityError(err error) bool {
	return err != nil && Is(err, ErrDataQuality)
}

// IsCohortMismatch checks if an error is or wraps ErrCohortMismatch.
func IsCohortMismatch(err error) bool {
	return err != nil && Is(err, ErrCohortMismatch)
}

// NewConfigurationError creates a configuration error with a formatted message.
func NewConfigurationError(format string, args ...interface{}) error {
	return Wrap(ErrConfiguration, Newf(format, args...).Error())
}

// NewSchemaError creates a schema error with a formatted message.
func NewSchemaError(format string, args ...interface{}) error {
	return Wrap(ErrSchema, Newf(format, args...).Error())
}

// NewDataQualityError creates a data-quality error with a formatted message.
func NewDataQualityError(format string, args ...interface{}) error {
	return Wrap(ErrDataQuality, Newf(format, args...).Error())
}
