// Package errors provides the error taxonomy shared by the interpolation core
// and its adapters.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInvalidInput indicates a malformed or out-of-range request value
	TypeInvalidInput Type = "INVALID_INPUT"

	// TypeRegionNotFound indicates the climate source does not know the region
	TypeRegionNotFound Type = "REGION_NOT_FOUND"

	// TypeDataUnavailable indicates the climate source has no data for a period
	TypeDataUnavailable Type = "DATA_UNAVAILABLE"

	// TypeNoUsableClimateData indicates an all-zero weighting basis
	TypeNoUsableClimateData Type = "NO_USABLE_CLIMATE_DATA"

	// TypeAdjustmentDegenerate indicates an all-zero coefficient curve.
	// It is reported as a warning, never returned from an interpolation.
	TypeAdjustmentDegenerate Type = "ADJUSTMENT_DEGENERATE"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"
)

// Context keys
const (
	KeyCategory = "category"
	KeyRegion   = "region"
	KeyPeriod   = "period"
	KeyField    = "field"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// HasType checks if the error is of a specific type
func (e *Error) HasType(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// TypeOf returns the type of the first *Error in err's chain, or "" when there is none.
func TypeOf(err error) Type {
	if e, ok := As(err); ok {
		return e.Type
	}
	return ""
}

// IsType checks if an error is of a specific type
func IsType(err error, t Type) bool {
	return TypeOf(err) == t
}

// InvalidInput creates an input error naming the offending field
func InvalidInput(field, message string) *Error {
	return New(TypeInvalidInput, message).WithContext(KeyField, field)
}

// RegionNotFound creates a region lookup error
func RegionNotFound(region, period string) *Error {
	return Newf(TypeRegionNotFound, "no climate data for region %s", region).
		WithContext(KeyRegion, region).
		WithContext(KeyPeriod, period)
}

// DataUnavailable creates a missing-period error
func DataUnavailable(region, period string, cause error) *Error {
	return Wrap(TypeDataUnavailable, fmt.Sprintf("climate data unavailable for %s", period), cause).
		WithContext(KeyRegion, region).
		WithContext(KeyPeriod, period)
}

// NoUsableClimateData creates an all-zero basis error
func NoUsableClimateData(category, region string) *Error {
	return New(TypeNoUsableClimateData, "degree measures sum to zero over the requested span").
		WithContext(KeyCategory, category).
		WithContext(KeyRegion, region)
}

// AdjustmentDegenerate creates the zero-curve warning
func AdjustmentDegenerate(category string) *Error {
	return New(TypeAdjustmentDegenerate, "coefficient curve sums to zero; allocation is all zero").
		WithContext(KeyCategory, category)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}
