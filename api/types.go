// Package api - API types for interpolation
// These types define the contract for POST /interpolate.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"consumption-interp/core/coefficients"
	"consumption-interp/core/types"
)

// InterpolateRequest is the input to POST /interpolate
type InterpolateRequest struct {
	Category string `json:"category"`
	Region   string `json:"region,omitempty"`

	// Start and End accept DD.MM.YYYY or YYYY-MM-DD
	Start string `json:"start"`
	End   string `json:"end"`

	AnnualValue Amount `json:"annual_value"`

	// Adjustment is consulted for electricity and water only
	Adjustment *types.AdjustmentParameters `json:"adjustment,omitempty"`
}

// Amount accepts a JSON number or a string such as "1234,5"
type Amount string

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("annual_value must be a number or string")
	}
	*a = Amount(n.String())
	return nil
}

// InterpolateResponse is the output of POST /interpolate
type InterpolateResponse struct {
	*types.Allocation
	Total    float64           `json:"total"`
	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// ResponseMetadata contains response metadata
type ResponseMetadata struct {
	EngineVersion string `json:"engine_version"`
	Provider      string `json:"provider,omitempty"`
	DurationMs    int64  `json:"duration_ms"`
}

// CoefficientsResponse is the output of GET /coefficients
type CoefficientsResponse struct {
	Categories map[types.Category]CurveSet `json:"categories"`
}

// CurveSet holds a category's base curve and, when requested, its adjusted curve
type CurveSet struct {
	Base     []float64 `json:"base"`
	Adjusted []float64 `json:"adjusted,omitempty"`
}

func curveSet(base coefficients.Curve, adjusted *coefficients.Curve) CurveSet {
	set := CurveSet{Base: base.Slice()}
	if adjusted != nil {
		set.Adjusted = adjusted.Slice()
	}
	return set
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes one failure
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}
