// Package engine provides the interpolation engine.
// CLI and HTTP surfaces are thin wrappers around this engine.
package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"consumption-interp/core/climate"
	"consumption-interp/core/coefficients"
	"consumption-interp/core/types"
	"consumption-interp/internal/errors"
	"consumption-interp/internal/logging"
)

// Engine turns an annual value into a month-by-month allocation.
// An Engine holds no per-request state and is safe for concurrent use.
type Engine struct {
	provider climate.Provider
	table    *coefficients.Table
	config   Config
	observer Observer
}

// Config configures the engine
type Config struct {
	// FetchConcurrency bounds parallel climate fetches; 1 fetches sequentially
	FetchConcurrency int

	// ApplyAdjustment makes the seasonal strategy use the adjusted curve
	// instead of the base curve
	ApplyAdjustment bool

	// CoolingFactor is the default summer multiplier for electricity
	CoolingFactor float64

	// WinterLightingFactor is the default winter multiplier for electricity
	WinterLightingFactor float64
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		FetchConcurrency:     4,
		CoolingFactor:        coefficients.DefaultCoolingFactor,
		WinterLightingFactor: coefficients.DefaultWinterLightingFactor,
	}
}

// Observer receives engine measurements
type Observer interface {
	ObserveInterpolation(category types.Category, outcome string, duration time.Duration)
	ObserveFetch(category types.Category, duration time.Duration, err error)
}

// Request is one interpolation request
type Request struct {
	Category types.Category
	Region   string
	Start    time.Time
	End      time.Time

	// AnnualValue is the unparsed annual figure as entered by the user
	AnnualValue string

	// Adjustment is only consulted for seasonal categories
	Adjustment *types.AdjustmentParameters
}

// NewEngine creates an engine. provider may be nil when only seasonal
// categories are requested; table defaults to coefficients.Default().
func NewEngine(provider climate.Provider, table *coefficients.Table, config Config) *Engine {
	if table == nil {
		table = coefficients.Default()
	}
	if config.FetchConcurrency <= 0 {
		config.FetchConcurrency = 1
	}
	if config.CoolingFactor <= 0 {
		config.CoolingFactor = coefficients.DefaultCoolingFactor
	}
	if config.WinterLightingFactor <= 0 {
		config.WinterLightingFactor = coefficients.DefaultWinterLightingFactor
	}
	return &Engine{
		provider: provider,
		table:    table,
		config:   config,
	}
}

// WithObserver attaches an observer
func (e *Engine) WithObserver(o Observer) *Engine {
	e.observer = o
	return e
}

// Table returns the seasonal coefficient table in use
func (e *Engine) Table() *coefficients.Table {
	return e.table
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Interpolate allocates the request's annual value across its date span.
// It either returns a complete allocation or fails; climate provider errors
// are returned unchanged.
func (e *Engine) Interpolate(ctx context.Context, req Request) (*types.Allocation, error) {
	start := time.Now()
	requestID := uuid.NewString()
	alloc, err := e.interpolate(logging.WithRequestID(ctx, requestID), req, requestID)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if t := errors.TypeOf(err); t != "" {
			outcome = string(t)
		}
	}
	if e.observer != nil {
		e.observer.ObserveInterpolation(req.Category, outcome, time.Since(start))
	}
	return alloc, err
}

func (e *Engine) interpolate(ctx context.Context, req Request, requestID string) (*types.Allocation, error) {
	log := logging.FromContext(ctx).With(
		zap.String("category", req.Category.String()),
		zap.String("region", req.Region),
	)

	if !req.Category.IsValid() {
		return nil, errors.InvalidInput("category", fmt.Sprintf("unknown category %q", req.Category))
	}
	annual, err := ParseAnnualValue(req.AnnualValue)
	if err != nil {
		return nil, errors.InvalidInput("annual_value", err.Error()).WithContext(errors.KeyCategory, req.Category.String())
	}
	span, err := types.NewDateSpan(req.Start, req.End)
	if err != nil {
		return nil, errors.InvalidInput("span", err.Error())
	}
	if field, err := req.Adjustment.Validate(); err != nil {
		return nil, errors.InvalidInput(field, err.Error())
	}

	months := span.Months()
	alloc := &types.Allocation{
		RequestID:   requestID,
		Category:    req.Category,
		Region:      req.Region,
		Span:        span,
		AnnualValue: annual,
		Strategy:    types.StrategyFor(req.Category),
	}

	log.Debug("Interpolating",
		zap.String("span", span.String()),
		zap.Int("months", len(months)),
		zap.Float64("annual_value", annual),
	)

	var values, weights []float64
	switch alloc.Strategy {
	case types.StrategyClimate:
		if strings.TrimSpace(req.Region) == "" {
			return nil, errors.InvalidInput("region", "region is required for "+req.Category.String())
		}
		if e.provider == nil {
			return nil, errors.DataUnavailable(req.Region, span.String(), fmt.Errorf("no climate provider configured"))
		}
		weights, err = e.fetchSeries(ctx, req.Category, req.Region, months)
		if err != nil {
			log.Warn("Climate fetch failed", zap.Error(err))
			return nil, err
		}
		values, err = ClimateWeighted(annual, weights)
		if err != nil {
			return nil, errors.NoUsableClimateData(req.Category.String(), req.Region).
				WithContext(errors.KeyPeriod, span.String())
		}

	case types.StrategySeasonal:
		curve, source := e.seasonalCurve(req.Category, req.Adjustment)
		alloc.Curve = source
		var degenerate bool
		values, weights, degenerate = SeasonalWeighted(annual, curve, len(months))
		if degenerate {
			alloc.Degenerate = true
			log.Warn("Degenerate coefficient curve", zap.Error(errors.AdjustmentDegenerate(req.Category.String())))
		}
	}

	if len(values) != len(months) {
		return nil, fmt.Errorf("allocation produced %d values for %d months", len(values), len(months))
	}
	alloc.Months = make([]types.MonthlyValue, len(months))
	for i, m := range months {
		alloc.Months[i] = types.MonthlyValue{Month: m, Value: values[i], Weight: weights[i]}
	}

	log.Info("Interpolation complete",
		zap.String("strategy", string(alloc.Strategy)),
		zap.Int("months", len(months)),
		zap.Float64("total", alloc.Total()),
	)
	return alloc, nil
}

// seasonalCurve picks the curve for a seasonal category. The adjusted curve
// is always computed so that adjustment problems surface in logs, but it
// only drives the allocation when ApplyAdjustment is set.
func (e *Engine) seasonalCurve(category types.Category, p *types.AdjustmentParameters) (coefficients.Curve, types.CurveSource) {
	base, _ := e.table.Base(category)
	adjusted := coefficients.AdjustWith(category, base, p, e.config.CoolingFactor, e.config.WinterLightingFactor)
	if e.config.ApplyAdjustment {
		return adjusted, types.CurveAdjusted
	}
	return base, types.CurveBase
}

// Adjusted returns the adjusted curve the engine would compute for a
// seasonal category
func (e *Engine) Adjusted(category types.Category, p *types.AdjustmentParameters) (coefficients.Curve, error) {
	base, ok := e.table.Base(category)
	if !ok {
		return coefficients.Curve{}, errors.InvalidInput("category", "no seasonal curve for "+category.String())
	}
	if field, err := p.Validate(); err != nil {
		return coefficients.Curve{}, errors.InvalidInput(field, err.Error())
	}
	return coefficients.AdjustWith(category, base, p, e.config.CoolingFactor, e.config.WinterLightingFactor), nil
}

// ParseAnnualValue parses a non-negative annual figure. A decimal comma is
// accepted when the value contains no dot.
func ParseAnnualValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("annual value is required")
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("annual value %q is not a number", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("annual value must not be negative, got %s", d.String())
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, fmt.Errorf("annual value %s is out of range", d.String())
	}
	return f, nil
}
