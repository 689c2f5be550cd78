// Package coefficients holds the seasonal weighting curves used for
// categories without a climate basis, and the adjuster that reshapes them
// for a specific building.
package coefficients

import (
	"fmt"

	"consumption-interp/core/types"
)

// Curve is a monthly weighting, January first. Curve is an array so that
// assignment copies it; a table curve can never be modified through a
// returned value.
type Curve [12]float64

// Sum returns the total weight
func (c Curve) Sum() float64 {
	var sum float64
	for _, v := range c {
		sum += v
	}
	return sum
}

// Normalized divides every entry by the sum. A curve with a non-positive or
// non-finite sum is returned unchanged with ok=false.
func (c Curve) Normalized() (Curve, bool) {
	sum := c.Sum()
	if !(sum > 0) || !isFinite(sum) {
		return c, false
	}
	for i := range c {
		c[i] /= sum
	}
	return c, true
}

// Slice returns the curve as a slice
func (c Curve) Slice() []float64 {
	out := make([]float64, len(c))
	copy(out, c[:])
	return out
}

// CurveFrom builds a curve from exactly twelve non-negative entries
func CurveFrom(values []float64) (Curve, error) {
	var c Curve
	if len(values) != len(c) {
		return c, fmt.Errorf("curve needs 12 monthly entries, got %d", len(values))
	}
	for i, v := range values {
		if v < 0 {
			return c, fmt.Errorf("curve entry %d is negative: %v", i+1, v)
		}
		c[i] = v
	}
	return c, nil
}

// Seasonal demand shapes. Electricity peaks mildly in summer and winter,
// water has a single summer peak. The raw figures do not sum to one; the
// table normalizes them.
var (
	electricityWeights = []float64{0.09, 0.09, 0.08, 0.08, 0.09, 0.10, 0.11, 0.11, 0.09, 0.08, 0.08, 0.09}
	waterWeights       = []float64{0.08, 0.08, 0.08, 0.08, 0.09, 0.10, 0.11, 0.11, 0.09, 0.08, 0.08, 0.08}
)

// Table is the immutable set of base curves, one per seasonal category.
// It is built once at startup and shared read-only.
type Table struct {
	curves map[types.Category]Curve
}

// NewTable validates and normalizes the given weights. Categories that are
// missing from weights fall back to the built-in shapes.
func NewTable(weights map[types.Category][]float64) (*Table, error) {
	t := &Table{curves: make(map[types.Category]Curve, 2)}
	for category, fallback := range map[types.Category][]float64{
		types.CategoryElectricity: electricityWeights,
		types.CategoryWater:       waterWeights,
	} {
		raw := weights[category]
		if len(raw) == 0 {
			raw = fallback
		}
		c, err := CurveFrom(raw)
		if err != nil {
			return nil, fmt.Errorf("%s curve: %w", category, err)
		}
		normalized, ok := c.Normalized()
		if !ok {
			return nil, fmt.Errorf("%s curve: weights sum to zero", category)
		}
		t.curves[category] = normalized
	}
	for category := range weights {
		if _, ok := t.curves[category]; !ok {
			return nil, fmt.Errorf("no seasonal curve for category %s", category)
		}
	}
	return t, nil
}

var defaultTable = mustTable(nil)

// Default returns the table built from the built-in shapes
func Default() *Table {
	return defaultTable
}

func mustTable(weights map[types.Category][]float64) *Table {
	t, err := NewTable(weights)
	if err != nil {
		panic(err)
	}
	return t
}

// Base returns the base curve for a seasonal category
func (t *Table) Base(category types.Category) (Curve, bool) {
	c, ok := t.curves[category]
	return c, ok
}
