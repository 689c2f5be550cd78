package engine

import (
	"math"

	"consumption-interp/core/coefficients"
)

// SeasonalWeighted allocates annual over n months by cycling the curve from
// its first entry (month i uses curve[i mod 12]) and rescaling so the values
// sum to annual. It returns the values, the coefficient used for each month,
// and whether the curve was degenerate. A degenerate curve, one whose sum
// is not a positive number, yields all-zero values.
func SeasonalWeighted(annual float64, curve coefficients.Curve, n int) (values, weights []float64, degenerate bool) {
	values = make([]float64, n)
	weights = make([]float64, n)

	var totalWeight float64
	for i := 0; i < n; i++ {
		weights[i] = curve[i%len(curve)]
		totalWeight += weights[i]
	}

	if totalWeight > 0 && !math.IsInf(totalWeight, 0) {
		for i := range values {
			values[i] = annual * (weights[i] / totalWeight)
		}
		return values, weights, false
	}

	// The months drawn carry no weight; this is only degenerate when the
	// curve itself is unusable.
	sum := curve.Sum()
	return values, weights, !(sum > 0 && !math.IsInf(sum, 0))
}
