package engine

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"consumption-interp/core/types"
	"consumption-interp/internal/errors"
	"consumption-interp/internal/logging"
)

// fetchSeries fetches one degree measure per month. Fetches run with at
// most FetchConcurrency in flight; results keep month order. The first
// failure cancels the rest and is returned as-is.
func (e *Engine) fetchSeries(ctx context.Context, category types.Category, region string, months []types.Month) ([]float64, error) {
	series := make([]float64, len(months))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.FetchConcurrency)

	for i, month := range months {
		g.Go(func() error {
			start := time.Now()
			v, err := e.provider.FetchDegreeMeasure(gctx, category, region, month)
			if e.observer != nil {
				e.observer.ObserveFetch(category, time.Since(start), err)
			}
			if err != nil {
				return err
			}
			logging.FromContext(gctx).Debug("Fetched degree measure",
				zap.String("provider", e.provider.Name()),
				zap.String("region", region),
				zap.Stringer("month", month),
				zap.Float64("value", v),
			)
			series[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}

// ClimateWeighted distributes annual proportionally to the degree series.
// It fails with NO_USABLE_CLIMATE_DATA when the series sums to zero or is
// not finite, so it never produces NaN or infinite values.
func ClimateWeighted(annual float64, degrees []float64) ([]float64, error) {
	var total float64
	for _, d := range degrees {
		total += d
	}
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, errors.New(errors.TypeNoUsableClimateData, "degree measures sum to zero")
	}

	values := make([]float64, len(degrees))
	for i, d := range degrees {
		values[i] = d / total * annual
	}
	return values, nil
}
