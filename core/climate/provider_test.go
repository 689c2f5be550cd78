package climate

import (
	"context"
	"testing"
	"time"

	"consumption-interp/core/types"
	"consumption-interp/internal/errors"
)

func TestSeriesProviderServesOnlyItsKey(t *testing.T) {
	jan := types.Month{Year: 2024, Month: time.January}
	p := SeriesProvider(types.CategoryHeating, "BERLIN", jan, []float64{300, 200})
	ctx := context.Background()

	if v, err := p.FetchDegreeMeasure(ctx, types.CategoryHeating, "BERLIN", jan.Next()); err != nil || v != 200 {
		t.Errorf("February = %v, %v; want 200", v, err)
	}

	tests := []struct {
		name     string
		category types.Category
		region   string
		month    types.Month
	}{
		{"other region", types.CategoryHeating, "HAMBURG", jan},
		{"other category", types.CategoryCooling, "BERLIN", jan},
		{"past the series", types.CategoryHeating, "BERLIN", jan.Next().Next()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.FetchDegreeMeasure(ctx, tt.category, tt.region, tt.month)
			if !errors.IsType(err, errors.TypeDataUnavailable) {
				t.Errorf("err = %v, want DATA_UNAVAILABLE", err)
			}
		})
	}
}

func TestStaticProviderHonoursCancellation(t *testing.T) {
	jan := types.Month{Year: 2024, Month: time.January}
	p := SeriesProvider(types.CategoryHeating, "BERLIN", jan, []float64{300})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.FetchDegreeMeasure(ctx, types.CategoryHeating, "BERLIN", jan); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
