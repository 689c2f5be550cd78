package coefficients

import (
	"math"
	"testing"

	"consumption-interp/core/types"
)

const tolerance = 1e-9

func ptr(v float64) *float64 { return &v }

func TestDefaultTableCurvesSumToOne(t *testing.T) {
	for _, category := range []types.Category{types.CategoryElectricity, types.CategoryWater} {
		c, ok := Default().Base(category)
		if !ok {
			t.Fatalf("no base curve for %s", category)
		}
		if math.Abs(c.Sum()-1) > tolerance {
			t.Errorf("%s curve sums to %v, want 1", category, c.Sum())
		}
		for i, v := range c {
			if v <= 0 {
				t.Errorf("%s curve entry %d is %v, want positive", category, i, v)
			}
		}
	}
}

func TestDefaultTableKeepsSeasonalShape(t *testing.T) {
	water, _ := Default().Base(types.CategoryWater)
	if !(water[6] > water[0]) || water[6] != water[7] {
		t.Errorf("water curve should peak in July/August: %v", water)
	}

	electricity, _ := Default().Base(types.CategoryElectricity)
	if !(electricity[0] > electricity[2]) || !(electricity[6] > electricity[0]) {
		t.Errorf("electricity curve should peak in winter and summer: %v", electricity)
	}
}

func TestTableHasNoClimateCurves(t *testing.T) {
	if _, ok := Default().Base(types.CategoryHeating); ok {
		t.Error("heating must not have a seasonal curve")
	}
}

func TestNewTableRejectsMalformedWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights map[types.Category][]float64
	}{
		{"too short", map[types.Category][]float64{types.CategoryWater: {1, 2, 3}}},
		{"negative", map[types.Category][]float64{types.CategoryWater: {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1}}},
		{"zero sum", map[types.Category][]float64{types.CategoryElectricity: make([]float64, 12)}},
		{"climate category", map[types.Category][]float64{types.CategoryHeating: {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(tt.weights); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestNewTableNormalizesOverride(t *testing.T) {
	flat := []float64{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}
	table, err := NewTable(map[types.Category][]float64{types.CategoryWater: flat})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	c, _ := table.Base(types.CategoryWater)
	for i, v := range c {
		if math.Abs(v-1.0/12) > tolerance {
			t.Errorf("entry %d = %v, want 1/12", i, v)
		}
	}
	if flat[0] != 2 {
		t.Error("NewTable modified its input")
	}
}

func TestAdjustSumsToOne(t *testing.T) {
	base, _ := Default().Base(types.CategoryElectricity)
	tests := []struct {
		name      string
		category  types.Category
		size, occ *float64
		cooling   float64
		winter    float64
	}{
		{"multipliers only", types.CategoryElectricity, nil, nil, 1.2, 1.1},
		{"size and occupancy", types.CategoryElectricity, ptr(2500), ptr(80), 1.2, 1.1},
		{"water ignores multipliers", types.CategoryWater, ptr(800), ptr(30), 3, 3},
		{"size without occupancy", types.CategoryElectricity, ptr(5000), nil, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adjusted := Adjust(tt.category, base, tt.size, tt.occ, tt.cooling, tt.winter)
			if math.Abs(adjusted.Sum()-1) > tolerance {
				t.Errorf("adjusted curve sums to %v, want 1", adjusted.Sum())
			}
		})
	}
}

func TestAdjustAppliesSeasonalMultipliers(t *testing.T) {
	var flat Curve
	for i := range flat {
		flat[i] = 1
	}

	adjusted := Adjust(types.CategoryElectricity, flat, nil, nil, 2, 3)

	// raw: 6 months of 1, 3 summer months of 2, 3 winter months of 3 -> total 21
	want := Curve{3, 3, 1, 1, 1, 2, 2, 2, 1, 1, 1, 3}
	for i := range want {
		want[i] /= 21
		if math.Abs(adjusted[i]-want[i]) > tolerance {
			t.Errorf("month %d = %v, want %v", i+1, adjusted[i], want[i])
		}
	}
}

func TestAdjustWaterHasNoSeasonalStep(t *testing.T) {
	base, _ := Default().Base(types.CategoryWater)
	adjusted := Adjust(types.CategoryWater, base, nil, nil, 5, 5)
	for i := range base {
		if math.Abs(adjusted[i]-base[i]) > tolerance {
			t.Errorf("month %d = %v, want %v", i+1, adjusted[i], base[i])
		}
	}
}

func TestAdjustScalingCancelsOut(t *testing.T) {
	base, _ := Default().Base(types.CategoryWater)
	adjusted := Adjust(types.CategoryWater, base, ptr(12000), ptr(450), 1, 1)
	for i := range base {
		if math.Abs(adjusted[i]-base[i]) > tolerance {
			t.Errorf("month %d = %v, want %v", i+1, adjusted[i], base[i])
		}
	}
}

func TestAdjustDoesNotMutateBase(t *testing.T) {
	base, _ := Default().Base(types.CategoryElectricity)
	before := base

	_ = Adjust(types.CategoryElectricity, base, ptr(3000), ptr(120), 4, 4)

	again, _ := Default().Base(types.CategoryElectricity)
	if base != before || again != before {
		t.Error("Adjust mutated the base curve")
	}
}

func TestAdjustDegenerateCurveIsLeftUnscaled(t *testing.T) {
	var zero Curve
	adjusted := Adjust(types.CategoryElectricity, zero, ptr(1000), ptr(100), 1.2, 1.1)
	if adjusted != zero {
		t.Errorf("zero curve changed: %v", adjusted)
	}

	base, _ := Default().Base(types.CategoryElectricity)
	killed := Adjust(types.CategoryElectricity, base, nil, nil, 0, 0)
	if math.Abs(killed.Sum()-1) > tolerance {
		t.Errorf("partially zeroed curve should still normalize, sum=%v", killed.Sum())
	}
	if killed[0] != 0 || killed[6] != 0 {
		t.Errorf("zero multipliers should zero winter and summer entries: %v", killed)
	}
}

func TestAdjustWithFillsDefaults(t *testing.T) {
	base, _ := Default().Base(types.CategoryElectricity)

	got := AdjustWith(types.CategoryElectricity, base, &types.AdjustmentParameters{}, DefaultCoolingFactor, DefaultWinterLightingFactor)
	want := Adjust(types.CategoryElectricity, base, nil, nil, DefaultCoolingFactor, DefaultWinterLightingFactor)
	if got != want {
		t.Errorf("AdjustWith with empty params = %v, want %v", got, want)
	}

	custom := AdjustWith(types.CategoryElectricity, base, &types.AdjustmentParameters{CoolingFactor: 2}, DefaultCoolingFactor, DefaultWinterLightingFactor)
	if custom == want {
		t.Error("explicit cooling factor was ignored")
	}
}

func TestAdjustOverflowingScaleIsSkipped(t *testing.T) {
	base, _ := Default().Base(types.CategoryElectricity)
	huge := Adjust(types.CategoryElectricity, base, ptr(1e200), ptr(1e200), 1.2, 1.1)
	plain := Adjust(types.CategoryElectricity, base, nil, nil, 1.2, 1.1)

	if math.Abs(huge.Sum()-1) > tolerance {
		t.Fatalf("sum = %v, want 1", huge.Sum())
	}
	for i := range huge {
		if math.Abs(huge[i]-plain[i]) > tolerance {
			t.Errorf("entry %d = %v, want %v", i, huge[i], plain[i])
		}
	}
}

func TestAdjustOverflowingFactorsYieldZeroCurve(t *testing.T) {
	base, _ := Default().Base(types.CategoryElectricity)
	for _, factor := range []float64{math.Inf(1), math.NaN()} {
		got := Adjust(types.CategoryElectricity, base, nil, nil, factor, factor)
		if got != (Curve{}) {
			t.Errorf("factor %v: got %v, want the zero curve", factor, got)
		}
	}
}

func TestNormalizedRejectsNonFiniteSum(t *testing.T) {
	c := Curve{math.Inf(1), 1}
	if _, ok := c.Normalized(); ok {
		t.Error("infinite curve must not normalize")
	}
}
