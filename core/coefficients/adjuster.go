package coefficients

import (
	"math"

	"consumption-interp/core/types"
)

// Default seasonal multipliers applied to electricity curves
const (
	DefaultCoolingFactor        = 1.2
	DefaultWinterLightingFactor = 1.1
)

var (
	summerMonths = [...]int{5, 6, 7}  // June, July, August
	winterMonths = [...]int{11, 0, 1} // December, January, February
)

// Adjust reshapes a base curve for one building and re-normalizes it.
//
// Electricity curves get coolingFactor on the summer months and
// winterLightingFactor on the winter months; water curves get neither.
// When both buildingSize and occupancy are given every entry is scaled by
// (buildingSize/1000)*(occupancy/100), which normalization then cancels;
// the step is skipped when it would overflow the curve.
// A curve whose sum is not positive is returned without normalization.
// A curve the multipliers overflowed is returned as the zero curve.
func Adjust(category types.Category, base Curve, buildingSize, occupancy *float64, coolingFactor, winterLightingFactor float64) Curve {
	adjusted := base

	if category == types.CategoryElectricity {
		for _, i := range summerMonths {
			adjusted[i] *= coolingFactor
		}
		for _, i := range winterMonths {
			adjusted[i] *= winterLightingFactor
		}
	}

	if buildingSize != nil && occupancy != nil {
		scale := (*buildingSize / 1000) * (*occupancy / 100)
		scaled := adjusted
		for i := range scaled {
			scaled[i] *= scale
		}
		if isFinite(scaled.Sum()) {
			adjusted = scaled
		}
	}

	if !isFinite(adjusted.Sum()) {
		return Curve{}
	}
	normalized, _ := adjusted.Normalized()
	return normalized
}

// AdjustWith applies request parameters, filling unset factors with the
// given defaults
func AdjustWith(category types.Category, base Curve, p *types.AdjustmentParameters, defaultCooling, defaultWinter float64) Curve {
	cooling, winter := defaultCooling, defaultWinter
	var size, occupancy *float64
	if p != nil {
		if p.CoolingFactor > 0 {
			cooling = p.CoolingFactor
		}
		if p.WinterLightingFactor > 0 {
			winter = p.WinterLightingFactor
		}
		size, occupancy = p.BuildingSize, p.Occupancy
	}
	return Adjust(category, base, size, occupancy, cooling, winter)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
