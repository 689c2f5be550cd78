// Package types defines core domain types shared across all layers.
// This package contains NO allocation logic - only type definitions and
// their validation.
package types

import (
	"fmt"
	"math"
	"strings"
)

// Category represents a consumption category
type Category string

const (
	CategoryHeating     Category = "heating"
	CategoryCooling     Category = "cooling"
	CategoryElectricity Category = "electricity"
	CategoryWater       Category = "water"
)

// Categories lists every supported category in display order
var Categories = []Category{CategoryHeating, CategoryCooling, CategoryElectricity, CategoryWater}

var categoryAliases = map[string]Category{
	"heating":     CategoryHeating,
	"waerme":      CategoryHeating,
	"wärme":       CategoryHeating,
	"cooling":     CategoryCooling,
	"kaelte":      CategoryCooling,
	"kälte":       CategoryCooling,
	"electricity": CategoryElectricity,
	"strom":       CategoryElectricity,
	"water":       CategoryWater,
	"wasser":      CategoryWater,
}

// ParseCategory resolves a category name or one of its German aliases
func ParseCategory(s string) (Category, error) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is a known category
func (c Category) IsValid() bool {
	switch c {
	case CategoryHeating, CategoryCooling, CategoryElectricity, CategoryWater:
		return true
	default:
		return false
	}
}

// IsClimateDriven reports whether the category is weighted by degree measures
func (c Category) IsClimateDriven() bool {
	return c == CategoryHeating || c == CategoryCooling
}

// Strategy names the weighting strategy used for an allocation
type Strategy string

const (
	StrategyClimate  Strategy = "climate"
	StrategySeasonal Strategy = "seasonal"
)

// StrategyFor returns the strategy selected by a category
func StrategyFor(c Category) Strategy {
	if c.IsClimateDriven() {
		return StrategyClimate
	}
	return StrategySeasonal
}

// AdjustmentParameters scale a seasonal curve for a specific building.
// BuildingSize and Occupancy are optional; scaling applies only when both are set.
// Zero factors mean "use the configured default".
type AdjustmentParameters struct {
	BuildingSize         *float64 `json:"building_size,omitempty"`
	Occupancy            *float64 `json:"occupancy,omitempty"`
	CoolingFactor        float64  `json:"cooling_factor,omitempty"`
	WinterLightingFactor float64  `json:"winter_lighting_factor,omitempty"`
}

// HasScaling reports whether both building size and occupancy are present
func (p *AdjustmentParameters) HasScaling() bool {
	return p != nil && p.BuildingSize != nil && p.Occupancy != nil
}

// Validate checks the parameters, returning the offending field name on failure
func (p *AdjustmentParameters) Validate() (string, error) {
	if p == nil {
		return "", nil
	}
	if p.BuildingSize != nil && !(*p.BuildingSize > 0 && isFinite(*p.BuildingSize)) {
		return "building_size", fmt.Errorf("building size must be a positive finite number, got %v", *p.BuildingSize)
	}
	if p.Occupancy != nil && !(*p.Occupancy > 0 && isFinite(*p.Occupancy)) {
		return "occupancy", fmt.Errorf("occupancy must be a positive finite number, got %v", *p.Occupancy)
	}
	if !(p.CoolingFactor >= 0 && isFinite(p.CoolingFactor)) {
		return "cooling_factor", fmt.Errorf("cooling factor must be a non-negative finite number, got %v", p.CoolingFactor)
	}
	if !(p.WinterLightingFactor >= 0 && isFinite(p.WinterLightingFactor)) {
		return "winter_lighting_factor", fmt.Errorf("winter lighting factor must be a non-negative finite number, got %v", p.WinterLightingFactor)
	}
	return "", nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
