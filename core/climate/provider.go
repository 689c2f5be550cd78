// Package climate defines the contract for degree-measure sources used by
// the climate-weighted allocation strategy.
package climate

import (
	"context"
	"fmt"
	"sync"

	"consumption-interp/core/types"
	"consumption-interp/internal/errors"
)

// Provider returns one degree measure per (category, region, month):
// heating degree days for heating, cooling degree hours for cooling.
//
// Implementations fail with errors.TypeRegionNotFound when the region is
// unknown upstream and errors.TypeDataUnavailable when the month has no
// published data. Providers must be safe for concurrent use.
type Provider interface {
	// Name identifies the provider in logs
	Name() string

	// FetchDegreeMeasure returns the measure for a single month
	FetchDegreeMeasure(ctx context.Context, category types.Category, region string, month types.Month) (float64, error)
}

// StaticProvider serves degree measures from memory
type StaticProvider struct {
	mu     sync.RWMutex
	values map[string]float64
}

// NewStaticProvider creates an empty static provider
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{values: make(map[string]float64)}
}

// SeriesProvider returns a provider that serves the given measures for
// consecutive months starting at first. Only lookups for category and
// region are served; anything else is DATA_UNAVAILABLE.
func SeriesProvider(category types.Category, region string, first types.Month, measures []float64) *StaticProvider {
	p := NewStaticProvider()
	m := first
	for _, v := range measures {
		p.Set(category, region, m, v)
		m = m.Next()
	}
	return p
}

func staticKey(category types.Category, region string, month types.Month) string {
	return fmt.Sprintf("%s/%s/%s", category, region, month)
}

// Set stores a measure
func (p *StaticProvider) Set(category types.Category, region string, month types.Month, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[staticKey(category, region, month)] = value
}

// Name returns "static"
func (p *StaticProvider) Name() string {
	return "static"
}

// FetchDegreeMeasure returns the stored measure or DATA_UNAVAILABLE
func (p *StaticProvider) FetchDegreeMeasure(ctx context.Context, category types.Category, region string, month types.Month) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[staticKey(category, region, month)]
	if !ok {
		return 0, errors.DataUnavailable(region, month.String(), nil).
			WithContext(errors.KeyCategory, category.String())
	}
	return v, nil
}
