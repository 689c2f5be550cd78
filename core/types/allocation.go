package types

// MonthlyValue is one allocated month
type MonthlyValue struct {
	Month Month `json:"month"`

	// Value is the share of the annual value attributed to this month
	Value float64 `json:"value"`

	// Weight is the basis the share was derived from: the degree measure
	// for climate allocations, the coefficient for seasonal ones
	Weight float64 `json:"weight"`
}

// CurveSource records which coefficient curve drove a seasonal allocation
type CurveSource string

const (
	CurveBase     CurveSource = "base"
	CurveAdjusted CurveSource = "adjusted"
)

// Allocation is the month-by-month distribution of an annual value
type Allocation struct {
	RequestID   string         `json:"request_id"`
	Category    Category       `json:"category"`
	Region      string         `json:"region,omitempty"`
	Span        DateSpan       `json:"span"`
	AnnualValue float64        `json:"annual_value"`
	Strategy    Strategy       `json:"strategy"`
	Curve       CurveSource    `json:"curve,omitempty"`
	Months      []MonthlyValue `json:"months"`

	// Degenerate is set when the weighting curve summed to zero and every
	// month was allocated zero
	Degenerate bool `json:"degenerate,omitempty"`
}

// Total sums the allocated values
func (a *Allocation) Total() float64 {
	var total float64
	for _, m := range a.Months {
		total += m.Value
	}
	return total
}

// Values returns the allocated values in month order
func (a *Allocation) Values() []float64 {
	values := make([]float64, len(a.Months))
	for i, m := range a.Months {
		values[i] = m.Value
	}
	return values
}
