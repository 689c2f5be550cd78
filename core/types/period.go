package types

import (
	"fmt"
	"strings"
	"time"
)

// Month identifies one calendar month
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the calendar month containing t
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Next returns the following calendar month
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// After reports whether m is later than o
func (m Month) After(o Month) bool {
	if m.Year != o.Year {
		return m.Year > o.Year
	}
	return m.Month > o.Month
}

// Index returns the zero-based calendar index (January = 0)
func (m Month) Index() int {
	return int(m.Month) - 1
}

// String returns the month as YYYY-MM
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// DateLayouts are the accepted date input formats
var DateLayouts = []string{"02.01.2006", "2006-01-02"}

// ParseDate parses a date in one of DateLayouts
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected DD.MM.YYYY or YYYY-MM-DD", s)
}

// DateSpan is an inclusive calendar date range
type DateSpan struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateSpan creates a span, rejecting a start after the end
func NewDateSpan(start, end time.Time) (DateSpan, error) {
	if start.After(end) {
		return DateSpan{}, fmt.Errorf("start date %s is after end date %s",
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return DateSpan{Start: start, End: end}, nil
}

// Months decomposes the span into every calendar month it overlaps, in order
func (s DateSpan) Months() []Month {
	first, last := MonthOf(s.Start), MonthOf(s.End)
	var months []Month
	for m := first; !m.After(last); m = m.Next() {
		months = append(months, m)
	}
	return months
}

// String returns the span as "YYYY-MM-DD..YYYY-MM-DD"
func (s DateSpan) String() string {
	return s.Start.Format(time.DateOnly) + ".." + s.End.Format(time.DateOnly)
}
