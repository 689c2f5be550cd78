// Package output renders allocations as tabular files and terminal tables.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"consumption-interp/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatTable is a human-readable terminal table
	FormatTable Format = "table"

	// FormatCSV is one row per month, suitable for spreadsheets
	FormatCSV Format = "csv"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	case "cli":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (table, csv, json)", s)
	}
}

// ValueColumn is the header of the allocated value column
const ValueColumn = "Interpolated Consumption (kWh or m³)"

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the allocation
	Render(w io.Writer, alloc *types.Allocation) error
}

// New returns the formatter for a format. precision is the number of
// decimal places values are rounded to; negative keeps full precision.
func New(format Format, precision int32) (Formatter, error) {
	switch format {
	case FormatTable:
		return &tableFormatter{precision: precision}, nil
	case FormatCSV:
		return &csvFormatter{precision: precision}, nil
	case FormatJSON:
		return &jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func formatValue(v float64, precision int32) string {
	if precision < 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(precision)
}

type csvFormatter struct {
	precision int32
}

func (f *csvFormatter) Format() Format { return FormatCSV }

func (f *csvFormatter) Render(w io.Writer, alloc *types.Allocation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Year", "Month", ValueColumn}); err != nil {
		return err
	}
	for _, m := range alloc.Months {
		row := []string{
			strconv.Itoa(m.Month.Year),
			fmt.Sprintf("%02d", int(m.Month.Month)),
			formatValue(m.Value, f.precision),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonFormatter struct{}

func (f *jsonFormatter) Format() Format { return FormatJSON }

func (f *jsonFormatter) Render(w io.Writer, alloc *types.Allocation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(alloc)
}

type tableFormatter struct {
	precision int32
}

func (f *tableFormatter) Format() Format { return FormatTable }

func (f *tableFormatter) Render(w io.Writer, alloc *types.Allocation) error {
	fmt.Fprintf(w, "%s allocation (%s strategy", alloc.Category, alloc.Strategy)
	if alloc.Region != "" && alloc.Strategy == types.StrategyClimate {
		fmt.Fprintf(w, ", region %s", alloc.Region)
	}
	if alloc.Curve != "" {
		fmt.Fprintf(w, ", %s curve", alloc.Curve)
	}
	fmt.Fprintf(w, ")\n%s\n\n", alloc.Span)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Month\tWeight\tValue\t")
	for _, m := range alloc.Months {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", m.Month, formatValue(m.Weight, 4), formatValue(m.Value, f.precision))
	}
	fmt.Fprintf(tw, "Total\t\t%s\t\n", formatValue(alloc.Total(), f.precision))
	if err := tw.Flush(); err != nil {
		return err
	}
	if alloc.Degenerate {
		fmt.Fprintln(w, "\nwarning: coefficient curve summed to zero; every month is zero")
	}
	return nil
}

var downloadNames = map[types.Category]string{
	types.CategoryHeating:     "Wärmemenge",
	types.CategoryCooling:     "Kältemenge",
	types.CategoryElectricity: "Stromverbrauch",
	types.CategoryWater:       "Wasserverbrauch",
}

// FileName returns the download name for an allocation, e.g.
// "241014_Wärmemenge.csv"
func FileName(category types.Category, format Format, now time.Time) string {
	name, ok := downloadNames[category]
	if !ok {
		name = "Interpolation"
	}
	ext := string(format)
	if format == FormatTable {
		ext = "txt"
	}
	return fmt.Sprintf("%s_%s.%s", now.Format("060102"), name, ext)
}
