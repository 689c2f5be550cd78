package dwd

import (
	"bufio"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"consumption-interp/core/types"
)

// Layout describes one DWD monthly file family
type Layout struct {
	// FilePattern is formatted with year and month
	FilePattern string

	// MetadataLines precede the header row
	MetadataLines int

	// RegionColumn holds the station/city name (zero-based)
	RegionColumn int

	// ValueColumn holds the degree measure (zero-based)
	ValueColumn int
}

var (
	// HeatingLayout is the VDI 3807 heating degree day file (base 20/15 °C)
	HeatingLayout = Layout{
		FilePattern:   "gradtage_%04d%02d.csv",
		MetadataLines: 3,
		RegionColumn:  3,
		ValueColumn:   6,
	}

	// CoolingLayout is the cooling degree hour file (base 18 °C)
	CoolingLayout = Layout{
		FilePattern:   "kuehlgrade_18_0_%04d%02d.csv",
		MetadataLines: 5,
		RegionColumn:  3,
		ValueColumn:   7,
	}
)

// FileName returns the file holding the given month
func (l Layout) FileName(month types.Month) string {
	return fmt.Sprintf(l.FilePattern, month.Year, int(month.Month))
}

var (
	errRegionMissing = stderrors.New("region not listed")
	errMalformed     = stderrors.New("malformed file")
)

// ParseMeasure reads a DWD monthly file and returns the value of the first
// row whose region column contains region, ignoring case.
func ParseMeasure(r io.Reader, layout Layout, region string) (float64, error) {
	br := bufio.NewReader(r)
	for i := 0; i < layout.MetadataLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return 0, fmt.Errorf("%w: %d metadata lines expected: %v", errMalformed, layout.MetadataLines, err)
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		return 0, fmt.Errorf("%w: missing header: %v", errMalformed, err)
	}

	needle := strings.ToUpper(strings.TrimSpace(region))
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return 0, errRegionMissing
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %v", errMalformed, err)
		}
		if len(record) <= layout.RegionColumn {
			continue
		}
		if !strings.Contains(strings.ToUpper(record[layout.RegionColumn]), needle) {
			continue
		}
		if len(record) <= layout.ValueColumn {
			return 0, fmt.Errorf("%w: row for %s has %d columns", errMalformed, record[layout.RegionColumn], len(record))
		}
		return parseNumber(record[layout.ValueColumn])
	}
}

func parseNumber(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if !strings.Contains(cell, ".") {
		cell = strings.Replace(cell, ",", ".", 1)
	}
	d, err := decimal.NewFromString(cell)
	if err != nil {
		return 0, fmt.Errorf("%w: value %q: %v", errMalformed, cell, err)
	}
	f, _ := d.Float64()
	return f, nil
}
