// Package requestfile loads batches of interpolation requests from HCL.
//
//	request "office-heating" {
//	  category     = "heating"
//	  region       = "BERLIN"
//	  start        = "01.01.2024"
//	  end          = "31.12.2024"
//	  annual_value = 48000
//	}
package requestfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"consumption-interp/core/engine"
	"consumption-interp/core/types"
	"consumption-interp/internal/errors"
)

// File is the decoded request file
type File struct {
	Requests []Block `hcl:"request,block"`
}

// Block is one request block
type Block struct {
	Name        string `hcl:"name,label"`
	Category    string `hcl:"category"`
	Region      string `hcl:"region,optional"`
	Start       string `hcl:"start"`
	End         string `hcl:"end"`
	AnnualValue string `hcl:"annual_value"`

	BuildingSize         *float64 `hcl:"building_size,optional"`
	Occupancy            *float64 `hcl:"occupancy,optional"`
	CoolingFactor        *float64 `hcl:"cooling_factor,optional"`
	WinterLightingFactor *float64 `hcl:"winter_lighting_factor,optional"`
}

// Named pairs a request with its block label
type Named struct {
	Name    string
	Request engine.Request
}

// Load reads and decodes a request file
func Load(path string) ([]Named, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, src)
}

// Decode decodes request blocks. filename selects the syntax: ".hcl" for
// native syntax, ".json" for HCL JSON.
func Decode(filename string, src []byte) ([]Named, error) {
	var f File
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		return nil, errors.Wrap(errors.TypeInvalidInput, "cannot decode "+filename, summarize(err))
	}

	seen := make(map[string]bool, len(f.Requests))
	out := make([]Named, 0, len(f.Requests))
	for _, b := range f.Requests {
		if seen[b.Name] {
			return nil, errors.InvalidInput("name", fmt.Sprintf("duplicate request %q", b.Name))
		}
		seen[b.Name] = true

		req, err := b.Request()
		if err != nil {
			return nil, fmt.Errorf("request %q: %w", b.Name, err)
		}
		out = append(out, Named{Name: b.Name, Request: req})
	}
	return out, nil
}

// Request converts a block into an engine request
func (b Block) Request() (engine.Request, error) {
	category, err := types.ParseCategory(b.Category)
	if err != nil {
		return engine.Request{}, errors.InvalidInput("category", err.Error())
	}
	start, err := types.ParseDate(b.Start)
	if err != nil {
		return engine.Request{}, errors.InvalidInput("start", err.Error())
	}
	end, err := types.ParseDate(b.End)
	if err != nil {
		return engine.Request{}, errors.InvalidInput("end", err.Error())
	}

	req := engine.Request{
		Category:    category,
		Region:      b.Region,
		Start:       start,
		End:         end,
		AnnualValue: b.AnnualValue,
	}
	if b.BuildingSize != nil || b.Occupancy != nil || b.CoolingFactor != nil || b.WinterLightingFactor != nil {
		p := &types.AdjustmentParameters{BuildingSize: b.BuildingSize, Occupancy: b.Occupancy}
		if b.CoolingFactor != nil {
			p.CoolingFactor = *b.CoolingFactor
		}
		if b.WinterLightingFactor != nil {
			p.WinterLightingFactor = *b.WinterLightingFactor
		}
		req.Adjustment = p
	}
	return req, nil
}

// summarize flattens HCL diagnostics into one error line
func summarize(err error) error {
	diags, ok := err.(hcl.Diagnostics)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(diags))
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg := d.Summary
		if d.Detail != "" {
			msg += ": " + d.Detail
		}
		if d.Subject != nil {
			msg = d.Subject.String() + ": " + msg
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
