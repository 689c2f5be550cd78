// Package cmd - interpolate command
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"consumption-interp/core/climate"
	"consumption-interp/core/engine"
	"consumption-interp/core/output"
	"consumption-interp/core/types"
	"consumption-interp/internal/config"
	"consumption-interp/internal/logging"
)

var (
	category             string
	region               string
	startDate            string
	endDate              string
	annualValue          string
	buildingSize         float64
	occupancy            float64
	coolingFactor        float64
	winterLightingFactor float64
	applyAdjustment      bool
	degrees              []float64
	outputFormat         string
	outPath              string
)

// interpolateCmd represents the interpolate command
var interpolateCmd = &cobra.Command{
	Use:   "interpolate",
	Short: "Interpolate one annual value into monthly values",
	Long: `Distribute an annual value across every calendar month overlapping the
date range.

Dates may be given as DD.MM.YYYY or YYYY-MM-DD. --degrees supplies the
monthly degree measures directly, starting at the first month of the range,
and skips the DWD download.

Examples:
  interp interpolate -c heating -r BERLIN --start 01.01.2024 --end 31.03.2024 --value 9000
  interp interpolate -c heating -r BERLIN --start 01.01.2024 --end 31.03.2024 --value 9000 --degrees 300,200,100
  interp interpolate -c electricity --start 2024-01-01 --end 2024-12-31 --value 12000 \
    --building-size 2500 --occupancy 80 --apply-adjustment`,
	Args: cobra.NoArgs,
	RunE: runInterpolate,
}

func init() {
	f := interpolateCmd.Flags()
	f.StringVarP(&category, "category", "c", "", "consumption category (heating, cooling, electricity, water)")
	f.StringVarP(&region, "region", "r", "", "DWD region for heating and cooling")
	f.StringVar(&startDate, "start", "", "first day of the range")
	f.StringVar(&endDate, "end", "", "last day of the range")
	f.StringVar(&annualValue, "value", "", "annual value to distribute")
	f.Float64Var(&buildingSize, "building-size", 0, "building size in m² (electricity and water)")
	f.Float64Var(&occupancy, "occupancy", 0, "occupancy in persons (electricity and water)")
	f.Float64Var(&coolingFactor, "cooling-factor", 0, "summer multiplier for electricity (default from config)")
	f.Float64Var(&winterLightingFactor, "winter-lighting-factor", 0, "winter multiplier for electricity (default from config)")
	f.BoolVar(&applyAdjustment, "apply-adjustment", false, "allocate with the adjusted coefficient curve")
	f.Float64SliceVar(&degrees, "degrees", nil, "monthly degree measures, skipping the DWD download")
	f.StringVarP(&outputFormat, "format", "f", "", "output format (table, csv, json)")
	f.StringVarP(&outPath, "out", "o", "", "write to this file, or into this directory under the download name")

	for _, name := range []string{"category", "start", "end", "value"} {
		interpolateCmd.MarkFlagRequired(name)
	}
}

func runInterpolate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	c, err := types.ParseCategory(category)
	if err != nil {
		return err
	}
	start, err := types.ParseDate(startDate)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := types.ParseDate(endDate)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	format, err := resolveFormat(outputFormat)
	if err != nil {
		return err
	}

	var provider climate.Provider
	if len(degrees) > 0 {
		provider = climate.SeriesProvider(c, region, types.MonthOf(start), degrees)
	}
	eng, err := newEngine(provider, applyAdjustment)
	if err != nil {
		return err
	}

	req := engine.Request{
		Category:    c,
		Region:      region,
		Start:       start,
		End:         end,
		AnnualValue: annualValue,
		Adjustment:  adjustmentFromFlags(cmd),
	}

	alloc, err := eng.Interpolate(ctx, req)
	if err != nil {
		return err
	}

	if outPath == "" {
		return render(cmd.OutOrStdout(), alloc, format)
	}
	path := outPath
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, output.FileName(c, format, time.Now()))
	}
	if err := writeFile(path, alloc, format); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

// adjustmentFromFlags returns nil when no adjustment flag was given
func adjustmentFromFlags(cmd *cobra.Command) *types.AdjustmentParameters {
	f := cmd.Flags()
	if !f.Changed("building-size") && !f.Changed("occupancy") &&
		!f.Changed("cooling-factor") && !f.Changed("winter-lighting-factor") {
		return nil
	}
	p := &types.AdjustmentParameters{
		CoolingFactor:        coolingFactor,
		WinterLightingFactor: winterLightingFactor,
	}
	if f.Changed("building-size") {
		v := buildingSize
		p.BuildingSize = &v
	}
	if f.Changed("occupancy") {
		v := occupancy
		p.Occupancy = &v
	}
	return p
}

func resolveFormat(flag string) (output.Format, error) {
	if flag == "" {
		flag = config.Get().Output.DefaultFormat
	}
	return output.ParseFormat(flag)
}

func render(w io.Writer, alloc *types.Allocation, format output.Format) error {
	f, err := output.New(format, config.Get().Output.Precision)
	if err != nil {
		return err
	}
	return f.Render(w, alloc)
}

func writeFile(path string, alloc *types.Allocation, format output.Format) error {
	var buf bytes.Buffer
	if err := render(&buf, alloc, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Debug("Wrote allocation", zap.String("path", path))
	return nil
}
