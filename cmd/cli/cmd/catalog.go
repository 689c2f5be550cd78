// Package cmd - regions and coefficients commands
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"consumption-interp/core/types"
	"consumption-interp/internal/config"
)

// regionsCmd lists the configured region catalogue
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the DWD regions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, r := range config.Get().Climate.Regions {
			fmt.Fprintln(cmd.OutOrStdout(), r)
		}
	},
}

// coefficientsCmd prints base and adjusted seasonal curves
var coefficientsCmd = &cobra.Command{
	Use:   "coefficients",
	Short: "Show the seasonal coefficient curves",
	Long: `Show the base coefficient curves for electricity and water, and the
adjusted curves for the given building parameters.

Example:
  interp coefficients --building-size 2500 --occupancy 80`,
	Args: cobra.NoArgs,
	RunE: runCoefficients,
}

func init() {
	f := coefficientsCmd.Flags()
	f.Float64Var(&buildingSize, "building-size", 0, "building size in m²")
	f.Float64Var(&occupancy, "occupancy", 0, "occupancy in persons")
	f.Float64Var(&coolingFactor, "cooling-factor", 0, "summer multiplier for electricity")
	f.Float64Var(&winterLightingFactor, "winter-lighting-factor", 0, "winter multiplier for electricity")
}

func runCoefficients(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(nil, false)
	if err != nil {
		return err
	}
	p := adjustmentFromFlags(cmd)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Category\tCurve\t")
	for m := 1; m <= 12; m++ {
		fmt.Fprintf(tw, "%02d\t", m)
	}
	fmt.Fprintln(tw)

	for _, c := range types.Categories {
		base, ok := eng.Table().Base(c)
		if !ok {
			continue
		}
		adjusted, err := eng.Adjusted(c, p)
		if err != nil {
			return err
		}
		for _, row := range []struct {
			name   string
			values []float64
		}{
			{"base", base.Slice()},
			{"adjusted", adjusted.Slice()},
		} {
			fmt.Fprintf(tw, "%s\t%s\t", c, row.name)
			for _, v := range row.values {
				fmt.Fprintf(tw, "%.4f\t", v)
			}
			fmt.Fprintln(tw)
		}
	}
	return tw.Flush()
}
