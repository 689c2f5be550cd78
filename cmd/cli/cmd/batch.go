// Package cmd - batch command
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"consumption-interp/adapters/requestfile"
	"consumption-interp/core/output"
	"consumption-interp/internal/logging"
)

var (
	batchOutDir string
	batchFormat string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file.hcl>",
	Short: "Run every request in an HCL request file",
	Long: `Run each request block of an HCL file. A failing request is reported and
the remaining requests still run; the command fails if any request failed.

Example file:
  request "office-heating" {
    category     = "heating"
    region       = "BERLIN"
    start        = "01.01.2024"
    end          = "31.12.2024"
    annual_value = 48000
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "write one file per request into this directory")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "output format (table, csv, json)")
	batchCmd.Flags().BoolVar(&applyAdjustment, "apply-adjustment", false, "allocate with the adjusted coefficient curve")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	requests, err := requestfile.Load(args[0])
	if err != nil {
		return err
	}
	format, err := resolveFormat(batchFormat)
	if err != nil {
		return err
	}
	eng, err := newEngine(nil, applyAdjustment)
	if err != nil {
		return err
	}
	if batchOutDir != "" {
		if err := os.MkdirAll(batchOutDir, 0755); err != nil {
			return err
		}
	}

	now := time.Now()
	failed := 0
	for _, r := range requests {
		alloc, err := eng.Interpolate(ctx, r.Request)
		if err != nil {
			failed++
			logging.Warn("Request failed", zap.String("request", r.Name), zap.Error(err))
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Name, err)
			continue
		}

		if batchOutDir == "" {
			fmt.Fprintf(out, "== %s ==\n", r.Name)
			if err := render(out, alloc, format); err != nil {
				return err
			}
			fmt.Fprintln(out)
			continue
		}
		path := filepath.Join(batchOutDir, r.Name+"_"+output.FileName(alloc.Category, format, now))
		if err := writeFile(path, alloc, format); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: wrote %s\n", r.Name, path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(requests))
	}
	return nil
}
