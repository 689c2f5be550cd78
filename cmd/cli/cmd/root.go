// Package cmd provides the CLI commands for interp.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"consumption-interp/adapters/dwd"
	"consumption-interp/core/climate"
	"consumption-interp/core/engine"
	"consumption-interp/internal/config"
	"consumption-interp/internal/logging"
)

// Version is the CLI version
const Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "interp",
	Short: "Distribute annual consumption figures across calendar months",
	Long: `interp splits an annual heating, cooling, electricity or water figure into
monthly values.

Heating and cooling are weighted by the monthly degree days and degree hours
published by the Deutscher Wetterdienst for a region. Electricity and water
follow a fixed seasonal coefficient curve.

Examples:
  interp interpolate -c heating -r BERLIN --start 01.01.2024 --end 31.12.2024 --value 48000
  interp interpolate -c strom --start 2024-01-01 --end 2024-06-30 --value 12000 -f csv
  interp batch requests.hcl --out-dir ./out`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.consumption-interp.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(interpolateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(coefficientsCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading environment: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// newEngine builds an engine from the global configuration. A non-nil
// provider replaces the DWD client.
func newEngine(provider climate.Provider, applyAdjustment bool) (*engine.Engine, error) {
	cfg := config.Get()
	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		provider = dwd.NewClient(cfg.DWD())
	}
	opts := cfg.EngineOptions()
	if applyAdjustment {
		opts.ApplyAdjustment = true
	}
	return engine.NewEngine(provider, table, opts), nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "interp version %s\n", Version)
	},
}
