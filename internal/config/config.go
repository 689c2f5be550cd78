// Package config provides configuration management.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"consumption-interp/adapters/dwd"
	"consumption-interp/core/coefficients"
	"consumption-interp/core/engine"
	"consumption-interp/core/types"
	"consumption-interp/internal/errors"
	"consumption-interp/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Climate configures the degree-measure source
	Climate ClimateConfig `json:"climate"`

	// Engine configures the interpolation engine
	Engine EngineConfig `json:"engine"`

	// Coefficients optionally overrides the seasonal curves
	Coefficients CoefficientsConfig `json:"coefficients,omitempty"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Server configures the HTTP surface
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// ClimateConfig configures the DWD client
type ClimateConfig struct {
	HeatingBaseURL string   `json:"heating_base_url"`
	CoolingBaseURL string   `json:"cooling_base_url"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	RetryCount     int      `json:"retry_count"`
	Regions        []string `json:"regions"`
}

// EngineConfig configures the interpolation engine
type EngineConfig struct {
	// FetchConcurrency bounds parallel monthly fetches
	FetchConcurrency int `json:"fetch_concurrency"`

	// ApplyAdjustment feeds the adjusted curve into seasonal allocations
	ApplyAdjustment bool `json:"apply_adjustment"`

	CoolingFactor        float64 `json:"cooling_factor"`
	WinterLightingFactor float64 `json:"winter_lighting_factor"`
}

// CoefficientsConfig holds raw monthly weights; they are normalized on load
type CoefficientsConfig struct {
	Electricity []float64 `json:"electricity,omitempty"`
	Water       []float64 `json:"water,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// Precision is the number of decimals in rendered values
	Precision int32 `json:"precision"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr        string   `json:"addr"`
	CORSOrigins []string `json:"cors_origins"`
}

// Default returns a default configuration
func Default() *Config {
	dwdDefaults := dwd.DefaultConfig()
	return &Config{
		Version: "1.0",
		Climate: ClimateConfig{
			HeatingBaseURL: dwdDefaults.HeatingBaseURL,
			CoolingBaseURL: dwdDefaults.CoolingBaseURL,
			TimeoutSeconds: int(dwdDefaults.Timeout / time.Second),
			Regions:        append([]string(nil), dwd.Regions...),
		},
		Engine: EngineConfig{
			FetchConcurrency:     4,
			CoolingFactor:        coefficients.DefaultCoolingFactor,
			WinterLightingFactor: coefficients.DefaultWinterLightingFactor,
		},
		Output: OutputConfig{
			DefaultFormat: "table",
			Precision:     2,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns $HOME/.consumption-interp.json
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".consumption-interp.json")
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("cannot read "+path, err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Config("cannot parse "+path, err)
	}
	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Environment variables read by ApplyEnv
const (
	EnvHeatingURL       = "INTERP_HEATING_URL"
	EnvCoolingURL       = "INTERP_COOLING_URL"
	EnvFetchConcurrency = "INTERP_FETCH_CONCURRENCY"
	EnvApplyAdjustment  = "INTERP_APPLY_ADJUSTMENT"
	EnvAddr             = "INTERP_ADDR"
	EnvLogLevel         = "INTERP_LOG_LEVEL"
	EnvLogFormat        = "INTERP_LOG_FORMAT"
)

// ApplyEnv loads a .env file from the working directory when present and
// overlays INTERP_* environment variables
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return errors.Config("cannot read .env", err)
	}

	if v := os.Getenv(EnvHeatingURL); v != "" {
		c.Climate.HeatingBaseURL = v
	}
	if v := os.Getenv(EnvCoolingURL); v != "" {
		c.Climate.CoolingBaseURL = v
	}
	if v := os.Getenv(EnvFetchConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Config(EnvFetchConcurrency+" must be an integer", err)
		}
		c.Engine.FetchConcurrency = n
	}
	if v := os.Getenv(EnvApplyAdjustment); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Config(EnvApplyAdjustment+" must be a boolean", err)
		}
		c.Engine.ApplyAdjustment = b
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
	return nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Engine.FetchConcurrency <= 0 {
		return errors.Config(fmt.Sprintf("engine.fetch_concurrency must be positive, got %d", c.Engine.FetchConcurrency), nil)
	}
	if c.Engine.CoolingFactor < 0 || c.Engine.WinterLightingFactor < 0 {
		return errors.Config("engine factors must not be negative", nil)
	}
	if c.Climate.TimeoutSeconds < 0 || c.Climate.RetryCount < 0 {
		return errors.Config("climate timeout and retry count must not be negative", nil)
	}
	if _, err := c.Table(); err != nil {
		return err
	}
	return nil
}

// Table builds the seasonal coefficient table
func (c *Config) Table() (*coefficients.Table, error) {
	weights := map[types.Category][]float64{}
	if len(c.Coefficients.Electricity) > 0 {
		weights[types.CategoryElectricity] = c.Coefficients.Electricity
	}
	if len(c.Coefficients.Water) > 0 {
		weights[types.CategoryWater] = c.Coefficients.Water
	}
	if len(weights) == 0 {
		return coefficients.Default(), nil
	}
	table, err := coefficients.NewTable(weights)
	if err != nil {
		return nil, errors.Config("invalid coefficients", err)
	}
	return table, nil
}

// DWD returns the DWD client configuration
func (c *Config) DWD() dwd.Config {
	return dwd.Config{
		HeatingBaseURL: c.Climate.HeatingBaseURL,
		CoolingBaseURL: c.Climate.CoolingBaseURL,
		Timeout:        time.Duration(c.Climate.TimeoutSeconds) * time.Second,
		RetryCount:     c.Climate.RetryCount,
	}
}

// EngineOptions returns the engine configuration
func (c *Config) EngineOptions() engine.Config {
	return engine.Config{
		FetchConcurrency:     c.Engine.FetchConcurrency,
		ApplyAdjustment:      c.Engine.ApplyAdjustment,
		CoolingFactor:        c.Engine.CoolingFactor,
		WinterLightingFactor: c.Engine.WinterLightingFactor,
	}
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
