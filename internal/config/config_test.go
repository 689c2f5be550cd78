package config

import (
	"os"
	"path/filepath"
	"testing"

	"consumption-interp/core/types"
	"consumption-interp/internal/errors"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.FetchConcurrency != 4 || cfg.Engine.ApplyAdjustment {
		t.Errorf("unexpected defaults: %+v", cfg.Engine)
	}
	if len(cfg.Climate.Regions) != 25 {
		t.Errorf("got %d regions, want 25", len(cfg.Climate.Regions))
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Engine.ApplyAdjustment = true
	cfg.Output.Precision = 3
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Engine.ApplyAdjustment || loaded.Output.Precision != 3 {
		t.Errorf("round trip lost settings: %+v", loaded)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("err = %v, want CONFIG_ERROR", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvFetchConcurrency, "9")
	t.Setenv(EnvApplyAdjustment, "true")
	t.Setenv(EnvHeatingURL, "http://hdd.local/")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Engine.FetchConcurrency != 9 || !cfg.Engine.ApplyAdjustment {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Climate.HeatingBaseURL != "http://hdd.local/" || cfg.Logging.Level != "debug" {
		t.Errorf("climate/log = %+v / %+v", cfg.Climate, cfg.Logging)
	}
}

func TestApplyEnvReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvAddr+"=:9999\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvAddr) })

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr = %q, want :9999", cfg.Server.Addr)
	}
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvFetchConcurrency, "many")
	if err := Default().ApplyEnv(); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("err = %v, want CONFIG_ERROR", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero concurrency", func(c *Config) { c.Engine.FetchConcurrency = 0 }, true},
		{"negative factor", func(c *Config) { c.Engine.CoolingFactor = -1 }, true},
		{"short curve", func(c *Config) { c.Coefficients.Water = []float64{1, 2} }, true},
		{"valid override", func(c *Config) {
			c.Coefficients.Electricity = []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTableUsesOverride(t *testing.T) {
	cfg := Default()
	cfg.Coefficients.Water = []float64{0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 0, 0}
	table, err := cfg.Table()
	if err != nil {
		t.Fatal(err)
	}
	water, _ := table.Base(types.CategoryWater)
	if water[5] != 0.5 || water[0] != 0 {
		t.Errorf("water curve = %v", water)
	}
}
