// Package main - Entry point for the consumption interpolation server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"consumption-interp/adapters/dwd"
	httpadapter "consumption-interp/adapters/http"
	"consumption-interp/api"
	"consumption-interp/core/engine"
	"consumption-interp/internal/config"
	"consumption-interp/internal/logging"
	"consumption-interp/internal/metrics"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "interp-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", config.DefaultPath(), "config file")
	addr := flag.String("addr", "", "server address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	table, err := cfg.Table()
	if err != nil {
		return err
	}
	m := metrics.New()
	provider := dwd.NewClient(cfg.DWD())
	eng := engine.NewEngine(provider, table, cfg.EngineOptions())

	apiServer := api.NewServer(eng, api.Options{
		Version:   version,
		Provider:  provider.Name(),
		Regions:   cfg.Climate.Regions,
		Precision: cfg.Output.Precision,
		Metrics:   m,
	})

	httpCfg := httpadapter.DefaultConfig()
	httpCfg.Address = cfg.Server.Addr
	httpCfg.AllowedOrigins = cfg.Server.CORSOrigins

	logging.Info("Starting consumption interpolation server",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr),
		zap.Int("fetch_concurrency", cfg.Engine.FetchConcurrency),
		zap.Bool("apply_adjustment", cfg.Engine.ApplyAdjustment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := httpadapter.New(apiServer, httpCfg).Run(ctx); err != nil {
		return err
	}
	logging.Info("Server stopped")
	return nil
}
