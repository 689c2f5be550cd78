// Package http runs an API handler as a production HTTP server.
// It owns the middleware chain and the server lifecycle; routing and
// request handling stay in package api.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"

	"consumption-interp/internal/logging"
)

// Config holds HTTP adapter configuration
type Config struct {
	// Address to listen on
	Address string `json:"address"`

	// ReadTimeout for requests
	ReadTimeout time.Duration `json:"read_timeout"`

	// WriteTimeout for responses
	WriteTimeout time.Duration `json:"write_timeout"`

	// ShutdownTimeout bounds the graceful drain
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// AllowedOrigins for CORS; empty disables CORS headers
	AllowedOrigins []string `json:"allowed_origins"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Address:         ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		AllowedOrigins:  []string{"*"},
	}
}

// Adapter is the HTTP adapter
type Adapter struct {
	handler http.Handler
	config  *Config
	server  *http.Server
}

// New creates a new HTTP adapter around handler
func New(handler http.Handler, config *Config) *Adapter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Adapter{
		handler: handler,
		config:  config,
	}
}

// Handler returns the wrapped handler: recovery, access logging, then CORS
func (a *Adapter) Handler() http.Handler {
	h := a.handler
	if len(a.config.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(a.config.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", "X-Request-ID"}),
			handlers.ExposedHeaders([]string{"Content-Disposition", "X-Request-ID"}),
		)(h)
	}
	h = handlers.CustomLoggingHandler(io.Discard, h, logRequest)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(false),
	)(h)
	return h
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (a *Adapter) Run(ctx context.Context) error {
	a.server = &http.Server{
		Addr:         a.config.Address,
		Handler:      a.Handler(),
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("HTTP server listening", zap.String("addr", a.config.Address))
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("Shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server
func (a *Adapter) Shutdown(ctx context.Context) error {
	if a.server != nil {
		return a.server.Shutdown(ctx)
	}
	return nil
}

func logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	logging.Info("HTTP request",
		zap.String("method", p.Request.Method),
		zap.String("path", p.URL.Path),
		zap.Int("status", p.StatusCode),
		zap.Int("size", p.Size),
		zap.Duration("elapsed", time.Since(p.TimeStamp)),
	)
}

// recoveryLogger routes recovered panics to the structured logger
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	logging.Error("Recovered from panic", zap.String("panic", fmt.Sprint(v...)))
}
