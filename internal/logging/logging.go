// Package logging provides structured logging utilities.
package logging

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance
	Logger *zap.Logger

	// Sugar is the sugared logger for convenience
	Sugar *zap.SugaredLogger
)

// Config contains logging configuration
type Config struct {
	// Level is the minimum log level
	Level string `json:"level"`

	// Format is the output format (json, console)
	Format string `json:"format"`

	// Output is the output destination (stdout, stderr, file path)
	Output string `json:"output"`

	// Development enables development mode
	Development bool `json:"development"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}

// Initialize sets up the global logger
func Initialize(cfg Config) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var sink zapcore.WriteSyncer
	switch cfg.Output {
	case "", "stderr":
		sink = zapcore.AddSync(os.Stderr)
	case "stdout":
		sink = zapcore.AddSync(os.Stdout)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		sink = zapcore.AddSync(file)
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1)}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	Replace(zap.New(zapcore.NewCore(encoder, sink, level), opts...))
	return nil
}

// Replace swaps the global logger, e.g. for zaptest observers.
func Replace(l *zap.Logger) {
	Logger = l
	Sugar = l.Sugar()
}

// Sync flushes the logger
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// With returns a logger with additional fields
func With(fields ...zap.Field) *zap.Logger {
	return Logger.WithOptions(zap.AddCallerSkip(-1)).With(fields...)
}

type requestLoggerKey struct{}

// WithRequestID returns a context carrying a logger tagged with request_id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestLoggerKey{}, With(zap.String("request_id", requestID)))
}

// FromContext returns the request logger stored by WithRequestID, or the
// global logger when there is none
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(requestLoggerKey{}).(*zap.Logger); ok {
		return l
	}
	return Logger.WithOptions(zap.AddCallerSkip(-1))
}

// Debug logs at debug level
func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

// Info logs at info level
func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

// Warn logs at warn level
func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

// Error logs at error level
func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

func init() {
	_ = Initialize(DefaultConfig())
}
