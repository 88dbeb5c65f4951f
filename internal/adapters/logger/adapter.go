// Package logger provides adapters for the logging interface.
// Two backends are available: ZapAdapter for structured JSON logs through
// goLibMyCarrier/logger, and CharmAdapter for human-readable logs on a terminal.
package logger

import (
	"context"
	"fmt"
	"io"
	"strings"

	mclogger "github.com/MyCarrier-DevOps/goLibMyCarrier/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger defines the logging interface used throughout the application.
// External loggers that implement these methods can be wrapped with ZapAdapter.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]any)
	Debug(ctx context.Context, msg string, fields map[string]any)
	Warn(ctx context.Context, msg string, fields map[string]any)
	Error(ctx context.Context, msg string, err error, fields map[string]any)
}

var (
	_ Logger = (*ZapAdapter)(nil)
	_ Logger = (*CharmAdapter)(nil)
)

// New builds the application logger for the given format and level. Both formats write to w.
func New(format, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return NewCharmAdapter(w, level), nil
	case FormatJSON:
		return NewZapAdapter(mclogger.NewZapLogger(newJSONLogger(level, w))), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatText, FormatJSON)
	}
}

// newJSONLogger builds the shared zap configuration for level, writing JSON lines to w.
func newJSONLogger(level string, w io.Writer) *zap.SugaredLogger {
	cfg := mclogger.ConfigureLogLevelLogger(strings.ToLower(level))
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.AddSync(w), cfg.Level)
	return zap.New(core).Named("vcs-prompt").Sugar()
}

// ZapAdapter adapts a Logger to the application's logging interface.
type ZapAdapter struct {
	log Logger
}

// NewZapAdapter creates a new ZapAdapter wrapping the given logger.
func NewZapAdapter(log Logger) *ZapAdapter {
	return &ZapAdapter{log: log}
}

// Info logs an info message.
func (a *ZapAdapter) Info(ctx context.Context, msg string, fields map[string]any) {
	a.log.Info(ctx, msg, fields)
}

// Debug logs a debug message.
func (a *ZapAdapter) Debug(ctx context.Context, msg string, fields map[string]any) {
	a.log.Debug(ctx, msg, fields)
}

// Warn logs a warning message.
func (a *ZapAdapter) Warn(ctx context.Context, msg string, fields map[string]any) {
	a.log.Warn(ctx, msg, fields)
}

// Error logs an error message.
func (a *ZapAdapter) Error(ctx context.Context, msg string, err error, fields map[string]any) {
	a.log.Error(ctx, msg, err, fields)
}
