package logger

import (
	"context"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/log"
)

// CharmAdapter writes human-readable logs through charmbracelet/log.
// It is the default for interactive use, where a prompt must stay quiet unless asked.
type CharmAdapter struct {
	log *log.Logger
}

// NewCharmAdapter creates a CharmAdapter writing to w at the given level.
// Unknown levels fall back to error.
func NewCharmAdapter(w io.Writer, level string) *CharmAdapter {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.ErrorLevel
	}
	return &CharmAdapter{
		log: log.NewWithOptions(w, log.Options{
			Level:  lvl,
			Prefix: "vcs-prompt",
		}),
	}
}

// Info logs an info message.
func (a *CharmAdapter) Info(_ context.Context, msg string, fields map[string]any) {
	a.log.Info(msg, keyvals(fields)...)
}

// Debug logs a debug message.
func (a *CharmAdapter) Debug(_ context.Context, msg string, fields map[string]any) {
	a.log.Debug(msg, keyvals(fields)...)
}

// Warn logs a warning message.
func (a *CharmAdapter) Warn(_ context.Context, msg string, fields map[string]any) {
	a.log.Warn(msg, keyvals(fields)...)
}

// Error logs an error message. The error is reported under the "error" key.
func (a *CharmAdapter) Error(_ context.Context, msg string, err error, fields map[string]any) {
	kv := keyvals(fields)
	if err != nil {
		kv = append(kv, "error", err.Error())
	}
	a.log.Error(msg, kv...)
}

// keyvals flattens fields into sorted key/value pairs so output is stable.
func keyvals(fields map[string]any) []any {
	kv := make([]any, 0, len(fields)*2)
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		kv = append(kv, k, fields[k])
	}
	return kv
}
