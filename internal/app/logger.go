package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production emits JSON regardless of
// LOG_FORMAT; elsewhere the text handler is the default and LOG_FORMAT=json
// opts in. Debug level outside production.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if !cfg.IsProduction() {
		opts.Level = slog.LevelDebug
	}
	if cfg.IsProduction() || (cfg != nil && cfg.LogFormat == "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
