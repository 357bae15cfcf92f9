package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the console logger. JSON output carries source locations
// for log aggregation; the pretty handler runs at debug level for local
// development.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
