// Package observability builds the process logger. Components receive
// a *zap.Logger by constructor injection and never construct their
// own.
package observability

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a zap logger from a level name (debug, info, warn,
// error) and an output format (json or console).
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	cfg.Level = lvl

	return cfg.Build()
}
