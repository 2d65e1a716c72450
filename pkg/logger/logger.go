// Package logger builds the structured logger threaded through Ignite's
// internal packages. Every component takes a *zap.SugaredLogger rather than
// constructing its own, so a single instance's fields (service name, etc.)
// propagate consistently across index, log I/O, recovery, and the engine.
package logger

import (
	"go.uber.org/zap"
)

// New builds a production-profile zap logger tagged with the given service
// name. It falls back to an in-memory no-op logger if zap's production
// config cannot be built (e.g. sink construction failure) rather than
// panicking on a logging concern.
func New(service string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}

	return base.Named(service).Sugar()
}

// NewDevelopment builds a human-readable, colorized logger suitable for
// local development and tests.
func NewDevelopment(service string) *zap.SugaredLogger {
	base, err := zap.NewDevelopment()
	if err != nil {
		base = zap.NewNop()
	}
	return base.Named(service).Sugar()
}
