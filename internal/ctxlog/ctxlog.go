// Package ctxlog provides helpers for passing a zerolog.Logger
// through context.Context.
package ctxlog

import (
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext extracts the logger from a context. If no logger was
// attached, zerolog's disabled default is returned, so callers can log
// unconditionally.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// New creates a configured logger instance. It does not touch the global
// logger, allowing isolated instances per invocation.
func New(out io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if format != "json" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
