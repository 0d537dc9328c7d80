// Package logger builds zerolog loggers and carries them in context.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Levels lists accepted level names.
var Levels = []string{"debug", "info", "warn", "error"}

// Options controls logger construction.
type Options struct {
	Level   string
	Console bool
	Writer  io.Writer
}

// New creates a timestamped logger; console output is human friendly.
func New(options Options) (zerolog.Logger, error) {
	level, err := ParseLevel(options.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	writer := options.Writer
	if writer == nil {
		writer = os.Stderr
	}
	if options.Console {
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}

// ParseLevel maps a level name to zerolog, info when empty.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("unsupported log level %q, supported: %s", name, strings.Join(Levels, ", "))
}

// WithContext returns ctx carrying l.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// FromContext returns the logger carried by ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
