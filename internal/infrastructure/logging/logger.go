// Package logging builds the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Options struct {
	Level     string // debug, info, warn, error
	Format    Format
	Output    io.Writer // os.Stderr when nil
	AddSource bool
	Version   string
}

// New returns a logger tagged with the service name and, when set, its version.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level), AddSource: opts.AddSource}

	var h slog.Handler
	switch Format(strings.ToLower(string(opts.Format))) {
	case FormatJSON:
		h = slog.NewJSONHandler(out, hopts)
	default:
		h = slog.NewTextHandler(out, hopts)
	}

	l := slog.New(h).With("service", "tennisbot")
	if opts.Version != "" {
		l = l.With("version", opts.Version)
	}
	return l
}

// ParseLevel maps a level name to slog; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
