package logger

import (
	"io"
	"log/slog"
	"os"
)

// New creates a new slog logger writing to stdout.
// If verbose is true, logs at Info level and above, otherwise only Error level and above.
// Format "json" selects the JSON handler; anything else falls back to text.
func New(verbose bool, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, verbose, format)
}

// NewWithWriter is New with an explicit destination
func NewWithWriter(w io.Writer, verbose bool, format string) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
