package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// HandlerOptions configures the project log handler.
type HandlerOptions struct {
	Level  slog.Leveler
	Format string // json or text
	Output io.Writer
}

// NewHandler creates the slog handler used by every binary.
// Nil options are filled from LOG_LEVEL and LOG_FORMAT.
func NewHandler(opts *HandlerOptions) slog.Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	if opts.Level == nil {
		opts.Level = ParseLevel(os.Getenv("LOG_LEVEL"))
	}
	if opts.Format == "" {
		opts.Format = os.Getenv("LOG_FORMAT")
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.Level.Level() <= slog.LevelDebug,
	}

	if strings.EqualFold(opts.Format, "text") {
		return slog.NewTextHandler(opts.Output, handlerOpts)
	}

	return slog.NewJSONHandler(opts.Output, handlerOpts)
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
