package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a JSON logger writing to stderr at the given level.
// Unknown levels fall back to info.
func NewLogger(level, component string) zerolog.Logger {
	return NewLoggerTo(os.Stderr, level, component)
}

// NewLoggerTo is NewLogger with an explicit writer.
func NewLoggerTo(w io.Writer, level, component string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(w).Level(lvl).With().Timestamp()
	if component != "" {
		logger = logger.Str("component", component)
	}
	return logger.Logger()
}

// NewConsoleLogger returns a human-readable logger for interactive commands.
func NewConsoleLogger(level, component string) zerolog.Logger {
	return NewLoggerTo(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, level, component)
}
