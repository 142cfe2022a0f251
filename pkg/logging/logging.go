// Package logging wraps zerolog with the level/format conventions used
// across the simulator's ambient stack, adapted from the chaos runner's
// structured logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level selects the minimum severity a Logger emits.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects how log lines are rendered.
type Format string

const (
	// FormatJSON emits one JSON object per line, suited to piping into a
	// log aggregator.
	FormatJSON Format = "json"
	// FormatText emits zerolog's human-readable console writer, suited to
	// a terminal.
	FormatText Format = "text"
)

// Config configures a Logger.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// New builds a zerolog.Logger from cfg. A zero Config produces an
// info-level, text-formatted logger writing to stdout.
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var output io.Writer = cfg.Output
	if cfg.Format != FormatJSON {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339, NoColor: false}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	switch cfg.Level {
	case LevelDebug:
		logger = logger.Level(zerolog.DebugLevel)
	case LevelWarn:
		logger = logger.Level(zerolog.WarnLevel)
	case LevelError:
		logger = logger.Level(zerolog.ErrorLevel)
	default:
		logger = logger.Level(zerolog.InfoLevel)
	}
	return logger
}

// Default returns the text-formatted logger used when a Builder is not
// given one explicitly. Its level comes from the DSCALE_LOG environment
// variable (debug, info, warn or error); unset or any other value means info.
func Default() zerolog.Logger {
	return New(Config{Level: Level(os.Getenv("DSCALE_LOG")), Format: FormatText})
}

// Noop returns a logger that discards everything, for tests and library
// embeddings that don't want simulator output on stdout.
func Noop() zerolog.Logger {
	return zerolog.New(io.Discard)
}
