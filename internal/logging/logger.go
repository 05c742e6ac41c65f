// Package logging builds the zerolog loggers used across pkgctx.
//
// Logs always go to stderr or a caller supplied writer. Stdout carries
// records and the MCP protocol and must stay clean.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Level is a configured logging level
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config holds logger configuration
type Config struct {
	Level   Level     // Minimum level (default: info)
	Console bool      // Human readable output instead of JSON
	Output  io.Writer // Destination (default: os.Stderr)
}

// DefaultConfig returns console logging at info level on stderr
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Console: true, Output: os.Stderr}
}

// ParseLevel maps a level name to its zerolog level
func ParseLevel(s string) (zerolog.Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDebug:
		return zerolog.DebugLevel, nil
	case LevelInfo, "":
		return zerolog.InfoLevel, nil
	case LevelWarn, "warning":
		return zerolog.WarnLevel, nil
	case LevelError:
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s)
	}
}

// New creates a logger from cfg
func New(cfg Config) (zerolog.Logger, error) {
	level, err := ParseLevel(string(cfg.Level))
	if err != nil {
		return zerolog.Nop(), err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	return zerolog.New(out).Level(level).With().
		Timestamp().
		Str("app", "pkgctx").
		Logger(), nil
}

// Component returns a child logger tagged with a component name
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
