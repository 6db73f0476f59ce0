// Package logging configures zerolog for the proxy and provides the
// per-request access log middleware.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is the minimum level written, as read from LOG_LEVEL.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty switches from JSON lines to the zerolog console writer.
	Pretty bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup installs the global zerolog logger and level and returns the logger.
// Component loggers created afterwards with NewLogger inherit it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return log.Logger
}

// parseLevel maps LOG_LEVEL values onto zerolog levels. Unknown or empty
// values fall back to info; "warning" is accepted for warn.
func parseLevel(level LogLevel) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(string(level)))
	if name == "warning" {
		name = string(LevelWarn)
	}

	switch parsed, err := zerolog.ParseLevel(name); {
	case err != nil, name == "", parsed < zerolog.DebugLevel, parsed > zerolog.ErrorLevel:
		return zerolog.InfoLevel
	default:
		return parsed
	}
}

// NewLogger creates a child of the global logger tagged with component.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Levels used across the proxy:
//
//	debug  cache decisions (hit, lazy expiry, stored, not cached), upstream status and ETag
//	info   server lifecycle, access log lines, retries that eventually succeed
//	warn   response write failures, exhausted retries, trace flush failures
//	error  upstream unreachable ("Failed to reach Quran service"), server failures
//
// Common fields: cache_key, upstream_url, cache_status, stale_available,
// status_code, duration.
