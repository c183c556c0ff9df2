// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a flag value to a zerolog level, defaulting to info.
func ParseLevel(logLevel string) zerolog.Level {
	switch logLevel {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup creates a logger writing JSON to logFile, or pretty console output
// to stderr when logFile is empty or cannot be opened.
func Setup(logFile, logLevel string) zerolog.Logger {
	var output io.Writer = os.Stderr
	console := true

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			output = f
			console = false
		}
	}

	return New(output, logLevel, console)
}

// New creates a timestamped logger on w.
func New(w io.Writer, logLevel string, console bool) zerolog.Logger {
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(ParseLevel(logLevel)).
		With().
		Timestamp().
		Logger()
}

// SDK adapts a zerolog logger to the Debugf interface the API clients accept.
type SDK struct {
	logger zerolog.Logger
}

// ForSDK returns an SDK adapter tagged with the client name.
func ForSDK(logger zerolog.Logger, client string) SDK {
	return SDK{logger: logger.With().Str("client", client).Logger()}
}

// Debugf logs at debug level.
func (s SDK) Debugf(format string, args ...interface{}) {
	s.logger.Debug().Msgf(format, args...)
}
