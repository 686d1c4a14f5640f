// Package logging configures the process-wide zerolog logger. Diagnostics go
// to stderr so command output stays pipeable; user-facing messages are never
// emitted through the logger.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs a console writer at the given level. Unknown levels fall
// back to info.
func Setup(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parsed).
		With().
		Timestamp().
		Logger()
}
