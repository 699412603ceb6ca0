// Package log builds the zerolog logger shared by the CLIs.
package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console-writer logger at the given level. Unknown levels
// fall back to info.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
}
