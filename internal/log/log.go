// Package log builds the zerolog logger shared by the CLI and the stores.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"sealkv/internal/config"
)

// Logger is the zerolog logger used throughout sealkv.
type Logger = zerolog.Logger

// New returns a logger writing to stderr.
func New(cfg config.Config) Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter returns a logger writing to w, console-formatted when
// cfg.Logging.Pretty is set. Unknown levels fall back to info.
func NewWithWriter(cfg config.Config, w io.Writer) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if cfg.Logging.Pretty {
		w = zerolog.ConsoleWriter{Out: w}
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || cfg.Logging.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
