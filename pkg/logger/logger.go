package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. dev gets a human console writer; anything
// else writes JSON lines to stdout.
func New(env, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if env == "dev" {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
		return zerolog.New(out).With().Timestamp().Logger().Level(lvl)
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(lvl)
}
