// Package log configures zerolog for the workflow and hands out per-component
// loggers. Every stage (preprocess, experiment, report, pipeline) logs through
// a component logger so failures can be attributed to a stage.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

// Setup configures the global log level and output format. When json is true
// logs are emitted as structured JSON instead of the console format.
func Setup(level string, json bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if json {
		w = os.Stderr
	}
	root = zerolog.New(w).With().Timestamp().Logger()
}

// Component returns a logger tagged with the given component name.
func Component(name string) zerolog.Logger {
	return root.With().Str("component", name).Logger()
}

// SetOutput redirects all loggers to w. Intended for tests.
func SetOutput(w io.Writer) {
	root = zerolog.New(w).With().Timestamp().Logger()
}
