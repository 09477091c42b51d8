// Package sysutil holds process-level helpers shared by the binary and the
// config loader.
package sysutil

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel parses a level name as zerolog does, accepting "warning" for
// "warn". Empty and unknown names mean info.
func LogLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// ConfigureLogging sets the global level and, with pretty, replaces the
// global logger's JSON output with a console writer on w.
func ConfigureLogging(level string, pretty bool, w io.Writer) {
	zerolog.SetGlobalLevel(LogLevel(level))
	zerolog.TimeFieldFormat = time.RFC3339
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
	}
}

// IsTruthy reports whether an env value means true: 1, true, yes, y or on.
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// FirstNonEmpty returns the first value that is not blank, unmodified.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
