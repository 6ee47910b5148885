// Package logging constructs the process-wide zerolog.Logger used throughout cloudtop.
// Components take a logger as a constructor argument rather than reaching for a
// package-level global, so every piece stays testable with its own discard logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LogFilePath is the default location cloudtop appends its log lines to.
func LogFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cloudtop", "cloudtop.log")
}

// New builds a logger at the given level (error, warn, info, debug, trace), writing
// to the cloudtop log file. If the file cannot be opened, it falls back to stderr so
// logging never blocks startup.
func New(level string) zerolog.Logger {
	path := LogFilePath()
	var w io.Writer = os.Stderr
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err == nil {
		if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600); err == nil {
			w = f
		}
	}

	zlvl, ok := parseLevel(level)
	if !ok {
		zlvl = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(zlvl).With().Timestamp().Logger()
}

func parseLevel(level string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return zerolog.ErrorLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "info", "":
		return zerolog.InfoLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "trace":
		return zerolog.TraceLevel, true
	default:
		return zerolog.InfoLevel, false
	}
}
