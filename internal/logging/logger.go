// Package logging configures the structured logger shared by the blocksync
// CLI and the live-sync server, wrapping charmbracelet/log.
//
// Command output (command lists, snapshots, JSON) goes to stdout; everything
// this package produces goes to stderr, so piped output stays clean.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // Package-level logger is intentional for convenience
var (
	defaultLogger     *log.Logger
	defaultLoggerOnce sync.Once
)

// New creates a stderr logger at the given level. Timestamps and callers
// stay off: update summaries and websocket session logs read as single
// key-value lines.
func New(level string) *log.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a logger for an explicit sink. Tests use it to
// capture log output; the version command uses it to log to stdout.
func NewWithWriter(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel maps a level string to a log level. Valid levels are "debug",
// "info", "warn"/"warning", and "error"; anything else falls back to info,
// the .blocksync.yaml default.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Default returns the shared logger, creating it at info level on first use.
func Default() *log.Logger {
	defaultLoggerOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = New("info")
		}
	})
	return defaultLogger
}

// SetDefault replaces the shared logger.
func SetDefault(logger *log.Logger) {
	defaultLoggerOnce.Do(func() {})
	defaultLogger = logger
}

// SetLevel updates the shared logger's level; the root command calls it
// when --debug or the configured log level overrides the default.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}
