// Package logging wraps charmbracelet/log with the surface the rest of
// marklint needs: leveled stderr logging, a process-wide default, a
// context carrier, and shared field-name constants.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // Process-wide default, guarded by the Once.
var (
	defaultLogger *log.Logger
	defaultOnce   sync.Once
)

// New returns a stderr logger at the named level. Unknown names fall
// back to info.
func New(level string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           parseLevel(level),
		ReportTimestamp: false,
		ReportCaller:    false,
	})
}

// NewInteractive returns a logger for user-facing command output, such
// as init and migrate walking the user through what they did. It writes
// to stdout so the messages survive 2>/dev/null.
func NewInteractive() *log.Logger {
	return log.NewWithOptions(os.Stdout, log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: false,
		ReportCaller:    false,
	})
}

// Default returns the process-wide logger, creating a stderr info
// logger on first use.
func Default() *log.Logger {
	defaultOnce.Do(func() {
		if defaultLogger == nil {
			defaultLogger = New("info")
		}
	})
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	defaultLogger = logger
}

// SetLevel adjusts the process-wide logger's level by name.
func SetLevel(level string) {
	Default().SetLevel(parseLevel(level))
}

func parseLevel(level string) log.Level {
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
