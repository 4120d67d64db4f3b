// Package logging configures the diagnostic logger shared by the CLI and
// the MCP server. User-facing status output does not go through it.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/log/v2"
)

const Prefix = "envedit"

var logger = New(os.Stderr, log.WarnLevel)

// New returns a logger writing to w at level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: false,
	})
}

// ParseLevel accepts debug, info, warn (or warning) and error. An empty
// string is warn.
func ParseLevel(s string) (log.Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" || name == "warning" {
		return log.WarnLevel, nil
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: use debug, info, warn or error", s)
	}
	return level, nil
}

// Setup replaces the shared logger.
func Setup(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	logger = New(w, lvl)
	return nil
}

// L returns the shared logger.
func L() *log.Logger {
	return logger
}

// Set replaces the shared logger, e.g. with one writing to a test buffer.
func Set(l *log.Logger) {
	logger = l
}
