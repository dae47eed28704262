// Package logging builds the charmbracelet/log logger used for diagnostics.
// Reports go to stdout; log lines go to the writer given here (stderr in
// the CLI) so the two never interleave.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultPrefix is prepended to every log line.
const DefaultPrefix = "featurecheck"

// Options holds configuration for the logger.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	ReportCaller    bool
	Prefix          string
}

// DefaultOptions returns default options for logging.
func DefaultOptions() Options {
	return Options{
		Level:     log.InfoLevel,
		Formatter: log.TextFormatter,
		Prefix:    DefaultPrefix,
	}
}

// New creates a logger writing to w with the given options.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		Prefix:          opts.Prefix,
	})
}

// NewFromConfig creates a logger from string configuration values.
// This is useful when loading config from TOML or environment variables.
func NewFromConfig(w io.Writer, level, format string, timestamps, caller bool) *log.Logger {
	return New(w, Options{
		Level:           ParseLogLevel(level),
		Formatter:       ParseLogFormatter(format),
		ReportTimestamp: timestamps,
		ReportCaller:    caller,
		Prefix:          DefaultPrefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLogLevel parses a string log level to a charmbracelet/log Level.
// Unknown values fall back to info.
func ParseLogLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseLogFormatter parses a string formatter name to a charmbracelet/log Formatter.
func ParseLogFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
