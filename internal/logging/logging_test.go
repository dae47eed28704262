package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  log.Level
	}{
		{"debug", "debug", log.DebugLevel},
		{"info", "info", log.InfoLevel},
		{"warn", "warn", log.WarnLevel},
		{"warning", "warning", log.WarnLevel},
		{"error", "error", log.ErrorLevel},
		{"fatal", "fatal", log.FatalLevel},
		{"mixed case", " DEBUG ", log.DebugLevel},
		{"unknown defaults to info", "unknown", log.InfoLevel},
		{"empty defaults to info", "", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLogLevel(tt.level)
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestParseLogFormatter(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   log.Formatter
	}{
		{"json", "json", log.JSONFormatter},
		{"logfmt", "logfmt", log.LogfmtFormatter},
		{"text", "text", log.TextFormatter},
		{"unknown defaults to text", "unknown", log.TextFormatter},
		{"empty defaults to text", "", log.TextFormatter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLogFormatter(tt.format)
			if got != tt.want {
				t.Errorf("ParseLogFormatter(%q) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Level != log.InfoLevel {
		t.Errorf("DefaultOptions() Level = %v, want %v", opts.Level, log.InfoLevel)
	}
	if opts.Formatter != log.TextFormatter {
		t.Errorf("DefaultOptions() Formatter = %v, want %v", opts.Formatter, log.TextFormatter)
	}
	if opts.ReportTimestamp || opts.ReportCaller {
		t.Error("DefaultOptions() should not report timestamps or callers")
	}
	if opts.Prefix != "featurecheck" {
		t.Errorf("DefaultOptions() Prefix = %q, want \"featurecheck\"", opts.Prefix)
	}
}

func TestNewFromConfigLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFromConfig(&buf, "warn", "text", false, false)

	logger.Info("hidden")
	logger.Warn("counters mismatch", "path", "features.xml")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %s", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "counters mismatch") {
		t.Errorf("expected warn line, got: %s", out)
	}
	if !strings.Contains(out, "featurecheck") {
		t.Errorf("expected prefix, got: %s", out)
	}
}

func TestNewFromConfigJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFromConfig(&buf, "debug", "json", false, false)

	logger.Debug("validated", "errors", 0)

	out := buf.String()
	if !strings.Contains(out, `"msg":"validated"`) || !strings.Contains(out, `"errors":0`) {
		t.Errorf("expected JSON log line, got: %s", out)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing to see")
	if logger.GetLevel() != log.FatalLevel {
		t.Errorf("Discard level = %v, want fatal", logger.GetLevel())
	}
}
