package config

import (
	"flag"
	"strings"
)

// flagToField maps global flag names to config field names.
var flagToField = map[string]string{
	"file":           "features_file",
	"schema":         "schema_file",
	"format":         "format",
	"jobs":           "jobs",
	"markers":        "blocked_markers",
	"ignore-case":    "blocked_ignore_case",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines and parses the global CLI flags.
// If sources is non-nil, explicitly set flags are recorded.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("featurecheck", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.FeaturesFile, "file", cfg.FeaturesFile, "Default features file")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "Project JSON Schema applied after the built-in rules")

	// Output
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Report format (text, json)")
	fs.IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "Concurrent validation workers (0 = auto)")

	// Blocked-reason policy
	markers := strings.Join(cfg.BlockedMarkers, ",")
	fs.StringVar(&markers, "markers", markers, "Comma-separated notes markers that explain a blocked feature")
	fs.BoolVar(&cfg.BlockedIgnoreCase, "ignore-case", cfg.BlockedIgnoreCase, "Match blocked markers case-insensitively")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "markers" {
			cfg.BlockedMarkers = ParseMarkers(markers)
		}
		if sources == nil {
			return
		}
		if field, ok := flagToField[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
