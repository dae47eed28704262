package config

import (
	"fmt"
	"os"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FEATURECHECK_"

// loadFromEnv overrides config from environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv(EnvPrefix + "FILE"); v != "" {
		cfg.FeaturesFile = v
		set("features_file")
	}
	if v := os.Getenv(EnvPrefix + "SCHEMA"); v != "" {
		cfg.SchemaFile = v
		set("schema_file")
	}
	if v := os.Getenv(EnvPrefix + "FORMAT"); v != "" {
		cfg.Format = v
		set("format")
	}
	if v := os.Getenv(EnvPrefix + "AUTO_FIX"); v != "" {
		cfg.AutoFix = boolFromString(v)
		set("auto_fix")
	}
	if v := os.Getenv(EnvPrefix + "JOBS"); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			cfg.Jobs = i
			set("jobs")
		}
	}
	if v := os.Getenv(EnvPrefix + "BLOCKED_MARKERS"); v != "" {
		cfg.BlockedMarkers = ParseMarkers(v)
		set("blocked_markers")
	}
	if v := os.Getenv(EnvPrefix + "BLOCKED_IGNORE_CASE"); v != "" {
		cfg.BlockedIgnoreCase = boolFromString(v)
		set("blocked_ignore_case")
	}

	// Logging configuration
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	if v := os.Getenv(EnvPrefix + "LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		set("log_timestamps")
	}
	if v := os.Getenv(EnvPrefix + "LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		set("log_caller")
	}
}
