package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
}

// Default values.
const (
	DefaultFeaturesFile  = "features.xml"
	DefaultFormat        = "text"
	DefaultBlockedMarker = "Blocked:"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config holds the full configuration for featurecheck.
type Config struct {
	// Paths
	FeaturesFile string `toml:"features_file"`
	SchemaFile   string `toml:"schema_file"`

	// Output
	Format  string `toml:"format"`
	AutoFix bool   `toml:"auto_fix"`

	// Jobs bounds concurrent validation work. 0 means one worker per CPU
	// for files and sequential category checks.
	Jobs int `toml:"jobs"`

	// Blocked-reason policy
	BlockedMarkers    []string `toml:"blocked_markers"`
	BlockedIgnoreCase bool     `toml:"blocked_ignore_case"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Computed at runtime
	ProjectRoot string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"features_file",
		"schema_file",
		"format",
		"auto_fix",
		"jobs",
		"blocked_markers",
		"blocked_ignore_case",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}

// Value returns the effective value of a field for display.
func (c *Config) Value(field string) string {
	switch field {
	case "features_file":
		return c.FeaturesFile
	case "schema_file":
		return c.SchemaFile
	case "format":
		return c.Format
	case "auto_fix":
		return fmt.Sprint(c.AutoFix)
	case "jobs":
		return fmt.Sprint(c.Jobs)
	case "blocked_markers":
		return strings.Join(c.BlockedMarkers, ",")
	case "blocked_ignore_case":
		return fmt.Sprint(c.BlockedIgnoreCase)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return fmt.Sprint(c.LogTimestamps)
	case "log_caller":
		return fmt.Sprint(c.LogCaller)
	}
	return ""
}

// setDefaults sets default values.
func setDefaults(cfg *Config) {
	cfg.FeaturesFile = DefaultFeaturesFile
	cfg.Format = DefaultFormat
	cfg.BlockedMarkers = []string{DefaultBlockedMarker}
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// finalizeConfig computes derived values and validates the result.
func finalizeConfig(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	cfg.FeaturesFile = expandPath(cfg.FeaturesFile)
	cfg.SchemaFile = expandPath(cfg.SchemaFile)
	cfg.FeaturesFile = cfg.ResolvePath(cfg.FeaturesFile)
	if cfg.SchemaFile != "" {
		cfg.SchemaFile = cfg.ResolvePath(cfg.SchemaFile)
	}

	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	switch cfg.Format {
	case "":
		cfg.Format = DefaultFormat
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q (valid: text, json)", cfg.Format)
	}
	if cfg.Jobs < 0 {
		return fmt.Errorf("jobs must be >= 0, got %d", cfg.Jobs)
	}
	return nil
}

// ResolvePath makes p absolute relative to the project root.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectRoot, p)
}

// ParseMarkers splits a comma-separated list of blocked-reason markers.
// Blank entries and repeats are dropped; order is kept.
func ParseMarkers(list string) []string {
	var markers []string
	seen := make(map[string]bool)
	for _, m := range strings.Split(list, ",") {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		markers = append(markers, m)
	}
	return markers
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
