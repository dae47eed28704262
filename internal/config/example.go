package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# featurecheck configuration file
# Values can be overridden by FEATURECHECK_* environment variables or CLI flags

# Features file checked when no path is given (relative to project root)
features_file = "features.xml"

# Optional project JSON Schema applied after the built-in rules
# schema_file = "features.schema.json"

# Report format: text or json
format = "text"

# Rewrite total/completed when they are the only problems
auto_fix = false

# Concurrent validation workers (0 = one per CPU)
jobs = 0

# A blocked feature must mention one of these markers in its notes
blocked_markers = ["Blocked:"]
blocked_ignore_case = false

# Logging (written to stderr)
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
