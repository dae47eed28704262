// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.featurecheck/featurecheck.toml or OS-specific config directory)
// 3. Project config file (featurecheck.toml or .featurecheck.toml in the project root)
// 4. Environment variables (FEATURECHECK_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.featurecheck/featurecheck.toml (preferred)
// - Windows: %APPDATA%\featurecheck\featurecheck.toml
// - macOS: ~/Library/Application Support/featurecheck/featurecheck.toml
// - Linux/BSD: $XDG_CONFIG_HOME/featurecheck/featurecheck.toml or ~/.config/featurecheck/featurecheck.toml
//
// Project-level config locations (overrides user config):
// - ./featurecheck.toml (preferred)
// - ./.featurecheck.toml
package config
