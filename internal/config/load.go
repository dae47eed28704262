package config

import (
	"flag"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.featurecheck/featurecheck.toml or OS-specific config dir)
// 3. Project config file (featurecheck.toml or .featurecheck.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cs, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cs.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	cfg := &Config{}

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if path := findProjectConfigFile(""); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	// 4. Override from environment
	loadFromEnv(cfg, sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{Config: cfg, Sources: sources}, nil
}

// loadConfigFile decodes TOML from path on top of cfg and records the keys
// the file defines.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys: %v", undecoded)
	}
	if sources == nil {
		return nil
	}
	for _, field := range configFields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	return nil
}
