package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	appName        = "featurecheck"
	configFileName = appName + ".toml"
)

// findProjectConfigFile looks for a config file in dir ("" means the
// current directory).
func findProjectConfigFile(dir string) string {
	for _, name := range []string{configFileName, "." + configFileName} {
		path := name
		if dir != "" {
			path = filepath.Join(dir, name)
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.featurecheck/featurecheck.toml first, then falls back to the
// OS-specific config directory.
func findUserConfigFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, "."+appName, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		path := filepath.Join(cfgDir, appName, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// ConfigFiles returns the user and project config files that Load reads,
// or empty strings when absent.
func ConfigFiles() (user, project string) {
	return findUserConfigFile(), findProjectConfigFile("")
}

// expandPath expands environment variables and a leading ~ in p.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if expanded == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return expanded
	}
	if strings.HasPrefix(expanded, "~/") || (runtime.GOOS == "windows" && strings.HasPrefix(expanded, "~\\")) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, expanded[2:])
		}
	}
	return expanded
}
