package config

import (
	"os"
	"path/filepath"
)

var configExts = []string{"yml", "yaml", "json", "toml"}

// FindLocalConfig returns the nearest .fsstage.<ext> in dir or its parents
func FindLocalConfig(dir string) string {
	for ; ; dir = filepath.Dir(dir) {
		if path := findConfigFile(dir, ".fsstage"); path != "" {
			return path
		}

		if filepath.Dir(dir) == dir {
			return ""
		}
	}
}

// FindGlobalConfig returns <user config dir>/fsstage/config.<ext>
func FindGlobalConfig() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return ""
	}

	return findConfigFile(filepath.Join(base, "fsstage"), "config")
}

// findConfigFile returns the first existing dir/<name>.<ext>, trying the
// extensions in order
func findConfigFile(dir, name string) string {
	for _, ext := range configExts {
		path := filepath.Join(dir, name+"."+ext)

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	return ""
}
