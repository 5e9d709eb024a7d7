package config

import (
	"os"
	"path/filepath"
)

const appDirName = "kck-scrapper"

// CacheDir is the application's directory under the user cache dir
// ($XDG_CACHE_HOME on Linux), falling back to ~/.cache.
func CacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, appDirName)
}

func DefaultCacheFile() string {
	return filepath.Join(CacheDir(), "cache.json")
}

// DefaultConfigPath is config.json in the user config dir.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appDirName, "config.json")
}
