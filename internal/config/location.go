package config

import (
	"os"
	"path/filepath"
)

// GetConfigPath returns the configuration file path. It first checks the
// DECISIONCORE_CONFIG environment variable, then falls back to the default
// location (~/.decisioncore/config.yaml).
func GetConfigPath() (string, error) {
	if configPath := os.Getenv(EnvPrefix + "CONFIG"); configPath != "" {
		return configPath, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".decisioncore", "config.yaml"), nil
}

// DefaultConfigPath returns GetConfigPath if that file exists, or the empty
// string, meaning defaults and environment only.
func DefaultConfigPath() string {
	path, err := GetConfigPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
