package ioconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sdss/lvmmag/pkg/config"
)

// GetConfigDir returns the configuration directory for lvmmag:
// ~/.config/lvmmag on Unix-like systems, %APPDATA%\lvmmag on Windows.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	var configDir string
	if filepath.Separator == '/' {
		configDir = filepath.Join(homeDir, ".config", "lvmmag")
	} else {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(homeDir, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "lvmmag")
	}
	return configDir, nil
}

// GetDefaultConfigPath returns the full path to the default config
// file.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lvmmag.yaml"), nil
}

const configHeader = `# lvmmag configuration file.
#
# Configuration precedence (highest to lowest):
#   1. CLI flags (--db-host, --jobs, ...)
#   2. Environment variables (LVMMAG_*)
#   3. This config file
#   4. Built-in defaults
#
# For all keys, see: go doc github.com/sdss/lvmmag/pkg/config

`

// GenerateDefaultConfig writes a documented default config file at
// the default location. It never overwrites an existing file.
func GenerateDefaultConfig() (string, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return GenerateConfig(configPath)
}

// GenerateConfig writes the default configuration as YAML to the
// given path, creating parent directories as needed.
func GenerateConfig(configPath string) (string, error) {
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := yaml.Marshal(config.Defaults())
	if err != nil {
		return "", fmt.Errorf("failed to serialize defaults: %w", err)
	}

	content := append([]byte(configHeader), body...)
	if err = os.WriteFile(configPath, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configPath, nil
}
