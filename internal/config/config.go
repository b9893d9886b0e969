// Package config loads the YAML configuration for liveevald: the file to
// watch, the file watcher's poll/debounce tuning, and the daemon's listen
// addresses.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level liveevald configuration.
type Config struct {
	Watch WatchConfig `yaml:"watch"`
	Web   WebConfig   `yaml:"web"`
}

// WatchConfig controls the file watcher.
type WatchConfig struct {
	// Path is the file to watch and evaluate. Required.
	Path string `yaml:"path"`

	// PollInterval is the fallback/safety-net poll period. Zero means
	// use the watcher's own default.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Debounce coalesces a burst of filesystem events into one re-read.
	// Zero means use the watcher's own default.
	Debounce time.Duration `yaml:"debounce"`
}

// WebConfig controls the HTTP/websocket front end.
type WebConfig struct {
	// ListenAddr is the address the daemon's HTTP server binds, e.g.
	// ":8080". Empty leaves the daemon's -web flag value in effect.
	ListenAddr string `yaml:"listen_addr"`
}

// GetConfigDir returns the XDG-compliant config directory for liveevald,
// honoring LIVEEVALD_CONFIG_DIR as an override for tests and portable
// installs.
func GetConfigDir() (string, error) {
	if override := os.Getenv("LIVEEVALD_CONFIG_DIR"); override != "" {
		return override, nil
	}

	var base string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		base = xdg
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}

	return filepath.Join(base, "liveevald"), nil
}

// Load loads config from configDir/config.yaml. A missing file is not an
// error: it returns the zero Config, which callers fill in from flags.
func Load(configDir string) (*Config, error) {
	configPath := filepath.Join(configDir, "config.yaml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}

		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Save writes cfg to configDir/config.yaml, creating configDir if needed.
func (c *Config) Save(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
