// Package config loads the livvd configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Realtime RealtimeConfig `yaml:"realtime"`
}

// DatabaseConfig configures the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the realtime HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// RealtimeConfig tunes event delivery.
type RealtimeConfig struct {
	// SendBuffer is the per-client event queue size. A client that falls
	// this far behind starts missing events.
	SendBuffer int `yaml:"send_buffer"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Database: DatabaseConfig{Path: filepath.Join(home, ".livv", "livv.db")},
		Server:   ServerConfig{Addr: ":8643"},
		Realtime: RealtimeConfig{SendBuffer: 16},
	}
}

// Load loads config from the user's config directory, or from the file named
// by LIVV_CONFIG_FILE when set. Returns the defaults if no file exists;
// fields absent from the file keep their default values.
func Load() (*Config, error) {
	config := Default()

	configPath := os.Getenv("LIVV_CONFIG_FILE")
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config, nil
		}
		configPath = filepath.Join(home, ".livv", "config.yaml")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Realtime.SendBuffer <= 0 {
		config.Realtime.SendBuffer = Default().Realtime.SendBuffer
	}

	return config, nil
}
