// Package config loads the mapreader configuration file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/ayusman/mapreader/internal/locator"
)

// Default service settings.
const (
	DefaultAddr            = "127.0.0.1:8765"
	DefaultDBPath          = "mapreader.db"
	DefaultPluginDir       = "plugins"
	DefaultPluginTimeoutMs = 5000
	DefaultWorkers         = 4
)

// Config holds configuration options for the application.
type Config struct {
	Pipeline locator.Config `json:"pipeline"`

	Addr            string `json:"addr"`
	DBPath          string `json:"db_path"`
	PluginDir       string `json:"plugin_dir"`
	PluginTimeoutMs int    `json:"plugin_timeout_ms"`
	// PublishEndpoint is a ZeroMQ bind address such as "tcp://*:5557".
	// Empty disables publishing.
	PublishEndpoint string `json:"publish_endpoint"`
	Workers         int    `json:"workers"`
	Debug           bool   `json:"debug"`
}

// Default returns a Config with sensible default values.
func Default() Config {
	return Config{
		Pipeline:        locator.DefaultConfig(),
		Addr:            DefaultAddr,
		DBPath:          DefaultDBPath,
		PluginDir:       DefaultPluginDir,
		PluginTimeoutMs: DefaultPluginTimeoutMs,
		Workers:         DefaultWorkers,
	}
}

// Load reads a JSON configuration file over the defaults, so a file only needs
// the keys it changes. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.PluginTimeoutMs <= 0 {
		return errors.New("plugin timeout must be positive")
	}
	return nil
}
