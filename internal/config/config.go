// Package config loads the counter configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all counter configuration.
type Config struct {
	Counter CounterConfig `yaml:"counter"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// CounterConfig configures both counters.
type CounterConfig struct {
	Initial      int    `yaml:"initial"`
	StartRunning bool   `yaml:"start_running"`
	Interval     string `yaml:"interval"` // auto-increment period, e.g. "1s"
}

// StorageConfig configures where the direct counter is persisted.
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite, memory
	Path   string `yaml:"path"`
	Origin string `yaml:"origin"`
	Key    string `yaml:"key"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	File   string `yaml:"file"`   // empty means stderr
}

// DefaultInterval is the auto-increment period used when none is configured.
const DefaultInterval = time.Second

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Counter: CounterConfig{
			Initial:      0,
			StartRunning: false,
			Interval:     "1s",
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "counter.db",
			Origin: "local",
			Key:    "count",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "counter.log",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate rejects values the counters cannot run with.
func (c *Config) Validate() error {
	if c.Counter.Interval != "" {
		d, err := time.ParseDuration(c.Counter.Interval)
		if err != nil {
			return fmt.Errorf("invalid counter.interval %q: %w", c.Counter.Interval, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid counter.interval %q: must be positive", c.Counter.Interval)
		}
	}

	switch c.Storage.Driver {
	case "", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid storage.driver %q", c.Storage.Driver)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("COUNTER_DB_PATH"); path != "" {
		c.Storage.Path = path
	}
	if level := os.Getenv("COUNTER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetInterval returns the auto-increment period as a duration.
func (c *Config) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Counter.Interval)
	if err != nil || d <= 0 {
		return DefaultInterval
	}
	return d
}

// GetStorageKey returns the key the direct counter is persisted under.
func (c *Config) GetStorageKey() string {
	if c.Storage.Key == "" {
		return "count"
	}
	return c.Storage.Key
}
