// Package config handles environment and TOML configuration for devstop.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "us-east-1"

// Environment variables read by FromEnv.
const (
	EnvRegion       = "AWS_REGION"
	EnvProfile      = "AWS_PROFILE"
	EnvLogLevel     = "DEVSTOP_LOG_LEVEL"
	EnvOTELEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// Config is the root configuration structure.
type Config struct {
	AWS  AWSConfig  `toml:"aws"`
	OTEL OTELConfig `toml:"otel"`
	Log  LogConfig  `toml:"log"`
}

// AWSConfig holds AWS provider settings.
type AWSConfig struct {
	Region  string `toml:"region"`
	Profile string `toml:"profile"`
}

// OTELConfig holds OpenTelemetry settings.
type OTELConfig struct {
	Endpoint    string        `toml:"endpoint"`
	Insecure    bool          `toml:"insecure"`
	ServiceName string        `toml:"service_name"`
	Traces      TracesConfig  `toml:"traces"`
	Metrics     MetricsConfig `toml:"metrics"`
}

// TracesConfig holds tracing settings.
type TracesConfig struct {
	Enabled    bool    `toml:"enabled"`
	SampleRate float64 `toml:"sample_rate"`
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns a config with defaults applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a TOML config file. Environment variables
// override file values; inside Lambda AWS_REGION is always set, so the
// file's [aws].region only applies when running locally.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(cfg, os.LookupEnv)
	applyDefaults(cfg)
	return cfg, nil
}

// FromEnv builds a config from environment variables and defaults.
func FromEnv() *Config {
	cfg := &Config{}
	applyEnv(cfg, os.LookupEnv)
	applyDefaults(cfg)
	return cfg
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvRegion); ok && v != "" {
		cfg.AWS.Region = v
	}
	if v, ok := lookup(EnvProfile); ok && v != "" {
		cfg.AWS.Profile = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvOTELEndpoint); ok && v != "" {
		cfg.OTEL.Endpoint = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.AWS.Region == "" {
		cfg.AWS.Region = DefaultRegion
	}
	if cfg.OTEL.ServiceName == "" {
		cfg.OTEL.ServiceName = "devstop"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

var validLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

// Validate checks the configuration is valid.
func (c *Config) Validate() error {
	if c.AWS.Region == "" {
		return fmt.Errorf("aws: region required")
	}
	if !contains(validLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log: unknown level %q (must be one of: %s)", c.Log.Level, strings.Join(validLevels, ", "))
	}
	if c.OTEL.Traces.SampleRate < 0.0 || c.OTEL.Traces.SampleRate > 1.0 {
		return fmt.Errorf("otel: traces.sample_rate must be between 0.0 and 1.0 (got %v)", c.OTEL.Traces.SampleRate)
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
