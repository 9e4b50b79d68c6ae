// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

// Package config loads and validates the anchorlock configuration from
// YAML files and ANCHORLOCK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete runtime configuration.
type Config struct {
	Audit   AuditConfig   `yaml:"audit" mapstructure:"audit"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
}

// AuditConfig controls the bounded audit log and its flusher.
type AuditConfig struct {
	// Capacity bounds the live buffer; threshold and drain target are
	// derived from it.
	Capacity int `yaml:"capacity" mapstructure:"capacity"`

	// FlushPath is the storage key prefix the flusher appends entries
	// under.
	FlushPath string `yaml:"flush_path" mapstructure:"flush_path"`

	// FlushRate limits flush batches per second.
	FlushRate float64 `yaml:"flush_rate" mapstructure:"flush_rate"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Listen  string `yaml:"listen" mapstructure:"listen"`
}

// StorageConfig points at the durable file backend root.
type StorageConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Audit: AuditConfig{
			Capacity:  1000,
			FlushPath: "audit",
			FlushRate: 4,
		},
		Logging: LoggingConfig{Level: "info"},
		Metrics: MetricsConfig{Enabled: false, Listen: ":9464"},
		Storage: StorageConfig{Path: "/var/lib/anchorlock"},
	}
}

// Load reads configuration from path (or the default search locations
// when path is empty), layered under ANCHORLOCK_* environment
// variables, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("audit.capacity", def.Audit.Capacity)
	v.SetDefault("audit.flush_path", def.Audit.FlushPath)
	v.SetDefault("audit.flush_rate", def.Audit.FlushRate)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.listen", def.Metrics.Listen)
	v.SetDefault("storage.path", def.Storage.Path)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("anchorlock")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.anchorlock")
		v.AddConfigPath("/etc/anchorlock")
	}
	v.SetEnvPrefix("ANCHORLOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file in the search path is fine; an explicit path
		// or a malformed file is not.
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the components cannot run with.
func (c *Config) Validate() error {
	if c.Audit.Capacity < 3 {
		return fmt.Errorf("config: audit.capacity must be at least 3, got %d", c.Audit.Capacity)
	}
	if c.Audit.FlushRate <= 0 {
		return fmt.Errorf("config: audit.flush_rate must be positive, got %v", c.Audit.FlushRate)
	}
	if c.Audit.FlushPath == "" {
		return errors.New("config: audit.flush_path must not be empty")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown logging.level %q", c.Logging.Level)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return errors.New("config: metrics.listen required when metrics.enabled")
	}
	if c.Storage.Path == "" {
		return errors.New("config: storage.path must not be empty")
	}
	return nil
}
