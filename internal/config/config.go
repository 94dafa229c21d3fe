// Package config loads and validates the docsite site configuration.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// DefaultConfigFile is the site configuration file name looked up by the CLI.
const DefaultConfigFile = "docsite.config.yaml"

// SiteConfig is the user-authored site configuration.
type SiteConfig struct {
	Title        string         `yaml:"title"`
	Tagline      string         `yaml:"tagline,omitempty"`
	URL          string         `yaml:"url"`
	BaseURL      string         `yaml:"baseUrl"`
	Presets      []PresetRef    `yaml:"presets,omitempty"`
	Plugins      []PluginConfig `yaml:"plugins,omitempty"`
	Themes       []PluginConfig `yaml:"themes,omitempty"`
	CustomFields map[string]any `yaml:"customFields,omitempty"`
	Logging      LoggingConfig  `yaml:"logging,omitempty"`
	Metrics      MetricsConfig  `yaml:"metrics,omitempty"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// MetricsConfig controls the optional Prometheus endpoint used in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Address string `yaml:"address,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// Load reads, expands, normalizes, defaults and validates a site configuration.
// Environment files next to the configuration are loaded first so ${VAR}
// references can point at them.
func Load(configPath string) (*SiteConfig, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.ConfigError("cannot resolve configuration path").
			WithCause(err).WithContext("path", configPath).Build()
	}

	if err := loadEnvFiles(filepath.Dir(absPath)); err != nil {
		slog.Debug("Environment files not loaded", "dir", filepath.Dir(absPath), "error", err)
	}

	// #nosec G304 -- configuration path is provided by the operator
	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithCategory(errors.CategoryNotFound).WithContext("path", absPath).Build()
		}
		return nil, errors.ConfigError("failed to read configuration file").
			WithCause(err).WithContext("path", absPath).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.ConfigError("invalid configuration").
			WithCause(err).WithContext("path", absPath).Build()
	}
	return cfg, nil
}

// Parse decodes configuration bytes after expanding environment variables,
// then runs normalization, defaults and validation.
func Parse(data []byte) (*SiteConfig, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg SiteConfig
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	res := Normalize(&cfg)
	for _, w := range res.Warnings {
		slog.Warn("config normalization", "warning", w)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
