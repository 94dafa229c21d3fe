// Package site builds the LoadContext shared by presets and plugins.
package site

import (
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// DefaultOutDir is the build output directory relative to the site directory.
const DefaultOutDir = "build"

// LoadContext carries what presets and plugins may read while the site is
// being composed. It is created once per load and not mutated afterwards.
type LoadContext struct {
	// SiteDir is the directory holding the site configuration.
	SiteDir string

	// SiteConfigPath is the absolute path of the configuration file. Module
	// resolution is rooted here.
	SiteConfigPath string

	SiteConfig *config.SiteConfig

	// OutDir is where generated artifacts go.
	OutDir string

	// BuildID uniquely identifies this load.
	BuildID string

	Logger *slog.Logger
}

// Option customizes a LoadContext.
type Option func(*LoadContext)

// WithOutDir overrides the output directory.
func WithOutDir(dir string) Option {
	return func(lc *LoadContext) {
		if dir != "" {
			lc.OutDir = dir
		}
	}
}

// WithLogger sets the logger used by presets and plugins.
func WithLogger(logger *slog.Logger) Option {
	return func(lc *LoadContext) {
		if logger != nil {
			lc.Logger = logger
		}
	}
}

// New builds a LoadContext for an already loaded configuration.
func New(configPath string, cfg *config.SiteConfig, opts ...Option) (*LoadContext, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.ConfigError("cannot resolve configuration path").
			WithCause(err).WithContext("path", configPath).Build()
	}
	siteDir := filepath.Dir(absPath)

	lc := &LoadContext{
		SiteDir:        siteDir,
		SiteConfigPath: absPath,
		SiteConfig:     cfg,
		OutDir:         filepath.Join(siteDir, DefaultOutDir),
		BuildID:        uuid.NewString(),
		Logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(lc)
	}
	if !filepath.IsAbs(lc.OutDir) {
		lc.OutDir = filepath.Join(siteDir, lc.OutDir)
	}
	lc.Logger = lc.Logger.With(logfields.BuildID(lc.BuildID))
	return lc, nil
}

// Load reads the configuration at configPath and builds a LoadContext.
func Load(configPath string, opts ...Option) (*LoadContext, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return New(configPath, cfg, opts...)
}

// Resolve joins a site-relative path onto SiteDir. Absolute paths are returned unchanged.
func (lc *LoadContext) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(lc.SiteDir, p)
}
