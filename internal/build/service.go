package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/module"
	"git.home.luguber.info/inful/docsite/internal/preset"
)

// Service is the canonical interface for loading a site.
type Service interface {
	// Run executes the pipeline: config → presets → plugins → execute.
	// The result is returned even on failure so callers can report timings.
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains the inputs of a site load.
type Request struct {
	// ConfigPath is the site configuration file.
	ConfigPath string

	// OutDir overrides the output directory. Empty keeps the default.
	OutDir string

	// Modules is the module registry used for resolution. Nil means
	// module.Default().
	Modules *module.Registry

	// SkipExecute stops after plugin initialization. Used when only the
	// declarations are needed.
	SkipExecute bool
}

// Result is the outcome of a site load.
type Result struct {
	Status  Status `json:"status" yaml:"status"`
	BuildID string `json:"buildId" yaml:"buildId"`
	SiteDir string `json:"siteDir" yaml:"siteDir"`

	// Presets holds the flattened preset declarations.
	Presets *preset.Result `json:"presets,omitempty" yaml:"presets,omitempty"`

	// Plugins lists the initialized instances in execution order.
	Plugins []PluginSummary `json:"plugins,omitempty" yaml:"plugins,omitempty"`

	// Docs is the combined output of every docs content plugin.
	Docs     []docs.Doc `json:"docs,omitempty" yaml:"docs,omitempty"`
	DocsHash string     `json:"docsHash,omitempty" yaml:"docsHash,omitempty"`

	// RunID is set when the result was recorded in a store.
	RunID string `json:"runId,omitempty" yaml:"runId,omitempty"`

	StartTime time.Time     `json:"startTime" yaml:"startTime"`
	EndTime   time.Time     `json:"endTime" yaml:"endTime"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// PluginSummary describes one initialized plugin instance.
type PluginSummary struct {
	Name     string `json:"name" yaml:"name"`
	ID       string `json:"id" yaml:"id"`
	Type     string `json:"type" yaml:"type"`
	Version  string `json:"version" yaml:"version"`
	ModuleID string `json:"module" yaml:"module"`
}

// Status represents the outcome of a site load.
type Status string

const (
	// StatusSuccess indicates the load completed.
	StatusSuccess Status = "success"

	// StatusFailed indicates the load encountered an error.
	StatusFailed Status = "failed"

	// StatusCancelled indicates the context was canceled.
	StatusCancelled Status = "cancelled"
)

// IsSuccess returns true if the load completed successfully.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}
