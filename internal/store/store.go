// Package store persists docs metadata runs in SQLite so later commands can
// report on them. Lookups never read from it.
package store

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docsite/internal/docs"
)

// Run is one recorded metadata pass.
type Run struct {
	ID        string            `json:"id" yaml:"id"`
	BuildID   string            `json:"buildId" yaml:"buildId"`
	SiteDir   string            `json:"siteDir" yaml:"siteDir"`
	StartedAt time.Time         `json:"startedAt" yaml:"startedAt"`
	Hash      string            `json:"hash" yaml:"hash"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Docs      []docs.Doc        `json:"docs" yaml:"docs"`
}

// Store records and reads back runs.
type Store interface {
	// Record persists a run. An empty ID is filled in.
	Record(ctx context.Context, run *Run) error

	// Latest returns the most recent run for siteDir.
	Latest(ctx context.Context, siteDir string) (*Run, error)

	// Close closes the store and releases resources.
	Close() error
}
