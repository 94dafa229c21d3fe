package plugin

import (
	"log/slog"
	"sort"
	"sync"

	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// PluginContext is passed to a plugin's Execute. It gives access to the
// site and lets the plugin publish the content it loaded.
type PluginContext struct {
	// Logger is scoped to the plugin instance.
	Logger *slog.Logger

	// Site is the load context the plugin was created with.
	Site *site.LoadContext

	// Name and ID identify the running instance.
	Name string
	ID   string

	// Options are the declared options, never nil.
	Options map[string]any

	// Recorder receives plugin metrics.
	Recorder metrics.Recorder

	content *ContentStore
}

// SetContent publishes the instance's loaded content.
func (pc *PluginContext) SetContent(v any) {
	pc.content.Set(pc.Name, pc.ID, v)
}

// Content returns what another instance published, or nil.
func (pc *PluginContext) Content(name, id string) any {
	return pc.content.Get(name, id)
}

// ContentStore collects the content published by plugins, keyed by plugin
// name and instance id.
type ContentStore struct {
	mu sync.RWMutex
	m  map[string]map[string]any
}

// NewContentStore creates an empty store.
func NewContentStore() *ContentStore {
	return &ContentStore{m: make(map[string]map[string]any)}
}

// Set stores v for the instance.
func (s *ContentStore) Set(name, id string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m[name] == nil {
		s.m[name] = make(map[string]any)
	}
	s.m[name][id] = v
}

// Get returns the content of an instance, or nil.
func (s *ContentStore) Get(name, id string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[name][id]
}

// Names lists plugin names with published content, sorted.
func (s *ContentStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.m))
	for n := range s.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
