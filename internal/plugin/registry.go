package plugin

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// DefaultID is the instance id used when options do not set "id".
const DefaultID = "default"

// Instance is a registered plugin together with its declaration.
type Instance struct {
	Plugin Plugin

	// Name is the plugin's own name (PluginMetadata.Name).
	Name string

	// Declared is the name used in the configuration, possibly a shorthand.
	Declared string

	// ID distinguishes several instances of the same plugin.
	ID string

	// ModuleID is the resolved module the plugin was loaded from.
	ModuleID string

	Options map[string]any
}

// Registry holds initialized plugin instances in initialization order.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]map[string]*Instance // map[name]map[id]
	order     []*Instance
	recorder  metrics.Recorder
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		instances: make(map[string]map[string]*Instance),
		recorder:  metrics.NoopRecorder{},
	}
}

// Register adds an instance. A second instance with the same name and id is
// rejected.
func (r *Registry) Register(inst *Instance) error {
	if inst == nil || inst.Plugin == nil {
		return fmt.Errorf("cannot register nil plugin")
	}
	if inst.ID == "" {
		inst.ID = DefaultID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.instances[inst.Name] == nil {
		r.instances[inst.Name] = make(map[string]*Instance)
	}
	if _, exists := r.instances[inst.Name][inst.ID]; exists {
		return fmt.Errorf("plugin %s with id %q is already registered; give each instance a unique \"id\" option", inst.Name, inst.ID)
	}

	r.instances[inst.Name][inst.ID] = inst
	r.order = append(r.order, inst)
	return nil
}

// Get retrieves an instance by name and id.
func (r *Registry) Get(name, id string) (*Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.instances[name]
	if !ok {
		return nil, fmt.Errorf("plugin %s not found", name)
	}
	inst, ok := ids[id]
	if !ok {
		return nil, fmt.Errorf("plugin %s with id %q not found", name, id)
	}
	return inst, nil
}

// List returns all instances in initialization order.
func (r *Registry) List() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Instance, len(r.order))
	copy(out, r.order)
	return out
}

// ListByType returns the instances of a plugin type in initialization order.
func (r *Registry) ListByType(pluginType PluginType) []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Instance
	for _, inst := range r.order {
		if inst.Plugin.Metadata().Type == pluginType {
			result = append(result, inst)
		}
	}
	return result
}

// Has checks if any instance of the named plugin exists.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.instances[name]
	return ok
}

// Count returns the number of registered instances.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Execute runs every instance in order and returns the published content.
// The first failure stops the run.
func (r *Registry) Execute(ctx context.Context, lc *site.LoadContext) (*ContentStore, error) {
	logger := lc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	content := NewContentStore()

	for _, inst := range r.List() {
		if err := ctx.Err(); err != nil {
			return nil, errors.PluginError("plugin run canceled").WithCause(err).Build()
		}
		options := inst.Options
		if options == nil {
			options = map[string]any{}
		}
		pc := &PluginContext{
			Logger:   logger.With(logfields.Plugin(inst.Name), logfields.PluginID(inst.ID)),
			Site:     lc,
			Name:     inst.Name,
			ID:       inst.ID,
			Options:  options,
			Recorder: r.recorder,
			content:  content,
		}
		if err := inst.Plugin.Execute(ctx, pc); err != nil {
			return nil, errors.PluginError("plugin failed").
				WithCause(NewPluginError(inst.Name, inst.ID, "execute", err)).
				WithContext("plugin", inst.Name).
				WithContext("plugin_id", inst.ID).
				Build()
		}
	}
	return content, nil
}

// Cleanup calls Cleanup on every lifecycle plugin in reverse order and
// empties the registry.
func (r *Registry) Cleanup() error {
	r.mu.Lock()
	order := r.order
	r.order = nil
	r.instances = make(map[string]map[string]*Instance)
	r.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		if lp, ok := order[i].Plugin.(PluginLifecycle); ok {
			if err := lp.Cleanup(); err != nil {
				errs = append(errs, NewPluginError(order[i].Name, order[i].ID, "cleanup", err))
			}
		}
	}
	return stderrors.Join(errs...)
}
