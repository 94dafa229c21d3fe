package module

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// BuiltinPrefix marks the resolved ID of a built-in module.
const BuiltinPrefix = "builtin:"

// ManifestFile is the manifest looked up inside module directories.
const ManifestFile = "module.yaml"

// ModulesDir is the project directory holding installed modules.
const ModulesDir = "modules"

// ErrNotFound is returned when a request resolves to nothing.
var ErrNotFound = stderrors.New("module not found")

// Registry caches loaded modules by resolved ID and holds built-in constructors.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]Constructor
	cache    map[string]*Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builtins: make(map[string]Constructor),
		cache:    make(map[string]*Module),
	}
}

// RegisterBuiltin adds a compiled-in module under name.
func (r *Registry) RegisterBuiltin(name string, ctor Constructor) error {
	if name == "" {
		return stderrors.New("built-in module name is required")
	}
	if ctor == nil {
		return fmt.Errorf("built-in module %s has no constructor", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builtins[name]; exists {
		return fmt.Errorf("built-in module %s already registered", name)
	}
	r.builtins[name] = ctor
	return nil
}

// HasBuiltin reports whether name is a registered built-in.
func (r *Registry) HasBuiltin(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builtins[name]
	return ok
}

// Builtins lists registered built-in names, sorted.
func (r *Registry) Builtins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builtins))
	for name := range r.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load returns the cached module for id, loading it on first use.
func (r *Registry) Load(id string) (*Module, error) {
	r.mu.RLock()
	m, ok := r.cache[id]
	r.mu.RUnlock()
	if ok {
		return m, nil
	}

	m, err := r.load(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[id] = m
	r.mu.Unlock()
	return m, nil
}

// LoadFresh invalidates id and loads it again.
func (r *Registry) LoadFresh(id string) (*Module, error) {
	r.Invalidate(id)
	return r.Load(id)
}

// Invalidate drops the cached module for id.
func (r *Registry) Invalidate(id string) {
	r.mu.Lock()
	delete(r.cache, id)
	r.mu.Unlock()
}

// InvalidateAll drops every cached module.
func (r *Registry) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[string]*Module)
	r.mu.Unlock()
}

// ManifestPaths lists the files of cached on-disk modules, sorted.
func (r *Registry) ManifestPaths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var paths []string
	for _, m := range r.cache {
		if m.Path != "" {
			paths = append(paths, m.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

func (r *Registry) load(id string) (*Module, error) {
	if name, ok := strings.CutPrefix(id, BuiltinPrefix); ok {
		r.mu.RLock()
		ctor, exists := r.builtins[name]
		r.mu.RUnlock()
		if !exists {
			return nil, fmt.Errorf("%w: built-in %s", ErrNotFound, name)
		}
		return &Module{ID: id, Exports: ctor()}, nil
	}

	manifest, err := ReadManifest(id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, errors.ModuleError("cannot read module manifest").
			WithCause(err).
			WithContext("module", id).
			Build()
	}
	return &Module{ID: id, Path: id, Exports: Exports{Value: manifest}}, nil
}

// Require returns a resolver rooted at the directory of siteConfigPath.
func (r *Registry) Require(siteConfigPath string) *Require {
	abs, err := filepath.Abs(siteConfigPath)
	if err != nil {
		abs = siteConfigPath
	}
	return &Require{registry: r, baseDir: filepath.Dir(abs)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry built-ins register into.
func Default() *Registry {
	return defaultRegistry
}

// RegisterBuiltin adds a built-in to the default registry.
func RegisterBuiltin(name string, ctor Constructor) error {
	return defaultRegistry.RegisterBuiltin(name, ctor)
}

// MustRegisterBuiltin is RegisterBuiltin for package init functions.
func MustRegisterBuiltin(name string, ctor Constructor) {
	if err := RegisterBuiltin(name, ctor); err != nil {
		panic(err)
	}
}
