package module

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Require resolves and loads modules from the perspective of a site directory.
type Require struct {
	registry *Registry
	baseDir  string
}

// BaseDir returns the directory resolution is rooted at.
func (q *Require) BaseDir() string { return q.baseDir }

// Registry returns the registry backing this resolver.
func (q *Require) Registry() *Registry { return q.registry }

// IsPathRequest reports whether request names a filesystem path rather than a module name.
func IsPathRequest(request string) bool {
	return request == "." || request == ".." ||
		strings.HasPrefix(request, "./") || strings.HasPrefix(request, "../") ||
		filepath.IsAbs(request)
}

// Resolve maps a request to a module ID without loading it.
func (q *Require) Resolve(request string) (string, error) {
	if request == "" {
		return "", errors.New("empty module request")
	}

	if IsPathRequest(request) {
		p := request
		if !filepath.IsAbs(p) {
			p = filepath.Join(q.baseDir, filepath.FromSlash(p))
		}
		return resolvePath(filepath.Clean(p), request, q.baseDir)
	}

	local := filepath.Join(q.baseDir, ModulesDir, filepath.FromSlash(request), ManifestFile)
	if isFile(local) {
		return local, nil
	}

	if q.registry.HasBuiltin(request) {
		return BuiltinPrefix + request, nil
	}

	return "", fmt.Errorf("%w: cannot find %q from %s", ErrNotFound, request, q.baseDir)
}

// Load resolves and loads request through the registry cache.
func (q *Require) Load(request string) (*Module, error) {
	id, err := q.Resolve(request)
	if err != nil {
		return nil, err
	}
	return q.registry.Load(id)
}

// LoadFresh resolves request and reloads it, bypassing the cache.
func (q *Require) LoadFresh(request string) (*Module, error) {
	id, err := q.Resolve(request)
	if err != nil {
		return nil, err
	}
	return q.registry.LoadFresh(id)
}

// resolvePath tries the path itself, then .yaml/.yml extensions, then a
// module.yaml inside it when it is a directory.
func resolvePath(p, request, baseDir string) (string, error) {
	candidates := []string{p, p + ".yaml", p + ".yml"}
	for _, c := range candidates {
		if isFile(c) {
			return c, nil
		}
	}
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		if m := filepath.Join(p, ManifestFile); isFile(m) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: cannot find %q from %s", ErrNotFound, request, baseDir)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
