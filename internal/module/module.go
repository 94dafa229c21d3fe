package module

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/config"
)

// Kind classifies what a module provides.
type Kind string

const (
	KindPreset Kind = "preset"
	KindPlugin Kind = "plugin"
	KindTheme  Kind = "theme"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindPreset, KindPlugin, KindTheme:
		return true
	default:
		return false
	}
}

// Exports mirrors the two export conventions a module can use: a default
// export, or the module value itself.
type Exports struct {
	Default any
	Value   any
}

// Primary returns the default export when set, otherwise the direct value.
func (e Exports) Primary() any {
	if e.Default != nil {
		return e.Default
	}
	return e.Value
}

// Module is a loaded module.
type Module struct {
	Exports

	// ID is the resolved identifier ("builtin:<name>" or an absolute path).
	ID string

	// Path is the manifest file for on-disk modules, empty for built-ins.
	Path string
}

// IsBuiltin reports whether the module is compiled into docsite.
func (m *Module) IsBuiltin() bool { return strings.HasPrefix(m.ID, BuiltinPrefix) }

// Constructor builds the exports of a built-in module. It is called again on
// every fresh load.
type Constructor func() Exports

// Manifest is the on-disk declarative form of a module.
type Manifest struct {
	Kind        Kind            `yaml:"kind"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Plugins     []ManifestEntry `yaml:"plugins,omitempty"`
	Themes      []ManifestEntry `yaml:"themes,omitempty"`
}

// ManifestEntry declares a plugin or theme inside a manifest. OptionsFrom
// names the key of the preset options whose value is merged over Options;
// a false value there disables the entry.
type ManifestEntry struct {
	config.ModuleRef
	OptionsFrom string
}

// UnmarshalYAML accepts every ModuleRef form plus a mapping with optionsFrom.
func (e *ManifestEntry) UnmarshalYAML(node *yaml.Node) error {
	*e = ManifestEntry{}
	if node.Kind != yaml.MappingNode {
		return node.Decode(&e.ModuleRef)
	}

	var raw struct {
		Name        string         `yaml:"name"`
		Options     map[string]any `yaml:"options"`
		OptionsFrom string         `yaml:"optionsFrom"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw.Name) == "" {
		return fmt.Errorf("line %d: manifest entry requires a name", node.Line)
	}
	e.Name = strings.TrimSpace(raw.Name)
	e.Options = raw.Options
	e.OptionsFrom = raw.OptionsFrom
	return nil
}

// ParseManifest decodes and validates manifest bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if !m.Kind.IsValid() {
		return nil, fmt.Errorf("manifest kind %q is not one of preset, plugin, theme", m.Kind)
	}
	if m.Kind != KindPreset && (len(m.Plugins) > 0 || len(m.Themes) > 0) {
		return nil, fmt.Errorf("only preset manifests may declare plugins or themes")
	}
	return &m, nil
}

// ReadManifest reads and parses a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	// #nosec G304 -- manifest path comes from module resolution under the site directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
