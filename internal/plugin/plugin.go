// Package plugin loads the plugins and themes declared by presets and the
// site configuration, and runs them in declaration order.
package plugin

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/site"
)

// Plugin is an initialized plugin or theme instance.
type Plugin interface {
	// Metadata returns the plugin's identity.
	Metadata() PluginMetadata

	// Validate checks the options the plugin was declared with.
	Validate(options map[string]any) error

	// Execute runs the plugin. Plugins publish what they load through pluginCtx.
	Execute(ctx context.Context, pluginCtx *PluginContext) error
}

// PluginLifecycle extends Plugin with optional lifecycle hooks.
type PluginLifecycle interface {
	Plugin

	// Init is called once after validation, before registration.
	Init() error

	// Cleanup is called when the registry is torn down (e.g. on reload).
	Cleanup() error
}

// Factory creates a plugin from the load context and its declared options.
type Factory func(lc *site.LoadContext, options map[string]any) (Plugin, error)

// PluginMetadata describes a plugin's identity.
type PluginMetadata struct {
	// Name is the module name the plugin was declared with
	// (e.g. "@docsite/plugin-content-docs").
	Name string

	// Version is the plugin version.
	Version string

	Type PluginType

	Description string
}

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Type)
}

// Validate checks if the plugin metadata is valid.
func (m PluginMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid plugin type: %s", m.Type)
	}
	return nil
}

// BasePlugin provides default implementations for optional methods.
type BasePlugin struct{}

// Init is a no-op default implementation.
func (b *BasePlugin) Init() error {
	return nil
}

// Cleanup is a no-op default implementation.
func (b *BasePlugin) Cleanup() error {
	return nil
}

// Validate is a no-op default implementation that accepts any options.
func (b *BasePlugin) Validate(map[string]any) error {
	return nil
}
