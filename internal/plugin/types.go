package plugin

import (
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/module"
)

// PluginType identifies the category of plugin.
type PluginType string

const (
	// PluginTypeContent loads content (docs, pages, blog posts).
	PluginTypeContent PluginType = "content"

	// PluginTypeTheme provides presentation (components, styles).
	PluginTypeTheme PluginType = "theme"
)

// IsValid returns true if the plugin type is recognized.
func (t PluginType) IsValid() bool {
	switch t {
	case PluginTypeContent, PluginTypeTheme:
		return true
	default:
		return false
	}
}

// String returns the string representation of the plugin type.
func (t PluginType) String() string {
	return string(t)
}

// typeForKind maps the declaring list to a plugin type.
func typeForKind(k module.Kind) PluginType {
	if k == module.KindTheme {
		return PluginTypeTheme
	}
	return PluginTypeContent
}

// PluginError represents an error that occurred within a plugin.
type PluginError struct {
	// PluginName identifies which plugin failed.
	PluginName string

	// PluginID is the instance id.
	PluginID string

	// Operation describes what the plugin was doing when it failed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %s (id %s) failed during %s: %v", e.PluginName, e.PluginID, e.Operation, e.Err)
}

// Unwrap returns the underlying error for error inspection.
func (e *PluginError) Unwrap() error {
	return e.Err
}

// NewPluginError creates a new plugin error.
func NewPluginError(pluginName, pluginID, operation string, err error) *PluginError {
	return &PluginError{
		PluginName: pluginName,
		PluginID:   pluginID,
		Operation:  operation,
		Err:        err,
	}
}
