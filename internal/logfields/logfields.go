package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPreset     = "preset"
	KeyPlugin     = "plugin"
	KeyPluginID   = "plugin_id"
	KeyModule     = "module"
	KeyModuleKind = "module_kind"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyBackend    = "backend"
	KeyOutcome    = "outcome"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Preset(name string) slog.Attr    { return slog.String(KeyPreset, name) }
func Plugin(name string) slog.Attr    { return slog.String(KeyPlugin, name) }
func PluginID(id string) slog.Attr    { return slog.String(KeyPluginID, id) }
func Module(id string) slog.Attr      { return slog.String(KeyModule, id) }
func ModuleKind(k string) slog.Attr   { return slog.String(KeyModuleKind, k) }
func File(path string) slog.Attr      { return slog.String(KeyFile, path) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Backend(name string) slog.Attr   { return slog.String(KeyBackend, name) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
