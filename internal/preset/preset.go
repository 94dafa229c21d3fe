// Package preset turns the presets listed in the site configuration into the
// ordered plugin and theme declarations they bundle.
package preset

import (
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/module"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// Preset is what a preset factory returns. Either list may be nil and may
// contain disabled entries.
type Preset struct {
	Plugins []config.PluginConfig
	Themes  []config.PluginConfig
}

// Result holds the flattened declarations of all presets, disabled entries removed.
type Result struct {
	Plugins []config.PluginConfig `json:"plugins" yaml:"plugins"`
	Themes  []config.PluginConfig `json:"themes" yaml:"themes"`
}

// Factory builds a Preset from the load context and the options given in
// the site configuration.
type Factory func(lc *site.LoadContext, options map[string]any) (*Preset, error)

// Provider is implemented by module exports that build presets from a value.
type Provider interface {
	Preset(lc *site.LoadContext, options map[string]any) (*Preset, error)
}

// factoryFor normalizes a module export into a Factory.
func factoryFor(export any) (Factory, error) {
	switch v := export.(type) {
	case Factory:
		return v, nil
	case func(*site.LoadContext, map[string]any) (*Preset, error):
		return Factory(v), nil
	case Provider:
		return v.Preset, nil
	case *module.Manifest:
		if v.Kind != module.KindPreset {
			return nil, fmt.Errorf("manifest %q declares kind %s, not preset", v.Name, v.Kind)
		}
		return manifestFactory(v), nil
	case nil:
		return nil, fmt.Errorf("module has no exports")
	default:
		return nil, fmt.Errorf("module export of type %T is not a preset factory", export)
	}
}

// manifestFactory builds a preset from a declarative manifest. Entries with
// optionsFrom take their options from that key of the preset options; false
// there disables the entry.
func manifestFactory(m *module.Manifest) Factory {
	return func(_ *site.LoadContext, options map[string]any) (*Preset, error) {
		plugins, err := manifestEntries(m.Plugins, options)
		if err != nil {
			return nil, err
		}
		themes, err := manifestEntries(m.Themes, options)
		if err != nil {
			return nil, err
		}
		return &Preset{Plugins: plugins, Themes: themes}, nil
	}
}

func manifestEntries(entries []module.ManifestEntry, options map[string]any) ([]config.PluginConfig, error) {
	if entries == nil {
		return nil, nil
	}
	out := make([]config.PluginConfig, 0, len(entries))
	for _, e := range entries {
		if !e.Enabled() || e.OptionsFrom == "" {
			out = append(out, e.ModuleRef)
			continue
		}
		ref, err := Declare(e.Name, e.Options, options[e.OptionsFrom])
		if err != nil {
			return nil, fmt.Errorf("%s (options from %q): %w", e.Name, e.OptionsFrom, err)
		}
		out = append(out, ref)
	}
	return out, nil
}

// Declare builds a plugin declaration from base options and a user value
// taken from the preset options. A nil user value keeps the base options,
// false disables the declaration and a mapping is merged over base.
func Declare(name string, base map[string]any, user any) (config.PluginConfig, error) {
	switch v := user.(type) {
	case nil:
		return config.Ref(name, copyOptions(base)), nil
	case bool:
		if v {
			return config.Ref(name, copyOptions(base)), nil
		}
		return config.PluginConfig{Disabled: true}, nil
	case map[string]any:
		merged := copyOptions(base)
		if merged == nil {
			merged = make(map[string]any, len(v))
		}
		for k, val := range v {
			merged[k] = val
		}
		return config.Ref(name, merged), nil
	default:
		return config.PluginConfig{}, fmt.Errorf("options must be a mapping or false, got %T", user)
	}
}

func copyOptions(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func flatten(groups [][]config.PluginConfig) []config.PluginConfig {
	out := []config.PluginConfig{}
	for _, g := range groups {
		for _, ref := range g {
			if ref.Enabled() {
				out = append(out, ref)
			}
		}
	}
	return out
}
