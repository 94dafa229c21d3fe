package preset

import (
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/module"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// Built-in module names.
const (
	ClassicPresetName     = "@docsite/preset-classic"
	ContentDocsPluginName = "@docsite/plugin-content-docs"
	ClassicThemeName      = "@docsite/theme-classic"
)

func init() {
	module.MustRegisterBuiltin(ClassicPresetName, func() module.Exports {
		return module.Exports{Default: Factory(classic)}
	})
}

// classic declares the docs content plugin (options key "docs") and the
// classic theme (options key "theme").
func classic(_ *site.LoadContext, options map[string]any) (*Preset, error) {
	docs, err := Declare(ContentDocsPluginName, nil, options["docs"])
	if err != nil {
		return nil, err
	}
	theme, err := Declare(ClassicThemeName, nil, options["theme"])
	if err != nil {
		return nil, err
	}
	return &Preset{
		Plugins: []config.PluginConfig{docs},
		Themes:  []config.PluginConfig{theme},
	}, nil
}
