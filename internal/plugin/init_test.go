package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/module"
	"git.home.luguber.info/inful/docsite/internal/preset"
	"git.home.luguber.info/inful/docsite/internal/site"
)

func registerMock(t *testing.T, reg *module.Registry, name string, typ PluginType, configure func(*mockPlugin)) {
	t.Helper()
	require.NoError(t, reg.RegisterBuiltin(name, func() module.Exports {
		return module.Exports{Default: Factory(func(*site.LoadContext, map[string]any) (Plugin, error) {
			p := newMockPlugin(name, typ, nil)
			if configure != nil {
				configure(p)
			}
			return p, nil
		})}
	}))
}

func instanceNames(r *Registry) []string {
	var out []string
	for _, inst := range r.List() {
		out = append(out, inst.Name+"#"+inst.ID)
	}
	return out
}

func TestInitPluginsOrder(t *testing.T) {
	reg := module.NewRegistry()
	for _, n := range []string{"preset-plugin", "site-plugin"} {
		registerMock(t, reg, n, PluginTypeContent, nil)
	}
	for _, n := range []string{"preset-theme", "site-theme"} {
		registerMock(t, reg, n, PluginTypeTheme, nil)
	}

	lc := testContext(t, &config.SiteConfig{
		Title:   "Test",
		URL:     "https://example.com",
		Plugins: []config.PluginConfig{{Disabled: true}, config.Ref("site-plugin", nil)},
		Themes:  []config.PluginConfig{config.Ref("site-theme", nil)},
	})
	presets := &preset.Result{
		Plugins: []config.PluginConfig{config.Ref("preset-plugin", nil)},
		Themes:  []config.PluginConfig{config.Ref("preset-theme", nil)},
	}

	plugins, err := InitPlugins(lc, reg.Require(lc.SiteConfigPath), presets)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"preset-plugin#default",
		"preset-theme#default",
		"site-plugin#default",
		"site-theme#default",
	}, instanceNames(plugins))
}

func TestInitPluginsDuplicateInstance(t *testing.T) {
	reg := module.NewRegistry()
	registerMock(t, reg, "dup", PluginTypeContent, nil)
	lc := testContext(t, &config.SiteConfig{
		Title:   "Test",
		URL:     "https://example.com",
		Plugins: []config.PluginConfig{config.Ref("dup", nil)},
	})

	_, err := InitPlugins(lc, reg.Require(lc.SiteConfigPath), &preset.Result{
		Plugins: []config.PluginConfig{config.Ref("dup", nil)},
	})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryPlugin))
	assert.Contains(t, err.Error(), "already registered")

	lc.SiteConfig.Plugins = []config.PluginConfig{config.Ref("dup", map[string]any{"id": "second"})}
	plugins, err := InitPlugins(lc, reg.Require(lc.SiteConfigPath), &preset.Result{
		Plugins: []config.PluginConfig{config.Ref("dup", nil)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dup#default", "dup#second"}, instanceNames(plugins))
}

func TestInitPluginsDuplicateInstanceIsCleanedUp(t *testing.T) {
	var events []string
	reg := module.NewRegistry()
	require.NoError(t, reg.RegisterBuiltin("dup", func() module.Exports {
		return module.Exports{Default: Factory(func(*site.LoadContext, map[string]any) (Plugin, error) {
			return newMockPlugin("dup", PluginTypeContent, &events), nil
		})}
	}))

	lc := testContext(t, nil)
	_, err := InitPlugins(lc, reg.Require(lc.SiteConfigPath), &preset.Result{
		Plugins: []config.PluginConfig{config.Ref("dup", nil), config.Ref("dup", nil)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, []string{"dup:init", "dup:init", "dup:cleanup", "dup:cleanup"}, events)
}

func TestInitPluginsUnresolved(t *testing.T) {
	reg := module.NewRegistry()
	lc := testContext(t, &config.SiteConfig{
		Title:  "Test",
		URL:    "https://example.com",
		Themes: []config.PluginConfig{config.Ref("nope", nil)},
	})

	_, err := InitPlugins(lc, reg.Require(lc.SiteConfigPath), nil)
	require.Error(t, err)
	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.True(t, ce.IsFatal())
	candidates, _ := ce.Context().Get("candidates")
	assert.Equal(t, []string{"nope", "@docsite/theme-nope", "docsite-theme-nope"}, candidates)
}

func TestInitPluginsInvalidOptions(t *testing.T) {
	reg := module.NewRegistry()
	registerMock(t, reg, "picky", PluginTypeContent, func(p *mockPlugin) {
		p.validateErr = errors.New("unknown option")
	})
	registerMock(t, reg, "ok", PluginTypeContent, nil)

	lc := testContext(t, nil)
	req := reg.Require(lc.SiteConfigPath)

	_, err := InitPlugins(lc, req, &preset.Result{Plugins: []config.PluginConfig{config.Ref("picky", nil)}})
	require.Error(t, err)
	var pe *PluginError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "validate", pe.Operation)

	_, err = InitPlugins(lc, req, &preset.Result{Plugins: []config.PluginConfig{config.Ref("ok", map[string]any{"id": 7})}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "option \"id\"")
}

func TestInitPluginsCleansUpOnFailure(t *testing.T) {
	var events []string
	reg := module.NewRegistry()
	require.NoError(t, reg.RegisterBuiltin("tracked", func() module.Exports {
		return module.Exports{Value: newMockPlugin("tracked", PluginTypeContent, &events)}
	}))
	registerMock(t, reg, "broken", PluginTypeContent, func(p *mockPlugin) {
		p.initErr = errors.New("no")
	})

	lc := testContext(t, nil)
	_, err := InitPlugins(lc, reg.Require(lc.SiteConfigPath), &preset.Result{
		Plugins: []config.PluginConfig{config.Ref("tracked", nil), config.Ref("broken", nil)},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"tracked:init", "tracked:cleanup"}, events)
}

func TestInitPluginsManifestPlugin(t *testing.T) {
	lc := testContext(t, nil)
	path := filepath.Join(lc.SiteDir, module.ModulesDir, "search", module.ManifestFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("kind: plugin\nname: \"@acme/search\"\ndescription: Search index\n"), 0o600))

	reg := module.NewRegistry()
	plugins, err := InitPlugins(lc, reg.Require(lc.SiteConfigPath), &preset.Result{
		Plugins: []config.PluginConfig{config.Ref("search", map[string]any{"index": "docs"})},
	})
	require.NoError(t, err)

	inst, err := plugins.Get("@acme/search", DefaultID)
	require.NoError(t, err)
	assert.Equal(t, "search", inst.Declared)
	assert.Equal(t, path, inst.ModuleID)

	content, err := plugins.Execute(context.Background(), lc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"index": "docs"}, content.Get("@acme/search", DefaultID))
}

func TestInitPluginsRejectsPresetManifestAsPlugin(t *testing.T) {
	lc := testContext(t, nil)
	path := filepath.Join(lc.SiteDir, "bundle.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kind: preset\n"), 0o600))

	_, err := InitPlugins(lc, module.NewRegistry().Require(lc.SiteConfigPath), &preset.Result{
		Plugins: []config.PluginConfig{config.Ref("./bundle.yaml", nil)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a plugin or theme")
}
