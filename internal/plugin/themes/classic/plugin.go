// Package classic is the built-in classic theme. Rendering happens outside
// docsite; the plugin validates and publishes the theme settings.
package classic

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/module"
	"git.home.luguber.info/inful/docsite/internal/plugin"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// Name is the module name the theme is registered under.
const Name = "@docsite/theme-classic"

// Version of the theme.
const Version = "v1.0.0"

func init() {
	module.MustRegisterBuiltin(Name, func() module.Exports {
		return module.Exports{Default: plugin.Factory(New)}
	})
}

// StringList accepts a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*l = list
	return nil
}

// Options are the theme options.
type Options struct {
	ID        string     `yaml:"id"`
	CustomCSS StringList `yaml:"customCss"`
}

// Content is what the theme publishes.
type Content struct {
	// CustomCSS holds absolute stylesheet paths.
	CustomCSS []string `json:"customCss" yaml:"customCss"`
}

// Theme is the classic theme plugin.
type Theme struct {
	plugin.BasePlugin
	site *site.LoadContext
	opts Options
}

// New creates the theme.
func New(lc *site.LoadContext, options map[string]any) (plugin.Plugin, error) {
	var opts Options
	if err := config.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	return &Theme{site: lc, opts: opts}, nil
}

func (t *Theme) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     Version,
		Type:        plugin.PluginTypeTheme,
		Description: "Classic docs theme",
	}
}

// Validate checks that every custom stylesheet exists relative to the site.
func (t *Theme) Validate(options map[string]any) error {
	var opts Options
	if err := config.DecodeOptions(options, &opts); err != nil {
		return err
	}
	for _, css := range opts.CustomCSS {
		p := t.site.Resolve(css)
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("customCss %s: %w", css, err)
		}
		if info.IsDir() {
			return fmt.Errorf("customCss %s is a directory", css)
		}
	}
	return nil
}

func (t *Theme) Execute(_ context.Context, pc *plugin.PluginContext) error {
	paths := make([]string, 0, len(t.opts.CustomCSS))
	for _, css := range t.opts.CustomCSS {
		paths = append(paths, t.site.Resolve(css))
	}
	pc.SetContent(&Content{CustomCSS: paths})
	return nil
}
