// Package contentdocs is the built-in docs content plugin. It runs the docs
// metadata pass and publishes the documents.
package contentdocs

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/lastupdate"
	"git.home.luguber.info/inful/docsite/internal/module"
	"git.home.luguber.info/inful/docsite/internal/plugin"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// Name is the module name the plugin is registered under.
const Name = "@docsite/plugin-content-docs"

// Version of the plugin.
const Version = "v1.0.0"

func init() {
	module.MustRegisterBuiltin(Name, func() module.Exports {
		return module.Exports{Default: plugin.Factory(New)}
	})
}

// Options are the plugin options.
type Options struct {
	ID                   string `yaml:"id"`
	Path                 string `yaml:"path"`
	ShowLastUpdateAuthor bool   `yaml:"showLastUpdateAuthor"`
	ShowLastUpdateTime   bool   `yaml:"showLastUpdateTime"`
	LastUpdateBackend    string `yaml:"lastUpdateBackend"`
	Concurrency          int    `yaml:"concurrency"`
}

// Content is what the plugin publishes.
type Content struct {
	Docs []docs.Doc `json:"docs" yaml:"docs"`
	Hash string     `json:"hash" yaml:"hash"`
}

// Plugin loads docs metadata.
type Plugin struct {
	plugin.BasePlugin
	opts Options
}

// New creates the plugin from its declared options.
func New(_ *site.LoadContext, options map[string]any) (plugin.Plugin, error) {
	opts, err := decode(options)
	if err != nil {
		return nil, err
	}
	return &Plugin{opts: opts}, nil
}

func decode(options map[string]any) (Options, error) {
	var opts Options
	if err := config.DecodeOptions(options, &opts); err != nil {
		return Options{}, err
	}
	if opts.Path == "" {
		opts.Path = docs.DefaultPath
	}
	return opts, nil
}

// Options returns the decoded options.
func (p *Plugin) Options() Options { return p.opts }

func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     Version,
		Type:        plugin.PluginTypeContent,
		Description: "Docs content: titles, fingerprints and last update metadata",
	}
}

func (p *Plugin) Validate(options map[string]any) error {
	opts, err := decode(options)
	if err != nil {
		return err
	}
	if opts.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", opts.Concurrency)
	}
	if opts.LastUpdateBackend != "" {
		if _, err := lastupdate.NewBackend(opts.LastUpdateBackend); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plugin) Execute(ctx context.Context, pc *plugin.PluginContext) error {
	extractor := lastupdate.Default()
	if p.opts.LastUpdateBackend != "" {
		backend, err := lastupdate.NewBackend(p.opts.LastUpdateBackend)
		if err != nil {
			return err
		}
		extractor = lastupdate.New(
			lastupdate.WithBackend(backend),
			lastupdate.WithLogger(pc.Logger),
			lastupdate.WithRecorder(pc.Recorder))
	}

	processor := docs.NewProcessor(
		docs.WithExtractor(extractor),
		docs.WithLogger(pc.Logger),
		docs.WithRecorder(pc.Recorder))

	result, err := processor.Process(ctx, pc.Site.SiteDir, docs.Options{
		Path:                 p.opts.Path,
		ShowLastUpdateAuthor: p.opts.ShowLastUpdateAuthor,
		ShowLastUpdateTime:   p.opts.ShowLastUpdateTime,
		Concurrency:          p.opts.Concurrency,
	})
	if err != nil {
		return err
	}
	pc.SetContent(&Content{Docs: result, Hash: docs.ComputeDocsHash(result)})
	return nil
}
