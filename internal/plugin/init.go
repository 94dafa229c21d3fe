package plugin

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/module"
	"git.home.luguber.info/inful/docsite/internal/moduleshorthand"
	"git.home.luguber.info/inful/docsite/internal/preset"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// DefaultVersion is reported by plugins that do not carry their own version.
const DefaultVersion = "v0.0.0"

// declaration is a plugin config entry with the list it came from.
type declaration struct {
	ref    config.PluginConfig
	kind   module.Kind
	source string
}

// InitOption configures InitPlugins.
type InitOption func(*initializer)

type initializer struct {
	recorder metrics.Recorder
	logger   *slog.Logger
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) InitOption {
	return func(in *initializer) {
		if r != nil {
			in.recorder = r
		}
	}
}

// WithLogger overrides the LoadContext logger.
func WithLogger(l *slog.Logger) InitOption {
	return func(in *initializer) { in.logger = l }
}

// InitPlugins initializes, in order, the preset plugins, the preset themes,
// the site plugins and the site themes. Disabled entries are skipped. Any
// failure is fatal.
func InitPlugins(lc *site.LoadContext, req *module.Require, presets *preset.Result, opts ...InitOption) (*Registry, error) {
	in := &initializer{recorder: metrics.NoopRecorder{}, logger: lc.Logger}
	for _, opt := range opts {
		opt(in)
	}
	if in.logger == nil {
		in.logger = slog.Default()
	}
	if presets == nil {
		presets = &preset.Result{}
	}

	var decls []declaration
	add := func(refs []config.PluginConfig, kind module.Kind, source string) {
		for _, ref := range refs {
			if ref.Enabled() {
				decls = append(decls, declaration{ref: ref, kind: kind, source: source})
			}
		}
	}
	add(presets.Plugins, module.KindPlugin, "preset")
	add(presets.Themes, module.KindTheme, "preset")
	if cfg := lc.SiteConfig; cfg != nil {
		add(cfg.Plugins, module.KindPlugin, "site")
		add(cfg.Themes, module.KindTheme, "site")
	}

	reg := NewRegistry()
	reg.recorder = in.recorder
	for _, d := range decls {
		start := time.Now()
		inst, err := in.initOne(lc, req, d)
		in.recorder.ObservePluginInit(d.ref.Name, time.Since(start), metrics.ResultFor(err))
		if err == nil {
			err = reg.Register(inst)
			if err != nil {
				// The rejected instance already ran Init and is not owned by reg.
				if lp, ok := inst.Plugin.(PluginLifecycle); ok {
					if cerr := lp.Cleanup(); cerr != nil {
						in.logger.Warn("Plugin cleanup failed",
							logfields.Plugin(inst.Name),
							logfields.PluginID(inst.ID),
							logfields.Error(cerr))
					}
				}
				err = errors.PluginError("duplicate plugin instance").
					WithCause(err).
					WithContext("plugin", inst.Name).
					WithContext("plugin_id", inst.ID).
					Build()
			}
		}
		if err != nil {
			if cerr := reg.Cleanup(); cerr != nil {
				in.logger.Warn("Plugin cleanup failed", logfields.Error(cerr))
			}
			return nil, err
		}
		in.logger.Debug("Initialized plugin",
			logfields.Plugin(inst.Name),
			logfields.PluginID(inst.ID),
			logfields.ModuleKind(string(d.kind)),
			slog.String("declared_by", d.source))
	}
	return reg, nil
}

func (in *initializer) initOne(lc *site.LoadContext, req *module.Require, d declaration) (*Instance, error) {
	name, options := d.ref.Normalize()
	fail := func(msg string, err error) error {
		b := errors.PluginError(msg).
			WithCause(err).
			WithContext("plugin", name).
			WithContext("module_kind", string(d.kind))
		var unresolved *moduleshorthand.UnresolvedError
		if stderrors.As(err, &unresolved) {
			b = b.WithContext("candidates", unresolved.Candidates)
		}
		return b.Build()
	}

	id, err := instanceID(options)
	if err != nil {
		return nil, fail("invalid plugin options", err)
	}

	moduleID, err := moduleshorthand.ResolveModuleName(name, req, d.kind)
	if err != nil {
		return nil, fail("cannot resolve plugin", err)
	}
	mod, err := req.Registry().LoadFresh(moduleID)
	if err != nil {
		return nil, fail("cannot load plugin module", err)
	}
	factory, err := factoryFor(mod.Primary(), name, d.kind)
	if err != nil {
		return nil, fail("plugin module does not export a plugin", err)
	}

	p, err := factory(lc, options)
	if err != nil {
		return nil, fail("plugin factory failed", NewPluginError(name, id, "create", err))
	}
	if p == nil {
		return nil, fail("plugin factory returned nil", fmt.Errorf("module %s", moduleID))
	}
	if err := p.Metadata().Validate(); err != nil {
		return nil, fail("invalid plugin metadata", err)
	}
	if err := p.Validate(options); err != nil {
		return nil, fail("invalid plugin options", NewPluginError(name, id, "validate", err))
	}
	if lp, ok := p.(PluginLifecycle); ok {
		if err := lp.Init(); err != nil {
			return nil, fail("plugin init failed", NewPluginError(name, id, "init", err))
		}
	}

	return &Instance{Plugin: p, Name: p.Metadata().Name, Declared: name, ID: id, ModuleID: moduleID, Options: options}, nil
}

func instanceID(options map[string]any) (string, error) {
	raw, ok := options["id"]
	if !ok || raw == nil {
		return DefaultID, nil
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("option \"id\" must be a non-empty string, got %v", raw)
	}
	return id, nil
}

// factoryFor normalizes a module export into a Factory.
func factoryFor(export any, name string, kind module.Kind) (Factory, error) {
	switch v := export.(type) {
	case Factory:
		return v, nil
	case func(*site.LoadContext, map[string]any) (Plugin, error):
		return Factory(v), nil
	case Plugin:
		return func(*site.LoadContext, map[string]any) (Plugin, error) { return v, nil }, nil
	case *module.Manifest:
		if v.Kind != module.KindPlugin && v.Kind != module.KindTheme {
			return nil, fmt.Errorf("manifest declares kind %s, not a plugin or theme", v.Kind)
		}
		return manifestFactory(v, name), nil
	case nil:
		return nil, fmt.Errorf("module has no exports")
	default:
		return nil, fmt.Errorf("module export of type %T is not a plugin factory", export)
	}
}

// manifestPlugin is a declarative plugin; it publishes its options.
type manifestPlugin struct {
	BasePlugin
	meta PluginMetadata
}

func manifestFactory(m *module.Manifest, declared string) Factory {
	name := m.Name
	if name == "" {
		name = declared
	}
	meta := PluginMetadata{
		Name:        name,
		Version:     DefaultVersion,
		Type:        typeForKind(m.Kind),
		Description: m.Description,
	}
	return func(*site.LoadContext, map[string]any) (Plugin, error) {
		return &manifestPlugin{meta: meta}, nil
	}
}

func (p *manifestPlugin) Metadata() PluginMetadata { return p.meta }

func (p *manifestPlugin) Execute(_ context.Context, pc *PluginContext) error {
	pc.SetContent(pc.Options)
	return nil
}
