package preset

import (
	stderrors "errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/module"
	"git.home.luguber.info/inful/docsite/internal/moduleshorthand"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// Loader resolves presets against a module registry.
type Loader struct {
	registry *module.Registry
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(l *Loader) {
		if r != nil {
			l.recorder = r
		}
	}
}

// WithLogger overrides the logger. By default the LoadContext logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a Loader backed by registry. A nil registry uses module.Default().
func NewLoader(registry *module.Registry, opts ...Option) *Loader {
	if registry == nil {
		registry = module.Default()
	}
	l := &Loader{registry: registry, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadPresets resolves the presets of lc.SiteConfig with the default registry.
func LoadPresets(lc *site.LoadContext) (*Result, error) {
	return NewLoader(nil).LoadPresets(lc)
}

// LoadPresets resolves every configured preset in order, invokes it with its
// options, and returns the flattened plugin and theme declarations. Any
// failure is fatal and stops at the failing preset.
func (l *Loader) LoadPresets(lc *site.LoadContext) (*Result, error) {
	if lc == nil || lc.SiteConfig == nil {
		return nil, errors.InternalError("preset loading requires a site configuration").Build()
	}
	logger := l.logger
	if logger == nil {
		logger = lc.Logger
	}
	if logger == nil {
		logger = slog.Default()
	}

	req := l.registry.Require(lc.SiteConfigPath)
	presets := lc.SiteConfig.Presets
	unflatPlugins := make([][]config.PluginConfig, 0, len(presets))
	unflatThemes := make([][]config.PluginConfig, 0, len(presets))

	for i, ref := range presets {
		if !ref.Enabled() {
			logger.Debug("Skipping disabled preset slot", slog.Int("index", i))
			continue
		}
		start := time.Now()
		p, err := l.loadOne(lc, req, ref)
		l.recorder.ObservePresetLoad(ref.Name, time.Since(start), metrics.ResultFor(err))
		if err != nil {
			return nil, err
		}
		logger.Debug("Loaded preset",
			logfields.Preset(ref.Name),
			slog.Int("plugins", len(p.Plugins)),
			slog.Int("themes", len(p.Themes)),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))

		if p.Plugins != nil {
			unflatPlugins = append(unflatPlugins, p.Plugins)
		}
		if p.Themes != nil {
			unflatThemes = append(unflatThemes, p.Themes)
		}
	}

	return &Result{
		Plugins: flatten(unflatPlugins),
		Themes:  flatten(unflatThemes),
	}, nil
}

func (l *Loader) loadOne(lc *site.LoadContext, req *module.Require, ref config.PresetRef) (*Preset, error) {
	name, options := ref.Normalize()

	id, err := moduleshorthand.ResolveModuleName(name, req, module.KindPreset)
	if err != nil {
		b := errors.PresetError("cannot resolve preset").
			WithCause(err).
			WithContext("preset", name).
			WithContext("site_dir", req.BaseDir())
		var unresolved *moduleshorthand.UnresolvedError
		if stderrors.As(err, &unresolved) {
			b = b.WithContext("candidates", unresolved.Candidates)
		}
		return nil, b.Build()
	}

	errCtx := errors.ErrorContext{"preset": name, "module": id}
	mod, err := req.Registry().LoadFresh(id)
	if err != nil {
		return nil, errors.PresetError("cannot load preset module").
			WithCause(err).
			WithContextMap(errCtx).
			Build()
	}

	factory, err := factoryFor(mod.Primary())
	if err != nil {
		return nil, errors.PresetError("preset module does not export a preset").
			WithCause(err).
			WithContextMap(errCtx).
			Build()
	}

	p, err := factory(lc, options)
	if err != nil {
		return nil, errors.PresetError("preset failed").
			WithCause(err).
			WithContextMap(errCtx).
			Build()
	}
	if p == nil {
		p = &Preset{}
	}
	return p, nil
}
