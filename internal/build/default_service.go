package build

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/module"
	"git.home.luguber.info/inful/docsite/internal/plugin"
	"git.home.luguber.info/inful/docsite/internal/plugin/contentdocs"
	// Registers the theme declared by the classic preset.
	_ "git.home.luguber.info/inful/docsite/internal/plugin/themes/classic"
	"git.home.luguber.info/inful/docsite/internal/preset"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/store"
)

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	recorder metrics.Recorder
	logger   *slog.Logger
	store    store.Store
}

// NewService creates a DefaultService with a no-op recorder and no store.
func NewService() *DefaultService {
	return &DefaultService{recorder: metrics.NoopRecorder{}}
}

// WithRecorder sets the metrics recorder passed to presets and plugins.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithLogger sets the logger. Defaults to slog.Default() at run time.
func (s *DefaultService) WithLogger(l *slog.Logger) *DefaultService {
	s.logger = l
	return s
}

// WithStore records every successful run that produced docs metadata.
func (s *DefaultService) WithStore(st store.Store) *DefaultService {
	s.store = st
	return s
}

// Run executes the site load pipeline.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{StartTime: time.Now()}
	finish := func(status Status, err error) (*Result, error) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		return result, err
	}

	logger := s.logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := req.Modules
	if registry == nil {
		registry = module.Default()
	}

	// Stage 1: configuration
	lc, err := site.Load(req.ConfigPath, site.WithOutDir(req.OutDir), site.WithLogger(logger))
	if err != nil {
		return finish(StatusFailed, stageError(ErrConfig, err))
	}
	result.BuildID = lc.BuildID
	result.SiteDir = lc.SiteDir
	logger = lc.Logger

	// Stage 2: presets
	presets, err := preset.NewLoader(registry,
		preset.WithRecorder(s.recorder),
		preset.WithLogger(logger),
	).LoadPresets(lc)
	if err != nil {
		return finish(StatusFailed, stageError(ErrPresets, err))
	}
	result.Presets = presets
	logger.Debug("Presets loaded",
		slog.Int("plugins", len(presets.Plugins)),
		slog.Int("themes", len(presets.Themes)))

	if err := ctx.Err(); err != nil {
		return finish(StatusCancelled, err)
	}

	// Stage 3: plugin initialization
	plugins, err := plugin.InitPlugins(lc, registry.Require(lc.SiteConfigPath), presets,
		plugin.WithRecorder(s.recorder),
		plugin.WithLogger(logger),
	)
	if err != nil {
		return finish(StatusFailed, stageError(ErrPlugins, err))
	}
	defer func() {
		if cerr := plugins.Cleanup(); cerr != nil {
			logger.Warn("Plugin cleanup failed", logfields.Error(cerr))
		}
	}()
	for _, inst := range plugins.List() {
		meta := inst.Plugin.Metadata()
		result.Plugins = append(result.Plugins, PluginSummary{
			Name:     inst.Name,
			ID:       inst.ID,
			Type:     string(meta.Type),
			Version:  meta.Version,
			ModuleID: inst.ModuleID,
		})
	}

	if req.SkipExecute {
		return finish(StatusSuccess, nil)
	}

	// Stage 4: execution
	content, err := plugins.Execute(ctx, lc)
	if err != nil {
		if ctx.Err() != nil {
			return finish(StatusCancelled, ctx.Err())
		}
		return finish(StatusFailed, stageError(ErrExecute, err))
	}
	result.Docs = collectDocs(plugins, content)
	result.DocsHash = docs.ComputeDocsHash(result.Docs)

	// Stage 5: record
	if s.store != nil {
		run := &store.Run{
			BuildID:   lc.BuildID,
			SiteDir:   lc.SiteDir,
			StartedAt: result.StartTime,
			Hash:      result.DocsHash,
			Metadata:  map[string]string{"config": lc.SiteConfigPath},
			Docs:      result.Docs,
		}
		if err := s.store.Record(ctx, run); err != nil {
			return finish(StatusFailed, stageError(ErrRecord, err))
		}
		result.RunID = run.ID
	}

	logger.Info("Site loaded",
		logfields.Count(len(result.Docs)),
		slog.Int("plugins", len(result.Plugins)),
		logfields.DurationMS(float64(time.Since(result.StartTime).Microseconds())/1000))
	return finish(StatusSuccess, nil)
}

// collectDocs concatenates the docs published by every content-docs
// instance in execution order.
func collectDocs(plugins *plugin.Registry, content *plugin.ContentStore) []docs.Doc {
	out := []docs.Doc{}
	for _, inst := range plugins.List() {
		if inst.Name != contentdocs.Name {
			continue
		}
		if c, ok := content.Get(inst.Name, inst.ID).(*contentdocs.Content); ok && c != nil {
			out = append(out, c.Docs...)
		}
	}
	return out
}
