package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/module"
)

// DefaultDebounce collapses bursts of file events into one reload.
const DefaultDebounce = 500 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithModules sets the module registry. Defaults to module.Default().
func WithModules(r *module.Registry) Option {
	return func(w *Watcher) {
		if r != nil {
			w.modules = r
		}
	}
}

// WithRecorder sets the metrics recorder for reload outcomes.
func WithRecorder(r metrics.Recorder) Option {
	return func(w *Watcher) {
		if r != nil {
			w.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithRefreshInterval enables a periodic reload. Zero disables it.
func WithRefreshInterval(d time.Duration) Option {
	return func(w *Watcher) { w.refresh = d }
}

// WithOnReload registers a callback invoked after every reload.
func WithOnReload(fn func(*build.Result, error)) Option {
	return func(w *Watcher) { w.onReload = fn }
}

// Watcher reloads a site when its configuration or modules change.
type Watcher struct {
	configPath string
	siteDir    string
	modulesDir string

	service  build.Service
	modules  *module.Registry
	recorder metrics.Recorder
	logger   *slog.Logger
	debounce time.Duration
	refresh  time.Duration
	onReload func(*build.Result, error)

	fsw       *fsnotify.Watcher
	scheduler *Scheduler
	reloadCh  chan struct{}
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup

	// runMu serializes reloads.
	runMu sync.Mutex

	mu        sync.RWMutex
	last      *build.Result
	lastErr   error
	watched   map[string]struct{}
	manifests map[string]struct{}
}

// New creates a Watcher for the site configuration at configPath.
func New(configPath string, service build.Service, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	siteDir := filepath.Dir(absPath)

	w := &Watcher{
		configPath: absPath,
		siteDir:    siteDir,
		modulesDir: filepath.Join(siteDir, module.ModulesDir),
		service:    service,
		modules:    module.Default(),
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
		debounce:   DefaultDebounce,
		reloadCh:   make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		watched:    make(map[string]struct{}),
		manifests:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start runs the initial load, begins watching and starts the optional
// refresh schedule. A failing initial load is logged, not returned, so a
// broken configuration can be fixed while watching.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsw = fsw

	if err := fsw.Add(w.siteDir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("failed to watch site directory %s: %w", w.siteDir, err)
	}
	w.watched[w.siteDir] = struct{}{}

	if _, err := w.Reload(ctx); err != nil {
		w.logger.Error("Initial site load failed", logfields.Error(err))
	}

	w.logger.Info("Watching site", logfields.Path(w.configPath))

	w.wg.Add(2)
	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)

	if w.refresh > 0 {
		s, err := NewScheduler(w.logger)
		if err != nil {
			_ = w.Stop()
			return err
		}
		if _, err := s.ScheduleRefresh(w.refresh, func() {
			if _, err := w.Reload(ctx); err != nil {
				w.logger.Error("Scheduled refresh failed", logfields.Error(err))
			}
		}); err != nil {
			_ = s.Stop()
			_ = w.Stop()
			return err
		}
		s.Start()
		w.scheduler = s
	}
	return nil
}

// Stop stops watching and waits for the loops to exit.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.scheduler != nil {
			if serr := w.scheduler.Stop(); serr != nil {
				w.logger.Error("Error stopping scheduler", logfields.Error(serr))
			}
		}
		if w.fsw != nil {
			err = w.fsw.Close()
		}
		w.wg.Wait()
	})
	return err
}

// Reload drops every cached module and reruns the load pipeline.
func (w *Watcher) Reload(ctx context.Context) (*build.Result, error) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.logger.Info("Reloading site", logfields.Path(w.configPath))
	w.modules.InvalidateAll()
	result, err := w.service.Run(ctx, build.Request{
		ConfigPath: w.configPath,
		Modules:    w.modules,
	})
	w.recorder.IncReload(metrics.ResultFor(err))

	w.mu.Lock()
	if err == nil {
		w.last = result
	}
	w.lastErr = err
	w.mu.Unlock()

	if w.fsw != nil {
		w.syncWatches()
	}
	if w.onReload != nil {
		w.onReload(result, err)
	}
	return result, err
}

// Last returns the most recent successful result, or nil.
func (w *Watcher) Last() *build.Result {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

// LastError returns the error of the most recent reload.
func (w *Watcher) LastError() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastErr
}

// syncWatches adds the modules directory and every loaded manifest
// directory, and drops directories no longer in use.
func (w *Watcher) syncWatches() {
	want := map[string]struct{}{w.siteDir: {}}
	if info, err := os.Stat(w.modulesDir); err == nil && info.IsDir() {
		want[w.modulesDir] = struct{}{}
	}
	manifests := make(map[string]struct{})
	for _, p := range w.modules.ManifestPaths() {
		manifests[filepath.Clean(p)] = struct{}{}
		want[filepath.Dir(p)] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.manifests = manifests
	for dir := range want {
		if _, ok := w.watched[dir]; ok {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Warn("Cannot watch directory", logfields.Path(dir), logfields.Error(err))
			continue
		}
		w.watched[dir] = struct{}{}
	}
	for dir := range w.watched {
		if _, ok := want[dir]; ok {
			continue
		}
		_ = w.fsw.Remove(dir)
		delete(w.watched, dir)
	}
}

// relevant reports whether a change to name affects the site load.
func (w *Watcher) relevant(name string) bool {
	name = filepath.Clean(name)
	if name == w.configPath || name == w.modulesDir {
		return true
	}
	if strings.HasPrefix(name, w.modulesDir+string(filepath.Separator)) {
		return true
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if _, ok := w.manifests[name]; ok {
		return true
	}
	dir := filepath.Dir(name)
	if dir == w.siteDir {
		return false
	}
	_, ok := w.watched[dir]
	return ok
}

func (w *Watcher) watchLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod || !w.relevant(event.Name) {
				continue
			}
			w.logger.Debug("Site change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			w.triggerReload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", logfields.Error(err))
		}
	}
}

// reloadLoop reloads once the debounce period passes without new events.
func (w *Watcher) reloadLoop(ctx context.Context) {
	defer w.wg.Done()
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-w.stopCh:
			timer.Stop()
			return
		case <-w.reloadCh:
			timer.Reset(w.debounce)
		case <-timer.C:
			if _, err := w.Reload(ctx); err != nil {
				w.logger.Error("Failed to reload site", logfields.Error(err))
			}
		}
	}
}

// triggerReload requests a debounced reload.
func (w *Watcher) triggerReload() {
	select {
	case w.reloadCh <- struct{}{}:
	default:
		// Reload already pending
	}
}
