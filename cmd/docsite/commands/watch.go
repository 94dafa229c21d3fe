package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/lastupdate"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/module"
	"git.home.luguber.info/inful/docsite/internal/store"
	"git.home.luguber.info/inful/docsite/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Refresh     time.Duration `help:"Rerun the metadata pass on this interval (0 disables)" default:"0s"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (overrides the site config)"`
	DB          string        `help:"Record every reload in this SQLite metadata store" type:"path"`
	Debounce    time.Duration `help:"Quiet period before a reload" default:"500ms"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	logger := slog.Default()

	recorder := metrics.Recorder(metrics.NoopRecorder{})
	addr, path := w.metricsEndpoint(root.Config)
	var server *http.Server
	if addr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		mux := http.NewServeMux()
		mux.Handle(path, metrics.HTTPHandler(reg))
		server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("Serving metrics", slog.String("addr", addr), logfields.Path(path))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", logfields.Error(err))
			}
		}()
	}

	previous := lastupdate.SetDefault(lastupdate.New(
		lastupdate.WithLogger(logger),
		lastupdate.WithRecorder(recorder),
	))
	defer lastupdate.SetDefault(previous)

	svc := build.NewService().WithLogger(logger).WithRecorder(recorder)
	if w.DB != "" {
		st, err := store.NewSQLiteStore(w.DB)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		svc = svc.WithStore(st)
	}

	watcher, err := watch.New(root.Config, svc,
		watch.WithModules(module.Default()),
		watch.WithRecorder(recorder),
		watch.WithLogger(logger),
		watch.WithDebounce(w.Debounce),
		watch.WithRefreshInterval(w.Refresh),
		watch.WithOnReload(func(result *build.Result, err error) {
			if err == nil {
				logger.Info("Site reloaded", logfields.BuildID(result.BuildID), logfields.Count(len(result.Docs)))
			}
		}),
	)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping watcher...")
	if err := watcher.Stop(); err != nil {
		logger.Warn("Watcher stop failed", logfields.Error(err))
	}
	if server != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := server.Shutdown(stopCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", logfields.Error(err))
		}
	}
	return nil
}

// metricsEndpoint returns the address and path to serve metrics on. The
// flag wins; otherwise the site config decides. An empty address disables it.
func (w *WatchCmd) metricsEndpoint(configPath string) (string, string) {
	path := config.DefaultMetricsPath
	cfg, err := config.Load(configPath)
	if err == nil {
		path = cfg.Metrics.Path
	}
	if w.MetricsAddr != "" {
		return w.MetricsAddr, path
	}
	if err == nil && cfg.Metrics.Enabled {
		return cfg.Metrics.Address, path
	}
	return "", path
}
