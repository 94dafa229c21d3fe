package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	presetDuration     *prom.HistogramVec
	pluginDuration     *prom.HistogramVec
	lastUpdateDuration *prom.HistogramVec
	lastUpdateOutcomes *prom.CounterVec
	docsDuration       prom.Histogram
	docsProcessed      prom.Counter
	reloads            *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		presetDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "preset_load_duration_seconds",
			Help:      "Duration of resolving and invoking a preset",
			Buckets:   prom.DefBuckets,
		}, []string{"preset", "result"}),
		pluginDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "plugin_init_duration_seconds",
			Help:      "Duration of resolving and initializing a plugin",
			Buckets:   prom.DefBuckets,
		}, []string{"plugin", "result"}),
		lastUpdateDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "last_update_duration_seconds",
			Help:      "Duration of last-update lookups by backend",
			Buckets:   prom.DefBuckets,
		}, []string{"backend"}),
		lastUpdateOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "last_update_lookups_total",
			Help:      "Last-update lookups by backend and outcome",
		}, []string{"backend", "outcome"}),
		docsDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "docs_pass_duration_seconds",
			Help:      "Duration of a docs metadata pass",
			Buckets:   prom.DefBuckets,
		}),
		docsProcessed: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "docs_processed_total",
			Help:      "Documents processed by metadata passes",
		}),
		reloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Live reloads by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.presetDuration, pr.pluginDuration, pr.lastUpdateDuration,
		pr.lastUpdateOutcomes, pr.docsDuration, pr.docsProcessed, pr.reloads)
	return pr
}

func (p *PrometheusRecorder) ObservePresetLoad(preset string, d time.Duration, result ResultLabel) {
	if p == nil || p.presetDuration == nil {
		return
	}
	p.presetDuration.WithLabelValues(preset, string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePluginInit(plugin string, d time.Duration, result ResultLabel) {
	if p == nil || p.pluginDuration == nil {
		return
	}
	p.pluginDuration.WithLabelValues(plugin, string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveLastUpdate(backend, outcome string, d time.Duration) {
	if p == nil || p.lastUpdateDuration == nil {
		return
	}
	p.lastUpdateDuration.WithLabelValues(backend).Observe(d.Seconds())
	p.lastUpdateOutcomes.WithLabelValues(backend, outcome).Inc()
}

func (p *PrometheusRecorder) ObserveDocsPass(d time.Duration, docs int) {
	if p == nil || p.docsDuration == nil {
		return
	}
	p.docsDuration.Observe(d.Seconds())
	p.docsProcessed.Add(float64(docs))
}

func (p *PrometheusRecorder) IncReload(result ResultLabel) {
	if p == nil || p.reloads == nil {
		return
	}
	p.reloads.WithLabelValues(string(result)).Inc()
}
