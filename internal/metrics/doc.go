// Package metrics provides the observability hooks used by preset
// resolution, plugin initialization, last-update lookups and live reload.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	loader := preset.NewLoader(registry, preset.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on the given registry and
// HTTPHandler exposes that registry for scraping (see `docsite watch
// --metrics-addr`).
package metrics
