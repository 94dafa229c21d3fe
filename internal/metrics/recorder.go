package metrics

import "time"

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for preset resolution, plugin loading
// and last-update lookups. All methods must be safe to call on NoopRecorder.
type Recorder interface {
	ObservePresetLoad(preset string, d time.Duration, result ResultLabel)
	ObservePluginInit(plugin string, d time.Duration, result ResultLabel)
	ObserveLastUpdate(backend, outcome string, d time.Duration)
	ObserveDocsPass(d time.Duration, docs int)
	IncReload(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePresetLoad(string, time.Duration, ResultLabel) {}
func (NoopRecorder) ObservePluginInit(string, time.Duration, ResultLabel) {}
func (NoopRecorder) ObserveLastUpdate(string, string, time.Duration)      {}
func (NoopRecorder) ObserveDocsPass(time.Duration, int)                   {}
func (NoopRecorder) IncReload(ResultLabel)                                {}

// ResultFor maps an error to a ResultLabel.
func ResultFor(err error) ResultLabel {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}
