package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObservePresetLoad("classic", 15*time.Millisecond, ResultSuccess)
	pr.ObservePluginInit("@docsite/plugin-content-docs", 5*time.Millisecond, ResultSuccess)
	pr.ObserveLastUpdate("cli", "found", 20*time.Millisecond)
	pr.ObserveLastUpdate("cli", "no_history", 10*time.Millisecond)
	pr.ObserveDocsPass(200*time.Millisecond, 12)
	pr.IncReload(ResultFailed)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"docsite_preset_load_duration_seconds",
		"docsite_plugin_init_duration_seconds",
		"docsite_last_update_duration_seconds",
		"docsite_last_update_lookups_total",
		"docsite_docs_pass_duration_seconds",
		"docsite_docs_processed_total",
		"docsite_reloads_total",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}

func TestPrometheusRecorderNilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObservePresetLoad("x", time.Second, ResultSuccess)
		pr.ObserveLastUpdate("cli", "found", time.Second)
		pr.ObserveDocsPass(time.Second, 1)
		pr.IncReload(ResultSuccess)
	})
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).ObserveDocsPass(time.Millisecond, 3)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "docsite_docs_processed_total 3")
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultFor(nil))
	assert.Equal(t, ResultFailed, ResultFor(errors.New("x")))
}
