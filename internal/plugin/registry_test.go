package plugin

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// mockPlugin records lifecycle calls.
type mockPlugin struct {
	BasePlugin
	metadata    PluginMetadata
	executeErr  error
	validateErr error
	initErr     error
	events      *[]string
}

func (m *mockPlugin) Metadata() PluginMetadata { return m.metadata }

func (m *mockPlugin) Validate(map[string]any) error { return m.validateErr }

func (m *mockPlugin) Init() error {
	m.record("init")
	return m.initErr
}

func (m *mockPlugin) Cleanup() error {
	m.record("cleanup")
	return nil
}

func (m *mockPlugin) Execute(_ context.Context, pc *PluginContext) error {
	m.record("execute:" + pc.ID)
	if m.executeErr != nil {
		return m.executeErr
	}
	pc.SetContent(pc.Options)
	return nil
}

func (m *mockPlugin) record(event string) {
	if m.events != nil {
		*m.events = append(*m.events, m.metadata.Name+":"+event)
	}
}

func newMockPlugin(name string, pluginType PluginType, events *[]string) *mockPlugin {
	return &mockPlugin{
		metadata: PluginMetadata{Name: name, Version: "v1.0.0", Type: pluginType},
		events:   events,
	}
}

func testContext(t *testing.T, cfg *config.SiteConfig) *site.LoadContext {
	t.Helper()
	if cfg == nil {
		cfg = &config.SiteConfig{Title: "Test", URL: "https://example.com"}
	}
	lc, err := site.New(filepath.Join(t.TempDir(), config.DefaultConfigFile), cfg)
	require.NoError(t, err)
	return lc
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()
	p := newMockPlugin("test-plugin", PluginTypeTheme, nil)

	require.NoError(t, registry.Register(&Instance{Plugin: p, Name: "test-plugin"}))
	assert.True(t, registry.Has("test-plugin"))

	inst, err := registry.Get("test-plugin", DefaultID)
	require.NoError(t, err)
	assert.Same(t, p, inst.Plugin)

	err = registry.Register(&Instance{Plugin: p, Name: "test-plugin", ID: DefaultID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	require.NoError(t, registry.Register(&Instance{Plugin: p, Name: "test-plugin", ID: "second"}))
	assert.Equal(t, 2, registry.Count())

	require.Error(t, registry.Register(nil))
	_, err = registry.Get("test-plugin", "missing")
	require.Error(t, err)
	_, err = registry.Get("missing", DefaultID)
	require.Error(t, err)
}

func TestRegistryListPreservesOrder(t *testing.T) {
	registry := NewRegistry()
	for _, n := range []string{"z", "a", "m"} {
		typ := PluginTypeContent
		if n == "a" {
			typ = PluginTypeTheme
		}
		require.NoError(t, registry.Register(&Instance{Plugin: newMockPlugin(n, typ, nil), Name: n}))
	}

	var names []string
	for _, inst := range registry.List() {
		names = append(names, inst.Name)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)

	themes := registry.ListByType(PluginTypeTheme)
	require.Len(t, themes, 1)
	assert.Equal(t, "a", themes[0].Name)
}

func TestRegistryExecute(t *testing.T) {
	var events []string
	registry := NewRegistry()
	require.NoError(t, registry.Register(&Instance{Plugin: newMockPlugin("first", PluginTypeContent, &events), Name: "first", Options: map[string]any{"k": "v"}}))
	require.NoError(t, registry.Register(&Instance{Plugin: newMockPlugin("second", PluginTypeTheme, &events), Name: "second", ID: "x"}))

	content, err := registry.Execute(context.Background(), testContext(t, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"first:execute:default", "second:execute:x"}, events)
	assert.Equal(t, map[string]any{"k": "v"}, content.Get("first", DefaultID))
}

func TestRegistryExecuteFailure(t *testing.T) {
	boom := errors.New("boom")
	var events []string
	failing := newMockPlugin("failing", PluginTypeContent, &events)
	failing.executeErr = boom

	registry := NewRegistry()
	require.NoError(t, registry.Register(&Instance{Plugin: failing, Name: "failing"}))
	require.NoError(t, registry.Register(&Instance{Plugin: newMockPlugin("after", PluginTypeContent, &events), Name: "after"}))

	_, err := registry.Execute(context.Background(), testContext(t, nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryPlugin))

	var pe *PluginError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "execute", pe.Operation)
	assert.Equal(t, []string{"failing:execute:default"}, events)
}

func TestRegistryCleanupReverseOrder(t *testing.T) {
	var events []string
	registry := NewRegistry()
	require.NoError(t, registry.Register(&Instance{Plugin: newMockPlugin("a", PluginTypeContent, &events), Name: "a"}))
	require.NoError(t, registry.Register(&Instance{Plugin: newMockPlugin("b", PluginTypeContent, &events), Name: "b"}))

	require.NoError(t, registry.Cleanup())
	assert.Equal(t, []string{"b:cleanup", "a:cleanup"}, events)
	assert.Zero(t, registry.Count())
}
