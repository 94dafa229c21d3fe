package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
)

func TestClassicPresetShorthand(t *testing.T) {
	res, err := LoadPresets(newContext(t, config.Ref("classic", map[string]any{
		"docs": map[string]any{"path": "guides"},
	})))
	require.NoError(t, err)

	assert.Equal(t, []string{ContentDocsPluginName}, names(res.Plugins))
	assert.Equal(t, "guides", res.Plugins[0].Options["path"])
	assert.Equal(t, []string{ClassicThemeName}, names(res.Themes))
}

func TestClassicPresetDisablesDocs(t *testing.T) {
	res, err := LoadPresets(newContext(t, config.Ref("@docsite/preset-classic", map[string]any{"docs": false})))
	require.NoError(t, err)
	assert.Empty(t, res.Plugins)
	assert.Equal(t, []string{ClassicThemeName}, names(res.Themes))
}

func TestClassicPresetRejectsBadOptions(t *testing.T) {
	_, err := LoadPresets(newContext(t, config.Ref("classic", map[string]any{"theme": "dark"})))
	require.Error(t, err)
}

func TestDeclare(t *testing.T) {
	base := map[string]any{"a": 1}

	ref, err := Declare("p", base, nil)
	require.NoError(t, err)
	assert.Equal(t, base, ref.Options)

	ref, err = Declare("p", base, true)
	require.NoError(t, err)
	assert.True(t, ref.Enabled())

	ref, err = Declare("p", base, false)
	require.NoError(t, err)
	assert.False(t, ref.Enabled())

	ref, err = Declare("p", base, map[string]any{"a": 2, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 2, "b": 3}, ref.Options)
	assert.Equal(t, 1, base["a"])

	_, err = Declare("p", nil, 5)
	require.Error(t, err)
}
