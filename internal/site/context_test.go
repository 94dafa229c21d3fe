package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
)

func TestLoadBuildsContext(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.DefaultConfigFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte("title: Docs\nurl: https://example.com\n"), 0o600))

	lc, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, dir, lc.SiteDir)
	assert.Equal(t, cfgPath, lc.SiteConfigPath)
	assert.Equal(t, filepath.Join(dir, DefaultOutDir), lc.OutDir)
	assert.Equal(t, "Docs", lc.SiteConfig.Title)
	_, err = uuid.Parse(lc.BuildID)
	assert.NoError(t, err)
	assert.NotNil(t, lc.Logger)
}

func TestNewOptionsAndResolve(t *testing.T) {
	dir := t.TempDir()
	lc, err := New(filepath.Join(dir, "site.yaml"), &config.SiteConfig{}, WithOutDir("out"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "out"), lc.OutDir)
	assert.Equal(t, filepath.Join(dir, "docs"), lc.Resolve("docs"))
	assert.Equal(t, "/abs/docs", lc.Resolve("/abs/docs"))
}

func TestLoadPropagatesConfigErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
