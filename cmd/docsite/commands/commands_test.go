package commands

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/store"
)

const testConfig = `title: Test
url: https://example.com
presets:
  - - classic
    - docs:
        showLastUpdateAuthor: true
        showLastUpdateTime: true
        lastUpdateBackend: gogit
`

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		config.DefaultConfigFile: testConfig,
		"docs/intro.md":          "# Introduction\n",
	}
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("docs")
	require.NoError(t, err)
	sig := &object.Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: time.Unix(1600000000, 0)}
	_, err = wt.Commit("docs", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
	return filepath.Join(dir, config.DefaultConfigFile)
}

// run parses args and runs the selected command, returning its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var cli CLI
	parser, err := kong.New(&cli, kong.Name("docsite"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = ctx.Run(&Global{Out: &out}, &cli)
	return out.String(), err
}

func TestInit(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "site", config.DefaultConfigFile)

	out, err := run(t, "-c", configPath, "init")
	require.NoError(t, err)
	assert.Contains(t, out, configPath)

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	require.Len(t, cfg.Presets, 1)
	assert.Equal(t, "classic", cfg.Presets[0].Name)

	_, err = run(t, "-c", configPath, "init")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = run(t, "-c", configPath, "init", "--force")
	require.NoError(t, err)
}

func TestPresets(t *testing.T) {
	out, err := run(t, "-c", writeSite(t), "presets", "--format", "json")
	require.NoError(t, err)

	var decoded struct {
		Plugins []any `json:"plugins"`
		Themes  []any `json:"themes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded.Plugins, 1)
	assert.Len(t, decoded.Themes, 1)
	assert.Contains(t, out, "@docsite/plugin-content-docs")
	assert.Contains(t, out, "@docsite/theme-classic")
}

func TestPresets_MissingConfig(t *testing.T) {
	_, err := run(t, "-c", filepath.Join(t.TempDir(), config.DefaultConfigFile), "presets")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestLastUpdate(t *testing.T) {
	siteDir := filepath.Dir(writeSite(t))
	intro := filepath.Join(siteDir, "docs", "intro.md")
	missing := filepath.Join(siteDir, "docs", "missing.md")

	out, err := run(t, "last-update", "--backend", "gogit", "--format", "yaml", intro, missing)
	require.NoError(t, err)

	var entries []FileLastUpdate
	require.NoError(t, yaml.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Ada Lovelace", entries[0].Author)
	assert.Equal(t, int64(1600000000), entries[0].Timestamp)
	assert.Equal(t, "2020-09-13T12:26:40Z", entries[0].Time)
	assert.Empty(t, entries[1].Author)

	out, err = run(t, "last-update", "--backend", "gogit", intro, missing)
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "2020-09-13T12:26:40Z")
	assert.Regexp(t, `missing\.md\s+-\s+-`, out)
}

func TestMetadataAndReport(t *testing.T) {
	configPath := writeSite(t)
	db := filepath.Join(t.TempDir(), "docsite.db")

	out, err := run(t, "-c", configPath, "metadata", "--db", db, "--format", "json")
	require.NoError(t, err)

	var result build.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, build.StatusSuccess, result.Status)
	require.Len(t, result.Docs, 1)
	assert.Equal(t, "intro", result.Docs[0].ID)
	assert.Equal(t, "Ada Lovelace", result.Docs[0].LastUpdatedBy)
	require.NotEmpty(t, result.RunID)

	out, err = run(t, "-c", configPath, "report", "--db", db, "--format", "json")
	require.NoError(t, err)

	var recorded store.Run
	require.NoError(t, json.Unmarshal([]byte(out), &recorded))
	assert.Equal(t, result.RunID, recorded.ID)
	assert.Equal(t, result.DocsHash, recorded.Hash)
	assert.Equal(t, result.Docs, recorded.Docs)
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	err := writeOutput(&bytes.Buffer{}, "toml", map[string]string{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestNewLogger_UsesSiteLogging(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, config.DefaultConfigFile)
	require.NoError(t, os.WriteFile(configPath,
		[]byte("title: T\nurl: https://example.com\nlogging:\n  level: warn\n  format: json\n"), 0o600))

	var buf bytes.Buffer
	logger := newLogger(&buf, configPath, false)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger(&buf, configPath, true).Debug("verbose")
	assert.Contains(t, buf.String(), "verbose")
}

func TestWatchMetricsEndpoint(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, config.DefaultConfigFile)
	require.NoError(t, os.WriteFile(configPath,
		[]byte("title: T\nurl: https://example.com\nmetrics:\n  enabled: true\n  path: /m\n"), 0o600))

	addr, path := (&WatchCmd{}).metricsEndpoint(configPath)
	assert.Equal(t, config.DefaultMetricsAddress, addr)
	assert.Equal(t, "/m", path)

	addr, _ = (&WatchCmd{MetricsAddr: "127.0.0.1:0"}).metricsEndpoint(configPath)
	assert.Equal(t, "127.0.0.1:0", addr)

	addr, path = (&WatchCmd{}).metricsEndpoint(filepath.Join(dir, "missing.yaml"))
	assert.Empty(t, addr)
	assert.Equal(t, config.DefaultMetricsPath, path)
}
