package lastupdate

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/metrics"
)

const (
	tsFirst  int64 = 1600000000
	tsSecond int64 = 1700000000
)

func backends() map[string]func(t *testing.T) Backend {
	return map[string]func(t *testing.T) Backend{
		BackendCLI: func(t *testing.T) Backend {
			requireGit(t)
			return NewCLIBackend()
		},
		BackendGoGit: func(*testing.T) Backend { return NewGoGitBackend() },
	}
}

func TestGetFileLastUpdateExistingFile(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := newFixtureRepo(t,
				commit{file: "docs/hello.md", author: "Ada Lovelace", ts: tsFirst},
				commit{file: "docs/other.md", author: "Someone Else", ts: tsFirst + 10},
				commit{file: "docs/hello.md", author: "Grace Hopper", ts: tsSecond},
				commit{file: "docs/other.md", author: "Someone Else", ts: tsSecond + 10},
			)
			logger, logs := captureLogger()
			e := New(WithBackend(mk(t)), WithLogger(logger))

			got := e.GetFileLastUpdate(context.Background(), filepath.Join(dir, "docs", "hello.md"))
			require.NotNil(t, got)
			assert.Equal(t, "Grace Hopper", got.Author)
			assert.Equal(t, tsSecond, got.Timestamp)
			assert.Empty(t, logs.String())
		})
	}
}

func TestGetFileLastUpdatePathWithSpaces(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := newFixtureRepo(t, commit{file: "docs/doc with space.md", author: "Ada Lovelace", ts: tsFirst})
			e := New(WithBackend(mk(t)))

			got := e.GetFileLastUpdate(context.Background(), filepath.Join(dir, "docs", "doc with space.md"))
			require.NotNil(t, got)
			assert.Equal(t, Data{Author: "Ada Lovelace", Timestamp: tsFirst}, *got)
		})
	}
}

func TestGetFileLastUpdateGlobCharactersInName(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := newFixtureRepo(t,
				commit{file: "docs/[slug].md", author: "Bracket Author", ts: tsFirst},
				commit{file: "docs/s.md", author: "Other Author", ts: tsSecond},
			)
			e := New(WithBackend(mk(t)))

			got := e.GetFileLastUpdate(context.Background(), filepath.Join(dir, "docs", "[slug].md"))
			require.NotNil(t, got)
			assert.Equal(t, Data{Author: "Bracket Author", Timestamp: tsFirst}, *got)

			got = e.GetFileLastUpdate(context.Background(), filepath.Join(dir, "docs", "s.md"))
			require.NotNil(t, got)
			assert.Equal(t, Data{Author: "Other Author", Timestamp: tsSecond}, *got)
		})
	}
}

func TestGetFileLastUpdateUntrackedFile(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := newFixtureRepo(t, commit{file: "docs/hello.md", author: "Ada Lovelace", ts: tsFirst})
			temp := filepath.Join(dir, "docs", ".temp")
			require.NoError(t, os.WriteFile(temp, []byte("Lorem ipsum :)"), 0o600))

			logger, logs := captureLogger()
			e := New(WithBackend(mk(t)), WithLogger(logger))
			assert.Nil(t, e.GetFileLastUpdate(context.Background(), temp))
			assert.Empty(t, logs.String())
		})
	}
}

func TestGetFileLastUpdateMissingFile(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := newFixtureRepo(t, commit{file: "docs/hello.md", author: "Ada Lovelace", ts: tsFirst})
			logger, logs := captureLogger()
			e := New(WithBackend(mk(t)), WithLogger(logger))

			assert.Nil(t, e.GetFileLastUpdate(context.Background(), filepath.Join(dir, ".nonExisting")))
			out := logs.String()
			assert.Equal(t, 1, strings.Count(out, "because the file does not exist."))
			assert.Contains(t, out, "level=ERROR")
		})
	}
}

func TestGetFileLastUpdateEmptyPath(t *testing.T) {
	logger, logs := captureLogger()
	calls := 0
	e := New(WithLogger(logger), WithBackend(&CLIBackend{LookPath: func(string) (string, error) {
		calls++
		return "/usr/bin/git", nil
	}}))

	assert.Nil(t, e.GetFileLastUpdate(context.Background(), ""))
	assert.Empty(t, logs.String())
	assert.Zero(t, calls, "empty paths return before the availability check")
}

func TestGetFileLastUpdateWithoutGitWarnsOnce(t *testing.T) {
	dir := newFixtureRepo(t, commit{file: "docs/hello.md", author: "Ada Lovelace", ts: tsFirst})
	file := filepath.Join(dir, "docs", "hello.md")

	var lookups atomic.Int32
	backend := &CLIBackend{Executable: "git", LookPath: func(string) (string, error) {
		lookups.Add(1)
		return "", exec.ErrNotFound
	}}
	logger, logs := captureLogger()
	e := New(WithBackend(backend), WithLogger(logger))

	assert.Nil(t, e.GetFileLastUpdate(context.Background(), file))
	assert.Nil(t, e.GetFileLastUpdate(context.Background(), file))
	assert.Nil(t, e.GetFileLastUpdate(context.Background(), filepath.Join(dir, "missing.md")))

	out := logs.String()
	assert.Equal(t, 1, strings.Count(out, "docs plugin last update options require Git"))
	assert.Contains(t, out, "[WARNING]")
	assert.Contains(t, out, "level=WARN")
	assert.NotContains(t, out, "because the file does not exist.")
	assert.Equal(t, int32(1), lookups.Load())
}

func TestGetFileLastUpdateOutsideRepository(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "loose.md")
	require.NoError(t, os.WriteFile(file, []byte("# Loose\n"), 0o600))

	logger, logs := captureLogger()
	e := New(WithBackend(NewGoGitBackend()), WithLogger(logger))
	assert.Nil(t, e.GetFileLastUpdate(context.Background(), file))
	assert.Contains(t, logs.String(), "Failed to retrieve git history")
	assert.NotContains(t, logs.String(), "require Git")
}

func TestGetFileLastUpdateConcurrent(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			dir := newFixtureRepo(t,
				commit{file: "a.md", author: "Ada Lovelace", ts: tsFirst},
				commit{file: "b.md", author: "Grace Hopper", ts: tsSecond},
			)
			e := New(WithBackend(mk(t)))

			var wg sync.WaitGroup
			results := make([]*Data, 16)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					f := "a.md"
					if i%2 == 1 {
						f = "b.md"
					}
					results[i] = e.GetFileLastUpdate(context.Background(), filepath.Join(dir, f))
				}(i)
			}
			wg.Wait()

			for i, r := range results {
				require.NotNil(t, r, "result %d", i)
				if i%2 == 0 {
					assert.Equal(t, "Ada Lovelace", r.Author)
				} else {
					assert.Equal(t, "Grace Hopper", r.Author)
				}
			}
		})
	}
}

func TestBackendsAgree(t *testing.T) {
	requireGit(t)
	dir := newFixtureRepo(t,
		commit{file: "docs/intro.md", author: "Ada Lovelace", ts: tsFirst},
		commit{file: "docs/nested/deep.md", author: "Grace Hopper", ts: tsFirst + 100},
		commit{file: "docs/intro.md", author: "Alan Turing", ts: tsSecond},
	)
	cli := New(WithBackend(NewCLIBackend()))
	gogit := New(WithBackend(NewGoGitBackend()))

	for _, f := range []string{"docs/intro.md", "docs/nested/deep.md"} {
		p := filepath.Join(dir, filepath.FromSlash(f))
		assert.Equal(t, cli.GetFileLastUpdate(context.Background(), p), gogit.GetFileLastUpdate(context.Background(), p), f)
	}
}

type outcomeRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) ObserveLastUpdate(_, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func TestGetFileLastUpdateRecordsOutcomes(t *testing.T) {
	dir := newFixtureRepo(t, commit{file: "a.md", author: "Ada Lovelace", ts: tsFirst})
	untracked := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(untracked, []byte("b"), 0o600))

	rec := &outcomeRecorder{}
	logger, _ := captureLogger()
	e := New(WithBackend(NewGoGitBackend()), WithRecorder(rec), WithLogger(logger))

	e.GetFileLastUpdate(context.Background(), filepath.Join(dir, "a.md"))
	e.GetFileLastUpdate(context.Background(), untracked)
	e.GetFileLastUpdate(context.Background(), filepath.Join(dir, "c.md"))

	assert.Equal(t, []string{OutcomeFound, OutcomeNoHistory, OutcomeMissingFile}, rec.outcomes)
}

func TestPackageLevelUsesDefault(t *testing.T) {
	dir := newFixtureRepo(t, commit{file: "a.md", author: "Ada Lovelace", ts: tsFirst})
	prev := SetDefault(New(WithBackend(NewGoGitBackend())))
	t.Cleanup(func() { SetDefault(prev) })

	got := GetFileLastUpdate(context.Background(), filepath.Join(dir, "a.md"))
	require.NotNil(t, got)
	assert.Equal(t, "Ada Lovelace", got.Author)
	assert.Nil(t, GetFileLastUpdate(context.Background(), ""))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "2020-09-13T12:26:40Z", FormatTimestamp(tsFirst))
	d := &Data{Timestamp: tsFirst}
	assert.Equal(t, int64(tsFirst), d.Time().Unix())
}
