package lastupdate

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Backend names.
const (
	BackendCLI   = "cli"
	BackendGoGit = "gogit"
)

// Backend reads the latest commit touching a file.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Available reports whether the backend can be used on this host.
	Available() bool

	// LastCommit returns nil, nil when the file has no history.
	LastCommit(ctx context.Context, absPath string) (*Data, error)
}

// NewBackend creates a backend by name. An empty name selects the CLI backend.
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendCLI:
		return NewCLIBackend(), nil
	case BackendGoGit, "go-git":
		return NewGoGitBackend(), nil
	default:
		return nil, fmt.Errorf("unknown last update backend %q (want %s or %s)", name, BackendCLI, BackendGoGit)
	}
}

var logLine = regexp.MustCompile(`^(\d+),(.+)$`)

// ParseLogOutput parses "<epoch seconds>,<author>" as printed by
// git log --format=%ct,%an. ok is false when out does not match.
func ParseLogOutput(out string) (data *Data, ok bool) {
	m := logLine.FindStringSubmatch(strings.TrimSpace(out))
	if m == nil {
		return nil, false
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, false
	}
	return &Data{Author: m[2], Timestamp: ts}, true
}
