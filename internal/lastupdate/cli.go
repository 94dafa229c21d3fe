package lastupdate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// CLIBackend shells out to the git executable.
type CLIBackend struct {
	// Executable is the git binary name or path.
	Executable string

	// LookPath locates Executable. Tests replace it to simulate a host without git.
	LookPath func(file string) (string, error)
}

// NewCLIBackend returns a backend running "git" from PATH.
func NewCLIBackend() *CLIBackend {
	return &CLIBackend{Executable: "git", LookPath: exec.LookPath}
}

func (b *CLIBackend) Name() string { return BackendCLI }

func (b *CLIBackend) Available() bool {
	lookPath := b.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	_, err := lookPath(b.executable())
	return err == nil
}

func (b *CLIBackend) executable() string {
	if b.Executable == "" {
		return "git"
	}
	return b.Executable
}

// CommandError is a git invocation that exited unsuccessfully.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, msg)
}

func (e *CommandError) Unwrap() error { return e.Err }

// LastCommit runs git log in the file's directory against its base name.
// Pathspecs are literal so names such as "[slug].md" match only themselves.
func (b *CLIBackend) LastCommit(ctx context.Context, absPath string) (*Data, error) {
	args := []string{"--literal-pathspecs", "log", "--max-count=1", "--format=%ct,%an", "--", filepath.Base(absPath)}

	// #nosec G204 -- fixed git subcommand, the path is passed after "--" without a shell
	cmd := exec.CommandContext(ctx, b.executable(), args...)
	cmd.Dir = filepath.Dir(absPath)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, errors.GitError("git log failed").
			Warning().
			WithCause(&CommandError{Args: args, Stderr: errBuf.String(), Err: err}).
			WithContext("file", absPath).
			Build()
	}

	out := strings.TrimSpace(outBuf.String())
	if out == "" {
		return nil, nil
	}
	data, ok := ParseLogOutput(out)
	if !ok {
		return nil, nil
	}
	return data, nil
}
