package lastupdate

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// GoGitBackend walks history in-process with go-git.
type GoGitBackend struct{}

// NewGoGitBackend returns a go-git backend.
func NewGoGitBackend() *GoGitBackend { return &GoGitBackend{} }

func (*GoGitBackend) Name() string { return BackendGoGit }

// Available is always true; go-git needs no external binary.
func (*GoGitBackend) Available() bool { return true }

// LastCommit opens the repository containing absPath and returns the newest
// commit reachable from HEAD that touches it.
func (*GoGitBackend) LastCommit(ctx context.Context, absPath string) (*Data, error) {
	repo, err := git.PlainOpenWithOptions(filepath.Dir(absPath), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, gitError("open repository", absPath, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, gitError("open worktree", absPath, err)
	}
	rel, err := relativeTo(wt.Filesystem.Root(), absPath)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, gitError("resolve HEAD", absPath, err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash(), FileName: &rel})
	if err != nil {
		return nil, gitError("walk history", absPath, err)
	}
	defer iter.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := iter.Next()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, gitError("walk history", absPath, err)
	}
	return &Data{Author: c.Author.Name, Timestamp: c.Committer.When.Unix()}, nil
}

func gitError(op, absPath string, cause error) error {
	return errors.GitError(op+" failed").
		Warning().
		WithCause(cause).
		WithContext("file", absPath).
		Build()
}

// relativeTo returns target relative to root in slash form, resolving
// symlinks so temp directories behind links still match.
func relativeTo(root, target string) (string, error) {
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}
	if t, err := filepath.EvalSymlinks(target); err == nil {
		target = t
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", fmt.Errorf("%s is outside the repository at %s: %w", target, root, err)
	}
	return filepath.ToSlash(rel), nil
}
