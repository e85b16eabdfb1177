// Package gitlib is the libgit2 access layer: blame for per-line commit
// attribution and tree diffs for changed lines.
package gitlib

import (
	"errors"
	"fmt"
	"sync"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrRepositoryClosed is returned when a freed repository is used.
var ErrRepositoryClosed = errors.New("repository closed")

// Repository wraps a libgit2 repository. libgit2 handles are not safe for
// concurrent use, so every native call holds mu.
type Repository struct {
	mu   sync.Mutex
	repo *git2go.Repository
	path string
}

// OpenRepository opens a git repository at the given path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Head returns the commit HEAD points to.
func (r *Repository) Head() (Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return Hash{}, ErrRepositoryClosed
	}

	ref, err := r.repo.Head()
	if err != nil {
		return Hash{}, fmt.Errorf("get HEAD: %w", err)
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

// ResolveCommit resolves a revision expression (branch, tag, sha) to a commit hash.
func (r *Repository) ResolveCommit(rev string) (Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return Hash{}, ErrRepositoryClosed
	}

	return r.resolveCommitLocked(rev)
}

func (r *Repository) resolveCommitLocked(rev string) (Hash, error) {
	obj, err := r.repo.RevparseSingle(rev)
	if err != nil {
		return Hash{}, fmt.Errorf("resolve %q: %w", rev, err)
	}
	defer obj.Free()

	peeled, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return Hash{}, fmt.Errorf("peel %q to commit: %w", rev, err)
	}
	defer peeled.Free()

	return HashFromOid(peeled.Id()), nil
}
