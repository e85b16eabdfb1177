package gitlib

import (
	"errors"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrFileNotTracked is returned when blaming a path that HEAD does not contain.
var ErrFileNotTracked = errors.New("file not tracked")

// BlameLine attributes one line of a file to the commit that last changed it.
type BlameLine struct {
	Line     int
	Revision Hash
	Author   Signature
}

// BlameFile attributes every committed line of path, 1-based and in line order.
func (r *Repository) BlameFile(path string) ([]BlameLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return nil, ErrRepositoryClosed
	}

	opts, err := git2go.DefaultBlameOptions()
	if err != nil {
		return nil, fmt.Errorf("blame options: %w", err)
	}

	blame, err := r.repo.BlameFile(path, &opts)
	if err != nil {
		if git2go.IsErrorCode(err, git2go.ErrorCodeNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotTracked, path)
		}

		return nil, fmt.Errorf("blame %s: %w", path, err)
	}
	defer func() { _ = blame.Free() }()

	lines := make([]BlameLine, 0)

	for idx := range blame.HunkCount() {
		hunk, hunkErr := blame.HunkByIndex(idx)
		if hunkErr != nil {
			return nil, fmt.Errorf("blame %s hunk %d: %w", path, idx, hunkErr)
		}

		revision := HashFromOid(hunk.FinalCommitId)
		author := signatureFrom(hunk.FinalSignature)
		start := int(hunk.FinalStartLineNumber)

		for offset := range int(hunk.LinesInHunk) {
			lines = append(lines, BlameLine{Line: start + offset, Revision: revision, Author: author})
		}
	}

	return lines, nil
}
