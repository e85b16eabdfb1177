package gitlib

import (
	"fmt"
	"slices"

	git2go "github.com/libgit2/git2go/v34"
)

// ChangedLines returns, per repository-relative path, the HEAD line numbers
// added or modified since the merge base of HEAD and targetRev.
// Deleted files have no added lines and do not appear.
func (r *Repository) ChangedLines(targetRev string) (map[string][]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return nil, ErrRepositoryClosed
	}

	target, err := r.resolveCommitLocked(targetRev)
	if err != nil {
		return nil, err
	}

	headRef, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("get HEAD: %w", err)
	}
	defer headRef.Free()

	mergeBase, err := r.repo.MergeBase(target.ToOid(), headRef.Target())
	if err != nil {
		return nil, fmt.Errorf("merge base of %s and HEAD: %w", targetRev, err)
	}

	baseTree, err := r.commitTree(mergeBase)
	if err != nil {
		return nil, err
	}
	defer baseTree.Free()

	headTree, err := r.commitTree(headRef.Target())
	if err != nil {
		return nil, err
	}
	defer headTree.Free()

	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff options: %w", err)
	}

	opts.ContextLines = 0

	diff, err := r.repo.DiffTreeToTree(baseTree, headTree, &opts)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	defer func() { _ = diff.Free() }()

	changed := make(map[string][]int)

	err = diff.ForEach(func(delta git2go.DiffDelta, _ float64) (git2go.DiffForEachHunkCallback, error) {
		path := delta.NewFile.Path

		return func(_ git2go.DiffHunk) (git2go.DiffForEachLineCallback, error) {
			return func(line git2go.DiffLine) error {
				if line.Origin == git2go.DiffLineAddition {
					changed[path] = append(changed[path], line.NewLineno)
				}

				return nil
			}, nil
		}, nil
	}, git2go.DiffDetailLines)
	if err != nil {
		return nil, fmt.Errorf("diff foreach: %w", err)
	}

	for path := range changed {
		slices.Sort(changed[path])
	}

	return changed, nil
}

func (r *Repository) commitTree(oid *git2go.Oid) (*git2go.Tree, error) {
	commit, err := r.repo.LookupCommit(oid)
	if err != nil {
		return nil, fmt.Errorf("lookup commit: %w", err)
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get commit tree: %w", err)
	}

	return tree, nil
}
