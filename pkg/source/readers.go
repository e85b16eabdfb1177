package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
)

// ChangeLister lists changed lines per path against a target revision.
// *gitlib.Repository implements it.
type ChangeLister interface {
	ChangedLines(targetRev string) (map[string][]int, error)
}

// GitDiffReader reads changed lines from the git diff between the merge base
// with a target revision and HEAD. The diff is computed once.
type GitDiffReader struct {
	lister    ChangeLister
	targetRev string

	once    sync.Once
	changed map[string][]int
	err     error
}

// NewGitDiffReader creates a GitDiffReader.
func NewGitDiffReader(lister ChangeLister, targetRev string) *GitDiffReader {
	return &GitDiffReader{lister: lister, targetRev: targetRev}
}

// ChangedLines returns the lines of file added or modified since the merge base.
// A file untouched by the diff has no changed lines.
func (r *GitDiffReader) ChangedLines(_ context.Context, file *component.Component) (LineSet, bool, error) {
	r.once.Do(func() {
		r.changed, r.err = r.lister.ChangedLines(r.targetRev)
	})

	if r.err != nil {
		return nil, false, fmt.Errorf("git diff against %s: %w", r.targetRev, r.err)
	}

	if file.Path == "" {
		return nil, false, nil
	}

	return NewLineSet(r.changed[file.Path]...), true, nil
}

// Snapshots supplies the reference and current content of a file.
type Snapshots interface {
	Snapshots(ctx context.Context, file *component.Component) (reference, current string, ok bool, err error)
}

// TextDiffReader computes changed lines with a line diff of two snapshots.
type TextDiffReader struct {
	snapshots Snapshots
}

// NewTextDiffReader creates a TextDiffReader.
func NewTextDiffReader(snapshots Snapshots) *TextDiffReader {
	return &TextDiffReader{snapshots: snapshots}
}

// ChangedLines diffs the snapshots of file.
func (r *TextDiffReader) ChangedLines(ctx context.Context, file *component.Component) (LineSet, bool, error) {
	reference, current, ok, err := r.snapshots.Snapshots(ctx, file)
	if err != nil || !ok {
		return nil, false, err
	}

	return NewLineSet(ChangedLinesBetween(reference, current)...), true, nil
}

// ChangedLinesBetween returns the 1-based lines of current that are absent
// from reference according to a line diff.
func ChangedLinesBetween(reference, current string) []int {
	dmp := diffmatchpatch.New()
	src, dst, _ := dmp.DiffLinesToRunes(terminated(reference), terminated(current))

	var (
		changed []int
		line    = 1
	)

	for _, diff := range dmp.DiffMainRunes(src, dst, false) {
		count := len([]rune(diff.Text))

		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			line += count
		case diffmatchpatch.DiffInsert:
			for range count {
				changed = append(changed, line)
				line++
			}
		case diffmatchpatch.DiffDelete:
		}
	}

	return changed
}

// terminated makes the last line comparable whether or not it ends with a newline.
func terminated(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}

	return text + "\n"
}
