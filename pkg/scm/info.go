// Package scm exposes per-line commit attribution of source files.
package scm

import (
	"errors"
	"maps"
	"slices"
	"time"
)

// ErrNoChangesets is returned when building an Info without any changeset.
var ErrNoChangesets = errors.New("scm info has no changeset")

// Changeset is the commit that last touched a line.
type Changeset struct {
	Revision string
	Author   string
	Date     time.Time
}

// Info is the commit attribution of one file. Lines without attribution
// (uncommitted edits) simply have no changeset.
type Info struct {
	byLine map[int]Changeset
	latest Changeset
}

// NewInfo builds Info from per-line changesets, keyed by 1-based line.
func NewInfo(byLine map[int]Changeset) (*Info, error) {
	if len(byLine) == 0 {
		return nil, ErrNoChangesets
	}

	info := &Info{byLine: make(map[int]Changeset, len(byLine))}
	first := true

	for line, changeset := range byLine {
		info.byLine[line] = changeset

		if first || changeset.Date.After(info.latest.Date) {
			info.latest = changeset
			first = false
		}
	}

	return info, nil
}

// HasChangesetForLine reports whether line is attributed.
func (i *Info) HasChangesetForLine(line int) bool {
	_, ok := i.byLine[line]

	return ok
}

// ChangesetForLine returns the changeset of line.
func (i *Info) ChangesetForLine(line int) (Changeset, bool) {
	changeset, ok := i.byLine[line]

	return changeset, ok
}

// LatestChangeset returns the most recent changeset of the file.
func (i *Info) LatestChangeset() Changeset {
	return i.latest
}

// LineCount returns the number of attributed lines.
func (i *Info) LineCount() int {
	return len(i.byLine)
}

// Lines returns the attributed lines in ascending order.
func (i *Info) Lines() []int {
	return slices.Sorted(maps.Keys(i.byLine))
}
