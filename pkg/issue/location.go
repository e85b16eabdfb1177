package issue

import (
	"maps"
	"slices"
)

// TextRange is a span of lines, both ends inclusive and 1-based.
type TextRange struct {
	StartLine int
	EndLine   int
}

// Lines returns every line of the range.
func (r TextRange) Lines() []int {
	if r.StartLine < 1 || r.EndLine < r.StartLine {
		return nil
	}

	lines := make([]int, 0, r.EndLine-r.StartLine+1)
	for line := r.StartLine; line <= r.EndLine; line++ {
		lines = append(lines, line)
	}

	return lines
}

// Clamp bounds the range to a file of lineCount lines. A range starting
// past the end, or in a file of unknown length (lineCount < 1), keeps its
// start line only.
func (r TextRange) Clamp(lineCount int) TextRange {
	if lineCount < 1 || r.StartLine > lineCount {
		return TextRange{StartLine: r.StartLine, EndLine: r.StartLine}
	}

	r.EndLine = min(r.EndLine, lineCount)

	return r
}

// Location is a secondary location. An empty ComponentUUID means the
// issue's own component.
type Location struct {
	ComponentUUID string
	TextRange     TextRange
	Message       string
}

// AllLinesFor returns, in ascending order and without duplicates, every
// line of componentUUID touched by the issue: its primary location (or its
// line when it has no range) and its secondary locations in that component.
func AllLinesFor(is *Issue, componentUUID string) []int {
	lines := make(map[int]struct{})

	if is.componentUUID == componentUUID {
		switch {
		case is.textRange != nil:
			for _, line := range is.textRange.Lines() {
				lines[line] = struct{}{}
			}
		case is.line > 0:
			lines[is.line] = struct{}{}
		}
	}

	for _, flow := range is.flows {
		for _, location := range flow {
			owner := location.ComponentUUID
			if owner == "" {
				owner = is.componentUUID
			}

			if owner != componentUUID {
				continue
			}

			for _, line := range location.TextRange.Lines() {
				lines[line] = struct{}{}
			}
		}
	}

	return slices.Sorted(maps.Keys(lines))
}
