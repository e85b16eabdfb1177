// Package source provides per-file line data: changed lines of the
// analysed change set and content hashes of source lines.
package source

import (
	"crypto/md5" //nolint:gosec // line checksums, not a security boundary.
	"encoding/hex"
	"maps"
	"slices"
	"strings"
	"unicode"
)

// LineSet is a set of 1-based line numbers.
type LineSet map[int]struct{}

// NewLineSet returns a set holding lines.
func NewLineSet(lines ...int) LineSet {
	set := make(LineSet, len(lines))
	for _, line := range lines {
		set[line] = struct{}{}
	}

	return set
}

// Contains reports whether line is in the set.
func (s LineSet) Contains(line int) bool {
	_, ok := s[line]

	return ok
}

// Sorted returns the lines in ascending order.
func (s LineSet) Sorted() []int {
	return slices.Sorted(maps.Keys(s))
}

// ComputeLineHashes returns the checksum of every line of content: the md5
// of the line with all whitespace removed, or "" for a blank line.
func ComputeLineHashes(content string) []string {
	if content == "" {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	hashes := make([]string, len(lines))

	for idx, line := range lines {
		hashes[idx] = lineHash(line)
	}

	return hashes
}

func lineHash(line string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, line)

	if stripped == "" {
		return ""
	}

	sum := md5.Sum([]byte(stripped)) //nolint:gosec // see import.

	return hex.EncodeToString(sum[:])
}
