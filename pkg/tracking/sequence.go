package tracking

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultHalfBlockSize is the number of lines on each side of a line that
// make up its block.
const DefaultHalfBlockSize = 5

// blockSeparator terminates each line hash inside a block digest.
const blockSeparator = "\n"

// LineHashSequence holds the content hash of every line of a file, 1-based.
type LineHashSequence struct {
	hashes []string
	lines  map[string][]int
}

// NewLineHashSequence indexes the given per-line hashes. hashes[0] is line 1.
func NewLineHashSequence(hashes []string) *LineHashSequence {
	lines := make(map[string][]int, len(hashes))

	for idx, hash := range hashes {
		lines[hash] = append(lines[hash], idx+1)
	}

	return &LineHashSequence{hashes: hashes, lines: lines}
}

// Length returns the number of lines.
func (s *LineHashSequence) Length() int {
	if s == nil {
		return 0
	}

	return len(s.hashes)
}

// HashForLine returns the hash of a line, or "" when the line is out of range.
func (s *LineHashSequence) HashForLine(line int) string {
	if s == nil || line < 1 || line > len(s.hashes) {
		return ""
	}

	return s.hashes[line-1]
}

// HasLineHash reports whether any line has the given hash.
func (s *LineHashSequence) HasLineHash(hash string) bool {
	if s == nil {
		return false
	}

	_, ok := s.lines[hash]

	return ok
}

// LinesForHash returns the lines carrying the given hash, in ascending order.
func (s *LineHashSequence) LinesForHash(hash string) []int {
	if s == nil {
		return nil
	}

	return s.lines[hash]
}

// Hashes returns the per-line hashes. The slice must not be modified.
func (s *LineHashSequence) Hashes() []string {
	if s == nil {
		return nil
	}

	return s.hashes
}

// BlockHashSequence holds, for every line, a digest of the lines surrounding it.
// Two lines with the same block hash sit in identical neighbourhoods, which
// is how moved code is recognized.
type BlockHashSequence struct {
	blockHashes []uint64
}

// NewBlockHashSequence computes block hashes over windows of
// [line-halfBlockSize, line+halfBlockSize].
func NewBlockHashSequence(lines *LineHashSequence, halfBlockSize int) *BlockHashSequence {
	length := lines.Length()
	blockHashes := make([]uint64, length)
	digest := xxhash.New()

	for line := 1; line <= length; line++ {
		digest.Reset()

		for neighbour := line - halfBlockSize; neighbour <= line+halfBlockSize; neighbour++ {
			_, _ = digest.WriteString(lines.HashForLine(neighbour))
			_, _ = digest.WriteString(blockSeparator)
		}

		blockHashes[line-1] = digest.Sum64()
	}

	return &BlockHashSequence{blockHashes: blockHashes}
}

// BlockHashForLine returns the block hash of a line, 0 when out of range.
func (s *BlockHashSequence) BlockHashForLine(line int) uint64 {
	if s == nil || line < 1 || line > len(s.blockHashes) {
		return 0
	}

	return s.blockHashes[line-1]
}

// Input is the per-file set of trackables with the file's hash sequences.
type Input[T Trackable] interface {
	Issues() []T
	LineHashSequence() *LineHashSequence
	BlockHashSequence() *BlockHashSequence
}

// DefaultInput is an immutable Input. Block hashes are derived lazily from
// the line hashes when not supplied.
type DefaultInput[T Trackable] struct {
	issues     []T
	lineHashes *LineHashSequence

	blockOnce   sync.Once
	blockHashes *BlockHashSequence
}

// NewInput builds an Input. lines and blocks may be nil.
func NewInput[T Trackable](issues []T, lines *LineHashSequence, blocks *BlockHashSequence) *DefaultInput[T] {
	if lines == nil {
		lines = NewLineHashSequence(nil)
	}

	return &DefaultInput[T]{issues: issues, lineHashes: lines, blockHashes: blocks}
}

// Issues returns the trackables in input order.
func (in *DefaultInput[T]) Issues() []T {
	return in.issues
}

// LineHashSequence returns the file's line hashes.
func (in *DefaultInput[T]) LineHashSequence() *LineHashSequence {
	return in.lineHashes
}

// BlockHashSequence returns the file's block hashes.
func (in *DefaultInput[T]) BlockHashSequence() *BlockHashSequence {
	in.blockOnce.Do(func() {
		if in.blockHashes == nil {
			in.blockHashes = NewBlockHashSequence(in.lineHashes, DefaultHalfBlockSize)
		}
	})

	return in.blockHashes
}

// Restrict returns an Input holding issues and delegating hash sequences to in.
func Restrict[T Trackable](in Input[T], issues []T) Input[T] {
	return &restrictedInput[T]{Input: in, issues: issues}
}

type restrictedInput[T Trackable] struct {
	Input[T]

	issues []T
}

func (in *restrictedInput[T]) Issues() []T {
	return in.issues
}
