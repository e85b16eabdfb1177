package tracking

import (
	"cmp"
	"slices"
)

// maxLinePairCandidates bounds the quadratic line-pair search.
const maxLinePairCandidates = 250_000

type hashOccurrence struct {
	baseLine  int
	rawLine   int
	baseCount int
	rawCount  int
}

type linePair struct {
	baseLine int
	rawLine  int
	weight   int
}

// recognizeBlocks pairs issues whose surrounding code moved as a whole.
// Blocks that occur exactly once on each side are paired first; remaining
// lines are paired by the length of the identical run of lines around them.
// Only issues of the same rule are paired.
func recognizeBlocks[R, B Trackable](acc *Accumulator[R, B], raw Input[R], base Input[B]) {
	if acc.IsComplete() || acc.unmatchedBases == 0 {
		return
	}

	rawBlocks := raw.BlockHashSequence()
	baseBlocks := base.BlockHashSequence()

	rawsByLine := groupRawsByLine(acc, raw.LineHashSequence().Length())
	basesByLine := groupBasesByLine(acc, base.LineHashSequence().Length())

	occurrences := make(map[uint64]*hashOccurrence)
	hashOrder := make([]uint64, 0, len(basesByLine))

	for _, line := range sortedLines(basesByLine) {
		hash := baseBlocks.BlockHashForLine(line)

		occ, ok := occurrences[hash]
		if !ok {
			occurrences[hash] = &hashOccurrence{baseLine: line, baseCount: 1}
			hashOrder = append(hashOrder, hash)

			continue
		}

		occ.baseCount++
	}

	for _, line := range sortedLines(rawsByLine) {
		if occ, ok := occurrences[rawBlocks.BlockHashForLine(line)]; ok {
			occ.rawLine = line
			occ.rawCount++
		}
	}

	for _, hash := range hashOrder {
		occ := occurrences[hash]
		if occ.baseCount == 1 && occ.rawCount == 1 {
			pairSameRule(acc, rawsByLine[occ.rawLine], basesByLine[occ.baseLine])
			delete(basesByLine, occ.baseLine)
			delete(rawsByLine, occ.rawLine)
		}
	}

	if len(basesByLine)*len(rawsByLine) >= maxLinePairCandidates {
		return
	}

	pairs := make([]linePair, 0)
	rawLines := sortedLines(rawsByLine)

	for _, baseLine := range sortedLines(basesByLine) {
		for _, rawLine := range rawLines {
			weight := maximalBlockLength(base.LineHashSequence(), baseLine, raw.LineHashSequence(), rawLine)
			if weight > 0 {
				pairs = append(pairs, linePair{baseLine: baseLine, rawLine: rawLine, weight: weight})
			}
		}
	}

	slices.SortStableFunc(pairs, func(a, b linePair) int {
		return cmp.Or(
			cmp.Compare(b.weight, a.weight),
			cmp.Compare(a.baseLine, b.baseLine),
			cmp.Compare(a.rawLine, b.rawLine),
		)
	})

	for _, pair := range pairs {
		pairSameRule(acc, rawsByLine[pair.rawLine], basesByLine[pair.baseLine])
	}
}

// maximalBlockLength counts identical lines around (line1, line2), both directions.
func maximalBlockLength(seq1 *LineHashSequence, line1 int, seq2 *LineHashSequence, line2 int) int {
	length := 0

	for i, j := line1, line2; i <= seq1.Length() && j <= seq2.Length() && seq1.HashForLine(i) == seq2.HashForLine(j); i, j = i+1, j+1 {
		length++
	}

	for i, j := line1-1, line2-1; i > 0 && j > 0 && seq1.HashForLine(i) == seq2.HashForLine(j); i, j = i-1, j-1 {
		length++
	}

	return length
}

func pairSameRule[R, B Trackable](acc *Accumulator[R, B], rawIdxs, baseIdxs []int) {
	for _, rawIdx := range rawIdxs {
		if !acc.rawAvailable(rawIdx) {
			continue
		}

		for _, baseIdx := range baseIdxs {
			if acc.baseAvailable(baseIdx) && acc.bases[baseIdx].RuleKey() == acc.raws[rawIdx].RuleKey() {
				acc.match(rawIdx, baseIdx, StrategyCodeMove)

				break
			}
		}
	}
}

func groupRawsByLine[R, B Trackable](acc *Accumulator[R, B], length int) map[int][]int {
	byLine := make(map[int][]int)

	for idx, raw := range acc.raws {
		if line := raw.Line(); acc.rawAvailable(idx) && line >= 1 && line <= length {
			byLine[line] = append(byLine[line], idx)
		}
	}

	return byLine
}

func groupBasesByLine[R, B Trackable](acc *Accumulator[R, B], length int) map[int][]int {
	byLine := make(map[int][]int)

	for idx, base := range acc.bases {
		if line := base.Line(); acc.baseAvailable(idx) && line >= 1 && line <= length {
			byLine[line] = append(byLine[line], idx)
		}
	}

	return byLine
}

func sortedLines(byLine map[int][]int) []int {
	lines := make([]int, 0, len(byLine))
	for line := range byLine {
		lines = append(lines, line)
	}

	slices.Sort(lines)

	return lines
}
