package tracking

// Accumulator is the mutable matching state of one file. It is owned by a
// single goroutine for the duration of the cascade and frozen with Freeze.
//
// Raws and bases are addressed by their index in the input, which keeps
// iteration order stable and makes re-running the cascade deterministic.
type Accumulator[R, B Trackable] struct {
	raws  []R
	bases []B

	rawToBase   []int
	baseMatched []bool
	// baseExcluded marks bases that never take part, e.g. closed ones in
	// non-closed tracking.
	baseExcluded []bool
	strategies   []Strategy

	unmatchedRaws  int
	unmatchedBases int
}

const noMatch = -1

// NewAccumulator starts a fresh accumulator where every raw and base is unmatched.
func NewAccumulator[R, B Trackable](raws []R, bases []B) *Accumulator[R, B] {
	rawToBase := make([]int, len(raws))
	for idx := range rawToBase {
		rawToBase[idx] = noMatch
	}

	return &Accumulator[R, B]{
		raws:           raws,
		bases:          bases,
		rawToBase:      rawToBase,
		baseMatched:    make([]bool, len(bases)),
		baseExcluded:   make([]bool, len(bases)),
		strategies:     make([]Strategy, len(raws)),
		unmatchedRaws:  len(raws),
		unmatchedBases: len(bases),
	}
}

// ExcludeBases removes from candidacy every unmatched base for which drop returns true.
func (a *Accumulator[R, B]) ExcludeBases(drop func(B) bool) {
	for idx, base := range a.bases {
		if a.baseAvailable(idx) && drop(base) {
			a.baseExcluded[idx] = true
			a.unmatchedBases--
		}
	}
}

// MatchBy runs one single-strategy pass. Each still-unmatched raw whose key
// is shared by exactly one still-unmatched base is paired with it. Zero or
// several candidates leave the raw unmatched for later passes.
func (a *Accumulator[R, B]) MatchBy(pass Pass) {
	if a.IsComplete() {
		return
	}

	basesByKey := make(map[SearchKey][]int, a.unmatchedBases)

	for idx, base := range a.bases {
		if a.baseAvailable(idx) {
			key := pass.Key(base)
			basesByKey[key] = append(basesByKey[key], idx)
		}
	}

	for rawIdx, raw := range a.raws {
		if !a.rawAvailable(rawIdx) {
			continue
		}

		key := pass.Key(raw)

		candidates := basesByKey[key]
		if len(candidates) != 1 {
			continue
		}

		a.match(rawIdx, candidates[0], pass.Strategy)
		delete(basesByKey, key)
	}
}

// IsComplete reports whether every raw has been matched.
func (a *Accumulator[R, B]) IsComplete() bool {
	return a.unmatchedRaws == 0
}

// UnmatchedRawCount returns the number of raws still unmatched.
func (a *Accumulator[R, B]) UnmatchedRawCount() int {
	return a.unmatchedRaws
}

// UnmatchedBaseCount returns the number of candidate bases still unmatched.
func (a *Accumulator[R, B]) UnmatchedBaseCount() int {
	return a.unmatchedBases
}

// Freeze returns the immutable result. The accumulator must not be used afterwards.
func (a *Accumulator[R, B]) Freeze() *Tracking[R, B] {
	result := &Tracking[R, B]{
		pairs:          make([]Pair[R, B], 0, len(a.raws)-a.unmatchedRaws),
		unmatchedRaws:  make([]R, 0, a.unmatchedRaws),
		unmatchedBases: make([]B, 0, a.unmatchedBases),
	}

	for rawIdx, raw := range a.raws {
		baseIdx := a.rawToBase[rawIdx]
		if baseIdx == noMatch {
			result.unmatchedRaws = append(result.unmatchedRaws, raw)

			continue
		}

		result.pairs = append(result.pairs, Pair[R, B]{
			Raw:      raw,
			Base:     a.bases[baseIdx],
			Strategy: a.strategies[rawIdx],
		})
	}

	for idx, base := range a.bases {
		if a.baseAvailable(idx) {
			result.unmatchedBases = append(result.unmatchedBases, base)
		}
	}

	return result
}

func (a *Accumulator[R, B]) rawAvailable(idx int) bool {
	return a.rawToBase[idx] == noMatch
}

func (a *Accumulator[R, B]) baseAvailable(idx int) bool {
	return !a.baseMatched[idx] && !a.baseExcluded[idx]
}

func (a *Accumulator[R, B]) match(rawIdx, baseIdx int, strategy Strategy) {
	a.rawToBase[rawIdx] = baseIdx
	a.baseMatched[baseIdx] = true
	a.strategies[rawIdx] = strategy
	a.unmatchedRaws--
	a.unmatchedBases--
}
