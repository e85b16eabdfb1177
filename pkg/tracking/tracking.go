package tracking

import "slices"

// Pair is a raw matched to a base.
type Pair[R, B Trackable] struct {
	Raw      R
	Base     B
	Strategy Strategy
	// Closed is set when Base was a closed issue picked up by TrackClosed.
	Closed bool
}

// Tracking is the frozen outcome of matching one file.
// Remaining raws are new issues; remaining bases disappeared from the code.
type Tracking[R, B Trackable] struct {
	pairs          []Pair[R, B]
	unmatchedRaws  []R
	unmatchedBases []B
}

// Pairs returns a copy of the matched pairs, ordered by raw input order.
func (t *Tracking[R, B]) Pairs() []Pair[R, B] {
	return slices.Clone(t.pairs)
}

// UnmatchedRaws returns a copy of the raws without a base, in input order.
func (t *Tracking[R, B]) UnmatchedRaws() []R {
	return slices.Clone(t.unmatchedRaws)
}

// UnmatchedBases returns a copy of the candidate bases without a raw, in
// input order.
func (t *Tracking[R, B]) UnmatchedBases() []B {
	return slices.Clone(t.unmatchedBases)
}

// IsComplete reports whether every raw found a base.
func (t *Tracking[R, B]) IsComplete() bool {
	return len(t.unmatchedRaws) == 0
}

// MatchedCount returns the number of pairs.
func (t *Tracking[R, B]) MatchedCount() int {
	return len(t.pairs)
}

// CountByStrategy returns the number of pairs produced by each strategy.
func (t *Tracking[R, B]) CountByStrategy() map[Strategy]int {
	counts := make(map[Strategy]int)

	for _, pair := range t.pairs {
		counts[pair.Strategy]++
	}

	return counts
}
