package tracking

import "log/slog"

// PassStats describes the accumulator right after one pass.
type PassStats struct {
	Strategy       Strategy
	Matched        int
	UnmatchedRaws  int
	UnmatchedBases int
}

// Options configures a Tracker.
type Options struct {
	// DetectCodeMoves inserts block recognition between the second and
	// third key strategies.
	DetectCodeMoves bool

	// AfterPass, when set, is called after every pass of the cascade.
	AfterPass func(PassStats)

	Logger *slog.Logger
}

// Tracker runs the strategy cascade. It holds no per-file state and is safe
// for concurrent use across files.
type Tracker[R, B Trackable] struct {
	opts   Options
	logger *slog.Logger
}

// NewTracker creates a Tracker.
func NewTracker[R, B Trackable](opts Options) *Tracker[R, B] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Tracker[R, B]{opts: opts, logger: logger}
}

// Track matches raws against every base regardless of status.
func (t *Tracker[R, B]) Track(raw Input[R], base Input[B]) *Tracking[R, B] {
	acc := NewAccumulator(raw.Issues(), base.Issues())
	t.cascade(acc, raw, base)

	return acc.Freeze()
}

// TrackNonClosed matches raws against the bases that are not closed.
// Closed bases are neither matched nor reported as unmatched.
func (t *Tracker[R, B]) TrackNonClosed(raw Input[R], base Input[B]) *Tracking[R, B] {
	acc := NewAccumulator(raw.Issues(), base.Issues())
	acc.ExcludeBases(func(b B) bool { return isClosed(b) })
	t.cascade(acc, raw, base)

	return acc.Freeze()
}

// TrackClosed gives the raws left unmatched by a non-closed tracking a
// chance to match a closed base, on exact line, line hash and message only.
// The result merges both trackings; unmatched bases are those of nonClosed.
func (t *Tracker[R, B]) TrackClosed(nonClosed *Tracking[R, B], closedBase Input[B]) *Tracking[R, B] {
	if nonClosed.IsComplete() {
		return nonClosed
	}

	acc := NewAccumulator(nonClosed.UnmatchedRaws(), closedBase.Issues())
	acc.ExcludeBases(func(b B) bool { return !isClosed(b) })
	acc.MatchBy(Pass{Strategy: StrategyLineAndLineHashAndMessage, Key: LineAndLineHashAndMessageKey})
	t.report(acc, StrategyLineAndLineHashAndMessage)

	closed := acc.Freeze()

	merged := &Tracking[R, B]{
		pairs:          make([]Pair[R, B], 0, len(nonClosed.pairs)+len(closed.pairs)),
		unmatchedRaws:  closed.unmatchedRaws,
		unmatchedBases: nonClosed.unmatchedBases,
	}

	merged.pairs = append(merged.pairs, nonClosed.pairs...)

	for _, pair := range closed.pairs {
		pair.Closed = true
		merged.pairs = append(merged.pairs, pair)
	}

	return merged
}

func (t *Tracker[R, B]) cascade(acc *Accumulator[R, B], raw Input[R], base Input[B]) {
	for idx, pass := range Cascade {
		acc.MatchBy(pass)
		t.report(acc, pass.Strategy)

		// Moved blocks are recognized once exact-position keys have had their chance.
		if t.opts.DetectCodeMoves && idx == 1 {
			recognizeBlocks(acc, raw, base)
			t.report(acc, StrategyCodeMove)
		}
	}
}

func (t *Tracker[R, B]) report(acc *Accumulator[R, B], strategy Strategy) {
	stats := PassStats{
		Strategy:       strategy,
		Matched:        len(acc.raws) - acc.unmatchedRaws,
		UnmatchedRaws:  acc.unmatchedRaws,
		UnmatchedBases: acc.unmatchedBases,
	}

	if t.opts.AfterPass != nil {
		t.opts.AfterPass(stats)
	}

	t.logger.Debug("tracking pass",
		"strategy", strategy.String(),
		"matched", stats.Matched,
		"unmatched_raws", stats.UnmatchedRaws,
		"unmatched_bases", stats.UnmatchedBases)
}
