package tracking

// Strategy identifies how a SearchKey was derived.
type Strategy int

const (
	// StrategyLineAndLineHash keys on rule, line and line hash.
	StrategyLineAndLineHash Strategy = iota + 1
	// StrategyLineAndLineHashAndMessage keys on rule, line, line hash and message.
	StrategyLineAndLineHashAndMessage
	// StrategyLineHashAndMessage keys on rule, line hash and message.
	StrategyLineHashAndMessage
	// StrategyLineAndMessage keys on rule, line and message.
	StrategyLineAndMessage
	// StrategyLineHash keys on rule and line hash.
	StrategyLineHash
	// StrategyCodeMove marks pairs found by block recognition rather than a key.
	StrategyCodeMove
)

var strategyNames = map[Strategy]string{
	StrategyLineAndLineHash:           "line_and_line_hash",
	StrategyLineAndLineHashAndMessage: "line_and_line_hash_and_message",
	StrategyLineHashAndMessage:        "line_hash_and_message",
	StrategyLineAndMessage:            "line_and_message",
	StrategyLineHash:                  "line_hash",
	StrategyCodeMove:                  "code_move",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}

	return "unknown"
}

// SearchKey is a comparable key derived from one Trackable by one strategy.
// Two trackables are candidates under a strategy iff their keys are equal.
// Fields outside the strategy's tuple are left zero, so equality never
// looks at them.
type SearchKey struct {
	strategy Strategy
	rule     RuleKey
	line     int
	lineHash string
	message  string
}

// Strategy returns the strategy the key was built with.
func (k SearchKey) Strategy() Strategy {
	return k.strategy
}

// KeyFunc derives a SearchKey from a Trackable.
type KeyFunc func(Trackable) SearchKey

// Pass is one step of the cascade.
type Pass struct {
	Strategy Strategy
	Key      KeyFunc
}

// Cascade lists the key strategies in the mandatory order, most specific first.
var Cascade = []Pass{
	{Strategy: StrategyLineAndLineHash, Key: LineAndLineHashKey},
	{Strategy: StrategyLineAndLineHashAndMessage, Key: LineAndLineHashAndMessageKey},
	{Strategy: StrategyLineHashAndMessage, Key: LineHashAndMessageKey},
	{Strategy: StrategyLineAndMessage, Key: LineAndMessageKey},
	{Strategy: StrategyLineHash, Key: LineHashKey},
}

// LineAndLineHashKey matches exact position and content.
func LineAndLineHashKey(t Trackable) SearchKey {
	return SearchKey{
		strategy: StrategyLineAndLineHash,
		rule:     t.RuleKey(),
		line:     normalizeLine(t.Line()),
		lineHash: t.LineHash(),
	}
}

// LineAndLineHashAndMessageKey disambiguates same-position duplicates by message.
func LineAndLineHashAndMessageKey(t Trackable) SearchKey {
	return SearchKey{
		strategy: StrategyLineAndLineHashAndMessage,
		rule:     t.RuleKey(),
		line:     normalizeLine(t.Line()),
		lineHash: t.LineHash(),
		message:  t.Message(),
	}
}

// LineHashAndMessageKey ignores the line, so it survives edits above the issue.
func LineHashAndMessageKey(t Trackable) SearchKey {
	return SearchKey{
		strategy: StrategyLineHashAndMessage,
		rule:     t.RuleKey(),
		lineHash: t.LineHash(),
		message:  t.Message(),
	}
}

// LineAndMessageKey ignores content, so it survives trivial edits of the line.
func LineAndMessageKey(t Trackable) SearchKey {
	return SearchKey{
		strategy: StrategyLineAndMessage,
		rule:     t.RuleKey(),
		line:     normalizeLine(t.Line()),
		message:  t.Message(),
	}
}

// LineHashKey is the weakest key: content only.
func LineHashKey(t Trackable) SearchKey {
	return SearchKey{
		strategy: StrategyLineHash,
		rule:     t.RuleKey(),
		lineHash: t.LineHash(),
	}
}

// normalizeLine maps every "no line" value to the 0 sentinel.
func normalizeLine(line int) int {
	if line < 1 {
		return 0
	}

	return line
}
