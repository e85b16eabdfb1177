package tracking

// StatusClosed is the status of a base issue that no longer takes part in
// regular matching.
const StatusClosed = "CLOSED"

// Trackable is the matching unit. Raw and base issues share this shape.
type Trackable interface {
	RuleKey() RuleKey
	// Line is the 1-based primary line, or 0 when the issue is not on a line.
	Line() int
	// LineHash is the content fingerprint of the primary line, empty when unknown.
	LineHash() string
	Message() string
	Status() string
}

func isClosed(t Trackable) bool {
	return t.Status() == StatusClosed
}
