package issue

import (
	"sync"

	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
)

// Outcome is what tracking did to an issue.
type Outcome string

// Tracking outcomes.
const (
	OutcomeNew       Outcome = "new"
	OutcomeMatched   Outcome = "matched"
	OutcomeReopened  Outcome = "reopened"
	OutcomeClosed    Outcome = "closed"
	OutcomeUntouched Outcome = "untouched"
)

// outcomeOf classifies is once the lifecycle ran. matched tells whether is
// came out of a pair.
func outcomeOf(is *Issue, matched bool) Outcome {
	switch {
	case is.IsNew():
		return OutcomeNew
	case is.IsBeingClosed():
		return OutcomeClosed
	case !matched:
		return OutcomeUntouched
	case is.Status() == StatusReopened && is.hasDiff(FieldStatus):
		return OutcomeReopened
	default:
		return OutcomeMatched
	}
}

// Entry is a tracked issue with the component it was tracked on.
type Entry struct {
	ComponentUUID string
	ComponentKey  string
	Issue         *Issue
	Outcome       Outcome
}

// Summary counts tracked issues by outcome. Reopened and Backdated refine
// Matched and New. Untouched counts disappeared issues left as they were,
// such as manually reopened ones.
type Summary struct {
	New       int `json:"new"`
	Matched   int `json:"matched"`
	Reopened  int `json:"reopened"`
	Closed    int `json:"closed"`
	Backdated int `json:"backdated"`
	Untouched int `json:"untouched"`
}

// Total returns the number of issues counted.
func (s Summary) Total() int {
	return s.New + s.Matched + s.Closed + s.Untouched
}

func (s *Summary) add(is *Issue, outcome Outcome) {
	switch outcome {
	case OutcomeNew:
		s.New++

		if is.hasDiff(FieldCreationDate) {
			s.Backdated++
		}
	case OutcomeClosed:
		s.Closed++
	case OutcomeReopened:
		s.Matched++
		s.Reopened++
	case OutcomeMatched:
		s.Matched++
	case OutcomeUntouched:
		s.Untouched++
	}
}

// Cache collects tracked issues in visit order. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries []Entry
	summary Summary
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Add appends is, tracked on c. matched tells whether is came out of a pair.
func (c *Cache) Add(comp *component.Component, is *Issue, matched bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	outcome := outcomeOf(is, matched)

	c.entries = append(c.entries, Entry{ComponentUUID: comp.UUID, ComponentKey: comp.Key, Issue: is, Outcome: outcome})
	c.summary.add(is, outcome)
}

// Entries returns a copy of all entries in insertion order.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)

	return out
}

// Issues returns the issues tracked on the component with the given uuid.
func (c *Cache) Issues(componentUUID string) []*Issue {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*Issue

	for _, entry := range c.entries {
		if entry.ComponentUUID == componentUUID {
			out = append(out, entry.Issue)
		}
	}

	return out
}

// Summary returns the outcome counts over all entries.
func (c *Cache) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.summary
}
