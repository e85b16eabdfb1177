package tracking_test

import (
	"fmt"

	"github.com/Sumatoshi-tech/issuetrack/pkg/tracking"
)

type fakeIssue struct {
	id     string
	rule   tracking.RuleKey
	line   int
	hash   string
	msg    string
	status string
}

func (f *fakeIssue) RuleKey() tracking.RuleKey { return f.rule }
func (f *fakeIssue) Line() int                 { return f.line }
func (f *fakeIssue) LineHash() string          { return f.hash }
func (f *fakeIssue) Message() string           { return f.msg }
func (f *fakeIssue) Status() string            { return f.status }

func (f *fakeIssue) String() string {
	return fmt.Sprintf("%s(%s@%d#%s %q)", f.id, f.rule, f.line, f.hash, f.msg)
}

var (
	ruleA = tracking.MustParseRuleKey("go:S100")
	ruleB = tracking.MustParseRuleKey("go:S200")
)

func issue(id string, rule tracking.RuleKey, line int, hash, msg string) *fakeIssue {
	return &fakeIssue{id: id, rule: rule, line: line, hash: hash, msg: msg, status: "OPEN"}
}

func input(issues ...*fakeIssue) tracking.Input[*fakeIssue] {
	return tracking.NewInput(issues, nil, nil)
}

func pairIDs(t *tracking.Tracking[*fakeIssue, *fakeIssue]) map[string]string {
	ids := make(map[string]string, t.MatchedCount())

	for _, pair := range t.Pairs() {
		ids[pair.Raw.id] = pair.Base.id
	}

	return ids
}

func ids(issues []*fakeIssue) []string {
	out := make([]string, 0, len(issues))

	for _, is := range issues {
		out = append(out, is.id)
	}

	return out
}
