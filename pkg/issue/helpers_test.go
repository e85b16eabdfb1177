package issue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sumatoshi-tech/issuetrack/pkg/analysis"
	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
	"github.com/Sumatoshi-tech/issuetrack/pkg/issue"
	"github.com/Sumatoshi-tech/issuetrack/pkg/scm"
	"github.com/Sumatoshi-tech/issuetrack/pkg/source"
	"github.com/Sumatoshi-tech/issuetrack/pkg/tracking"
)

var (
	errBoom = errors.New("boom")

	ruleA = tracking.MustParseRuleKey("go:S100")
	ruleB = tracking.MustParseRuleKey("go:S200")

	analysisDate = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func file(uuid string) *component.Component {
	return &component.Component{UUID: uuid, Key: "proj:" + uuid, Type: component.TypeFile, Path: uuid}
}

func newIssue(comp string, rule tracking.RuleKey, line int, hash, msg string) *issue.Issue {
	return issue.New(rule, comp).SetLine(line).SetLineHash(hash).SetMessage(msg)
}

func baseIssue(key, comp string, rule tracking.RuleKey, line int, hash, msg string) *issue.Issue {
	return newIssue(comp, rule, line, hash, msg).SetKey(key).SetCreationDate(analysisDate.Add(-72 * time.Hour))
}

func branchMetadata(first bool) *analysis.Metadata {
	md := &analysis.Metadata{Date: analysisDate}
	if !first {
		md.Base = &analysis.Analysis{UUID: "a0", CreatedAt: analysisDate.Add(-24 * time.Hour)}
	}

	return md
}

func pullRequestMetadata() *analysis.Metadata {
	md := branchMetadata(false)
	md.Current = analysis.Branch{Name: "feature", Type: analysis.BranchTypePullRequest, TargetBranchName: "main"}

	return md
}

// fakeInputs serves per-file issues keyed by component uuid.
type fakeInputs struct {
	raw    map[string][]*issue.Issue
	base   map[string][]*issue.Issue
	closed map[string][]*issue.Issue
	err    error

	closedCalls atomic.Int32
}

func (f *fakeInputs) input(issues []*issue.Issue) issue.Input {
	return tracking.NewInput(issues, nil, nil)
}

func (f *fakeInputs) Raw(_ context.Context, c *component.Component) (issue.Input, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.input(f.raw[c.UUID]), nil
}

func (f *fakeInputs) Base(_ context.Context, c *component.Component) (issue.Input, error) {
	return f.input(f.base[c.UUID]), nil
}

func (f *fakeInputs) Closed(_ context.Context, c *component.Component) (issue.Input, error) {
	f.closedCalls.Add(1)

	return f.input(f.closed[c.UUID]), nil
}

type fakeTarget struct {
	issues map[string][]*issue.Issue
}

func (f *fakeTarget) Target(_ context.Context, c *component.Component) (issue.Input, bool, error) {
	issues, ok := f.issues[c.UUID]
	if !ok {
		return nil, false, nil
	}

	return tracking.NewInput(issues, nil, nil), true, nil
}

type fakeNewLines struct {
	lines map[string]source.LineSet
}

func (f *fakeNewLines) NewLines(_ context.Context, c *component.Component) (source.LineSet, bool, error) {
	lines, ok := f.lines[c.UUID]

	return lines, ok, nil
}

type fakeScm struct {
	infos map[string]*scm.Info
}

func (f *fakeScm) ScmInfo(_ context.Context, c *component.Component) (*scm.Info, bool, error) {
	info, ok := f.infos[c.UUID]

	return info, ok, nil
}

// countingExecution wraps an Execution and counts calls per uuid.
type countingExecution struct {
	inner  issue.Execution
	failOn string

	mu    sync.Mutex
	calls map[string]int
}

func (e *countingExecution) Track(ctx context.Context, c *component.Component) (*issue.Tracking, error) {
	e.mu.Lock()
	if e.calls == nil {
		e.calls = make(map[string]int)
	}
	e.calls[c.UUID]++
	e.mu.Unlock()

	if c.UUID == e.failOn {
		return nil, errBoom
	}

	return e.inner.Track(ctx, c)
}

func keys(issues []*issue.Issue) []string {
	out := make([]string, 0, len(issues))

	for _, is := range issues {
		out = append(out, is.Key())
	}

	return out
}

func lines(issues []*issue.Issue) []int {
	out := make([]int, 0, len(issues))

	for _, is := range issues {
		out = append(out, is.Line())
	}

	return out
}
