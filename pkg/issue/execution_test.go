package issue_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
	"github.com/Sumatoshi-tech/issuetrack/pkg/issue"
	"github.com/Sumatoshi-tech/issuetrack/pkg/scm"
	"github.com/Sumatoshi-tech/issuetrack/pkg/source"
	"github.com/Sumatoshi-tech/issuetrack/pkg/tracking"
)

func TestTrackerExecution_MatchesThenReopensClosed(t *testing.T) {
	t.Parallel()

	inputs := &fakeInputs{
		raw: map[string][]*issue.Issue{"f": {
			newIssue("f", ruleA, 12, "h10", "moved"),
			newIssue("f", ruleB, 20, "h20", "back again"),
		}},
		base:   map[string][]*issue.Issue{"f": {baseIssue("OPEN1", "f", ruleA, 10, "h10", "moved")}},
		closed: map[string][]*issue.Issue{"f": {baseIssue("GONE", "f", ruleB, 20, "h20", "back again").SetStatus(issue.StatusClosed)}},
	}

	exec := issue.NewTrackerExecution(issue.NewTracker(tracking.Options{}), inputs, branchMetadata(false), true)

	result, err := exec.Track(context.Background(), file("f"))
	require.NoError(t, err)

	require.Len(t, result.Pairs(), 2)
	assert.Equal(t, "OPEN1", result.Pairs()[0].Base.Key())
	assert.False(t, result.Pairs()[0].Closed)
	assert.Equal(t, "GONE", result.Pairs()[1].Base.Key())
	assert.True(t, result.Pairs()[1].Closed)
	assert.Empty(t, result.UnmatchedRaws())
	assert.Equal(t, int32(1), inputs.closedCalls.Load())
}

func TestTrackerExecution_SkipsClosedIssues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		trackClosed bool
		first       bool
		raws        []*issue.Issue
	}{
		{name: "disabled", trackClosed: false, raws: []*issue.Issue{newIssue("f", ruleA, 1, "x", "new")}},
		{name: "first analysis", trackClosed: true, first: true, raws: []*issue.Issue{newIssue("f", ruleA, 1, "x", "new")}},
		{name: "complete", trackClosed: true, raws: []*issue.Issue{newIssue("f", ruleA, 10, "h10", "m")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inputs := &fakeInputs{
				raw:  map[string][]*issue.Issue{"f": tt.raws},
				base: map[string][]*issue.Issue{"f": {baseIssue("B", "f", ruleA, 10, "h10", "m")}},
			}

			exec := issue.NewTrackerExecution(issue.NewTracker(tracking.Options{}), inputs, branchMetadata(tt.first), tt.trackClosed)

			_, err := exec.Track(context.Background(), file("f"))
			require.NoError(t, err)
			assert.Zero(t, inputs.closedCalls.Load())
		})
	}
}

func TestTrackerExecution_InputError(t *testing.T) {
	t.Parallel()

	exec := issue.NewTrackerExecution(issue.NewTracker(tracking.Options{}), &fakeInputs{err: errBoom}, branchMetadata(false), true)

	_, err := exec.Track(context.Background(), file("f"))
	require.ErrorIs(t, err, errBoom)
}

// prRaws places issues on lines 5, 10, 11-12 and 40 (with a flow on 10) of
// a 50-line file whose changed lines are 10 and 11.
func prRaws() []*issue.Issue {
	return []*issue.Issue{
		newIssue("f", ruleA, 5, "h5", "untouched line"),
		newIssue("f", ruleA, 10, "h10", "on changed line"),
		newIssue("f", ruleB, 11, "h11", "range").SetTextRange(&issue.TextRange{StartLine: 11, EndLine: 12}),
		newIssue("f", ruleB, 40, "h40", "flow").SetFlows([][]issue.Location{{
			{TextRange: issue.TextRange{StartLine: 10, EndLine: 10}},
		}}),
	}
}

func prExecution(inputs *fakeInputs, target issue.TargetInputFactory, changed map[string]source.LineSet) *issue.PullRequestTrackerExecution {
	return issue.NewPullRequestTrackerExecution(
		issue.NewTracker(tracking.Options{}), inputs, target, &fakeNewLines{lines: changed}, nil)
}

func TestPullRequestTrackerExecution_KeepsIssuesOnChangedLines(t *testing.T) {
	t.Parallel()

	inputs := &fakeInputs{raw: map[string][]*issue.Issue{"f": prRaws()}}
	exec := prExecution(inputs, nil, map[string]source.LineSet{"f": source.NewLineSet(10, 11)})

	result, err := exec.Track(context.Background(), file("f"))
	require.NoError(t, err)

	assert.Equal(t, []int{10, 11, 40}, lines(result.UnmatchedRaws()))
	assert.Empty(t, result.Pairs())
}

func TestPullRequestTrackerExecution_DropsEverythingWithoutChangedLines(t *testing.T) {
	t.Parallel()

	inputs := &fakeInputs{
		raw:  map[string][]*issue.Issue{"f": prRaws()},
		base: map[string][]*issue.Issue{"f": {baseIssue("PR1", "f", ruleA, 10, "h10", "on changed line")}},
	}
	exec := prExecution(inputs, nil, nil)

	result, err := exec.Track(context.Background(), file("f"))
	require.NoError(t, err)

	assert.Empty(t, result.UnmatchedRaws())
	assert.Empty(t, result.Pairs())
	assert.Equal(t, []string{"PR1"}, keys(result.UnmatchedBases()))
}

func TestPullRequestTrackerExecution_ExcludesTargetIssues(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{issues: map[string][]*issue.Issue{"f": {
		baseIssue("T1", "f", ruleA, 10, "h10", "on changed line"),
		baseIssue("T2", "f", ruleA, 30, "h30", "elsewhere"),
	}}}
	inputs := &fakeInputs{
		raw:  map[string][]*issue.Issue{"f": prRaws()},
		base: map[string][]*issue.Issue{"f": {baseIssue("PR1", "f", ruleB, 11, "h11", "range")}},
	}
	exec := prExecution(inputs, target, map[string]source.LineSet{"f": source.NewLineSet(10, 11)})

	result, err := exec.Track(context.Background(), file("f"))
	require.NoError(t, err)

	require.Len(t, result.Pairs(), 1)
	assert.Equal(t, "PR1", result.Pairs()[0].Base.Key())
	assert.Equal(t, []int{40}, lines(result.UnmatchedRaws()))

	for _, pair := range result.Pairs() {
		assert.NotEqual(t, "T1", pair.Base.Key())
	}
}

func TestPullRequestTrackerExecution_TargetWithoutData(t *testing.T) {
	t.Parallel()

	inputs := &fakeInputs{raw: map[string][]*issue.Issue{"f": prRaws()}}
	exec := prExecution(inputs, &fakeTarget{}, map[string]source.LineSet{"f": source.NewLineSet(10, 11)})

	result, err := exec.Track(context.Background(), file("f"))
	require.NoError(t, err)
	assert.Len(t, result.UnmatchedRaws(), 3)
}

func TestTrackingDelegator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		pullRequest bool
	}{
		{name: "branch"},
		{name: "pull request", pullRequest: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inputs := &fakeInputs{}
			branch := &countingExecution{
				inner: issue.NewTrackerExecution(issue.NewTracker(tracking.Options{}), inputs, branchMetadata(false), false),
			}
			pr := &countingExecution{inner: prExecution(inputs, nil, nil)}

			md := branchMetadata(false)
			if tt.pullRequest {
				md = pullRequestMetadata()
			}

			_, err := issue.NewTrackingDelegator(branch, pr, md).Track(context.Background(), file("f"))
			require.NoError(t, err)

			if tt.pullRequest {
				assert.Equal(t, map[string]int{"f": 1}, pr.calls)
				assert.Empty(t, branch.calls)

				return
			}

			assert.Equal(t, map[string]int{"f": 1}, branch.calls)
			assert.Empty(t, pr.calls)
		})
	}
}

func TestTrackFiles(t *testing.T) {
	t.Parallel()

	const fileCount = 20

	inputs := &fakeInputs{raw: map[string][]*issue.Issue{}, base: map[string][]*issue.Issue{}}
	files := make([]*component.Component, 0, fileCount)

	for idx := range fileCount {
		uuid := fmt.Sprintf("f%02d", idx)
		files = append(files, file(uuid))
		inputs.raw[uuid] = []*issue.Issue{newIssue(uuid, ruleA, idx+1, "h", "m")}
		inputs.base[uuid] = []*issue.Issue{baseIssue("K"+uuid, uuid, ruleA, idx+1, "h", "m")}
	}

	exec := issue.NewTrackerExecution(issue.NewTracker(tracking.Options{}), inputs, branchMetadata(false), false)

	for _, workers := range []int{0, 1, 4} {
		results, err := issue.TrackFiles(context.Background(), exec, files, workers)
		require.NoError(t, err)
		require.Len(t, results, fileCount)

		for _, f := range files {
			require.Len(t, results[f.UUID].Pairs(), 1, f.UUID)
			assert.Equal(t, "K"+f.UUID, results[f.UUID].Pairs()[0].Base.Key())
		}
	}
}

func TestTrackFiles_OrderIndependent(t *testing.T) {
	t.Parallel()

	const fileCount = 30

	inputs := &fakeInputs{raw: map[string][]*issue.Issue{}, base: map[string][]*issue.Issue{}}
	files := make([]*component.Component, 0, fileCount)

	for idx := range fileCount {
		uuid := fmt.Sprintf("f%02d", idx)
		files = append(files, file(uuid))
		inputs.raw[uuid] = []*issue.Issue{
			newIssue(uuid, ruleA, idx+1, "h", "m"),
			newIssue(uuid, ruleB, idx+2, "new", "fresh"),
		}
		inputs.base[uuid] = []*issue.Issue{
			baseIssue("K"+uuid, uuid, ruleA, idx+1, "h", "m"),
			baseIssue("G"+uuid, uuid, ruleA, idx+50, "gone", "fixed"),
		}
	}

	exec := issue.NewTrackerExecution(issue.NewTracker(tracking.Options{}), inputs, branchMetadata(false), false)

	reference, err := issue.TrackFiles(context.Background(), exec, files, 1)
	require.NoError(t, err)
	require.Len(t, reference, fileCount)

	rng := rand.New(rand.NewPCG(7, 11))

	for run := range 10 {
		shuffled := append([]*component.Component(nil), files...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		results, err := issue.TrackFiles(context.Background(), exec, shuffled, 1+run%4)
		require.NoError(t, err)
		assert.Equal(t, reference, results, "run %d", run)
	}
}

func TestTrackFiles_FailsFast(t *testing.T) {
	t.Parallel()

	files := []*component.Component{file("a"), file("b"), file("c")}
	exec := &countingExecution{
		inner:  issue.NewTrackerExecution(issue.NewTracker(tracking.Options{}), &fakeInputs{}, branchMetadata(false), false),
		failOn: "b",
	}

	results, err := issue.TrackFiles(context.Background(), exec, files, 1)
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "proj:b")
	assert.Nil(t, results)
	assert.Zero(t, exec.calls["c"])
}

// noChangedLines is a changed-lines reader without data for any file.
type noChangedLines struct{}

func (noChangedLines) ChangedLines(context.Context, *component.Component) (source.LineSet, bool, error) {
	return nil, false, nil
}

func TestPullRequestTrackerExecution_NoChangedLinesData(t *testing.T) {
	t.Parallel()

	md := pullRequestMetadata()

	info, err := scm.NewInfo(map[int]scm.Changeset{30: {Revision: "r9", Date: md.Base.CreatedAt.Add(time.Hour)}})
	require.NoError(t, err)

	history := &fakeScm{infos: map[string]*scm.Info{"f": info}}

	tests := []struct {
		name      string
		opts      []source.NewLinesRepositoryOption
		wantLines []int
	}{
		{name: "without fallback", wantLines: []int{}},
		{name: "with scm fallback", opts: []source.NewLinesRepositoryOption{source.WithScmFallback(history)}, wantLines: []int{30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inputs := &fakeInputs{raw: map[string][]*issue.Issue{"f": {newIssue("f", ruleA, 30, "h30", "recent")}}}
			newLines := source.NewNewLinesRepository(noChangedLines{}, md, tt.opts...)
			exec := issue.NewPullRequestTrackerExecution(issue.NewTracker(tracking.Options{}), inputs, nil, newLines, nil)

			result, err := exec.Track(context.Background(), file("f"))
			require.NoError(t, err)

			assert.Equal(t, tt.wantLines, lines(result.UnmatchedRaws()))
			assert.Empty(t, result.Pairs())
		})
	}
}
