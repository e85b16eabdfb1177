package issue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/issuetrack/pkg/analysis"
	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
	"github.com/Sumatoshi-tech/issuetrack/pkg/source"
	"github.com/Sumatoshi-tech/issuetrack/pkg/tracking"
)

// Input is the per-file tracking input of issues.
type Input = tracking.Input[*Issue]

// Tracking is the tracking outcome of one file.
type Tracking = tracking.Tracking[*Issue, *Issue]

// Tracker matches raw issues against base issues.
type Tracker = tracking.Tracker[*Issue, *Issue]

// NewTracker creates a Tracker for issues.
func NewTracker(opts tracking.Options) *Tracker {
	return tracking.NewTracker[*Issue, *Issue](opts)
}

// InputFactory provides the inputs of a file: the raw issues of the running
// analysis, the open issues of the previous analysis and its closed issues.
type InputFactory interface {
	Raw(ctx context.Context, c *component.Component) (Input, error)
	Base(ctx context.Context, c *component.Component) (Input, error)
	Closed(ctx context.Context, c *component.Component) (Input, error)
}

// TargetInputFactory provides the issues of the branch a pull request
// targets. ok is false when the target has no data for the file.
type TargetInputFactory interface {
	Target(ctx context.Context, c *component.Component) (input Input, ok bool, err error)
}

// NewLinesProvider tells which lines of a file are new. ok is false when unknown.
type NewLinesProvider interface {
	NewLines(ctx context.Context, file *component.Component) (lines source.LineSet, ok bool, err error)
}

// Execution tracks the issues of one component.
type Execution interface {
	Track(ctx context.Context, c *component.Component) (*Tracking, error)
}

// TrackerExecution tracks a branch: raw issues against the open issues of
// the previous analysis, then leftovers against its closed issues.
type TrackerExecution struct {
	tracker     *Tracker
	inputs      InputFactory
	metadata    analysis.MetadataHolder
	trackClosed bool
}

// NewTrackerExecution creates a TrackerExecution. trackClosed enables the
// second pass against closed issues.
func NewTrackerExecution(
	tracker *Tracker, inputs InputFactory, metadata analysis.MetadataHolder, trackClosed bool,
) *TrackerExecution {
	return &TrackerExecution{tracker: tracker, inputs: inputs, metadata: metadata, trackClosed: trackClosed}
}

// Track tracks the issues of c.
func (e *TrackerExecution) Track(ctx context.Context, c *component.Component) (*Tracking, error) {
	raw, err := e.inputs.Raw(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("raw input: %w", err)
	}

	base, err := e.inputs.Base(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("base input: %w", err)
	}

	result := e.tracker.TrackNonClosed(raw, base)

	if !e.trackClosed || result.IsComplete() || e.metadata.IsFirstAnalysis() {
		return result, nil
	}

	closed, err := e.inputs.Closed(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("closed input: %w", err)
	}

	return e.tracker.TrackClosed(result, closed), nil
}

// PullRequestTrackerExecution tracks a pull request in three stages:
// keep raw issues located on changed lines, drop those the target branch
// already knows, then track the rest against the previous analysis of the
// pull request.
type PullRequestTrackerExecution struct {
	tracker  *Tracker
	inputs   InputFactory
	target   TargetInputFactory
	newLines NewLinesProvider
	logger   *slog.Logger
}

// NewPullRequestTrackerExecution creates a PullRequestTrackerExecution.
// target may be nil, which skips the target-branch stage.
func NewPullRequestTrackerExecution(
	tracker *Tracker, inputs InputFactory, target TargetInputFactory, newLines NewLinesProvider, logger *slog.Logger,
) *PullRequestTrackerExecution {
	if logger == nil {
		logger = slog.Default()
	}

	return &PullRequestTrackerExecution{
		tracker:  tracker,
		inputs:   inputs,
		target:   target,
		newLines: newLines,
		logger:   logger,
	}
}

// Track tracks the issues of c.
func (e *PullRequestTrackerExecution) Track(ctx context.Context, c *component.Component) (*Tracking, error) {
	raw, err := e.inputs.Raw(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("raw input: %w", err)
	}

	onChangedLines, err := e.keepIssuesOnChangedLines(ctx, c, raw.Issues())
	if err != nil {
		return nil, err
	}

	unmatched, err := e.excludeTargetIssues(ctx, c, raw, tracking.Restrict(raw, onChangedLines))
	if err != nil {
		return nil, err
	}

	previous, err := e.inputs.Base(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("base input: %w", err)
	}

	return e.tracker.TrackNonClosed(unmatched, previous), nil
}

func (e *PullRequestTrackerExecution) keepIssuesOnChangedLines(
	ctx context.Context, c *component.Component, issues []*Issue,
) ([]*Issue, error) {
	if !c.IsFile() {
		return nil, nil
	}

	newLines, ok, err := e.newLines.NewLines(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("new lines: %w", err)
	}

	if !ok {
		e.logger.DebugContext(ctx, "no changed lines, dropping raw issues", "component", c.Key, "issues", len(issues))

		return nil, nil
	}

	kept := make([]*Issue, 0, len(issues))

	for _, is := range issues {
		for _, line := range AllLinesFor(is, c.UUID) {
			if newLines.Contains(line) {
				kept = append(kept, is)

				break
			}
		}
	}

	return kept, nil
}

// excludeTargetIssues drops the raw issues matching an issue of the target
// branch. Survivors keep the hash sequences of the original raw input.
func (e *PullRequestTrackerExecution) excludeTargetIssues(
	ctx context.Context, c *component.Component, raw, filtered Input,
) (Input, error) {
	if e.target == nil {
		return filtered, nil
	}

	target, ok, err := e.target.Target(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("target input: %w", err)
	}

	if !ok {
		return filtered, nil
	}

	known := e.tracker.TrackNonClosed(filtered, target)

	return tracking.Restrict(raw, known.UnmatchedRaws()), nil
}

// TrackingDelegator tracks with the pull request execution on pull
// requests and with the branch execution otherwise.
type TrackingDelegator struct {
	branch      Execution
	pullRequest Execution
	metadata    analysis.MetadataHolder
}

// NewTrackingDelegator creates a TrackingDelegator.
func NewTrackingDelegator(branch, pullRequest Execution, metadata analysis.MetadataHolder) *TrackingDelegator {
	return &TrackingDelegator{branch: branch, pullRequest: pullRequest, metadata: metadata}
}

// Track tracks the issues of c.
func (d *TrackingDelegator) Track(ctx context.Context, c *component.Component) (*Tracking, error) {
	if d.metadata.IsPullRequest() {
		return d.pullRequest.Track(ctx, c)
	}

	return d.branch.Track(ctx, c)
}
