package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal     = "issuetrack.files.total"
	metricIssuesTotal    = "issuetrack.issues.total"
	metricMatchesTotal   = "issuetrack.matches.total"
	metricFileDuration   = "issuetrack.file.duration.seconds"
	metricBackdatedTotal = "issuetrack.issues.backdated.total"

	attrOutcome  = "tracking.outcome"
	attrStrategy = "tracking.strategy"
	attrMode     = "tracking.mode"
)

// fileDurationBoundaries covers 100µs to 10s per file.
var fileDurationBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// FileStats is the tracking outcome of one file, decoupled from issue types.
type FileStats struct {
	// Mode is "branch" or "pull_request".
	Mode       string
	New        int
	Matched    int
	Reopened   int
	Closed     int
	Backdated  int
	ByStrategy map[string]int
	Duration   time.Duration
}

// TrackingMetrics holds the issue tracking instruments.
type TrackingMetrics struct {
	files        metric.Int64Counter
	issues       metric.Int64Counter
	matches      metric.Int64Counter
	backdated    metric.Int64Counter
	fileDuration metric.Float64Histogram
}

// NewTrackingMetrics creates the tracking instruments from mt.
func NewTrackingMetrics(mt metric.Meter) (*TrackingMetrics, error) {
	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Files tracked"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	issues, err := mt.Int64Counter(metricIssuesTotal,
		metric.WithDescription("Issues by tracking outcome"),
		metric.WithUnit("{issue}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricIssuesTotal, err)
	}

	matches, err := mt.Int64Counter(metricMatchesTotal,
		metric.WithDescription("Matched issues by strategy"),
		metric.WithUnit("{issue}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricMatchesTotal, err)
	}

	backdated, err := mt.Int64Counter(metricBackdatedTotal,
		metric.WithDescription("New issues backdated from SCM data"),
		metric.WithUnit("{issue}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBackdatedTotal, err)
	}

	duration, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Per-file tracking duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(fileDurationBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	return &TrackingMetrics{
		files:        files,
		issues:       issues,
		matches:      matches,
		backdated:    backdated,
		fileDuration: duration,
	}, nil
}

// RecordFile records the outcome of one file. Safe on a nil receiver.
func (tm *TrackingMetrics) RecordFile(ctx context.Context, stats FileStats) {
	if tm == nil {
		return
	}

	mode := attribute.String(attrMode, stats.Mode)

	tm.files.Add(ctx, 1, metric.WithAttributes(mode))
	tm.fileDuration.Record(ctx, stats.Duration.Seconds(), metric.WithAttributes(mode))

	for outcome, count := range map[string]int{
		"new":      stats.New,
		"matched":  stats.Matched,
		"reopened": stats.Reopened,
		"closed":   stats.Closed,
	} {
		if count > 0 {
			tm.issues.Add(ctx, int64(count), metric.WithAttributes(mode, attribute.String(attrOutcome, outcome)))
		}
	}

	for strategy, count := range stats.ByStrategy {
		tm.matches.Add(ctx, int64(count), metric.WithAttributes(mode, attribute.String(attrStrategy, strategy)))
	}

	if stats.Backdated > 0 {
		tm.backdated.Add(ctx, int64(stats.Backdated), metric.WithAttributes(mode))
	}
}
