package issue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
	"github.com/Sumatoshi-tech/issuetrack/pkg/observability"
)

const trackingStepName = "issue-tracking"

// TrackingStep is a file visitor applying the tracking outcome of each file:
// the Lifecycle runs on every pair, new issue and disappeared issue, then
// every resulting issue goes through the Visitors into the Cache.
type TrackingStep struct {
	component.TypeAwareVisitorAdapter

	exec        Execution
	lifecycle   *Lifecycle
	visitors    Visitors
	cache       *Cache
	precomputed map[string]*Tracking
	metrics     *observability.TrackingMetrics
	tracer      trace.Tracer
	mode        string
	logger      *slog.Logger
}

// StepOption configures a TrackingStep.
type StepOption func(*TrackingStep)

// WithPrecomputed makes the step use trackings computed ahead, for instance
// by TrackFiles, keyed by component uuid. Files missing from it are tracked
// on the spot.
func WithPrecomputed(results map[string]*Tracking) StepOption {
	return func(s *TrackingStep) { s.precomputed = results }
}

// WithVisitors registers issue visitors, called in order.
func WithVisitors(visitors ...Visitor) StepOption {
	return func(s *TrackingStep) { s.visitors = append(s.visitors, visitors...) }
}

// WithMetrics records per-file outcomes; mode labels them.
func WithMetrics(metrics *observability.TrackingMetrics, mode string) StepOption {
	return func(s *TrackingStep) {
		s.metrics = metrics
		s.mode = mode
	}
}

// WithTracer opens one span per file.
func WithTracer(tracer trace.Tracer) StepOption {
	return func(s *TrackingStep) { s.tracer = tracer }
}

// WithStepLogger sets the logger.
func WithStepLogger(logger *slog.Logger) StepOption {
	return func(s *TrackingStep) { s.logger = logger }
}

// NewTrackingStep creates a TrackingStep filling cache.
func NewTrackingStep(exec Execution, lifecycle *Lifecycle, cache *Cache, opts ...StepOption) *TrackingStep {
	step := &TrackingStep{
		exec:      exec,
		lifecycle: lifecycle,
		cache:     cache,
		tracer:    nooptrace.NewTracerProvider().Tracer(trackingStepName),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(step)
	}

	return step
}

// Registration registers the step with a component.Crawler, down to files
// in pre-order.
func (s *TrackingStep) Registration() component.Registration {
	return component.TypeAware(trackingStepName, component.DepthFile, component.PreOrder, s)
}

// VisitFile tracks and applies the issues of file.
func (s *TrackingStep) VisitFile(ctx context.Context, file *component.Component) error {
	ctx, span := s.tracer.Start(ctx, "issuetrack.track_file",
		trace.WithAttributes(
			attribute.String("component.key", file.Key),
			attribute.String("component.uuid", file.UUID),
		))
	defer span.End()

	start := time.Now()

	result, err := s.trackingFor(ctx, file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tracking failed")

		return err
	}

	before := s.cache.Summary()

	if err := s.apply(ctx, file, result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply failed")

		return err
	}

	after := s.cache.Summary()
	stats := fileStats(before, after, result)
	stats.Mode = s.mode
	stats.Duration = time.Since(start)

	s.metrics.RecordFile(ctx, stats)

	span.SetAttributes(
		attribute.Int("tracking.new", stats.New),
		attribute.Int("tracking.matched", stats.Matched),
		attribute.Int("tracking.closed", stats.Closed),
	)

	s.logger.DebugContext(ctx, "file tracked",
		"component", file.Key, "new", stats.New, "matched", stats.Matched, "closed", stats.Closed)

	return nil
}

func (s *TrackingStep) trackingFor(ctx context.Context, file *component.Component) (*Tracking, error) {
	if result, ok := s.precomputed[file.UUID]; ok {
		return result, nil
	}

	result, err := s.exec.Track(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("track %s: %w", file.Key, err)
	}

	return result, nil
}

func (s *TrackingStep) apply(ctx context.Context, file *component.Component, result *Tracking) error {
	if err := s.visitors.BeforeComponent(ctx, file); err != nil {
		return fmt.Errorf("before component: %w", err)
	}

	for _, pair := range result.Pairs() {
		s.lifecycle.MergeExistingOpenIssue(pair.Raw, pair.Base, pair.Closed)

		if err := s.emit(ctx, file, pair.Raw, true); err != nil {
			return err
		}
	}

	for _, raw := range result.UnmatchedRaws() {
		s.lifecycle.InitNewOpenIssue(raw)

		if err := s.emit(ctx, file, raw, false); err != nil {
			return err
		}
	}

	for _, base := range result.UnmatchedBases() {
		s.lifecycle.CloseIssue(base)

		if err := s.emit(ctx, file, base, false); err != nil {
			return err
		}
	}

	if err := s.visitors.AfterComponent(ctx, file); err != nil {
		return fmt.Errorf("after component: %w", err)
	}

	return nil
}

func (s *TrackingStep) emit(ctx context.Context, file *component.Component, is *Issue, matched bool) error {
	if err := s.visitors.OnIssue(ctx, file, is); err != nil {
		return fmt.Errorf("issue on line %d: %w", is.Line(), err)
	}

	s.cache.Add(file, is, matched)

	return nil
}

func fileStats(before, after Summary, result *Tracking) observability.FileStats {
	byStrategy := make(map[string]int)
	for strategy, count := range result.CountByStrategy() {
		byStrategy[strategy.String()] = count
	}

	return observability.FileStats{
		New:        after.New - before.New,
		Matched:    after.Matched - before.Matched,
		Reopened:   after.Reopened - before.Reopened,
		Closed:     after.Closed - before.Closed,
		Backdated:  after.Backdated - before.Backdated,
		ByStrategy: byStrategy,
	}
}
