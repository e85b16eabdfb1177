package component

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrUnsupportedVisitor is returned for a registration that carries no
// visitor of a known kind, or an invalid order.
var ErrUnsupportedVisitor = errors.New("unsupported visitor")

// VisitError reports the component whose visit failed.
type VisitError struct {
	Key  string
	Type Type
	Err  error
}

func (e *VisitError) Error() string {
	return fmt.Sprintf("visit of component {key=%s,type=%s} failed: %v", e.Key, e.Type, e.Err)
}

func (e *VisitError) Unwrap() error {
	return e.Err
}

// wrapVisitError keeps an existing VisitError so the innermost component is reported.
func wrapVisitError(c *Component, err error) error {
	var visitErr *VisitError
	if errors.As(err, &visitErr) {
		return err
	}

	return &VisitError{Key: c.Key, Type: c.Type, Err: err}
}

// Crawler drives registered visitors over a component tree. It is not safe
// for concurrent use: visitors keep per-run state.
type Crawler struct {
	registrations []Registration
	logger        *slog.Logger

	computeDurations bool
	durations        []time.Duration
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithDurations makes the crawler accumulate the time spent in each visitor.
func WithDurations() Option {
	return func(c *Crawler) {
		c.computeDurations = true
	}
}

// WithLogger sets the crawler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// NewCrawler validates the registrations and returns a crawler calling them
// in the given order.
func NewCrawler(registrations []Registration, opts ...Option) (*Crawler, error) {
	for _, reg := range registrations {
		if err := validateRegistration(reg); err != nil {
			return nil, err
		}
	}

	crawler := &Crawler{
		registrations: registrations,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(crawler)
	}

	if crawler.computeDurations {
		crawler.durations = make([]time.Duration, len(registrations))
	}

	return crawler, nil
}

func validateRegistration(reg Registration) error {
	switch reg.Kind {
	case KindTypeAware:
		if reg.typeAware == nil {
			return fmt.Errorf("%w: %q has no type-aware visitor", ErrUnsupportedVisitor, reg.Name)
		}
	case KindPathAware:
		if reg.pathAware == nil {
			return fmt.Errorf("%w: %q has no path-aware visitor", ErrUnsupportedVisitor, reg.Name)
		}
	default:
		return fmt.Errorf("%w: %q has kind %d", ErrUnsupportedVisitor, reg.Name, reg.Kind)
	}

	if reg.Order != PreOrder && reg.Order != PostOrder {
		return fmt.Errorf("%w: %q has order %s", ErrUnsupportedVisitor, reg.Name, reg.Order)
	}

	return nil
}

// Visit crawls the tree rooted at root. The first visitor error aborts the
// crawl and is returned as a *VisitError naming the failing component.
func (c *Crawler) Visit(ctx context.Context, root *Component) error {
	if root == nil {
		return nil
	}

	return c.visitNode(ctx, root)
}

// CumulativeDurations returns the time spent in each visitor, keyed by
// registration name. It is empty unless the crawler was built WithDurations.
func (c *Crawler) CumulativeDurations() map[string]time.Duration {
	out := make(map[string]time.Duration, len(c.durations))

	for idx, duration := range c.durations {
		out[c.registrations[idx].Name] += duration
	}

	return out
}

func (c *Crawler) visitNode(ctx context.Context, node *Component) error {
	if err := ctx.Err(); err != nil {
		return wrapVisitError(node, err)
	}

	admitted := make([]int, 0, len(c.registrations))

	for idx, reg := range c.registrations {
		if reg.Depth.Admits(node.Type) {
			admitted = append(admitted, idx)
		}
	}

	// Deeper nodes cannot admit more visitors than their parent.
	if len(admitted) == 0 {
		return nil
	}

	c.logger.DebugContext(ctx, "visit component",
		"key", node.Key, "type", node.Type.String(), "visitors", len(admitted))

	for _, idx := range admitted {
		if reg := c.registrations[idx]; reg.Kind == KindPathAware {
			reg.pathAware.enter(node)
		}
	}

	defer func() {
		for _, idx := range admitted {
			if reg := c.registrations[idx]; reg.Kind == KindPathAware {
				reg.pathAware.leave()
			}
		}
	}()

	if err := c.runPhase(ctx, node, admitted, PreOrder); err != nil {
		return err
	}

	for _, child := range node.Children {
		if err := c.visitNode(ctx, child); err != nil {
			return wrapVisitError(node, err)
		}
	}

	return c.runPhase(ctx, node, admitted, PostOrder)
}

func (c *Crawler) runPhase(ctx context.Context, node *Component, admitted []int, order Order) error {
	for _, idx := range admitted {
		reg := c.registrations[idx]
		if reg.Order != order {
			continue
		}

		start := time.Now()
		err := c.dispatch(ctx, node, reg)

		if c.computeDurations {
			c.durations[idx] += time.Since(start)
		}

		if err != nil {
			return wrapVisitError(node, fmt.Errorf("%s: %w", reg.Name, err))
		}
	}

	return nil
}

func (c *Crawler) dispatch(ctx context.Context, node *Component, reg Registration) error {
	switch reg.Kind {
	case KindTypeAware:
		return visitTypeAware(ctx, node, reg.typeAware)
	case KindPathAware:
		return reg.pathAware.visit(ctx, node)
	default:
		return fmt.Errorf("%w: kind %d", ErrUnsupportedVisitor, reg.Kind)
	}
}

func visitTypeAware(ctx context.Context, node *Component, visitor TypeAwareVisitor) error {
	if err := visitor.VisitAny(ctx, node); err != nil {
		return err
	}

	switch node.Type {
	case TypeProject:
		return visitor.VisitProject(ctx, node)
	case TypeDirectory:
		return visitor.VisitDirectory(ctx, node)
	case TypeFile:
		return visitor.VisitFile(ctx, node)
	case TypeView:
		return visitor.VisitView(ctx, node)
	case TypeSubView:
		return visitor.VisitSubView(ctx, node)
	case TypeProjectView:
		return visitor.VisitProjectView(ctx, node)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownType, node.Type)
	}
}
