package issue

import (
	"context"

	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
)

// Visitor is called for every issue of a component once tracking is applied.
type Visitor interface {
	BeforeComponent(ctx context.Context, c *component.Component) error
	OnIssue(ctx context.Context, c *component.Component, is *Issue) error
	AfterComponent(ctx context.Context, c *component.Component) error
}

// VisitorAdapter implements Visitor with no-ops.
type VisitorAdapter struct{}

// BeforeComponent does nothing.
func (VisitorAdapter) BeforeComponent(context.Context, *component.Component) error { return nil }

// OnIssue does nothing.
func (VisitorAdapter) OnIssue(context.Context, *component.Component, *Issue) error { return nil }

// AfterComponent does nothing.
func (VisitorAdapter) AfterComponent(context.Context, *component.Component) error { return nil }

// Visitors calls each visitor in order and stops at the first error.
type Visitors []Visitor

// BeforeComponent calls BeforeComponent on every visitor.
func (vs Visitors) BeforeComponent(ctx context.Context, c *component.Component) error {
	for _, v := range vs {
		if err := v.BeforeComponent(ctx, c); err != nil {
			return err
		}
	}

	return nil
}

// OnIssue calls OnIssue on every visitor.
func (vs Visitors) OnIssue(ctx context.Context, c *component.Component, is *Issue) error {
	for _, v := range vs {
		if err := v.OnIssue(ctx, c, is); err != nil {
			return err
		}
	}

	return nil
}

// AfterComponent calls AfterComponent on every visitor.
func (vs Visitors) AfterComponent(ctx context.Context, c *component.Component) error {
	for _, v := range vs {
		if err := v.AfterComponent(ctx, c); err != nil {
			return err
		}
	}

	return nil
}
