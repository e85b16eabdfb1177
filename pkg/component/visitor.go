package component

import "context"

// Order is the phase at which a visitor sees a node.
type Order uint8

// Traversal orders.
const (
	PreOrder Order = iota + 1
	PostOrder
)

func (o Order) String() string {
	switch o {
	case PreOrder:
		return "PRE_ORDER"
	case PostOrder:
		return "POST_ORDER"
	default:
		return "UNKNOWN"
	}
}

// TypeAwareVisitor receives one callback per node type. VisitAny is called
// first for every admitted node, then the method matching the node's type.
type TypeAwareVisitor interface {
	VisitAny(ctx context.Context, c *Component) error
	VisitProject(ctx context.Context, c *Component) error
	VisitDirectory(ctx context.Context, c *Component) error
	VisitFile(ctx context.Context, c *Component) error
	VisitView(ctx context.Context, c *Component) error
	VisitSubView(ctx context.Context, c *Component) error
	VisitProjectView(ctx context.Context, c *Component) error
}

// TypeAwareVisitorAdapter implements every TypeAwareVisitor method as a no-op.
// Embed it and override what is needed.
type TypeAwareVisitorAdapter struct{}

// VisitAny does nothing.
func (TypeAwareVisitorAdapter) VisitAny(context.Context, *Component) error { return nil }

// VisitProject does nothing.
func (TypeAwareVisitorAdapter) VisitProject(context.Context, *Component) error { return nil }

// VisitDirectory does nothing.
func (TypeAwareVisitorAdapter) VisitDirectory(context.Context, *Component) error { return nil }

// VisitFile does nothing.
func (TypeAwareVisitorAdapter) VisitFile(context.Context, *Component) error { return nil }

// VisitView does nothing.
func (TypeAwareVisitorAdapter) VisitView(context.Context, *Component) error { return nil }

// VisitSubView does nothing.
func (TypeAwareVisitorAdapter) VisitSubView(context.Context, *Component) error { return nil }

// VisitProjectView does nothing.
func (TypeAwareVisitorAdapter) VisitProjectView(context.Context, *Component) error { return nil }

// PathAwareVisitor sees each node together with the elements it built for
// the node's ancestors. NewElement is called when the crawler enters a node,
// before any visit of that node.
type PathAwareVisitor[T any] interface {
	NewElement(c *Component) T
	Visit(ctx context.Context, c *Component, path *Path[T]) error
}

// Path is the element stack of a PathAwareVisitor: the current node's
// element on top, then its parent's, up to the root's.
type Path[T any] struct {
	elements []T
}

// Current returns the element of the node being visited.
func (p *Path[T]) Current() T {
	return p.elements[len(p.elements)-1]
}

// Parent returns the element of the parent node. ok is false at the root.
func (p *Path[T]) Parent() (parent T, ok bool) {
	if len(p.elements) < 2 {
		return parent, false
	}

	return p.elements[len(p.elements)-2], true
}

// Root returns the element of the root node.
func (p *Path[T]) Root() T {
	return p.elements[0]
}

// Len returns the number of elements, i.e. the depth of the current node plus one.
func (p *Path[T]) Len() int {
	return len(p.elements)
}

// Ancestors returns parent-to-root elements. The slice is a copy.
func (p *Path[T]) Ancestors() []T {
	out := make([]T, 0, len(p.elements)-1)

	for idx := len(p.elements) - 2; idx >= 0; idx-- {
		out = append(out, p.elements[idx])
	}

	return out
}

func (p *Path[T]) push(element T) {
	p.elements = append(p.elements, element)
}

func (p *Path[T]) pop() {
	var zero T

	p.elements[len(p.elements)-1] = zero
	p.elements = p.elements[:len(p.elements)-1]
}

// Kind tags the visitor variant held by a Registration.
type Kind uint8

// Visitor kinds.
const (
	KindTypeAware Kind = iota + 1
	KindPathAware
)

// Registration is a visitor along with its depth limit and order. Build it
// with TypeAware or PathAware.
type Registration struct {
	Name  string
	Kind  Kind
	Depth DepthLimit
	Order Order

	typeAware TypeAwareVisitor
	pathAware pathDriver
}

// TypeAware registers a TypeAwareVisitor.
func TypeAware(name string, depth DepthLimit, order Order, v TypeAwareVisitor) Registration {
	return Registration{Name: name, Kind: KindTypeAware, Depth: depth, Order: order, typeAware: v}
}

// PathAware registers a PathAwareVisitor.
func PathAware[T any](name string, depth DepthLimit, order Order, v PathAwareVisitor[T]) Registration {
	return Registration{
		Name:      name,
		Kind:      KindPathAware,
		Depth:     depth,
		Order:     order,
		pathAware: &pathVisitorDriver[T]{visitor: v, path: &Path[T]{}},
	}
}

// pathDriver erases the element type of a PathAwareVisitor.
type pathDriver interface {
	enter(c *Component)
	visit(ctx context.Context, c *Component) error
	leave()
}

type pathVisitorDriver[T any] struct {
	visitor PathAwareVisitor[T]
	path    *Path[T]
}

func (d *pathVisitorDriver[T]) enter(c *Component) {
	d.path.push(d.visitor.NewElement(c))
}

func (d *pathVisitorDriver[T]) visit(ctx context.Context, c *Component) error {
	return d.visitor.Visit(ctx, c, d.path)
}

func (d *pathVisitorDriver[T]) leave() {
	d.path.pop()
}
