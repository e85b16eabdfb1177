package component

// DepthLimit is the deepest Type a visitor handles, one per tree.
// A limit admits a node whose type is the same as, or shallower than,
// the limit for the node's tree.
type DepthLimit struct {
	report Type
	views  Type
}

// Predefined limits.
var (
	DepthProject   = ReportMaxDepth(TypeProject).WithViewsMaxDepth(TypeView)
	DepthDirectory = ReportMaxDepth(TypeDirectory).WithViewsMaxDepth(TypeSubView)
	DepthFile      = ReportMaxDepth(TypeFile).WithViewsMaxDepth(TypeProjectView)
	DepthLeaves    = DepthFile
)

// ReportMaxDepth returns a limit for the report tree only. Views nodes are
// not admitted until WithViewsMaxDepth is applied.
func ReportMaxDepth(t Type) DepthLimit {
	if !t.IsReportType() {
		return DepthLimit{}
	}

	return DepthLimit{report: t}
}

// WithViewsMaxDepth returns a copy of d admitting views nodes down to t.
func (d DepthLimit) WithViewsMaxDepth(t Type) DepthLimit {
	if t.IsViewsType() {
		d.views = t
	}

	return d
}

func (d DepthLimit) limitFor(t Type) (Type, bool) {
	switch {
	case t.IsReportType() && d.report != 0:
		return d.report, true
	case t.IsViewsType() && d.views != 0:
		return d.views, true
	default:
		return 0, false
	}
}

// IsSameAs reports whether t is exactly the limit of its tree.
func (d DepthLimit) IsSameAs(t Type) bool {
	limit, ok := d.limitFor(t)

	return ok && limit == t
}

// IsDeeperThan reports whether the limit of t's tree lies below t.
func (d DepthLimit) IsDeeperThan(t Type) bool {
	limit, ok := d.limitFor(t)

	return ok && limit.Rank() > t.Rank()
}

// IsHigherThan reports whether the limit of t's tree lies above t.
func (d DepthLimit) IsHigherThan(t Type) bool {
	limit, ok := d.limitFor(t)

	return ok && limit.Rank() < t.Rank()
}

// Admits reports whether a visitor with this limit visits nodes of type t.
func (d DepthLimit) Admits(t Type) bool {
	return d.IsSameAs(t) || d.IsDeeperThan(t)
}

func (d DepthLimit) String() string {
	return "report=" + d.report.String() + ",views=" + d.views.String()
}
