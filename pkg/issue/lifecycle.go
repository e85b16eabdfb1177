package issue

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Lifecycle applies the outcome of tracking to issues: fresh identity for
// new issues, carried-over identity for matched ones, closing for
// disappeared ones.
type Lifecycle struct {
	setter  *FieldsSetter
	context ChangeContext
	newKey  func() string
}

// NewLifecycle creates a Lifecycle for changes made in ctx.
func NewLifecycle(setter *FieldsSetter, ctx ChangeContext) *Lifecycle {
	return &Lifecycle{setter: setter, context: ctx, newKey: uuid.NewString}
}

// InitNewOpenIssue gives a raw issue without a base its identity.
func (l *Lifecycle) InitNewOpenIssue(raw *Issue) {
	raw.key = l.newKey()
	raw.status = StatusOpen
	raw.resolution = ""
	raw.creationDate = l.context.Date
	raw.updateDate = l.context.Date
	raw.isNew = true
	raw.changed = true
}

// MergeExistingOpenIssue carries the identity and workflow state of base
// over to raw. A base picked up from closed issues, or one resolved as
// fixed, is reopened.
func (l *Lifecycle) MergeExistingOpenIssue(raw, base *Issue, closed bool) {
	raw.key = base.key
	raw.isNew = false
	raw.creationDate = base.creationDate
	raw.updateDate = base.updateDate
	raw.closeDate = base.closeDate
	raw.status = base.status
	raw.resolution = base.resolution
	raw.assignee = base.assignee
	raw.manualReopen = base.manualReopen
	raw.diffs = nil

	if raw.line != base.line {
		l.setter.record(raw, FieldLine, lineString(base.line), lineString(raw.line), l.context)
	}

	if raw.message != base.message {
		l.setter.record(raw, FieldMessage, base.message, raw.message, l.context)
	}

	if closed || (base.status == StatusResolved && base.resolution == ResolutionFixed) {
		l.reopen(raw)
	}
}

// CloseIssue closes a base issue that no raw issue matched. Issues whose
// status is managed outside tracking are left untouched; ok is false then.
func (l *Lifecycle) CloseIssue(base *Issue) (ok bool) {
	if base.manualReopen || base.status == StatusClosed {
		return false
	}

	l.setter.SetStatus(base, StatusClosed, l.context)
	l.setter.SetResolution(base, ResolutionFixed, l.context)
	l.setter.SetCloseDate(base, l.context.Date)
	base.beingClosed = true

	return true
}

func (l *Lifecycle) reopen(is *Issue) {
	l.setter.SetStatus(is, StatusReopened, l.context)
	l.setter.SetResolution(is, "", l.context)
	l.setter.SetCloseDate(is, time.Time{})
}

func lineString(line int) string {
	if line <= 0 {
		return ""
	}

	return strconv.Itoa(line)
}
