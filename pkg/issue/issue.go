package issue

import (
	"time"

	"github.com/Sumatoshi-tech/issuetrack/pkg/tracking"
)

// Issue statuses.
const (
	StatusOpen      = "OPEN"
	StatusConfirmed = "CONFIRMED"
	StatusReopened  = "REOPENED"
	StatusResolved  = "RESOLVED"
	StatusClosed    = tracking.StatusClosed
)

// Issue resolutions.
const (
	ResolutionFixed         = "FIXED"
	ResolutionFalsePositive = "FALSE-POSITIVE"
	ResolutionWontFix       = "WONTFIX"
	ResolutionRemoved       = "REMOVED"
)

// Issue is a raw or a base issue. Raw issues come from the running analysis,
// base issues from a previous analysis or the target branch.
type Issue struct {
	key           string
	rule          tracking.RuleKey
	componentUUID string
	line          int
	lineHash      string
	message       string
	severity      string
	textRange     *TextRange
	flows         [][]Location

	status     string
	resolution string
	assignee   string

	creationDate time.Time
	updateDate   time.Time
	closeDate    time.Time

	isNew        bool
	copied       bool
	changed      bool
	beingClosed  bool
	manualReopen bool

	diffs []FieldDiff
}

var _ tracking.Trackable = (*Issue)(nil)

// New creates an open issue of rule on the given component.
func New(rule tracking.RuleKey, componentUUID string) *Issue {
	return &Issue{rule: rule, componentUUID: componentUUID, status: StatusOpen}
}

// Key returns the issue identity, empty until assigned.
func (i *Issue) Key() string { return i.key }

// RuleKey returns the rule that raised the issue.
func (i *Issue) RuleKey() tracking.RuleKey { return i.rule }

// ComponentUUID returns the component the issue belongs to.
func (i *Issue) ComponentUUID() string { return i.componentUUID }

// Line returns the primary line, 0 when the issue is on the whole file.
func (i *Issue) Line() int { return i.line }

// LineHash returns the checksum of the primary line.
func (i *Issue) LineHash() string { return i.lineHash }

// Message returns the issue message.
func (i *Issue) Message() string { return i.message }

// Severity returns the issue severity.
func (i *Issue) Severity() string { return i.severity }

// Status returns the workflow status.
func (i *Issue) Status() string { return i.status }

// Resolution returns the resolution, empty for unresolved issues.
func (i *Issue) Resolution() string { return i.resolution }

// Assignee returns the assignee login.
func (i *Issue) Assignee() string { return i.assignee }

// TextRange returns the primary location, nil when absent.
func (i *Issue) TextRange() *TextRange { return i.textRange }

// Flows returns the secondary locations.
func (i *Issue) Flows() [][]Location { return i.flows }

// CreationDate returns when the issue was introduced.
func (i *Issue) CreationDate() time.Time { return i.creationDate }

// UpdateDate returns when the issue last changed.
func (i *Issue) UpdateDate() time.Time { return i.updateDate }

// CloseDate returns when the issue was closed.
func (i *Issue) CloseDate() time.Time { return i.closeDate }

// IsNew reports whether the issue was first detected by this analysis.
func (i *Issue) IsNew() bool { return i.isNew }

// IsCopied reports whether the issue identity was taken from another branch.
func (i *Issue) IsCopied() bool { return i.copied }

// IsChanged reports whether the issue differs from its stored state.
func (i *Issue) IsChanged() bool { return i.changed }

// IsBeingClosed reports whether this analysis closes the issue.
func (i *Issue) IsBeingClosed() bool { return i.beingClosed }

// IsManualReopen reports whether the issue status is managed outside tracking.
func (i *Issue) IsManualReopen() bool { return i.manualReopen }

// Diffs returns the field changes recorded during this analysis.
func (i *Issue) Diffs() []FieldDiff { return i.diffs }

// IsClosed reports whether the status is CLOSED.
func (i *Issue) IsClosed() bool { return i.status == StatusClosed }

// SetKey sets the issue identity.
func (i *Issue) SetKey(key string) *Issue {
	i.key = key

	return i
}

// SetLine sets the primary line.
func (i *Issue) SetLine(line int) *Issue {
	i.line = line

	return i
}

// SetLineHash sets the checksum of the primary line.
func (i *Issue) SetLineHash(hash string) *Issue {
	i.lineHash = hash

	return i
}

// SetMessage sets the message.
func (i *Issue) SetMessage(message string) *Issue {
	i.message = message

	return i
}

// SetSeverity sets the severity.
func (i *Issue) SetSeverity(severity string) *Issue {
	i.severity = severity

	return i
}

// SetTextRange sets the primary location.
func (i *Issue) SetTextRange(r *TextRange) *Issue {
	i.textRange = r

	return i
}

// SetFlows sets the secondary locations.
func (i *Issue) SetFlows(flows [][]Location) *Issue {
	i.flows = flows

	return i
}

// SetStatus sets the status without recording a change.
func (i *Issue) SetStatus(status string) *Issue {
	i.status = status

	return i
}

// SetResolution sets the resolution without recording a change.
func (i *Issue) SetResolution(resolution string) *Issue {
	i.resolution = resolution

	return i
}

// SetAssignee sets the assignee.
func (i *Issue) SetAssignee(assignee string) *Issue {
	i.assignee = assignee

	return i
}

// SetCreationDate sets the creation date without recording a change.
func (i *Issue) SetCreationDate(date time.Time) *Issue {
	i.creationDate = date

	return i
}

// SetUpdateDate sets the update date.
func (i *Issue) SetUpdateDate(date time.Time) *Issue {
	i.updateDate = date

	return i
}

// SetCloseDate sets the close date.
func (i *Issue) SetCloseDate(date time.Time) *Issue {
	i.closeDate = date

	return i
}

// SetNew flags the issue as first detected by this analysis.
func (i *Issue) SetNew(isNew bool) *Issue {
	i.isNew = isNew

	return i
}

// SetCopied flags the issue identity as taken from another branch.
func (i *Issue) SetCopied(copied bool) *Issue {
	i.copied = copied

	return i
}

// SetChanged flags the issue as differing from its stored state.
func (i *Issue) SetChanged(changed bool) *Issue {
	i.changed = changed

	return i
}

// SetBeingClosed flags the issue as closed by this analysis.
func (i *Issue) SetBeingClosed(closing bool) *Issue {
	i.beingClosed = closing

	return i
}

// SetManualReopen marks the issue status as managed outside tracking.
func (i *Issue) SetManualReopen(manual bool) *Issue {
	i.manualReopen = manual

	return i
}

func (i *Issue) addDiff(diff FieldDiff) {
	i.diffs = append(i.diffs, diff)
}

func (i *Issue) hasDiff(field string) bool {
	for _, diff := range i.diffs {
		if diff.Field == field {
			return true
		}
	}

	return false
}
