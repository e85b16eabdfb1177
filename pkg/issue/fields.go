package issue

import "time"

// Field names recorded in FieldDiff.
const (
	FieldCreationDate = "creationDate"
	FieldStatus       = "status"
	FieldResolution   = "resolution"
	FieldLine         = "line"
	FieldMessage      = "message"
)

// ChangeContext describes who changes an issue and when.
type ChangeContext struct {
	Date time.Time
	// Scan is set for changes made by the analysis itself.
	Scan bool
	User string
}

// ScanChangeContext returns the context of changes made by an analysis run at date.
func ScanChangeContext(date time.Time) ChangeContext {
	return ChangeContext{Date: date, Scan: true}
}

// FieldDiff is one recorded field change.
type FieldDiff struct {
	Field    string
	OldValue string
	NewValue string
	Date     time.Time
}

// FieldsSetter updates issue fields and records the changes worth keeping
// in the issue history.
type FieldsSetter struct{}

// NewFieldsSetter creates a FieldsSetter.
func NewFieldsSetter() *FieldsSetter {
	return &FieldsSetter{}
}

// SetCreationDate moves the creation date to date. It reports false and
// leaves the issue untouched when the dates match at second precision.
func (s *FieldsSetter) SetCreationDate(is *Issue, date time.Time, ctx ChangeContext) bool {
	if !is.creationDate.IsZero() && is.creationDate.Truncate(time.Second).Equal(date.Truncate(time.Second)) {
		return false
	}

	is.addDiff(FieldDiff{
		Field:    FieldCreationDate,
		OldValue: formatDate(is.creationDate),
		NewValue: formatDate(date),
		Date:     ctx.Date,
	})
	is.creationDate = date
	is.updateDate = ctx.Date
	is.changed = true

	return true
}

// SetStatus changes the status and records the change.
func (s *FieldsSetter) SetStatus(is *Issue, status string, ctx ChangeContext) bool {
	if is.status == status {
		return false
	}

	s.record(is, FieldStatus, is.status, status, ctx)
	is.status = status

	return true
}

// SetResolution changes the resolution and records the change.
func (s *FieldsSetter) SetResolution(is *Issue, resolution string, ctx ChangeContext) bool {
	if is.resolution == resolution {
		return false
	}

	s.record(is, FieldResolution, is.resolution, resolution, ctx)
	is.resolution = resolution

	return true
}

// SetCloseDate changes the close date. Close dates are not kept in history.
func (s *FieldsSetter) SetCloseDate(is *Issue, date time.Time) bool {
	if is.closeDate.Equal(date) {
		return false
	}

	is.closeDate = date
	is.changed = true

	return true
}

func (s *FieldsSetter) record(is *Issue, field, oldValue, newValue string, ctx ChangeContext) {
	is.addDiff(FieldDiff{Field: field, OldValue: oldValue, NewValue: newValue, Date: ctx.Date})
	is.updateDate = ctx.Date
	is.changed = true
}

func formatDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}

	return date.UTC().Format(time.RFC3339)
}
