package component

import (
	"errors"
	"fmt"
	"strings"
)

// Type is the closed set of component kinds.
type Type uint8

// Component types. The zero value is invalid.
const (
	TypeProject Type = iota + 1
	TypeDirectory
	TypeFile
	TypeView
	TypeSubView
	TypeProjectView
)

type tree uint8

const (
	treeNone tree = iota
	treeReport
	treeViews
)

type typeInfo struct {
	name string
	tree tree
	rank int
}

// types is the rank table. Deeper nodes have a higher rank within their tree.
var types = [...]typeInfo{
	{name: "UNKNOWN", tree: treeNone},
	TypeProject:     {name: "PROJECT", tree: treeReport, rank: 0},
	TypeDirectory:   {name: "DIRECTORY", tree: treeReport, rank: 1},
	TypeFile:        {name: "FILE", tree: treeReport, rank: 2},
	TypeView:        {name: "VIEW", tree: treeViews, rank: 0},
	TypeSubView:     {name: "SUBVIEW", tree: treeViews, rank: 1},
	TypeProjectView: {name: "PROJECT_VIEW", tree: treeViews, rank: 2},
}

// ErrUnknownType is returned when parsing an unrecognized component type.
var ErrUnknownType = errors.New("unknown component type")

func (t Type) info() typeInfo {
	if int(t) >= len(types) {
		return types[0]
	}

	return types[t]
}

func (t Type) String() string {
	return t.info().name
}

// IsReportType reports whether t belongs to the report tree.
func (t Type) IsReportType() bool {
	return t.info().tree == treeReport
}

// IsViewsType reports whether t belongs to the views tree.
func (t Type) IsViewsType() bool {
	return t.info().tree == treeViews
}

// Rank returns the depth of t inside its tree, 0 being the root.
func (t Type) Rank() int {
	return t.info().rank
}

// ParseType parses the upper-case name of a component type, case-insensitively.
func ParseType(s string) (Type, error) {
	name := strings.ToUpper(strings.TrimSpace(s))

	for idx := 1; idx < len(types); idx++ {
		if types[idx].name == name {
			return Type(idx), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Status is the change status of a component relative to the previous analysis.
type Status uint8

// Component statuses.
const (
	StatusUnavailable Status = iota
	StatusSame
	StatusChanged
	StatusAdded
)

var statusNames = [...]string{"UNAVAILABLE", "SAME", "CHANGED", "ADDED"}

// ErrUnknownStatus is returned when parsing an unrecognized component status.
var ErrUnknownStatus = errors.New("unknown component status")

func (s Status) String() string {
	if int(s) >= len(statusNames) {
		return statusNames[StatusUnavailable]
	}

	return statusNames[s]
}

// ParseStatus parses a component status. An empty string is StatusUnavailable.
func ParseStatus(s string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" {
		return StatusUnavailable, nil
	}

	for idx, candidate := range statusNames {
		if candidate == name {
			return Status(idx), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}
