// Package analysis holds the facts about the running analysis that select
// how issues are tracked: first analysis or not, branch or pull request.
package analysis

import (
	"time"

	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
)

// BranchType distinguishes long-lived branches from pull requests.
type BranchType uint8

// Branch types.
const (
	BranchTypeBranch BranchType = iota
	BranchTypePullRequest
)

func (t BranchType) String() string {
	if t == BranchTypePullRequest {
		return "PULL_REQUEST"
	}

	return "BRANCH"
}

// Branch describes what is being analysed.
type Branch struct {
	Name string
	Type BranchType
	// TargetBranchName is the branch a pull request merges into.
	TargetBranchName string
	PullRequestKey   string
	IsMain           bool
}

// Analysis is a past analysis of the same branch or pull request.
type Analysis struct {
	UUID      string
	CreatedAt time.Time
}

// MetadataHolder exposes the analysis flags read during tracking.
type MetadataHolder interface {
	AnalysisDate() time.Time
	IsFirstAnalysis() bool
	IsPullRequest() bool
	// BaseAnalysis returns the previous analysis, ok is false on a first analysis.
	BaseAnalysis() (base Analysis, ok bool)
	Branch() Branch
}

// Metadata is the plain MetadataHolder built from a report.
type Metadata struct {
	Date     time.Time
	Base     *Analysis
	Current  Branch
	Project  string
	Revision string
}

var _ MetadataHolder = (*Metadata)(nil)

// AnalysisDate returns the date of the running analysis.
func (m *Metadata) AnalysisDate() time.Time {
	return m.Date
}

// IsFirstAnalysis reports whether the branch has never been analysed before.
func (m *Metadata) IsFirstAnalysis() bool {
	return m.Base == nil
}

// IsPullRequest reports whether a pull request is analysed.
func (m *Metadata) IsPullRequest() bool {
	return m.Current.Type == BranchTypePullRequest
}

// BaseAnalysis returns the previous analysis.
func (m *Metadata) BaseAnalysis() (Analysis, bool) {
	if m.Base == nil {
		return Analysis{}, false
	}

	return *m.Base, true
}

// Branch returns the analysed branch.
func (m *Metadata) Branch() Branch {
	return m.Current
}

// AddedFileRepository tells whether a file is new in this analysis.
type AddedFileRepository struct {
	metadata MetadataHolder
}

// NewAddedFileRepository creates an AddedFileRepository.
func NewAddedFileRepository(metadata MetadataHolder) *AddedFileRepository {
	return &AddedFileRepository{metadata: metadata}
}

// IsAdded reports whether c is a file added since the base analysis.
// On a first analysis every file counts as added.
func (r *AddedFileRepository) IsAdded(c *component.Component) bool {
	if !c.IsFile() {
		return false
	}

	if r.metadata.IsFirstAnalysis() {
		return true
	}

	return c.Status == component.StatusAdded
}
