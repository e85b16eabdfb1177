package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/issuetrack/pkg/analysis"
	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
	"github.com/Sumatoshi-tech/issuetrack/pkg/issue"
	"github.com/Sumatoshi-tech/issuetrack/pkg/scm"
	"github.com/Sumatoshi-tech/issuetrack/pkg/source"
	"github.com/Sumatoshi-tech/issuetrack/pkg/tracking"
)

const pullRequestType = "PULL_REQUEST"

type fileInputs struct {
	raw    []*issue.Issue
	base   []*issue.Issue
	closed []*issue.Issue
	target []*issue.Issue

	hasTarget  bool
	hasChanged bool
	changed    source.LineSet

	current   *tracking.LineHashSequence
	previous  *tracking.LineHashSequence
	reference *tracking.LineHashSequence

	scm *scm.Info

	currentSource   string
	referenceSource *string
}

// Project is a report resolved into tracking collaborators. It implements
// issue.InputFactory, issue.TargetInputFactory, source.ChangedLinesReader,
// source.Snapshots and scm.Reader.
type Project struct {
	Metadata *analysis.Metadata
	Root     *component.Component

	files map[string]*fileInputs
}

var (
	_ issue.InputFactory        = (*Project)(nil)
	_ issue.TargetInputFactory  = (*Project)(nil)
	_ source.ChangedLinesReader = (*Project)(nil)
	_ source.Snapshots          = (*Project)(nil)
	_ scm.Reader                = (*Project)(nil)
)

// Build resolves the report. It fails with ErrInvalidReport on duplicate
// component uuids, unknown types, malformed rules or dates, and file data
// attached to a non-FILE node.
func (r *Report) Build() (*Project, error) {
	metadata, err := r.metadata()
	if err != nil {
		return nil, err
	}

	project := &Project{Metadata: metadata, files: make(map[string]*fileInputs)}

	b := &builder{project: project, seen: make(map[string]bool), counts: lineCountsOf(r.Root, make(lineCounts))}

	project.Root, err = b.node(r.Root)
	if err != nil {
		return nil, err
	}

	return project, nil
}

func (r *Report) metadata() (*analysis.Metadata, error) {
	if r.Root == nil {
		return nil, fmt.Errorf("%w: missing root component", ErrInvalidReport)
	}

	date, err := parseDate("analysis_date", r.AnalysisDate)
	if err != nil {
		return nil, err
	}

	metadata := &analysis.Metadata{
		Date:     date,
		Project:  r.Project,
		Revision: r.Revision,
		Current: analysis.Branch{
			Name:             r.Branch.Name,
			TargetBranchName: r.Branch.Target,
			PullRequestKey:   r.Branch.PullRequest,
			IsMain:           r.Branch.Main,
		},
	}

	if r.Branch.Type == pullRequestType {
		metadata.Current.Type = analysis.BranchTypePullRequest
	}

	if r.BaseAnalysis != nil {
		created, err := parseDate("base_analysis.created_at", r.BaseAnalysis.CreatedAt)
		if err != nil {
			return nil, err
		}

		metadata.Base = &analysis.Analysis{UUID: r.BaseAnalysis.UUID, CreatedAt: created}
	}

	return metadata, nil
}

type builder struct {
	project *Project
	seen    map[string]bool
	counts  lineCounts
	nextRef int
}

func (b *builder) node(n *Node) (*component.Component, error) {
	if b.seen[n.UUID] {
		return nil, fmt.Errorf("%w: duplicate component uuid %q", ErrInvalidReport, n.UUID)
	}

	b.seen[n.UUID] = true

	typ, err := component.ParseType(n.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: component %s: %w", ErrInvalidReport, n.Key, err)
	}

	status, err := component.ParseStatus(n.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: component %s: %w", ErrInvalidReport, n.Key, err)
	}

	comp := &component.Component{
		UUID:   n.UUID,
		Key:    n.Key,
		Name:   n.Name,
		Type:   typ,
		Status: status,
		Path:   n.Path,
	}

	if n.File != nil {
		if typ != component.TypeFile {
			return nil, fmt.Errorf("%w: component %s: file data on a %s", ErrInvalidReport, n.Key, typ)
		}

		inputs, err := fileInputsFrom(n.UUID, n.File, b.counts)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", n.Key, err)
		}

		b.project.files[n.UUID] = inputs
	}

	if typ == component.TypeFile {
		b.nextRef++
		comp.ReportRef = b.nextRef
	}

	for _, child := range n.Children {
		childComp, err := b.node(child)
		if err != nil {
			return nil, err
		}

		comp.Children = append(comp.Children, childComp)
	}

	return comp, nil
}

func fileInputsFrom(uuid string, f *File, counts lineCounts) (*fileInputs, error) {
	inputs := &fileInputs{
		hasTarget:       f.Target != nil,
		hasChanged:      f.ChangedLines != nil,
		changed:         source.NewLineSet(f.ChangedLines...),
		current:         sequence(f.LineHashes, f.Source),
		previous:        sequence(nil, f.PreviousSource),
		currentSource:   f.Source,
		referenceSource: f.ReferenceSource,
	}

	if f.ReferenceSource != nil {
		inputs.reference = sequence(nil, *f.ReferenceSource)
	} else {
		inputs.reference = inputs.current
	}

	var err error

	if inputs.raw, err = issues("raw", uuid, f.Raw, inputs.current, counts); err != nil {
		return nil, err
	}

	if inputs.base, err = issues("base", uuid, f.Base, inputs.previous, counts); err != nil {
		return nil, err
	}

	if inputs.closed, err = issues("closed", uuid, f.Closed, inputs.previous, counts); err != nil {
		return nil, err
	}

	if inputs.target, err = issues("target", uuid, f.Target, inputs.reference, counts); err != nil {
		return nil, err
	}

	if inputs.scm, err = scmInfo(f.Scm); err != nil {
		return nil, err
	}

	return inputs, nil
}

func sequence(hashes []string, content string) *tracking.LineHashSequence {
	if hashes == nil && content != "" {
		hashes = source.ComputeLineHashes(content)
	}

	return tracking.NewLineHashSequence(hashes)
}

func scmInfo(changesets []Changeset) (*scm.Info, error) {
	if len(changesets) == 0 {
		return nil, nil
	}

	byLine := make(map[int]scm.Changeset, len(changesets))

	for _, cs := range changesets {
		date, err := parseDate(fmt.Sprintf("scm line %d", cs.Line), cs.Date)
		if err != nil {
			return nil, err
		}

		byLine[cs.Line] = scm.Changeset{Revision: cs.Revision, Author: cs.Author, Date: date}
	}

	info, err := scm.NewInfo(byLine)
	if err != nil {
		return nil, fmt.Errorf("scm: %w", err)
	}

	return info, nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	date, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrInvalidReport, field, err)
	}

	return date, nil
}

// Raw returns the issues raised by the running analysis on c.
func (p *Project) Raw(_ context.Context, c *component.Component) (issue.Input, error) {
	f := p.files[c.UUID]
	if f == nil {
		return tracking.NewInput[*issue.Issue](nil, nil, nil), nil
	}

	return tracking.NewInput(f.raw, f.current, nil), nil
}

// Base returns the open issues of c at the base analysis.
func (p *Project) Base(_ context.Context, c *component.Component) (issue.Input, error) {
	f := p.files[c.UUID]
	if f == nil {
		return tracking.NewInput[*issue.Issue](nil, nil, nil), nil
	}

	return tracking.NewInput(f.base, f.previous, nil), nil
}

// Closed returns the closed issues of c at the base analysis.
func (p *Project) Closed(_ context.Context, c *component.Component) (issue.Input, error) {
	f := p.files[c.UUID]
	if f == nil {
		return tracking.NewInput[*issue.Issue](nil, nil, nil), nil
	}

	return tracking.NewInput(f.closed, f.previous, nil), nil
}

// Target returns the issues of c on the pull request target branch.
func (p *Project) Target(_ context.Context, c *component.Component) (issue.Input, bool, error) {
	f := p.files[c.UUID]
	if f == nil || !f.hasTarget {
		return nil, false, nil
	}

	return tracking.NewInput(f.target, f.reference, nil), true, nil
}

// ChangedLines returns the changed lines listed for file.
func (p *Project) ChangedLines(_ context.Context, file *component.Component) (source.LineSet, bool, error) {
	f := p.files[file.UUID]
	if f == nil || !f.hasChanged {
		return nil, false, nil
	}

	return f.changed, true, nil
}

// Snapshots returns the reference and current content of file.
func (p *Project) Snapshots(_ context.Context, file *component.Component) (string, string, bool, error) {
	f := p.files[file.UUID]
	if f == nil || f.referenceSource == nil {
		return "", "", false, nil
	}

	return *f.referenceSource, f.currentSource, true, nil
}

// Read returns the SCM attribution listed for file, nil when there is none.
func (p *Project) Read(_ context.Context, file *component.Component) (*scm.Info, error) {
	f := p.files[file.UUID]
	if f == nil {
		return nil, nil
	}

	return f.scm, nil
}
