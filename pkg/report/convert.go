package report

import (
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/issuetrack/pkg/issue"
	"github.com/Sumatoshi-tech/issuetrack/pkg/tracking"
)

// lineCounts maps file uuids to the line count of their current source.
type lineCounts map[string]int

func lineCountsOf(n *Node, counts lineCounts) lineCounts {
	if n == nil {
		return counts
	}

	if n.File != nil {
		counts[n.UUID] = sequence(n.File.LineHashes, n.File.Source).Length()
	}

	for _, child := range n.Children {
		lineCountsOf(child, counts)
	}

	return counts
}

func issues(
	set, componentUUID string, docs []Issue, hashes *tracking.LineHashSequence, counts lineCounts,
) ([]*issue.Issue, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	out := make([]*issue.Issue, 0, len(docs))

	for idx, doc := range docs {
		is, err := doc.toIssue(componentUUID, hashes, counts)
		if err != nil {
			return nil, fmt.Errorf("%w: %s issue %d: %w", ErrInvalidReport, set, idx, err)
		}

		out = append(out, is)
	}

	return out, nil
}

// toIssue converts d. Ranges are clamped to the line count of the file they
// point at: hashes for the issue's own file, counts for other files.
func (d Issue) toIssue(componentUUID string, hashes *tracking.LineHashSequence, counts lineCounts) (*issue.Issue, error) {
	rule, err := tracking.ParseRuleKey(d.Rule)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by issues.
	}

	is := issue.New(rule, componentUUID).
		SetKey(d.Key).
		SetLine(d.Line).
		SetMessage(d.Message).
		SetSeverity(d.Severity).
		SetResolution(d.Resolution).
		SetAssignee(d.Assignee).
		SetManualReopen(d.ManualReopen)

	if d.Status != "" {
		is.SetStatus(d.Status)
	}

	lineHash := d.LineHash
	if lineHash == "" && d.Line > 0 {
		lineHash = hashes.HashForLine(d.Line)
	}

	is.SetLineHash(lineHash)

	lineCount := func(uuid string) int {
		if uuid == "" || uuid == componentUUID {
			return hashes.Length()
		}

		return counts[uuid]
	}

	if d.TextRange != nil {
		textRange := d.TextRange.toTextRange().Clamp(hashes.Length())
		is.SetTextRange(&textRange)
	}

	if len(d.Flows) > 0 {
		is.SetFlows(flows(d.Flows, lineCount))
	}

	creation, err := parseIssueDate(d.CreationDate)
	if err != nil {
		return nil, fmt.Errorf("creation_date: %w", err)
	}

	update, err := parseIssueDate(d.UpdateDate)
	if err != nil {
		return nil, fmt.Errorf("update_date: %w", err)
	}

	closed, err := parseIssueDate(d.CloseDate)
	if err != nil {
		return nil, fmt.Errorf("close_date: %w", err)
	}

	is.SetCreationDate(creation).SetUpdateDate(update).SetCloseDate(closed)

	return is, nil
}

func parseIssueDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	return time.Parse(time.RFC3339, value) //nolint:wrapcheck // wrapped with the field name.
}

func (r Range) toTextRange() issue.TextRange {
	return issue.TextRange{StartLine: r.StartLine, EndLine: r.EndLine}
}

func flows(docs [][]Location, lineCount func(uuid string) int) [][]issue.Location {
	out := make([][]issue.Location, 0, len(docs))

	for _, flow := range docs {
		locations := make([]issue.Location, 0, len(flow))

		for _, loc := range flow {
			locations = append(locations, issue.Location{
				ComponentUUID: loc.Component,
				TextRange:     loc.TextRange.toTextRange().Clamp(lineCount(loc.Component)),
				Message:       loc.Message,
			})
		}

		out = append(out, locations)
	}

	return out
}
