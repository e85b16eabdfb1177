package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/issuetrack/pkg/analysis"
	"github.com/Sumatoshi-tech/issuetrack/pkg/issue"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// Output is the JSON document printed by track --format json.
type Output struct {
	Project      string        `json:"project"`
	AnalysisDate time.Time     `json:"analysis_date"`
	Mode         string        `json:"mode"`
	Summary      issue.Summary `json:"summary"`
	Issues       []OutputIssue `json:"issues"`
}

// OutputIssue is one tracked issue.
type OutputIssue struct {
	Key          string    `json:"key"`
	Component    string    `json:"component"`
	Rule         string    `json:"rule"`
	Line         int       `json:"line,omitempty"`
	Message      string    `json:"message,omitempty"`
	Status       string    `json:"status"`
	Resolution   string    `json:"resolution,omitempty"`
	Outcome      string    `json:"outcome"`
	CreationDate time.Time `json:"creation_date"`
	CloseDate    time.Time `json:"close_date,omitzero"`
}

func render(w io.Writer, format string, md *analysis.Metadata, cache *issue.Cache) error {
	if format == formatJSON {
		return renderJSON(w, md, cache)
	}

	renderTable(w, md, cache)

	return nil
}

func renderJSON(w io.Writer, md *analysis.Metadata, cache *issue.Cache) error {
	entries := cache.Entries()

	out := Output{
		Project:      md.Project,
		AnalysisDate: md.Date,
		Mode:         modeOf(md),
		Summary:      cache.Summary(),
		Issues:       make([]OutputIssue, 0, len(entries)),
	}

	for _, entry := range entries {
		is := entry.Issue
		out.Issues = append(out.Issues, OutputIssue{
			Key:          is.Key(),
			Component:    entry.ComponentKey,
			Rule:         is.RuleKey().String(),
			Line:         is.Line(),
			Message:      is.Message(),
			Status:       is.Status(),
			Resolution:   is.Resolution(),
			Outcome:      string(entry.Outcome),
			CreationDate: is.CreationDate(),
			CloseDate:    is.CloseDate(),
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	return nil
}

func renderTable(w io.Writer, md *analysis.Metadata, cache *issue.Cache) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Footer = text.FormatDefault

	tbl.AppendHeader(table.Row{"FILE", "LINE", "RULE", "STATUS", "OUTCOME", "KEY", "CREATED"})

	for _, entry := range cache.Entries() {
		is := entry.Issue

		line := ""
		if is.Line() > 0 {
			line = strconv.Itoa(is.Line())
		}

		status := is.Status()
		if is.Resolution() != "" {
			status += " (" + is.Resolution() + ")"
		}

		tbl.AppendRow(table.Row{
			entry.ComponentKey,
			line,
			is.RuleKey().String(),
			status,
			outcomeColor(entry.Outcome).Sprint(entry.Outcome),
			is.Key(),
			created(is.CreationDate(), md.Date),
		})
	}

	summary := cache.Summary()
	tbl.AppendFooter(table.Row{
		"Total: " + humanize.Comma(int64(summary.Total())),
		"",
		"",
		"",
		fmt.Sprintf("%s new, %s matched, %s reopened, %s closed",
			humanize.Comma(int64(summary.New)),
			humanize.Comma(int64(summary.Matched)),
			humanize.Comma(int64(summary.Reopened)),
			humanize.Comma(int64(summary.Closed))),
	})

	tbl.Render()
}

// created prints date relative to the analysis date.
func created(date, analysisDate time.Time) string {
	if date.IsZero() {
		return ""
	}

	if date.Equal(analysisDate) {
		return "this analysis"
	}

	return humanize.RelTime(date, analysisDate, "before", "after")
}

func outcomeColor(outcome issue.Outcome) *color.Color {
	switch outcome {
	case issue.OutcomeNew:
		return color.New(color.FgGreen)
	case issue.OutcomeReopened:
		return color.New(color.FgYellow)
	case issue.OutcomeClosed:
		return color.New(color.FgRed)
	case issue.OutcomeUntouched:
		return color.New(color.Faint)
	default:
		return color.New(color.Reset)
	}
}
