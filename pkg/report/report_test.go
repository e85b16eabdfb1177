package report_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/issuetrack/pkg/analysis"
	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
	"github.com/Sumatoshi-tech/issuetrack/pkg/issue"
	"github.com/Sumatoshi-tech/issuetrack/pkg/report"
	"github.com/Sumatoshi-tech/issuetrack/pkg/source"
)

func loadProject(t *testing.T, name string) *report.Project {
	t.Helper()

	doc, err := report.Load(filepath.Join("testdata", name))
	require.NoError(t, err)

	project, err := doc.Build()
	require.NoError(t, err)

	return project
}

func TestLoad_BranchReport(t *testing.T) {
	t.Parallel()

	project := loadProject(t, "branch.yaml")

	md := project.Metadata
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), md.AnalysisDate())
	assert.False(t, md.IsFirstAnalysis())
	assert.False(t, md.IsPullRequest())
	assert.True(t, md.Branch().IsMain)

	base, ok := md.BaseAnalysis()
	require.True(t, ok)
	assert.Equal(t, "an-41", base.UUID)

	files := project.Root.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "src/cart.go", files[0].Path)
	assert.Equal(t, component.StatusChanged, files[0].Status)
	assert.Equal(t, 1, files[0].ReportRef)
	assert.Equal(t, 2, files[1].ReportRef)
}

func TestProject_Inputs(t *testing.T) {
	t.Parallel()

	project := loadProject(t, "branch.yaml")
	ctx := context.Background()
	cart := project.Root.FindByUUID("f1")
	require.NotNil(t, cart)

	raw, err := project.Raw(ctx, cart)
	require.NoError(t, err)
	require.Len(t, raw.Issues(), 3)

	base, err := project.Base(ctx, cart)
	require.NoError(t, err)
	require.Len(t, base.Issues(), 2)

	// Line 3 is identical in both snapshots, so derived hashes agree.
	assert.NotEmpty(t, raw.Issues()[0].LineHash())
	assert.Equal(t, base.Issues()[0].LineHash(), raw.Issues()[0].LineHash())
	assert.Equal(t, "h-sum", raw.Issues()[1].LineHash())
	assert.Equal(t, "CONFIRMED", base.Issues()[0].Status())
	assert.Equal(t, "f1", raw.Issues()[0].ComponentUUID())

	closed, err := project.Closed(ctx, cart)
	require.NoError(t, err)
	require.Len(t, closed.Issues(), 1)
	assert.True(t, closed.Issues()[0].IsClosed())

	assert.Equal(t, source.ComputeLineHashes("func Total(items []Item) int {")[0], raw.LineHashSequence().HashForLine(3))
}

func TestProject_FileWithoutData(t *testing.T) {
	t.Parallel()

	project := loadProject(t, "branch.yaml")
	ctx := context.Background()
	empty := project.Root.FindByUUID("f2")

	raw, err := project.Raw(ctx, empty)
	require.NoError(t, err)
	assert.Empty(t, raw.Issues())

	_, ok, err := project.Target(ctx, empty)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = project.ChangedLines(ctx, empty)
	require.NoError(t, err)
	assert.False(t, ok)

	info, err := project.Read(ctx, empty)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestProject_ScmInfo(t *testing.T) {
	t.Parallel()

	project := loadProject(t, "branch.yaml")

	info, err := project.Read(context.Background(), project.Root.FindByUUID("f1"))
	require.NoError(t, err)
	require.NotNil(t, info)

	changeset, ok := info.ChangesetForLine(5)
	require.True(t, ok)
	assert.Equal(t, "r7", changeset.Revision)
	assert.Equal(t, "bo@example.com", changeset.Author)
	assert.False(t, info.HasChangesetForLine(2))
	assert.Equal(t, "r7", info.LatestChangeset().Revision)
}

func TestProject_PullRequestJSON(t *testing.T) {
	t.Parallel()

	project := loadProject(t, "pull_request.json")
	ctx := context.Background()
	cart := project.Root.FindByUUID("f1")

	assert.True(t, project.Metadata.IsPullRequest())
	assert.Equal(t, analysis.Branch{
		Name: "feature/discount", Type: analysis.BranchTypePullRequest, TargetBranchName: "main", PullRequestKey: "128",
	}, project.Metadata.Branch())

	target, ok, err := project.Target(ctx, cart)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, target.Issues(), 1)
	assert.Equal(t, "T-1", target.Issues()[0].Key())

	reference, current, ok, err := project.Snapshots(ctx, cart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{4}, source.ChangedLinesBetween(reference, current))

	changed, ok, err := source.NewTextDiffReader(project).ChangedLines(ctx, cart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{4}, changed.Sorted())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{name: "empty", doc: "", wantField: "(root)"},
		{name: "missing project", doc: `{version: 1, analysis_date: "2026-01-01T00:00:00Z", root: {uuid: p, key: p, type: PROJECT}}`, wantField: "(root)"},
		{name: "bad version", doc: `{version: 2, project: x, analysis_date: "2026-01-01T00:00:00Z", root: {uuid: p, key: p, type: PROJECT}}`, wantField: "version"},
		{name: "bad date", doc: `{version: 1, project: x, analysis_date: yesterday, root: {uuid: p, key: p, type: PROJECT}}`, wantField: "analysis_date"},
		{name: "bad type", doc: `{version: 1, project: x, analysis_date: "2026-01-01T00:00:00Z", root: {uuid: p, key: p, type: MODULE}}`, wantField: "root.type"},
		{
			name: "bad rule",
			doc: `{version: 1, project: x, analysis_date: "2026-01-01T00:00:00Z",
  root: {uuid: p, key: p, type: FILE, file: {raw: [{rule: norepo}]}}}`,
			wantField: "root.file.raw.0.rule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			violations, err := report.Validate([]byte(tt.doc))
			require.NoError(t, err)
			require.NotEmpty(t, violations)

			fields := make([]string, 0, len(violations))
			for _, v := range violations {
				fields = append(fields, v.Field)
			}

			assert.Contains(t, fields, tt.wantField)

			_, err = report.Decode([]byte(tt.doc))
			require.ErrorIs(t, err, report.ErrInvalidReport)
		})
	}
}

func TestValidate_TestdataIsValid(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"branch.yaml", "pull_request.json"} {
		data, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)

		violations, err := report.Validate(data)
		require.NoError(t, err)
		assert.Empty(t, violations, name)
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "duplicate uuid",
			doc: `{version: 1, project: x, analysis_date: "2026-01-01T00:00:00Z",
  root: {uuid: p, key: p, type: PROJECT, children: [{uuid: p, key: q, type: FILE}]}}`,
		},
		{
			name: "file data on directory",
			doc: `{version: 1, project: x, analysis_date: "2026-01-01T00:00:00Z",
  root: {uuid: p, key: p, type: DIRECTORY, file: {source: "x"}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := report.Decode([]byte(tt.doc))
			require.NoError(t, err)

			_, err = doc.Build()
			require.ErrorIs(t, err, report.ErrInvalidReport)
		})
	}
}

func TestBuild_ClampsRangesToFileLength(t *testing.T) {
	t.Parallel()

	doc, err := report.Decode([]byte(`version: 1
project: x
analysis_date: "2026-01-01T00:00:00Z"
root:
  uuid: p
  key: p
  type: PROJECT
  children:
    - uuid: f1
      key: p:a.go
      type: FILE
      file:
        source: "a\nb\nc\n"
        raw:
          - rule: "go:S1"
            line: 2
            text_range: {start_line: 2, end_line: 2000000000}
            flows:
              - - text_range: {start_line: 1, end_line: 2000000000}
                - component: f2
                  text_range: {start_line: 1, end_line: 2000000000}
                - component: f3
                  text_range: {start_line: 4, end_line: 2000000000}
    - uuid: f2
      key: p:b.go
      type: FILE
      file:
        line_hashes: [h1, h2]
    - uuid: f3
      key: p:c.go
      type: FILE
`))
	require.NoError(t, err)

	project, err := doc.Build()
	require.NoError(t, err)

	raw, err := project.Raw(context.Background(), project.Root.FindByUUID("f1"))
	require.NoError(t, err)
	require.Len(t, raw.Issues(), 1)

	is := raw.Issues()[0]
	assert.Equal(t, &issue.TextRange{StartLine: 2, EndLine: 3}, is.TextRange())
	require.Len(t, is.Flows(), 1)
	assert.Equal(t, []issue.TextRange{
		{StartLine: 1, EndLine: 3},
		{StartLine: 1, EndLine: 2},
		{StartLine: 4, EndLine: 4},
	}, []issue.TextRange{is.Flows()[0][0].TextRange, is.Flows()[0][1].TextRange, is.Flows()[0][2].TextRange})
	assert.Equal(t, []int{1, 2, 3}, issue.AllLinesFor(is, "f1"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := report.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.NotErrorIs(t, err, report.ErrInvalidReport)
}
