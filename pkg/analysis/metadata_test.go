package analysis_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/issuetrack/pkg/analysis"
	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
)

func TestMetadataFlags(t *testing.T) {
	t.Parallel()

	first := &analysis.Metadata{Date: time.Unix(100, 0)}
	assert.True(t, first.IsFirstAnalysis())
	assert.False(t, first.IsPullRequest())

	_, ok := first.BaseAnalysis()
	assert.False(t, ok)

	pr := &analysis.Metadata{
		Base:    &analysis.Analysis{UUID: "a1", CreatedAt: time.Unix(50, 0)},
		Current: analysis.Branch{Name: "feature", Type: analysis.BranchTypePullRequest, TargetBranchName: "main"},
	}
	assert.False(t, pr.IsFirstAnalysis())
	assert.True(t, pr.IsPullRequest())

	base, ok := pr.BaseAnalysis()
	assert.True(t, ok)
	assert.Equal(t, "a1", base.UUID)
	assert.Equal(t, "PULL_REQUEST", pr.Branch().Type.String())
}

func TestAddedFileRepository(t *testing.T) {
	t.Parallel()

	added := &component.Component{Type: component.TypeFile, Status: component.StatusAdded}
	same := &component.Component{Type: component.TypeFile, Status: component.StatusSame}
	dir := &component.Component{Type: component.TypeDirectory, Status: component.StatusAdded}

	firstRepo := analysis.NewAddedFileRepository(&analysis.Metadata{})
	assert.True(t, firstRepo.IsAdded(same))
	assert.False(t, firstRepo.IsAdded(dir))

	repo := analysis.NewAddedFileRepository(&analysis.Metadata{Base: &analysis.Analysis{UUID: "a"}})
	assert.True(t, repo.IsAdded(added))
	assert.False(t, repo.IsAdded(same))
	assert.False(t, repo.IsAdded(dir))
}
