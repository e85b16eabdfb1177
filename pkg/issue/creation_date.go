package issue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/issuetrack/pkg/analysis"
	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
	"github.com/Sumatoshi-tech/issuetrack/pkg/scm"
)

// ScmInfoRepository provides SCM attribution of files. ok is false when the
// file has none.
type ScmInfoRepository interface {
	ScmInfo(ctx context.Context, c *component.Component) (info *scm.Info, ok bool, err error)
}

// CreationDateCalculator backdates new issues to the date of the latest
// commit on their lines, so issues raised on old code do not look new.
type CreationDateCalculator struct {
	VisitorAdapter

	scm        ScmInfoRepository
	setter     *FieldsSetter
	metadata   analysis.MetadataHolder
	addedFiles *analysis.AddedFileRepository
	context    ChangeContext
	logger     *slog.Logger
}

// NewCreationDateCalculator creates a CreationDateCalculator.
func NewCreationDateCalculator(
	metadata analysis.MetadataHolder,
	scmRepo ScmInfoRepository,
	setter *FieldsSetter,
	addedFiles *analysis.AddedFileRepository,
	logger *slog.Logger,
) *CreationDateCalculator {
	if logger == nil {
		logger = slog.Default()
	}

	return &CreationDateCalculator{
		scm:        scmRepo,
		setter:     setter,
		metadata:   metadata,
		addedFiles: addedFiles,
		context:    ScanChangeContext(metadata.AnalysisDate()),
		logger:     logger,
	}
}

// OnIssue backdates is when it is new. First analyses and added files
// are backdated unconditionally, other files where SCM data exists; in both
// cases a file without SCM data keeps the detection date.
func (c *CreationDateCalculator) OnIssue(ctx context.Context, comp *component.Component, is *Issue) error {
	if !is.IsNew() {
		return nil
	}

	info, ok, err := c.scm.ScmInfo(ctx, comp)
	if err != nil {
		return fmt.Errorf("scm info: %w", err)
	}

	if !ok {
		if c.metadata.IsFirstAnalysis() || c.addedFiles.IsAdded(comp) {
			c.logger.DebugContext(ctx, "no scm data to backdate issue", "component", comp.Key)
		}

		return nil
	}

	c.apply(ctx, comp, is, info)

	return nil
}

func (c *CreationDateCalculator) apply(ctx context.Context, comp *component.Component, is *Issue, info *scm.Info) {
	changeset := LatestChangeset(info, AllLinesFor(is, comp.UUID))

	if c.setter.SetCreationDate(is, changeset.Date, c.context) {
		c.logger.DebugContext(ctx, "issue backdated",
			"component", comp.Key, "rule", is.RuleKey().String(), "date", changeset.Date)
	}
}

// LatestChangeset returns the most recent changeset among lines, or the
// file's latest changeset when none of lines is attributed.
func LatestChangeset(info *scm.Info, lines []int) scm.Changeset {
	var (
		latest scm.Changeset
		found  bool
	)

	for _, line := range lines {
		changeset, ok := info.ChangesetForLine(line)
		if !ok {
			continue
		}

		if !found || changeset.Date.After(latest.Date) {
			latest = changeset
			found = true
		}
	}

	if !found {
		return info.LatestChangeset()
	}

	return latest
}
