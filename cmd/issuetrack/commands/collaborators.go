package commands

import (
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/issuetrack/pkg/config"
	"github.com/Sumatoshi-tech/issuetrack/pkg/gitlib"
	"github.com/Sumatoshi-tech/issuetrack/pkg/report"
	"github.com/Sumatoshi-tech/issuetrack/pkg/scm"
	"github.com/Sumatoshi-tech/issuetrack/pkg/source"
)

// collaborators are the SCM and changed-lines sources selected by config.
type collaborators struct {
	scm      *scm.Repository
	newLines *source.NewLinesRepository
	repo     *gitlib.Repository
}

// Close releases the git repository when one was opened.
func (c *collaborators) Close() {
	if c.repo != nil {
		c.repo.Free()
	}
}

func newCollaborators(cfg *config.Config, project *report.Project, logger *slog.Logger) (*collaborators, error) {
	collab := &collaborators{}

	openRepo := func() (*gitlib.Repository, error) {
		if collab.repo != nil {
			return collab.repo, nil
		}

		repo, err := gitlib.OpenRepository(cfg.Scm.Repository)
		if err != nil {
			return nil, fmt.Errorf("open repository %s: %w", cfg.Scm.Repository, err)
		}

		collab.repo = repo

		return repo, nil
	}

	var scmReader scm.Reader = project

	if cfg.Scm.Provider == config.ProviderGit {
		repo, err := openRepo()
		if err != nil {
			return nil, err
		}

		scmReader = scm.NewGitReader(repo)
	}

	collab.scm = scm.NewRepository(scmReader, logger)

	var changed source.ChangedLinesReader

	switch cfg.ChangedLines.Provider {
	case config.ProviderGit:
		repo, err := openRepo()
		if err != nil {
			collab.Close()

			return nil, err
		}

		changed = source.NewGitDiffReader(repo, cfg.ChangedLines.TargetRef)
	case config.ProviderText:
		changed = source.NewTextDiffReader(project)
	default:
		changed = project
	}

	collab.newLines = source.NewNewLinesRepository(changed, project.Metadata, newLinesOptions(cfg, collab.scm, logger)...)

	return collab, nil
}

func newLinesOptions(
	cfg *config.Config, scmRepo source.ScmInfoRepository, logger *slog.Logger,
) []source.NewLinesRepositoryOption {
	opts := []source.NewLinesRepositoryOption{source.WithLogger(logger)}

	if cfg.ChangedLines.ScmFallback {
		opts = append(opts, source.WithScmFallback(scmRepo))
	}

	return opts
}
