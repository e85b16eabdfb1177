package scm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
	"github.com/Sumatoshi-tech/issuetrack/pkg/gitlib"
)

// Blamer attributes file lines to commits.
type Blamer interface {
	BlameFile(path string) ([]gitlib.BlameLine, error)
}

// GitReader reads SCM info from git blame.
type GitReader struct {
	blamer Blamer
}

// NewGitReader creates a GitReader. *gitlib.Repository is the usual Blamer.
func NewGitReader(blamer Blamer) *GitReader {
	return &GitReader{blamer: blamer}
}

// Read blames the file path of c. Files unknown to git have no SCM info.
func (r *GitReader) Read(_ context.Context, file *component.Component) (*Info, error) {
	if file.Path == "" {
		return nil, nil
	}

	lines, err := r.blamer.BlameFile(file.Path)
	if errors.Is(err, gitlib.ErrFileNotTracked) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("blame: %w", err)
	}

	byLine := make(map[int]Changeset, len(lines))

	for _, line := range lines {
		byLine[line.Line] = Changeset{
			Revision: line.Revision.String(),
			Author:   line.Author.Email,
			Date:     line.Author.When,
		}
	}

	if len(byLine) == 0 {
		return nil, nil
	}

	return NewInfo(byLine)
}
