package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Sumatoshi-tech/issuetrack/pkg/analysis"
	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
	"github.com/Sumatoshi-tech/issuetrack/pkg/scm"
)

// ErrNotAFile is returned when new lines are requested for a non-FILE component.
var ErrNotAFile = errors.New("new lines are only defined for files")

// ChangedLinesReader reads the changed lines of a file. ok is false when the
// reader has no data for the file.
type ChangedLinesReader interface {
	ChangedLines(ctx context.Context, file *component.Component) (lines LineSet, ok bool, err error)
}

// ScmInfoRepository is the subset of scm.Repository used to derive new lines.
type ScmInfoRepository interface {
	ScmInfo(ctx context.Context, c *component.Component) (*scm.Info, bool, error)
}

type newLinesEntry struct {
	lines LineSet
	ok    bool
}

// NewLinesRepository answers which lines of a file are new, once per file
// for the lifetime of one analysis. Lines are unknown when the reader has no
// data, unless an SCM fallback is set: then lines committed after the base
// analysis count as new.
type NewLinesRepository struct {
	reader   ChangedLinesReader
	scm      ScmInfoRepository
	metadata analysis.MetadataHolder
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]newLinesEntry
}

// NewLinesRepositoryOption configures a NewLinesRepository.
type NewLinesRepositoryOption func(*NewLinesRepository)

// WithScmFallback derives new lines from SCM dates when the reader has no
// data. Without it such files have unknown new lines.
func WithScmFallback(repo ScmInfoRepository) NewLinesRepositoryOption {
	return func(r *NewLinesRepository) {
		r.scm = repo
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) NewLinesRepositoryOption {
	return func(r *NewLinesRepository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewNewLinesRepository creates the repository. reader may be nil.
func NewNewLinesRepository(
	reader ChangedLinesReader, metadata analysis.MetadataHolder, opts ...NewLinesRepositoryOption,
) *NewLinesRepository {
	repo := &NewLinesRepository{
		reader:   reader,
		metadata: metadata,
		logger:   slog.Default(),
		cache:    make(map[string]newLinesEntry),
	}

	for _, opt := range opts {
		opt(repo)
	}

	return repo
}

// NewLines returns the new lines of file. ok is false when they are unknown.
func (r *NewLinesRepository) NewLines(ctx context.Context, file *component.Component) (LineSet, bool, error) {
	if !file.IsFile() {
		return nil, false, fmt.Errorf("%w: %s is a %s", ErrNotAFile, file.Key, file.Type)
	}

	r.mu.Lock()
	entry, hit := r.cache[file.UUID]
	r.mu.Unlock()

	if hit {
		return entry.lines, entry.ok, nil
	}

	lines, ok, err := r.compute(ctx, file)
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	r.cache[file.UUID] = newLinesEntry{lines: lines, ok: ok}
	r.mu.Unlock()

	return lines, ok, nil
}

func (r *NewLinesRepository) compute(ctx context.Context, file *component.Component) (LineSet, bool, error) {
	if r.reader != nil {
		lines, ok, err := r.reader.ChangedLines(ctx, file)
		if err != nil {
			return nil, false, fmt.Errorf("read changed lines of %s: %w", file.Key, err)
		}

		if ok {
			return lines, true, nil
		}
	}

	if r.scm == nil {
		r.logger.DebugContext(ctx, "changed lines unknown", "component", file.Key)

		return nil, false, nil
	}

	return r.computeFromScm(ctx, file)
}

func (r *NewLinesRepository) computeFromScm(ctx context.Context, file *component.Component) (LineSet, bool, error) {
	base, hasBase := r.metadata.BaseAnalysis()
	if !hasBase {
		return nil, false, nil
	}

	info, ok, err := r.scm.ScmInfo(ctx, file)
	if err != nil || !ok {
		return nil, false, err
	}

	lines := make(LineSet)

	for _, line := range info.Lines() {
		if changeset, _ := info.ChangesetForLine(line); changeset.Date.After(base.CreatedAt) {
			lines[line] = struct{}{}
		}
	}

	return lines, true, nil
}
