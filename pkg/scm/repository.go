package scm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
)

// Reader loads the commit attribution of a FILE component. A nil Info with
// a nil error means the file has no SCM data.
type Reader interface {
	Read(ctx context.Context, file *component.Component) (*Info, error)
}

// Repository caches the Info of each file for the lifetime of one analysis.
// It is safe for concurrent use.
type Repository struct {
	reader Reader
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*Info
}

// NewRepository creates a caching Repository over reader.
func NewRepository(reader Reader, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}

	return &Repository{reader: reader, logger: logger, cache: make(map[string]*Info)}
}

// ScmInfo returns the Info of c. ok is false when c is not a file or has no SCM data.
func (r *Repository) ScmInfo(ctx context.Context, c *component.Component) (info *Info, ok bool, err error) {
	if !c.IsFile() {
		return nil, false, nil
	}

	r.mu.Lock()
	cached, hit := r.cache[c.UUID]
	r.mu.Unlock()

	if hit {
		return cached, cached != nil, nil
	}

	info, err = r.reader.Read(ctx, c)
	if err != nil {
		return nil, false, fmt.Errorf("read scm info of %s: %w", c.Key, err)
	}

	if info == nil {
		r.logger.DebugContext(ctx, "no scm info", "component", c.Key)
	}

	r.mu.Lock()
	r.cache[c.UUID] = info
	r.mu.Unlock()

	return info, info != nil, nil
}
