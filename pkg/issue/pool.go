package issue

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
)

// TrackFiles tracks files concurrently with at most workers goroutines
// (GOMAXPROCS when workers < 1). Results are keyed by component uuid, so
// completion order does not matter. The first error cancels the rest.
func TrackFiles(
	ctx context.Context, exec Execution, files []*component.Component, workers int,
) (map[string]*Tracking, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	var mu sync.Mutex

	results := make(map[string]*Tracking, len(files))

	for _, file := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			result, err := exec.Track(groupCtx, file)
			if err != nil {
				return fmt.Errorf("track %s: %w", file.Key, err)
			}

			mu.Lock()
			results[file.UUID] = result
			mu.Unlock()

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
