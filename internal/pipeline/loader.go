package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/portsignal/internal/source"
)

// LoadResult holds the output of the snapshot loading pipeline.
type LoadResult struct {
	Records     []source.Record
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every snapshot file under paths with a bounded
// worker pool. Records keep file order, then in-file order.
func Load(ctx context.Context, paths []string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("scanning snapshots: %w", err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	results, err := parseAll(ctx, files, 0, len(files), progressFn)
	if err != nil {
		return nil, err
	}

	for i, pr := range results {
		if pr.Err != nil {
			log.WithError(pr.Err).WithField("file", files[i].Path).Warn("snapshot file skipped")
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		result.Records = append(result.Records, pr.Records...)
	}

	return result, nil
}

// parseAll parses files in parallel. Progress is reported as offset+n of total.
func parseAll(ctx context.Context, files []source.DiscoveredFile, offset, total int, progressFn ProgressFunc) ([]source.ParseResult, error) {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}

	results := make([]source.ParseResult, len(files))
	var processed atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for i := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = source.ParseFile(files[i])
			n := processed.Add(1)
			if progressFn != nil {
				progressFn(offset+int(n), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
