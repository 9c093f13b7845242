package pipeline

import (
	"context"

	"github.com/theirongolddev/portsignal/internal/source"
	"github.com/theirongolddev/portsignal/internal/store"
)

// Source supplies the raw records for one analysis pass.
type Source interface {
	Records(ctx context.Context) ([]source.Record, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) ([]source.Record, error)

// Records calls f.
func (f SourceFunc) Records(ctx context.Context) ([]source.Record, error) {
	return f(ctx)
}

// FileSource loads records from snapshot files and directories. With a Cache
// set, unchanged files are served from SQLite.
type FileSource struct {
	Paths    []string
	Cache    *store.Cache
	Progress ProgressFunc

	// Last holds the counters of the most recent load.
	Last LoadResult
}

// Records loads every snapshot under Paths.
func (s *FileSource) Records(ctx context.Context) ([]source.Record, error) {
	if s.Cache != nil {
		res, err := LoadWithCache(ctx, s.Paths, s.Cache, s.Progress)
		if err != nil {
			return nil, err
		}
		s.Last = res.LoadResult
		return res.Records, nil
	}

	res, err := Load(ctx, s.Paths, s.Progress)
	if err != nil {
		return nil, err
	}
	s.Last = *res
	return res.Records, nil
}
