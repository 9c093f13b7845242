package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/portsignal/internal/source"
	"github.com/theirongolddev/portsignal/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache discovers snapshot files, diffs them against the cache by
// mtime and size, parses only changed files, and returns the combined records
// in discovery order.
func LoadWithCache(ctx context.Context, paths []string, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	files, err := source.ScanPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("scanning snapshots: %w", err)
	}

	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(files)}}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	type statted struct {
		mtime int64
		size  int64
	}
	var (
		toReparse []source.DiscoveredFile
		unchanged []string
		stats     = make(map[string]statted, len(files))
	)
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		stats[f.Path] = statted{mtime: info.ModTime().UnixNano(), size: info.Size()}

		cached, ok := tracked[f.Path]
		if ok && cached.MtimeNs == info.ModTime().UnixNano() && cached.SizeBytes == info.Size() {
			unchanged = append(unchanged, f.Path)
		} else {
			toReparse = append(toReparse, f)
		}
	}

	result.CacheHits = len(unchanged)
	result.Reparsed = len(toReparse)

	byPath := make(map[string]source.ParseResult, len(files))

	if len(unchanged) > 0 {
		cached, err := cache.LoadFiles(unchanged)
		if err != nil {
			return nil, fmt.Errorf("loading cached snapshots: %w", err)
		}
		for path, cf := range cached {
			byPath[path] = source.ParseResult{Records: cf.Records, ParseErrors: cf.ParseErrors}
		}
		if progressFn != nil {
			progressFn(result.CacheHits, result.TotalFiles)
		}
	}

	if len(toReparse) > 0 {
		results, err := parseAll(ctx, toReparse, result.CacheHits, result.TotalFiles, progressFn)
		if err != nil {
			return nil, err
		}
		for i, pr := range results {
			df := toReparse[i]
			byPath[df.Path] = pr
			if pr.Err != nil {
				continue
			}
			st := stats[df.Path]
			if err := cache.SaveFile(df, pr, st.mtime, st.size); err != nil {
				log.WithError(err).WithField("file", df.Path).Debug("snapshot cache write failed")
			}
		}
	}

	for _, f := range files {
		pr, ok := byPath[f.Path]
		if !ok {
			continue
		}
		if pr.Err != nil {
			log.WithError(pr.Err).WithField("file", f.Path).Warn("snapshot file skipped")
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		result.Records = append(result.Records, pr.Records...)
	}

	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "portsignal")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "portsignal")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "portsignal.db")
}
