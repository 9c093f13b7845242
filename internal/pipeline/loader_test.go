package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/portsignal/internal/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func snapshotDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), `[{"id":"a1","totalValue":100},{"id":"a2","totalValue":200}]`)
	writeFile(t, filepath.Join(dir, "b.jsonl"), "{\"id\":\"b1\",\"totalValue\":300}\n{oops\n")
	writeFile(t, filepath.Join(dir, "c.json"), `{not json`)
	writeFile(t, filepath.Join(dir, "readme.md"), `# ignored`)
	return dir
}

func TestLoad(t *testing.T) {
	dir := snapshotDir(t)

	var calls int
	res, err := Load(context.Background(), []string{dir}, func(current, total int) {
		calls++
		assert.LessOrEqual(t, current, total)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalFiles)
	assert.Equal(t, 2, res.ParsedFiles)
	assert.Equal(t, 1, res.FileErrors)
	assert.Equal(t, 1, res.ParseErrors)
	assert.Equal(t, 3, calls)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "a1", res.Records[0]["id"])
	assert.Equal(t, "b1", res.Records[2]["id"])
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, []string{snapshotDir(t)}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadWithCache(t *testing.T) {
	dir := snapshotDir(t)
	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	first, err := LoadWithCache(context.Background(), []string{dir}, cache, nil)
	require.NoError(t, err)
	assert.Zero(t, first.CacheHits)
	assert.Equal(t, 3, first.Reparsed)
	assert.Len(t, first.Records, 3)

	second, err := LoadWithCache(context.Background(), []string{dir}, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.CacheHits, "parsed files are served from cache")
	assert.Equal(t, 1, second.Reparsed, "the broken file is never cached")
	assert.Equal(t, 1, second.ParseErrors)
	require.Len(t, second.Records, 3)
	assert.Equal(t, "a1", second.Records[0]["id"])

	writeFile(t, filepath.Join(dir, "a.json"), `[{"id":"a1","totalValue":100}]`)
	third, err := LoadWithCache(context.Background(), []string{dir}, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, third.CacheHits)
	assert.Len(t, third.Records, 2)
}

func TestFileSource(t *testing.T) {
	src := &FileSource{Paths: []string{snapshotDir(t)}}
	recs, err := src.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, 1, src.Last.FileErrors)
}
