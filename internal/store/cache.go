// Package store provides a SQLite-backed cache of parsed snapshot files and a
// history of analysis runs.
package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/portsignal/internal/source"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed snapshot caching and run history.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all cached files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM snapshot_files")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces the cached records of one snapshot file.
func (c *Cache) SaveFile(df source.DiscoveredFile, pr source.ParseResult, mtimeNs, sizeBytes int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)

	_, err = tx.Exec("DELETE FROM snapshot_files WHERE file_path = ?", df.Path)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT INTO snapshot_files
		(file_path, format, record_count, parse_errors, mtime_ns, size_bytes, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		df.Path, string(df.Format), len(pr.Records), pr.ParseErrors, mtimeNs, sizeBytes, now,
	)
	if err != nil {
		return err
	}

	for i, rec := range pr.Records {
		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding record %d of %s: %w", i, df.Path, err)
		}
		_, err = tx.Exec(`INSERT INTO snapshot_records (file_path, seq, body) VALUES (?, ?, ?)`,
			df.Path, i, string(body))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CachedFile is the stored parse output of one snapshot file.
type CachedFile struct {
	Records     []source.Record
	ParseErrors int
}

// LoadFiles reads the cached records for the given paths, in record order.
// Paths without a cache entry are absent from the result.
func (c *Cache) LoadFiles(paths []string) (map[string]CachedFile, error) {
	result := make(map[string]CachedFile, len(paths))
	if len(paths) == 0 {
		return result, nil
	}

	want := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		want[p] = struct{}{}
	}

	fileRows, err := c.db.Query("SELECT file_path, parse_errors FROM snapshot_files")
	if err != nil {
		return nil, err
	}
	defer func() { _ = fileRows.Close() }()
	for fileRows.Next() {
		var path string
		var parseErrors int
		if err := fileRows.Scan(&path, &parseErrors); err != nil {
			return nil, err
		}
		if _, ok := want[path]; ok {
			result[path] = CachedFile{ParseErrors: parseErrors}
		}
	}
	if err := fileRows.Err(); err != nil {
		return nil, err
	}

	rows, err := c.db.Query("SELECT file_path, body FROM snapshot_records ORDER BY file_path, seq")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var path, body string
		if err := rows.Scan(&path, &body); err != nil {
			return nil, err
		}
		cf, ok := result[path]
		if !ok {
			continue
		}
		rec, err := decodeRecord(body)
		if err != nil {
			return nil, fmt.Errorf("decoding cached record of %s: %w", path, err)
		}
		cf.Records = append(cf.Records, rec)
		result[path] = cf
	}
	return result, rows.Err()
}

func decodeRecord(body string) (source.Record, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	var rec source.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteFile removes a cached file and its records.
func (c *Cache) DeleteFile(filePath string) error {
	_, err := c.db.Exec("DELETE FROM snapshot_files WHERE file_path = ?", filePath)
	return err
}

// FileCount returns the number of cached snapshot files.
func (c *Cache) FileCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM snapshot_files").Scan(&count)
	return count, err
}
