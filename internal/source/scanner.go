package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FormatFor maps a file extension onto a snapshot format.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".jsonl", ".ndjson":
		return FormatJSONL, true
	case ".csv":
		return FormatCSV, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// ScanDir walks dir and discovers every snapshot file with a known extension.
// A missing directory yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		df, ok := discover(dir)
		if !ok {
			return nil, nil
		}
		return []DiscoveredFile{df}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if df, ok := discover(path); ok {
			files = append(files, df)
		}
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// ScanPaths resolves a mix of files and directories into discovered snapshot
// files, preserving argument order and dropping duplicates.
func ScanPaths(paths []string) ([]DiscoveredFile, error) {
	seen := make(map[string]struct{})
	var out []DiscoveredFile
	for _, p := range paths {
		files, err := ScanDir(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, dup := seen[f.Path]; dup {
				continue
			}
			seen[f.Path] = struct{}{}
			out = append(out, f)
		}
	}
	return out, nil
}

func discover(path string) (DiscoveredFile, bool) {
	format, ok := FormatFor(path)
	if !ok {
		return DiscoveredFile{}, false
	}
	base := filepath.Base(path)
	return DiscoveredFile{
		Path:   path,
		Format: format,
		Name:   strings.TrimSuffix(base, filepath.Ext(base)),
	}, true
}
