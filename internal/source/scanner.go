package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	}
	return "", false
}

// ScanDir finds importable files directly under dir or, when dir is a file,
// returns it alone. Hidden files are skipped. Results are sorted by path.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		format, ok := FormatOf(dir)
		if !ok {
			format = FormatYAML
		}
		return []DiscoveredFile{{Path: dir, Format: format}}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if format, ok := FormatOf(path); ok {
			files = append(files, DiscoveredFile{Path: path, Format: format})
		}
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}
