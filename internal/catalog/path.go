package catalog

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FindLocalFiles expands glob patterns, including "**", to the regular files
// they match, sorted and without duplicates. Directories and symlinks are
// skipped.
func FindLocalFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, err
		}
		for _, name := range matches {
			info, err := os.Lstat(name)
			if err != nil {
				continue
			}
			if info.Mode().IsRegular() {
				files = append(files, name)
			}
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func isGlob(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// resolvePath anchors relative catalog paths at baseDir.
func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
