// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FindUnitFiles recursively searches the given root path for loadable unit
// files with the specified extension. Hidden and underscore-prefixed names
// are skipped (directories included), as are declaration-only ".d" and
// "_test"-suffixed files. The result is sorted lexicographically, since the
// tree-merge step downstream depends on a deterministic path order.
func FindUnitFiles(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && hiddenName(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if EligibleUnitFile(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// EligibleUnitFile reports whether name is a loadable unit file with the
// given extension under the discovery convention.
func EligibleUnitFile(name string, extension string) bool {
	if !strings.HasSuffix(name, extension) || hiddenName(name) {
		return false
	}
	stem := strings.TrimSuffix(name, extension)
	return !strings.HasSuffix(stem, "_test") && !strings.HasSuffix(stem, ".d")
}

func hiddenName(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
