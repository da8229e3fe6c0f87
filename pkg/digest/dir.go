package digest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Directory computes a content digest of the tree rooted at root. The digest
// covers the sorted slash-separated relative path and the content of every
// regular file, so renames, additions, removals and edits all change it.
// Paths matching any of the ignore globs (doublestar syntax) are excluded.
// File metadata (modification times, ownership, permissions) is deliberately
// not part of the digest.
func Directory(root string, ignore []string) (string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if ignored(rel, d.IsDir(), ignore) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(paths)

	h := New()
	for _, rel := range paths {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", rel, err)
		}
		h.String(rel)
		h.Field(data)
	}

	return h.Sum(), nil
}

// Ignored reports whether the slash-separated relative path matches any of
// the provided doublestar globs.
func Ignored(rel string, isDir bool, ignore []string) bool {
	return ignored(rel, isDir, ignore)
}

func ignored(rel string, isDir bool, ignore []string) bool {
	for _, pattern := range ignore {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		// A directory also matches patterns like "dir/**" so the whole
		// subtree can be skipped in one step.
		if isDir {
			if ok, err := doublestar.Match(pattern, rel+"/"); err == nil && ok {
				return true
			}
		}
	}
	return false
}
