// Package fs provides file system adapters for locating, reading and fingerprinting
// resource sources.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// skipDirectories are never descended into.
var skipDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	".pulse":       true,
	"node_modules": true,
}

// Walker provides directory walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkDirs yields root and every directory below it, skipping version control and
// cache directories and names matching ignores. Unreadable directories are skipped.
func (w *Walker) WalkDirs(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Skip directories that cannot be read
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && w.ShouldSkip(d.Name(), ignores) {
				return filepath.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// ShouldSkip reports whether a directory with the given name is excluded from walking.
func (w *Walker) ShouldSkip(name string, ignores []string) bool {
	if skipDirectories[name] {
		return true
	}
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
