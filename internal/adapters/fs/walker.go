// Package fs provides file system adapters for walking and hashing files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"

	"go.trai.ch/exportmap/internal/core/domain"
)

// skippedDirs are never descended into.
var skippedDirs = []string{".git", ".jj", "node_modules", domain.StateDirName}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every regular file below root in lexical order.
// Paths include root. Directories matching an ignore pattern are skipped.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if path != root && w.ignored(d, ignores) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) ignored(d fs.DirEntry, ignores []string) bool {
	name := d.Name()

	if d.IsDir() && slices.Contains(skippedDirs, name) {
		return true
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}

	return false
}
