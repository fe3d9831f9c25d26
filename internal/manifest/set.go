package manifest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Status classifies a path found under the input directory.
type Status int

const (
	// StatusSkip marks a path that will not be exported. Every path starts
	// out as StatusSkip.
	StatusSkip Status = iota

	// StatusExport marks a path selected for export.
	StatusExport

	// StatusIgnore marks a directory that lies on the path to an exported
	// file; it is neither exported on its own nor reported as skipped.
	StatusIgnore
)

// Set tracks every path under a base directory together with its export
// status. Paths are stored slash-separated and relative to the base.
type Set struct {
	base     string
	statuses map[string]Status
	isDir    map[string]bool
}

// NewSet returns an empty set rooted at base.
func NewSet(base string) *Set {
	return &Set{
		base:     base,
		statuses: make(map[string]Status),
		isDir:    make(map[string]bool),
	}
}

// Base returns the absolute base directory of the set.
func (s *Set) Base() string {
	return s.base
}

// Collect walks the subtree rooted at base/sub (or the whole base when sub
// is empty) and records every file and directory with StatusSkip. The base
// directory itself is never recorded.
func (s *Set) Collect(sub string) error {
	root := s.base
	if sub != "" {
		root = filepath.Join(s.base, sub)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.base, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		key := filepath.ToSlash(rel)
		s.statuses[key] = StatusSkip
		s.isDir[key] = d.IsDir()
		return nil
	})
}

// MarkSkip records a single path (relative to base) as skipped, adding it to
// the set if it is not yet known.
func (s *Set) MarkSkip(rel string, isDir bool) {
	key := filepath.ToSlash(rel)
	s.statuses[key] = StatusSkip
	s.isDir[key] = isDir
}

// Reclassify marks every recorded path matching re as StatusExport and
// flips the directories on the way to each match to StatusIgnore. It
// returns the number of matching paths.
func (s *Set) Reclassify(re *regexp.Regexp) int {
	var matches []string
	for path := range s.statuses {
		if re.MatchString(path) {
			matches = append(matches, path)
		}
	}

	for _, path := range matches {
		s.statuses[path] = StatusExport

		parent := parentPath(path)
		for parent != "" {
			if _, ok := s.statuses[parent]; !ok {
				break
			}
			s.statuses[parent] = StatusIgnore
			parent = parentPath(parent)
		}
	}

	return len(matches)
}

func parentPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// Paths returns all recorded paths in sorted order.
func (s *Set) Paths() []string {
	paths := make([]string, 0, len(s.statuses))
	for path := range s.statuses {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Status returns the status of a recorded path.
func (s *Set) Status(rel string) (Status, bool) {
	st, ok := s.statuses[filepath.ToSlash(rel)]
	return st, ok
}

// IsDir reports whether a recorded path is a directory.
func (s *Set) IsDir(rel string) bool {
	return s.isDir[filepath.ToSlash(rel)]
}

// Counts returns the number of exported, skipped and ignored paths.
func (s *Set) Counts() (exported, skipped, ignored int) {
	for _, st := range s.statuses {
		switch st {
		case StatusExport:
			exported++
		case StatusSkip:
			skipped++
		case StatusIgnore:
			ignored++
		}
	}
	return exported, skipped, ignored
}

// Exported returns the sorted paths selected for export.
func (s *Set) Exported() []string {
	return s.withStatus(StatusExport)
}

// Skipped returns the sorted paths that will not be exported.
func (s *Set) Skipped() []string {
	return s.withStatus(StatusSkip)
}

func (s *Set) withStatus(want Status) []string {
	var paths []string
	for path, st := range s.statuses {
		if st == want {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// String summarizes the set for debug logging.
func (s *Set) String() string {
	e, sk, i := s.Counts()
	return fmt.Sprintf("manifest set (%d export, %d skip, %d ignore)", e, sk, i)
}
