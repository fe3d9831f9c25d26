package manifest

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Entry is one file or directory selected for export. Archive names every
// path relative to the parent of the input directory, so unpacking an
// archive recreates the original top-level directory.
type Entry struct {
	// Source is the absolute path of the file on disk.
	Source string

	// Archive is the path recorded in the export list and the archive,
	// starting with the input directory's basename.
	Archive string

	// IsDir marks directory entries; these appear in the export list but
	// receive no individual checksum.
	IsDir bool

	// Checksum is the hex-encoded MD5 of the file contents, filled in by
	// the checksum stage. Empty for directories.
	Checksum string
}

// Manifest is the ordered list of entries consumed by the packaging and
// checksum stages.
type Manifest struct {
	Entries []Entry
}

// Build converts the exported paths of a set into a manifest. dirName is the
// basename of the input directory and becomes the leading component of every
// archive path.
func Build(set *Set, dirName string) *Manifest {
	m := &Manifest{}
	for _, rel := range set.Exported() {
		m.Entries = append(m.Entries, Entry{
			Source:  filepath.Join(set.Base(), filepath.FromSlash(rel)),
			Archive: path.Join(dirName, rel),
			IsDir:   set.IsDir(rel),
		})
	}
	return m
}

// Files returns the non-directory entries.
func (m *Manifest) Files() []Entry {
	var files []Entry
	for _, e := range m.Entries {
		if !e.IsDir {
			files = append(files, e)
		}
	}
	return files
}

// ArchivePaths returns the archive-relative paths of all entries, in order.
func (m *Manifest) ArchivePaths() []string {
	paths := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		paths[i] = e.Archive
	}
	return paths
}

// WriteLists writes the export and skip path list files consumed by tar and
// by the operator. Paths are written relative to the input directory's
// parent, one per line.
func WriteLists(set *Set, dirName, exportPath, skipPath string) error {
	var exportLines, skipLines strings.Builder
	for _, rel := range set.Exported() {
		exportLines.WriteString(path.Join(dirName, rel) + "\n")
	}
	for _, rel := range set.Skipped() {
		skipLines.WriteString(path.Join(dirName, rel) + "\n")
	}

	if err := os.WriteFile(exportPath, []byte(exportLines.String()), 0644); err != nil {
		return fmt.Errorf("failed to write export list: %w", err)
	}
	if err := os.WriteFile(skipPath, []byte(skipLines.String()), 0644); err != nil {
		return fmt.Errorf("failed to write skip list: %w", err)
	}
	return nil
}
