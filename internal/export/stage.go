package export

import (
	"fmt"
	"path/filepath"

	cp "github.com/otiai10/copy"

	"github.com/inpred/sadet/internal/manifest"
)

// Stage copies every manifest entry into stageDir, preserving the
// archive-relative layout, and rewrites the entry sources to point at the
// copies. Packaging then reads from the staging area instead of the live
// analysis tree.
func Stage(m *manifest.Manifest, stageDir string) error {
	for i := range m.Entries {
		e := &m.Entries[i]
		dest := filepath.Join(stageDir, filepath.FromSlash(e.Archive))

		if err := cp.Copy(e.Source, dest); err != nil {
			return fmt.Errorf("failed to stage %s: %w", e.Source, err)
		}
		e.Source = dest
	}
	return nil
}
