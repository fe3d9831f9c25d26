package export

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inpred/sadet/internal/manifest"
)

// FileMD5 returns the hex-encoded MD5 checksum of the file at path.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for checksumming: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to checksum %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// fileChecksums computes the MD5 of every regular file in the manifest and
// returns the sums in entry order, with empty strings for directories. It
// only reads the manifest, so it is safe to run while a packaging engine
// reads the same entries.
func fileChecksums(m *manifest.Manifest) ([]string, error) {
	sums := make([]string, len(m.Entries))
	for i := range m.Entries {
		if m.Entries[i].IsDir {
			continue
		}
		sum, err := FileMD5(m.Entries[i].Source)
		if err != nil {
			return nil, err
		}
		sums[i] = sum
	}
	return sums, nil
}

// storeFileChecksums records the sums on the manifest entries and writes
// them to outPath in md5sum format, keyed by the archive-relative path so
// the receiving site can verify after unpacking.
func storeFileChecksums(m *manifest.Manifest, sums []string, outPath string) error {
	var lines strings.Builder
	for i := range m.Entries {
		if m.Entries[i].IsDir {
			continue
		}
		m.Entries[i].Checksum = sums[i]
		lines.WriteString(sums[i] + "  " + m.Entries[i].Archive + "\n")
	}

	if err := os.WriteFile(outPath, []byte(lines.String()), 0644); err != nil {
		return fmt.Errorf("failed to write checksum file: %w", err)
	}
	return nil
}

// WriteFileChecksums computes and writes the per-file checksums in one step.
func WriteFileChecksums(m *manifest.Manifest, outPath string) error {
	sums, err := fileChecksums(m)
	if err != nil {
		return err
	}
	return storeFileChecksums(m, sums, outPath)
}

// WriteArchiveChecksum computes the MD5 of the encrypted archive and writes
// it to outPath in md5sum format.
func WriteArchiveChecksum(archivePath, outPath string) error {
	sum, err := FileMD5(archivePath)
	if err != nil {
		return err
	}

	line := sum + "  " + archivePath + "\n"
	if err := os.WriteFile(outPath, []byte(line), 0644); err != nil {
		return fmt.Errorf("failed to write archive checksum file: %w", err)
	}
	return nil
}
