package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"

	logger "github.com/inpred/sadet/internal/logging"
	"github.com/inpred/sadet/internal/manifest"
)

func TestFileMD5_KnownValue(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "sadet-checksum-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "data.txt")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	sum, err := FileMD5(path)
	if err != nil {
		t.Fatalf("FileMD5 failed: %v", err)
	}
	if sum != "900150983cd24fb0d6963f7d28e17f72" {
		t.Errorf("Unexpected MD5 for \"abc\": %s", sum)
	}
}

func TestFileMD5_MissingFile(t *testing.T) {
	if _, err := FileMD5("/nonexistent/file"); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}

func TestWriteFileChecksums_MD5SumFormat(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "sadet-checksum-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	source := filepath.Join(tempDir, "calls.vcf")
	if err := os.WriteFile(source, []byte("abc"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	m := &manifest.Manifest{Entries: []manifest.Entry{
		{Archive: "Run042/Results", IsDir: true},
		{Source: source, Archive: "Run042/Results/calls.vcf"},
	}}

	outPath := filepath.Join(tempDir, "files.md5")
	if err := WriteFileChecksums(m, outPath); err != nil {
		t.Fatalf("WriteFileChecksums failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read checksum file: %v", err)
	}

	// Directories get no checksum line; files use md5sum's two-space format.
	want := "900150983cd24fb0d6963f7d28e17f72  Run042/Results/calls.vcf\n"
	if string(data) != want {
		t.Errorf("Expected %q, got %q", want, string(data))
	}

	// The manifest entry is updated in place for later verification.
	if m.Entries[1].Checksum != "900150983cd24fb0d6963f7d28e17f72" {
		t.Errorf("Checksum should be recorded on the entry, got %q", m.Entries[1].Checksum)
	}
}

func TestFileChecksums_ConcurrentWithBuiltinEngine(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "sadet-checksum-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	m := &manifest.Manifest{}
	for _, name := range []string{"calls.vcf", "metrics.tsv", "coverage.tsv"} {
		source := filepath.Join(tempDir, name)
		if err := os.WriteFile(source, []byte(name+" content\n"), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		m.Entries = append(m.Entries, manifest.Entry{Source: source, Archive: "Run042/" + name})
	}

	// Checksumming only reads the shared manifest while the engine runs;
	// the entries are updated once both sides have finished.
	engineOpts := EngineOptions{
		ArchivePath: filepath.Join(tempDir, "out.tar.gpg"),
		Passphrase:  "pw",
		Manifest:    m,
		Log:         logger.Logger{},
	}

	var sums []string
	var g errgroup.Group
	g.Go(func() error { return RunBuiltin(engineOpts) })
	g.Go(func() error {
		var err error
		sums, err = fileChecksums(m)
		return err
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("Concurrent packaging and checksumming failed: %v", err)
	}

	outPath := filepath.Join(tempDir, "files.md5")
	if err := storeFileChecksums(m, sums, outPath); err != nil {
		t.Fatalf("storeFileChecksums failed: %v", err)
	}

	for i := range m.Entries {
		want, err := FileMD5(m.Entries[i].Source)
		if err != nil {
			t.Fatalf("FileMD5 failed: %v", err)
		}
		if m.Entries[i].Checksum != want {
			t.Errorf("Entry %s checksum mismatch: got %q, want %q",
				m.Entries[i].Archive, m.Entries[i].Checksum, want)
		}
	}

	contents := decryptArchive(t, engineOpts.ArchivePath, "pw")
	if string(contents["Run042/calls.vcf"]) != "calls.vcf content\n" {
		t.Errorf("Archive content mismatch: %q", contents["Run042/calls.vcf"])
	}
}

func TestWriteArchiveChecksum(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "sadet-checksum-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	archive := filepath.Join(tempDir, "out.tar.gpg")
	if err := os.WriteFile(archive, []byte("abc"), 0644); err != nil {
		t.Fatalf("Failed to write archive: %v", err)
	}

	outPath := archive + ".md5"
	if err := WriteArchiveChecksum(archive, outPath); err != nil {
		t.Fatalf("WriteArchiveChecksum failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read checksum file: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, "900150983cd24fb0d6963f7d28e17f72  ") {
		t.Errorf("Unexpected checksum line: %q", line)
	}
	if !strings.HasSuffix(line, "out.tar.gpg") {
		t.Errorf("Checksum line should name the archive, got %q", line)
	}
}
