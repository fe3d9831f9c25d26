package export

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/packet"

	kerrors "github.com/inpred/sadet/internal/errors"
)

// RunBuiltin packages the manifest entries into a tar stream and encrypts it
// in-process with symmetric OpenPGP (AES-256). The result decrypts with
// `gpg -d --passphrase-file <pf>` exactly like an archive produced by the
// external engine.
func RunBuiltin(opts EngineOptions) error {
	out, err := os.Create(opts.ArchivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", opts.ArchivePath, err)
	}
	defer out.Close()

	cipherConfig := &packet.Config{DefaultCipher: packet.CipherAES256}
	encrypted, err := openpgp.SymmetricallyEncrypt(out, []byte(opts.Passphrase), nil, cipherConfig)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	tw := tar.NewWriter(encrypted)
	for _, entry := range opts.Manifest.Entries {
		if entry.IsDir {
			err = addTarTree(tw, entry.Source, entry.Archive)
		} else {
			err = addTarEntry(tw, entry.Source, entry.Archive, false)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("%w: failed to finalize archive: %v", kerrors.ErrEncryptFailed, err)
	}
	if err := encrypted.Close(); err != nil {
		return fmt.Errorf("%w: failed to finalize encryption: %v", kerrors.ErrEncryptFailed, err)
	}
	return nil
}

// addTarTree writes a directory and everything below it into the tar stream,
// matching the recursive behavior of a directory name on a tar command line.
func addTarTree(tw *tar.Writer, source, archiveName string) error {
	return filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", source, err)
		}
		name := archiveName
		if rel, err := filepath.Rel(source, path); err != nil {
			return fmt.Errorf("failed to walk %s: %w", source, err)
		} else if rel != "." {
			name += "/" + filepath.ToSlash(rel)
		}
		return addTarEntry(tw, path, name, d.IsDir())
	})
}

// addTarEntry writes one file or directory into the tar stream under its
// archive-relative name.
func addTarEntry(tw *tar.Writer, source, archiveName string, isDir bool) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", source, err)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("failed to build tar header for %s: %w", source, err)
	}
	header.Name = archiveName
	if isDir {
		header.Name += "/"
	}

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", source, err)
	}
	if isDir {
		return nil
	}

	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to archive %s: %w", source, err)
	}
	return nil
}
