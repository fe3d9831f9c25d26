package export

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	kerrors "github.com/inpred/sadet/internal/errors"
	logger "github.com/inpred/sadet/internal/logging"
	"github.com/inpred/sadet/internal/manifest"
)

// EngineOptions carries everything a packaging engine needs to produce the
// encrypted archive.
type EngineOptions struct {
	// ParentDir is the directory the archive paths are relative to (the
	// parent of the input directory, or the staging directory).
	ParentDir string

	// ListPath is the export file list consumed by tar -T.
	ListPath string

	// ArchivePath is the destination .tar.gpg file.
	ArchivePath string

	// PassphraseFile is the passphrase file handed to the external gpg
	// binary.
	PassphraseFile string

	// Passphrase is the passphrase itself, used by the builtin engine.
	Passphrase string

	// Manifest lists the selected entries, used by the builtin engine.
	Manifest *manifest.Manifest

	Log logger.Logger
}

// GPGAvailable reports whether the external gpg binary can be found in PATH.
func GPGAvailable() bool {
	_, err := exec.LookPath("gpg")
	return err == nil
}

// RunExternal streams `tar -c` into `gpg -c` the same way the generated
// export script does, so a native run and a script run produce equivalent
// archives. Stderr of both processes is captured and attached to any error.
func RunExternal(ctx context.Context, opts EngineOptions) error {
	if !GPGAvailable() {
		return kerrors.ErrGPGNotFound
	}

	tarCmd := exec.CommandContext(ctx, "tar",
		"-C", opts.ParentDir, "-T", opts.ListPath, "-c")
	gpgCmd := exec.CommandContext(ctx, "gpg",
		"-c", "--passphrase-file", opts.PassphraseFile,
		"--batch", "--yes", "--cipher-algo", "aes256",
		"-o", opts.ArchivePath)

	var tarStderr, gpgStderr bytes.Buffer
	tarCmd.Stderr = &tarStderr
	gpgCmd.Stderr = &gpgStderr

	pipe, err := tarCmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to connect tar to gpg: %w", err)
	}
	gpgCmd.Stdin = pipe

	opts.Log.Debugf("running: %s | %s", strings.Join(tarCmd.Args, " "), strings.Join(gpgCmd.Args, " "))

	if err := tarCmd.Start(); err != nil {
		return fmt.Errorf("failed to start tar: %w", err)
	}
	if err := gpgCmd.Start(); err != nil {
		_ = tarCmd.Process.Kill()
		_ = tarCmd.Wait()
		return fmt.Errorf("failed to start gpg: %w", err)
	}

	tarErr := tarCmd.Wait()
	gpgErr := gpgCmd.Wait()

	if tarErr != nil {
		return fmt.Errorf("%w: tar failed: %v (stderr: %s)",
			kerrors.ErrEncryptFailed, tarErr, strings.TrimSpace(tarStderr.String()))
	}
	if gpgErr != nil {
		return fmt.Errorf("%w: gpg failed: %v (stderr: %s)",
			kerrors.ErrEncryptFailed, gpgErr, strings.TrimSpace(gpgStderr.String()))
	}

	return nil
}
