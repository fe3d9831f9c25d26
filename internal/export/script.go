package export

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ScriptOptions configures the generated export shell script. All paths must
// already be expressed for the system the script will run on (container or
// host).
type ScriptOptions struct {
	ParentDir      string
	ListPath       string
	PassphraseFile string
	ArchivePath    string
	MD5Path        string

	// FilePaths lists the archive-relative regular files for file-level
	// checksumming. Ignored when ArchiveMD5 is set.
	FilePaths []string

	ArchiveMD5 bool
	Parallel   bool

	// StdoutLog and StderrLog receive tee'd copies of the script output.
	StdoutLog string
	StderrLog string
}

// GenerateScript writes an executable shell script that reproduces the
// packaging, encryption and checksum steps of a native run. The script is
// always generated so an operator can rerun or audit the export outside of
// SADET; with --script-only it is the run's primary product.
func GenerateScript(path string, opts ScriptOptions) error {
	var b strings.Builder

	b.WriteString("#!/bin/bash\n\n")
	fmt.Fprintf(&b, "# SADET export script, generated %s.\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("# Packages and encrypts the selected analysis output files.\n\n")

	fmt.Fprintf(&b, "exec 1> >(tee %q)\n", opts.StdoutLog)
	fmt.Fprintf(&b, "exec 2> >(tee %q >&2)\n\n", opts.StderrLog)

	b.WriteString("date\n")
	// Give the tee processes time to attach before real output starts.
	b.WriteString("sleep 2\n\n")

	fmt.Fprintf(&b, "if [ -f %q ]; then\n", opts.ArchivePath)
	fmt.Fprintf(&b, "    rm %q\n", opts.ArchivePath)
	b.WriteString("fi\n\n")

	background := ""
	if opts.Parallel && !opts.ArchiveMD5 {
		background = " &"
	}

	fmt.Fprintf(&b, "tar -C %q -T %q -c | "+
		"gpg -c --passphrase-file %q --batch --yes --cipher-algo aes256 -o %q%s\n\n",
		opts.ParentDir, opts.ListPath, opts.PassphraseFile, opts.ArchivePath, background)

	if opts.ArchiveMD5 {
		// The archive checksum can only run once the archive exists.
		fmt.Fprintf(&b, "md5sum %q > %q\n\n", opts.ArchivePath, opts.MD5Path)
	} else if len(opts.FilePaths) > 0 {
		b.WriteString("(\n")
		fmt.Fprintf(&b, "    cd %q\n", opts.ParentDir)
		b.WriteString("    md5sum \\\n")
		for _, p := range opts.FilePaths {
			fmt.Fprintf(&b, "        %q \\\n", p)
		}
		fmt.Fprintf(&b, "    > %q\n", opts.MD5Path)
		fmt.Fprintf(&b, ")%s\n\n", background)
	}

	if background != "" {
		b.WriteString("wait\n\n")
	}

	b.WriteString("date\n")

	if err := os.WriteFile(path, []byte(b.String()), 0755); err != nil {
		return fmt.Errorf("failed to write export script: %w", err)
	}
	return nil
}
