// Package shared contains testing utilities shared between integration tests.
// This file provides common functions for building a test CLI, capturing
// output, and isolating the audit trail.
package shared

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/inpred/sadet/cmd"

	"github.com/spf13/cobra"
)

// CreateTestCLI builds a root command carrying the real SADET subcommands
// and primes it with the given subcommand and arguments.
func CreateTestCLI(subcommand string, args ...string) *cobra.Command {
	cmd.ResetGlobalState()

	root := &cobra.Command{Use: "sadet", SilenceUsage: true}
	root.AddCommand(cmd.ExportCmd)
	root.AddCommand(cmd.ScanCmd)
	root.AddCommand(cmd.LogCmd)
	root.AddCommand(cmd.VersionCmd)
	root.SetArgs(append([]string{subcommand}, args...))
	return root
}

// RedirectAuditLog points the audit trail at a file inside a fresh temp
// directory for the duration of the test.
func RedirectAuditLog(t *testing.T) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "sadet-test-audit-*")
	if err != nil {
		t.Fatalf("Failed to create temp audit directory: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	logPath := filepath.Join(tempDir, "audit.jsonl")
	original, hadOriginal := os.LookupEnv("SADET_AUDIT_LOG")
	os.Setenv("SADET_AUDIT_LOG", logPath)
	t.Cleanup(func() {
		if hadOriginal {
			os.Setenv("SADET_AUDIT_LOG", original)
		} else {
			os.Unsetenv("SADET_AUDIT_LOG")
		}
	})

	return logPath
}

// CaptureOutput captures both stdout and stderr during function execution.
func CaptureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	var stdoutBuf, stderrBuf bytes.Buffer
	_, _ = io.Copy(&stdoutBuf, stdoutReader)
	_, _ = io.Copy(&stderrBuf, stderrReader)

	return stdoutBuf.String() + stderrBuf.String(), err
}
