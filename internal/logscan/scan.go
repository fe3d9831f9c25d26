package logscan

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/inpred/sadet/internal/configs"
	kerrors "github.com/inpred/sadet/internal/errors"

	"github.com/gobwas/glob"
)

// LogsDir is the LocalApp sub-directory whose log files are scanned.
const LogsDir = "Logs_Intermediates"

// Finding is one suspicious log line inherited from the LocalApp run.
type Finding struct {
	// File is the log file path relative to the LocalApp output directory.
	File string

	// Line is the 1-based line number within the file.
	Line int

	// Text is the matching line, verbatim.
	Text string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%s", f.File, f.Line, f.Text)
}

// Scanner scans LocalApp log trees for error messages, replacing the
// grep-based log check of earlier SADET versions.
type Scanner struct {
	errRe    *regexp.Regexp
	excludes []glob.Glob
	includes []glob.Glob
}

// New compiles a scanner from the site scan configuration.
func New(cfg configs.ScanConfig) (*Scanner, error) {
	errRe, err := regexp.Compile(cfg.ErrorPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid scan error pattern %q: %w", cfg.ErrorPattern, err)
	}

	s := &Scanner{errRe: errRe}
	for _, pattern := range cfg.Exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid scan exclude pattern %q: %w", pattern, err)
		}
		s.excludes = append(s.excludes, g)
	}
	for _, pattern := range cfg.IncludeGlobs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid scan include pattern %q: %w", pattern, err)
		}
		s.includes = append(s.includes, g)
	}

	return s, nil
}

// Scan walks the Logs_Intermediates tree under the given LocalApp output
// directory and returns every non-benign error line. A LocalApp directory
// without Logs_Intermediates yields ErrNoLogsIntermediates.
func (s *Scanner) Scan(localAppDir string) ([]Finding, error) {
	root := filepath.Join(localAppDir, LogsDir)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, kerrors.ErrNoLogsIntermediates
	}

	var findings []Finding
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !s.wantFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(localAppDir, path)
		if err != nil {
			return err
		}

		fileFindings, err := s.scanFile(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		findings = append(findings, fileFindings...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan LocalApp logs: %w", err)
	}

	return findings, nil
}

func (s *Scanner) wantFile(name string) bool {
	for _, g := range s.includes {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (s *Scanner) scanFile(path, rel string) ([]Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	defer f.Close()

	var findings []Finding
	scanner := bufio.NewScanner(f)
	// LocalApp log lines can be long; give the scanner room.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !s.errRe.MatchString(line) {
			continue
		}
		if s.benign(line) {
			continue
		}
		findings = append(findings, Finding{File: rel, Line: lineNo, Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file %s: %w", path, err)
	}

	return findings, nil
}

func (s *Scanner) benign(line string) bool {
	for _, g := range s.excludes {
		if g.Match(line) {
			return true
		}
	}
	return false
}

// WriteFindings writes the findings to path, one per line, in
// file:line:text format.
func WriteFindings(path string, findings []Finding) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create inherited errors file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, finding := range findings {
		fmt.Fprintln(w, finding.String())
	}
	return w.Flush()
}
