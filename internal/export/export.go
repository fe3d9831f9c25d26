package export

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/inpred/sadet/internal/configs"
	kerrors "github.com/inpred/sadet/internal/errors"
	"github.com/inpred/sadet/internal/localapp"
	logger "github.com/inpred/sadet/internal/logging"
	"github.com/inpred/sadet/internal/logscan"
	"github.com/inpred/sadet/internal/manifest"
	"github.com/inpred/sadet/internal/patterns"
	"github.com/inpred/sadet/internal/sample"
	"github.com/inpred/sadet/internal/tsoppi"
	"github.com/inpred/sadet/internal/utils"
)

// defaultPrefixFormat is the output file prefix used when none is supplied.
const defaultPrefixFormat = "2006_01_02___15_04_05"

// Options carries a full export run configuration. All paths are host-system
// paths as supplied by the operator; Run converts them to container paths.
type Options struct {
	InputDir       string
	PassphraseFile string
	IDListFile     string
	OutputDir      string

	// InputType is patterns.InputLocalApp or patterns.InputTSOPPI.
	InputType string

	HostMountDir      string
	ContainerMountDir string

	// Prefix is the output file name prefix. Empty means a run timestamp.
	Prefix string

	ScriptOnly    bool
	Parallel      bool
	RequireInPreD bool
	ArchiveMD5    bool
	Overwrite     bool
	BuiltinCipher bool

	// StageDir optionally names a directory the selected files are copied
	// into before packaging.
	StageDir string

	// PatternsFile overrides the site config's pattern table, which in turn
	// overrides the embedded default.
	PatternsFile string

	Config *configs.SiteConfig

	// Verbose and Debug control the terminal log level; the run-log file
	// always receives INFO and up.
	Verbose bool
	Debug   bool
}

// Summary describes what an export run produced.
type Summary struct {
	Prefix        string
	RunLogPath    string
	ArchivePath   string
	ScriptPath    string
	ChecksumPath  string
	Engine        string
	SelectedCount int
	SkippedCount  int

	// NoOp is true when the run ended cleanly without producing an archive
	// (existing outputs without --overwrite, or nothing to export).
	NoOp bool
}

// Run executes a complete export: path conversion and validation, sample
// selection, list and script generation, packaging, encryption and
// checksumming. Clean no-op outcomes return a Summary with NoOp set and a
// nil error.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	prefix, err := resolvePrefix(opts.Prefix)
	if err != nil {
		return nil, err
	}

	inputDir, err := toContainerPath(opts.InputDir, "--input-dir", opts)
	if err != nil {
		return nil, err
	}
	passphraseFile, err := toContainerPath(opts.PassphraseFile, "--passphrase-file", opts)
	if err != nil {
		return nil, err
	}
	idListFile, err := toContainerPath(opts.IDListFile, "--id-list", opts)
	if err != nil {
		return nil, err
	}
	outputDir, err := toContainerPath(opts.OutputDir, "--output-dir", opts)
	if err != nil {
		return nil, err
	}
	stageDir := ""
	if opts.StageDir != "" {
		if stageDir, err = toContainerPath(opts.StageDir, "--stage-dir", opts); err != nil {
			return nil, err
		}
	}

	inputDir = filepath.Clean(inputDir)
	if info, err := os.Stat(inputDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrInputNotFound, opts.InputDir)
	}
	if err := ensureOutputDir(outputDir, opts.OutputDir); err != nil {
		return nil, err
	}

	stem := filepath.Join(outputDir, prefix+"_"+opts.InputType)
	summary := &Summary{
		Prefix:      prefix,
		RunLogPath:  stem + ".log",
		ArchivePath: stem + ".tar.gpg",
	}
	exportListPath := stem + "_files_to_export.txt"
	skipListPath := stem + "_files_to_skip.txt"

	sink, err := logger.NewSink(summary.RunLogPath)
	if err != nil {
		return nil, err
	}
	defer sink.Close()
	log := logger.Logger{Verbose: opts.Verbose, Debug: opts.Debug, Sink: sink}

	log.Infof("Starting a SADET %s export run (output prefix: %q).", opts.InputType, prefix)

	if !opts.Overwrite {
		for _, existing := range []string{summary.ArchivePath, exportListPath} {
			if _, err := os.Stat(existing); err == nil {
				log.Infof("Output file %q already exists and --overwrite was not specified."+
					" Nothing will be done.", existing)
				summary.NoOp = true
				return summary, nil
			}
		}
	}

	passphrase, err := ReadPassphrase(passphraseFile)
	if err != nil {
		return nil, log.ErrorfAndReturn("%v", err)
	}

	idPrefixes, err := sample.LoadIDList(idListFile, log)
	if err != nil {
		return nil, log.ErrorfAndReturn("%v", err)
	}
	log.Infof("%d sample ID prefixes loaded from the ID list.", len(idPrefixes))

	patternsFile := opts.PatternsFile
	if patternsFile == "" && opts.Config != nil {
		patternsFile = opts.Config.PatternsFile
	}
	rules, err := patterns.Load(patternsFile, opts.InputType)
	if err != nil {
		return nil, log.ErrorfAndReturn("%v", err)
	}

	set, err := collectPaths(opts, inputDir, idPrefixes, rules, prefix, outputDir, log)
	if err != nil {
		return nil, err
	}
	if set == nil {
		log.Infof("No files qualified for extraction. Nothing will be done.")
		summary.NoOp = true
		return summary, nil
	}

	exported, skipped, _ := set.Counts()
	summary.SelectedCount = exported
	summary.SkippedCount = skipped
	log.Infof("%d paths selected for export, %d paths skipped.", exported, skipped)

	dirName := filepath.Base(inputDir)
	parentDir := filepath.Dir(inputDir)

	// The path lists are written even when nothing was selected, so the
	// operator can review what a run skipped and why.
	if err := manifest.WriteLists(set, dirName, exportListPath, skipListPath); err != nil {
		return nil, log.ErrorfAndReturn("%v", err)
	}
	log.Infof("Export and skip path lists written to the output directory.")

	if exported == 0 {
		log.Infof("No files qualified for extraction. Nothing will be done.")
		summary.NoOp = true
		return summary, nil
	}

	m := manifest.Build(set, dirName)

	if stageDir != "" {
		if err := os.MkdirAll(stageDir, 0755); err != nil {
			return nil, log.ErrorfAndReturn("failed to create staging directory: %v", err)
		}
		log.Infof("Staging %d selected paths into %q...", len(m.Entries), stageDir)
		if err := Stage(m, stageDir); err != nil {
			return nil, log.ErrorfAndReturn("%v", err)
		}
		parentDir = stageDir
	}

	summary.ChecksumPath = stem + "_individual_files.md5"
	if opts.ArchiveMD5 {
		summary.ChecksumPath = summary.ArchivePath + ".md5"
	}

	scriptOpts := ScriptOptions{
		ParentDir:      parentDir,
		ListPath:       exportListPath,
		PassphraseFile: passphraseFile,
		ArchivePath:    summary.ArchivePath,
		MD5Path:        summary.ChecksumPath,
		ArchiveMD5:     opts.ArchiveMD5,
		Parallel:       opts.Parallel,
		StdoutLog:      stem + "_export_script_stdout.log",
		StderrLog:      stem + "_export_script_stderr.log",
	}
	for _, e := range m.Files() {
		scriptOpts.FilePaths = append(scriptOpts.FilePaths, e.Archive)
	}

	summary.ScriptPath = stem + "_container_export.sh"
	if opts.ScriptOnly {
		summary.ScriptPath = stem + "_host_system_export.sh"
		if scriptOpts, err = toHostScript(scriptOpts, opts); err != nil {
			return nil, log.ErrorfAndReturn("%v", err)
		}
	}
	if err := GenerateScript(summary.ScriptPath, scriptOpts); err != nil {
		return nil, log.ErrorfAndReturn("%v", err)
	}
	log.Infof("Export script written to %q.", summary.ScriptPath)

	if opts.ScriptOnly {
		log.Infof("Script-only mode: packaging and encryption are left to the generated script.")
		summary.Engine = "script-only"
		return summary, nil
	}

	engineOpts := EngineOptions{
		ParentDir:      parentDir,
		ListPath:       exportListPath,
		ArchivePath:    summary.ArchivePath,
		PassphraseFile: passphraseFile,
		Passphrase:     passphrase,
		Manifest:       m,
		Log:            log,
	}

	summary.Engine = "external"
	if opts.BuiltinCipher {
		summary.Engine = "builtin"
	} else if !GPGAvailable() {
		log.Warnf("No gpg binary found in PATH. Falling back to the built-in OpenPGP engine.")
		summary.Engine = "builtin"
	}

	if err := runPackaging(ctx, opts, engineOpts, m, summary, log); err != nil {
		return nil, err
	}

	log.Infof("Export run finished. Encrypted archive: %q.", summary.ArchivePath)
	return summary, nil
}

// collectPaths dispatches to the input-type specific walker and returns the
// resulting path classification. A nil set means a clean "nothing to do".
func collectPaths(opts Options, inputDir string, idPrefixes []string,
	rules patterns.Table, prefix, outputDir string, log logger.Logger) (*manifest.Set, error) {

	switch opts.InputType {
	case patterns.InputLocalApp:
		if err := scanInheritedErrors(opts, inputDir, prefix, outputDir, log); err != nil {
			return nil, err
		}

		result, err := localapp.Collect(localapp.Options{
			InputDir:      inputDir,
			HostInputDir:  opts.InputDir,
			IDPrefixes:    idPrefixes,
			RequireInPreD: opts.RequireInPreD,
			Rules:         rules,
			Log:           log,
		})
		if err != nil {
			return nil, log.ErrorfAndReturn("%v", err)
		}
		if result.SampleCount() == 0 {
			return nil, nil
		}
		return result.Set, nil

	case patterns.InputTSOPPI:
		result, err := tsoppi.Collect(tsoppi.Options{
			InputDir:      inputDir,
			IDPrefixes:    idPrefixes,
			RequireInPreD: opts.RequireInPreD,
			Rules:         rules,
			Log:           log,
		})
		if err != nil {
			return nil, log.ErrorfAndReturn("%v", err)
		}
		return result.Set, nil

	default:
		return nil, log.ErrorfAndReturn("unknown input type %q (expected %q or %q)",
			opts.InputType, patterns.InputLocalApp, patterns.InputTSOPPI)
	}
}

// scanInheritedErrors runs the LocalApp log-error scan and records any
// findings next to the other run outputs.
func scanInheritedErrors(opts Options, inputDir, prefix, outputDir string, log logger.Logger) error {
	cfg := configs.DefaultSiteConfig().Scan
	if opts.Config != nil {
		cfg = opts.Config.Scan
	}

	scanner, err := logscan.New(cfg)
	if err != nil {
		return log.ErrorfAndReturn("%v", err)
	}
	findings, err := scanner.Scan(inputDir)
	if err != nil {
		return log.ErrorfAndReturn("%v", err)
	}

	if len(findings) == 0 {
		log.Infof("No inherited error messages found in the LocalApp logs.")
		return nil
	}

	path := filepath.Join(outputDir, prefix+"_LocalApp_inherited_errors.txt")
	if err := logscan.WriteFindings(path, findings); err != nil {
		return log.ErrorfAndReturn("%v", err)
	}
	log.Warnf("%d inherited error messages found in the LocalApp logs;"+
		" details written to %q.", len(findings), path)
	return nil
}

// runPackaging executes the packaging engine and the checksum stage, either
// sequentially or concurrently. The archive checksum always runs after the
// archive exists.
func runPackaging(ctx context.Context, opts Options, engineOpts EngineOptions,
	m *manifest.Manifest, summary *Summary, log logger.Logger) error {

	runEngine := func() error {
		if summary.Engine == "builtin" {
			return RunBuiltin(engineOpts)
		}
		return RunExternal(ctx, engineOpts)
	}

	if opts.Parallel && !opts.ArchiveMD5 {
		log.Infof("Packaging and file checksumming will run in parallel.")
		// The engine goroutine reads the manifest entries, so the checksum
		// goroutine must not write to them until both have finished.
		var sums []string
		g, _ := errgroup.WithContext(ctx)
		g.Go(runEngine)
		g.Go(func() error {
			var err error
			sums, err = fileChecksums(m)
			return err
		})
		if err := g.Wait(); err != nil {
			return log.ErrorfAndReturn("%v", err)
		}
		if err := storeFileChecksums(m, sums, summary.ChecksumPath); err != nil {
			return log.ErrorfAndReturn("%v", err)
		}
		return nil
	}

	if err := runEngine(); err != nil {
		return log.ErrorfAndReturn("%v", err)
	}
	if opts.ArchiveMD5 {
		if err := WriteArchiveChecksum(summary.ArchivePath, summary.ChecksumPath); err != nil {
			return log.ErrorfAndReturn("%v", err)
		}
	} else {
		if err := WriteFileChecksums(m, summary.ChecksumPath); err != nil {
			return log.ErrorfAndReturn("%v", err)
		}
	}
	return nil
}

// resolvePrefix validates the operator-supplied output prefix or falls back
// to a run timestamp.
func resolvePrefix(prefix string) (string, error) {
	if prefix == "" {
		return time.Now().Format(defaultPrefixFormat), nil
	}
	if !utils.IsValidOutputPrefix(prefix) {
		return "", fmt.Errorf("%w: %q (forbidden characters: %q)",
			kerrors.ErrForbiddenPrefix, prefix, utils.ForbiddenPrefixChars(prefix))
	}
	return prefix, nil
}

// toContainerPath rewrites a host-system path into its container equivalent.
func toContainerPath(path, flag string, opts Options) (string, error) {
	ok, converted := utils.ConvertPath(path, opts.HostMountDir, opts.ContainerMountDir)
	if !ok {
		return "", fmt.Errorf("%w: %s value %q does not start with %q",
			kerrors.ErrPrefixMissing, flag, path, opts.HostMountDir)
	}
	return converted, nil
}

// toHostScript rewrites every container path in the script options back into
// a host-system path, so the generated script can run outside the container.
func toHostScript(s ScriptOptions, opts Options) (ScriptOptions, error) {
	for _, p := range []*string{
		&s.ParentDir, &s.ListPath, &s.PassphraseFile,
		&s.ArchivePath, &s.MD5Path, &s.StdoutLog, &s.StderrLog,
	} {
		ok, converted := utils.ConvertPath(*p, opts.ContainerMountDir, opts.HostMountDir)
		if !ok {
			return s, fmt.Errorf("%w: cannot express %q as a host system path",
				kerrors.ErrPrefixMissing, *p)
		}
		*p = converted
	}
	return s, nil
}

// ensureOutputDir creates the output directory, requiring its parent to
// already exist.
func ensureOutputDir(dir, hostDir string) error {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return nil
	}
	if info, err := os.Stat(filepath.Dir(dir)); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", kerrors.ErrOutputDirParent, hostDir)
	}
	if err := os.Mkdir(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}

// ReadPassphrase reads and validates the first line of the passphrase file.
// An empty first line or embedded whitespace is rejected; a trailing newline
// is the only tolerated decoration.
func ReadPassphrase(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open passphrase file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read passphrase file %s: %w", path, err)
		}
		return "", fmt.Errorf("%w: %s is empty", kerrors.ErrPassphraseFormat, path)
	}

	passphrase := scanner.Text()
	if passphrase == "" {
		return "", fmt.Errorf("%w: %s starts with an empty line", kerrors.ErrPassphraseFormat, path)
	}
	if strings.ContainsAny(passphrase, " \t") {
		return "", fmt.Errorf("%w: the passphrase in %s contains whitespace", kerrors.ErrPassphraseFormat, path)
	}

	return passphrase, nil
}
