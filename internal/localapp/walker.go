package localapp

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	kerrors "github.com/inpred/sadet/internal/errors"
	logger "github.com/inpred/sadet/internal/logging"
	"github.com/inpred/sadet/internal/manifest"
	"github.com/inpred/sadet/internal/patterns"
	"github.com/inpred/sadet/internal/sample"

	"github.com/bmatcuk/doublestar/v4"
)

// Fixed locations within a LocalApp output directory.
const (
	sampleSheetGlob = "Logs_Intermediates/SamplesheetValidation/*_SampleSheet.csv"
	topLogGlob      = "trusight-oncology-500-ruo_ruo-2.2.0.12*.log"

	// fastqStepMarker appears in the top-level log when the analysis was
	// started from BCL files and FASTQ generation ran as a pipeline step.
	fastqStepMarker = `stepName "FastqGeneration"`
)

// SampleInfo describes a sheet sample that qualified for extraction.
type SampleInfo struct {
	PairID        string
	MatchedPrefix string
}

// Options configures a LocalApp collection pass.
type Options struct {
	// InputDir is the LocalApp output directory (container path).
	InputDir string

	// HostInputDir is the same directory as seen on the host system; it is
	// only used in operator-facing messages.
	HostInputDir string

	// IDPrefixes are the approved sample ID prefixes from the ID list.
	IDPrefixes []string

	// RequireInPreD rejects sheet samples whose ID does not follow the
	// InPreD nomenclature.
	RequireInPreD bool

	// Rules is the LocalApp extraction pattern table.
	Rules patterns.Table

	Log logger.Logger
}

// Result is the outcome of a LocalApp collection pass.
type Result struct {
	// Set classifies every path under the input directory.
	Set *manifest.Set

	// Version is the detected sample sheet version.
	Version SheetVersion

	// DNASamples and RNASamples map qualifying sample IDs to their sheet
	// information.
	DNASamples map[string]SampleInfo
	RNASamples map[string]SampleInfo

	// FromBCL is true when the analysis was started from BCL files.
	FromBCL bool
}

// SampleCount returns the total number of qualifying samples.
func (r *Result) SampleCount() int {
	return len(r.DNASamples) + len(r.RNASamples)
}

// Collect validates the LocalApp output directory, identifies the samples
// qualifying for extraction, and classifies every path in the tree.
func Collect(opts Options) (*Result, error) {
	log := opts.Log

	if info, err := os.Stat(filepath.Join(opts.InputDir, "Logs_Intermediates")); err != nil || !info.IsDir() {
		return nil, kerrors.ErrNoLogsIntermediates
	}

	sheetPath, err := singleMatch(opts.InputDir, sampleSheetGlob, "sample sheet", opts.HostInputDir, log)
	if err != nil {
		return nil, err
	}
	topLogPath, err := singleMatch(opts.InputDir, topLogGlob, "log file", opts.HostInputDir, log)
	if err != nil {
		return nil, err
	}

	sheet, err := ParseSampleSheet(sheetPath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Version:    sheet.Version,
		DNASamples: make(map[string]SampleInfo),
		RNASamples: make(map[string]SampleInfo),
	}

	for _, row := range sheet.Rows {
		matches := sample.MatchPrefix(row.ID, opts.IDPrefixes)
		if len(matches) == 0 {
			log.Infof("Skipping %s sample %q (no ID match).", row.Type, row.ID)
			continue
		}
		if opts.RequireInPreD && !sample.IsInPreDID(row.ID) {
			log.Warnf("The following sample ID doesn't comply with"+
				" the InPreD ID nomenclature: %q. The sample will be ignored.", row.ID)
			continue
		}

		info := SampleInfo{PairID: row.PairID, MatchedPrefix: matches[0]}
		switch row.Type {
		case SampleTypeDNA:
			result.DNASamples[row.ID] = info
		case SampleTypeRNA:
			result.RNASamples[row.ID] = info
		default:
			return nil, fmt.Errorf("%w (sample ID: %q, sample type: %q)",
				kerrors.ErrUnknownSampleType, row.ID, row.Type)
		}
	}

	logSampleSummary(log, result)

	if result.SampleCount() == 0 {
		return result, nil
	}

	result.FromBCL, err = detectBCLStart(topLogPath)
	if err != nil {
		return nil, err
	}
	if result.FromBCL {
		log.Infof("Expecting output for a LocalApp analysis starting from BCL files.")
	} else {
		log.Infof("Expecting output for a LocalApp analysis starting from FASTQ files.")
	}

	result.Set = manifest.NewSet(opts.InputDir)
	if err := result.Set.Collect(""); err != nil {
		return nil, fmt.Errorf("failed to list input directory contents: %w", err)
	}

	if err := applyGeneralRules(opts, result); err != nil {
		return nil, err
	}
	if err := applySampleRules(opts, result); err != nil {
		return nil, err
	}

	return result, nil
}

// singleMatch resolves a glob that must match exactly one file.
func singleMatch(dir, pattern, fileType, hostDir string, log logger.Logger) (string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("failed to search for %s: %w", fileType, err)
	}

	hostPattern := filepath.Join(hostDir, pattern)
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no %s found at the expected location (%q)",
			kerrors.ErrSingleFileExpected, fileType, hostPattern)
	case 1:
		log.Infof(" - The following %s will be utilized: %q.", fileType, matches[0])
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: multiple %ss found at the expected location (%q)",
			kerrors.ErrSingleFileExpected, fileType, hostPattern)
	}
}

func logSampleSummary(log logger.Logger, result *Result) {
	if result.Version == SheetV1 {
		log.Infof("Sample sheet version v1 detected.")
	} else if result.Version == SheetV2 {
		log.Infof("Sample sheet version v2 detected.")
	}

	for _, group := range []struct {
		label   string
		samples map[string]SampleInfo
	}{
		{"DNA", result.DNASamples},
		{"RNA", result.RNASamples},
	} {
		log.Infof("%d %s samples with an ID match identified (sample ID [pair_ID] //matching_pattern):",
			len(group.samples), group.label)
		for _, id := range sortedSampleIDs(group.samples) {
			info := group.samples[id]
			log.Infof("  - %q [%q] //%q", id, info.PairID, info.MatchedPrefix)
		}
	}
}

func detectBCLStart(topLogPath string) (bool, error) {
	f, err := os.Open(topLogPath)
	if err != nil {
		return false, fmt.Errorf("failed to open LocalApp log %s: %w", topLogPath, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.Contains(scanner.Text(), fastqStepMarker) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

func applyGeneralRules(opts Options, result *Result) error {
	for _, category := range []string{patterns.CategoryGeneralAll, patterns.CategoryGeneralBCL} {
		// Analyses started from FASTQ files have no BCL-derived output.
		if category == patterns.CategoryGeneralBCL && !result.FromBCL {
			continue
		}
		for _, rule := range opts.Rules[category] {
			if err := applyRule(opts, result, rule, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

func applySampleRules(opts Options, result *Result) error {
	for _, category := range []string{
		patterns.CategorySampleDNA,
		patterns.CategorySampleRNA,
		patterns.CategorySampleDNABCL,
		patterns.CategorySampleRNABCL,
	} {
		bclCategory := category == patterns.CategorySampleDNABCL || category == patterns.CategorySampleRNABCL
		if bclCategory && !result.FromBCL {
			continue
		}

		samples := result.DNASamples
		if category == patterns.CategorySampleRNA || category == patterns.CategorySampleRNABCL {
			samples = result.RNASamples
		}

		for _, id := range sortedSampleIDs(samples) {
			values := map[string]string{
				"SAMPLE_ID": id,
				"PAIR_ID":   samples[id].PairID,
			}
			for _, rule := range opts.Rules[category] {
				if err := applyRule(opts, result, rule.Expand(values), id); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func applyRule(opts Options, result *Result, rule patterns.Rule, sampleID string) error {
	re, err := rule.Compile()
	if err != nil {
		return err
	}

	found := result.Set.Reclassify(re)
	if found < rule.MinCount {
		if sampleID != "" {
			opts.Log.Warnf("Too few matches found for the following path pattern for sample %q: %q"+
				" (%d matches expected, %d found).",
				sampleID, opts.InputDir+"/"+rule.Pattern, rule.MinCount, found)
		} else {
			opts.Log.Warnf("Too few matches found for the following path pattern: %q"+
				" (%d matches expected, %d found).",
				opts.InputDir+"/"+rule.Pattern, rule.MinCount, found)
		}
	}
	return nil
}

func sortedSampleIDs(samples map[string]SampleInfo) []string {
	ids := make([]string, 0, len(samples))
	for id := range samples {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
