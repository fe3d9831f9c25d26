package tsoppi

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	kerrors "github.com/inpred/sadet/internal/errors"
	logger "github.com/inpred/sadet/internal/logging"
	"github.com/inpred/sadet/internal/manifest"
	"github.com/inpred/sadet/internal/patterns"
	"github.com/inpred/sadet/internal/sample"
)

// SampleListFile marks a patient directory as eligible for inspection;
// directories without it are skipped.
const SampleListFile = "sample_list.tsv"

// Sample types listed in TSOPPI sample list files.
const (
	SampleDNATumor  = "DNA_tumor"
	SampleDNANormal = "DNA_normal"
	SampleRNATumor  = "RNA_tumor"
)

// Required sample list columns (in the #-prefixed header row).
var listColumns = []string{"sample_type", "sample_output_ID"}

// Options configures a TSOPPI collection pass.
type Options struct {
	// InputDir is the TSOPPI output directory (container path).
	InputDir string

	// IDPrefixes are the approved sample ID prefixes from the ID list.
	IDPrefixes []string

	// RequireInPreD rejects samples whose ID does not follow the InPreD
	// nomenclature.
	RequireInPreD bool

	// Rules is the TSOPPI extraction pattern table.
	Rules patterns.Table

	Log logger.Logger
}

// Result is the outcome of a TSOPPI collection pass.
type Result struct {
	// Set classifies every inspected path under the input directory.
	Set *manifest.Set

	// EligiblePatients counts patient directories whose samples all
	// qualified for extraction.
	EligiblePatients int
}

// Collect walks the level-1 entries of a TSOPPI output directory. Each
// patient sub-directory carrying a sample_list.tsv is checked for
// extraction eligibility; directories with any non-qualifying sample are
// skipped as a whole, and unrecognized entries are skipped rather than
// failing the run.
func Collect(opts Options) (*Result, error) {
	log := opts.Log

	entries, err := os.ReadDir(opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list TSOPPI directory %s: %w", opts.InputDir, err)
	}

	result := &Result{Set: manifest.NewSet(opts.InputDir)}

	for _, entry := range entries {
		if !entry.IsDir() {
			result.Set.MarkSkip(entry.Name(), false)
			continue
		}

		log.Infof("Checking sub-directory %q for sample extraction eligibility...", entry.Name())

		listPath := filepath.Join(opts.InputDir, entry.Name(), SampleListFile)
		if _, err := os.Stat(listPath); err != nil {
			log.Warnf(" - No %q file found. The directory will be skipped.", SampleListFile)
			result.Set.MarkSkip(entry.Name(), true)
			continue
		}
		log.Infof(" - File %q found, its content will be checked for eligible samples.", SampleListFile)

		eligible, allEligible, err := checkSampleList(listPath, opts)
		if err != nil {
			return nil, err
		}
		if !allEligible {
			log.Infof(" - Not all listed samples are eligible for extraction. The directory will be skipped.")
			result.Set.MarkSkip(entry.Name(), true)
			continue
		}

		log.Infof(" - All listed samples are eligible for extraction. Processing the file list...")
		result.EligiblePatients++

		if err := result.Set.Collect(entry.Name()); err != nil {
			return nil, fmt.Errorf("failed to list patient directory %s: %w", entry.Name(), err)
		}
		if err := applyPatientRules(opts, result.Set, entry.Name(), eligible); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// checkSampleList reads a patient's sample list and matches every listed
// sample against the ID list. It returns the qualifying samples by type and
// whether every listed sample qualified.
func checkSampleList(path string, opts Options) (map[string]string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open sample list %s: %w", path, err)
	}
	defer f.Close()

	log := opts.Log
	indexes := map[string]int{}
	headerRead := false
	eligible := make(map[string]string)
	sampleCount := 0
	eligibleCount := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(strings.TrimPrefix(line, "#"), "\t")

		if strings.HasPrefix(line, "#") {
			for _, column := range listColumns {
				idx := indexOf(fields, column)
				if idx < 0 {
					return nil, false, fmt.Errorf("%w: %q in sample list %s",
						kerrors.ErrMissingColumn, column, path)
				}
				indexes[column] = idx
			}
			headerRead = true
			continue
		}
		if !headerRead {
			return nil, false, fmt.Errorf("%w: missing #-prefixed header in sample list %s",
				kerrors.ErrMissingColumn, path)
		}
		if len(fields) <= indexes["sample_type"] || len(fields) <= indexes["sample_output_ID"] {
			return nil, false, fmt.Errorf("too few columns on sample list line %q (file %s)", line, path)
		}

		sampleType := fields[indexes["sample_type"]]
		sampleID := fields[indexes["sample_output_ID"]]
		sampleCount++

		matches := sample.MatchPrefix(sampleID, opts.IDPrefixes)
		if len(matches) == 0 {
			log.Infof(" - No ID match for sample %q.", sampleID)
			continue
		}
		if opts.RequireInPreD && !sample.IsInPreDID(sampleID) {
			log.Warnf(" - The following sample ID doesn't comply with"+
				" the InPreD ID nomenclature: %q. The sample will be ignored.", sampleID)
			continue
		}

		eligible[sampleType] = sampleID
		eligibleCount++
		log.Infof(" - ID match for sample %q (%q).", sampleID, matches[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read sample list %s: %w", path, err)
	}

	return eligible, eligibleCount == sampleCount, nil
}

// eligibleCategories derives the pattern categories that apply to a patient
// from the sample types present in its directory.
func eligibleCategories(eligible map[string]string) []string {
	categories := []string{patterns.CategoryTGeneral}

	_, dnaTumor := eligible[SampleDNATumor]
	_, dnaNormal := eligible[SampleDNANormal]
	_, rnaTumor := eligible[SampleRNATumor]

	if dnaTumor {
		categories = append(categories, patterns.CategoryTDNATumor)
		if dnaNormal || rnaTumor {
			categories = append(categories, patterns.CategoryTDNATumorPlus)
		}
		if rnaTumor {
			categories = append(categories, patterns.CategoryTDNATumorRNA)
		}
	}
	if dnaTumor || dnaNormal {
		categories = append(categories, patterns.CategoryTAnyDNA)
	}
	if dnaNormal {
		categories = append(categories, patterns.CategoryTDNANormal)
	}
	if rnaTumor {
		categories = append(categories, patterns.CategoryTRNATumor)
	}

	return categories
}

func applyPatientRules(opts Options, set *manifest.Set, patientDir string, eligible map[string]string) error {
	values := map[string]string{}
	if id, ok := eligible[SampleDNATumor]; ok {
		values["DT_SAMPLE_ID"] = id
	}
	if id, ok := eligible[SampleDNANormal]; ok {
		values["DN_SAMPLE_ID"] = id
	}
	if id, ok := eligible[SampleRNATumor]; ok {
		values["RT_SAMPLE_ID"] = id
	}

	for _, category := range eligibleCategories(eligible) {
		for _, rule := range opts.Rules[category] {
			expanded := rule.Expand(values)
			// Patterns are written relative to the patient directory.
			expanded.Pattern = regexp.QuoteMeta(patientDir) + "/" + expanded.Pattern

			re, err := expanded.Compile()
			if err != nil {
				return err
			}

			found := set.Reclassify(re)
			if found < rule.MinCount {
				opts.Log.Warnf(" - Too few matches found for the following path pattern: %q"+
					" (%d matches expected, %d found).",
					opts.InputDir+"/"+rule.Pattern, rule.MinCount, found)
			}
		}
	}
	return nil
}

func indexOf(fields []string, want string) int {
	for i, f := range fields {
		if f == want {
			return i
		}
	}
	return -1
}
