package patterns

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	kerrors "github.com/inpred/sadet/internal/errors"
)

//go:embed extraction_path_patterns.tsv
var defaultTable []byte

// Input types accepted by the extraction pattern table.
const (
	InputLocalApp = "LocalApp"
	InputTSOPPI   = "TSOPPI"
)

// Pattern categories for LocalApp runs. The *_bcl categories are only
// evaluated when the analysis was started from BCL files.
const (
	CategoryGeneralAll   = "general_all"
	CategoryGeneralBCL   = "general_bcl"
	CategorySampleDNA    = "sample_DNA"
	CategorySampleRNA    = "sample_RNA"
	CategorySampleDNABCL = "sample_DNA_bcl"
	CategorySampleRNABCL = "sample_RNA_bcl"
)

// Pattern categories for TSOPPI patient directories. Eligibility of a
// category depends on which sample types are present for the patient.
const (
	CategoryTGeneral      = "T_general"
	CategoryTAnyDNA       = "T_any_DNA"
	CategoryTDNATumorPlus = "T_DNA_tumor_plus"
	CategoryTDNATumor     = "T_DNA_tumor"
	CategoryTDNANormal    = "T_DNA_normal"
	CategoryTRNATumor     = "T_RNA_tumor"
	CategoryTDNATumorRNA  = "T_DNA_tumor_RNA_tumor"
)

// knownCategories is the fixed set of categories a pattern table may use.
var knownCategories = map[string]bool{
	CategoryGeneralAll:    true,
	CategoryGeneralBCL:    true,
	CategorySampleDNA:     true,
	CategorySampleRNA:     true,
	CategorySampleDNABCL:  true,
	CategorySampleRNABCL:  true,
	CategoryTGeneral:      true,
	CategoryTAnyDNA:       true,
	CategoryTDNATumorPlus: true,
	CategoryTDNATumor:     true,
	CategoryTDNANormal:    true,
	CategoryTRNATumor:     true,
	CategoryTDNATumorRNA:  true,
}

// placeholderRegex matches ${NAME} sample ID placeholders inside a pattern.
var placeholderRegex = regexp.MustCompile(`\$\{([A-Z_]+)\}`)

// Rule is one row of the extraction pattern table: a path regex (relative to
// the input directory) together with the minimum number of files expected to
// match it. Fewer matches than MinCount is reported as a warning; a MinCount
// of zero makes the rule fully optional.
type Rule struct {
	InputType string
	MinCount  int
	Category  string
	Pattern   string
}

// Expand returns a copy of the rule with ${NAME} placeholders replaced by
// the given values. Values are regex-quoted so sample IDs can never change
// the structure of the pattern. Unknown placeholders are left in place.
func (r Rule) Expand(values map[string]string) Rule {
	r.Pattern = placeholderRegex.ReplaceAllStringFunc(r.Pattern, func(m string) string {
		name := m[2 : len(m)-1]
		if v, ok := values[name]; ok {
			return regexp.QuoteMeta(v)
		}
		return m
	})
	return r
}

// Compile returns the full-match regexp for the (expanded) rule pattern.
func (r Rule) Compile() (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + r.Pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pattern %q: %v", kerrors.ErrPatternTable, r.Pattern, err)
	}
	return re, nil
}

// Table groups the rules of a single input type by category.
type Table map[string][]Rule

// Load reads the extraction pattern table for the given input type. An empty
// path loads the embedded default table.
func Load(path, inputType string) (Table, error) {
	if path == "" {
		return Parse(bytes.NewReader(defaultTable), inputType)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern table %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f, inputType)
}

// Parse reads a tab-separated pattern table, keeping only rows of the given
// input type. Rows with too few columns or unknown categories fail the load;
// a table carrying a bad row is not trustworthy enough to drive an export.
func Parse(r io.Reader, inputType string) (Table, error) {
	table := make(Table)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			return nil, fmt.Errorf("%w: too few columns on line %q", kerrors.ErrPatternTable, line)
		}

		minCount, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad minimum count on line %q: %v", kerrors.ErrPatternTable, line, err)
		}

		category := fields[2]
		if !knownCategories[category] {
			return nil, fmt.Errorf("%w: %q on line %q", kerrors.ErrUnknownCategory, category, line)
		}

		rule := Rule{
			InputType: fields[0],
			MinCount:  minCount,
			Category:  category,
			Pattern:   fields[3],
		}
		if rule.InputType != inputType {
			continue
		}

		// Validate the pattern up front so a broken table fails at load
		// time, not halfway through a classification pass.
		if _, err := rule.Compile(); err != nil {
			return nil, err
		}

		table[category] = append(table[category], rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pattern table: %w", err)
	}

	return table, nil
}
