package localapp

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/inpred/sadet/internal/errors"
	logger "github.com/inpred/sadet/internal/logging"
	"github.com/inpred/sadet/internal/manifest"
	"github.com/inpred/sadet/internal/patterns"
)

const testTopLog = "trusight-oncology-500-ruo_ruo-2.2.0.12.0.log"

// buildLocalAppTree creates a minimal LocalApp output directory with the
// given sample sheet content and top-level log content.
func buildLocalAppTree(t *testing.T, sheet, topLog string, files []string) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "sadet-localapp-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })
	inputDir := filepath.Join(tempDir, "Run042")

	write := func(rel, content string) {
		path := filepath.Join(inputDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}

	write("Logs_Intermediates/SamplesheetValidation/Run042_SampleSheet.csv", sheet)
	write(testTopLog, topLog)
	for _, rel := range files {
		write(rel, rel+"\n")
	}
	return inputDir
}

func defaultRules(t *testing.T) patterns.Table {
	t.Helper()
	rules, err := patterns.Load("", patterns.InputLocalApp)
	if err != nil {
		t.Fatalf("Failed to load the embedded pattern table: %v", err)
	}
	return rules
}

func TestCollect_SelectsMatchingSampleFiles(t *testing.T) {
	sheet := "[Data]\nSample_ID,Sample_Type,Pair_ID\nS1,DNA,Pair1\nOTHER,DNA,Pair9\n"
	inputDir := buildLocalAppTree(t, sheet, "pipeline finished\n", []string{
		"Results/MetricsOutput.tsv",
		"Results/Pair1/Pair1_CombinedVariantOutput.tsv",
		"Logs_Intermediates/StitchedRealigned/S1/S1.bam",
		"Results/Pair9/Pair9_CombinedVariantOutput.tsv",
	})

	result, err := Collect(Options{
		InputDir:   inputDir,
		IDPrefixes: []string{"S1"},
		Rules:      defaultRules(t),
		Log:        logger.Logger{},
	})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if result.Version != SheetV1 {
		t.Errorf("Expected sheet version v1, got %s", result.Version)
	}
	if result.FromBCL {
		t.Errorf("No FastqGeneration step in the log, FromBCL should be false")
	}
	if len(result.DNASamples) != 1 || len(result.RNASamples) != 0 {
		t.Fatalf("Expected exactly one DNA sample, got %d DNA / %d RNA",
			len(result.DNASamples), len(result.RNASamples))
	}
	if result.DNASamples["S1"].PairID != "Pair1" {
		t.Errorf("Expected pair ID Pair1, got %s", result.DNASamples["S1"].PairID)
	}

	mustHaveStatus(t, result.Set, "Results/MetricsOutput.tsv", manifest.StatusExport)
	mustHaveStatus(t, result.Set, "Results/Pair1/Pair1_CombinedVariantOutput.tsv", manifest.StatusExport)
	mustHaveStatus(t, result.Set, "Logs_Intermediates/StitchedRealigned/S1/S1.bam", manifest.StatusExport)
	// The non-approved sample's files stay behind.
	mustHaveStatus(t, result.Set, "Results/Pair9/Pair9_CombinedVariantOutput.tsv", manifest.StatusSkip)
}

func mustHaveStatus(t *testing.T, set *manifest.Set, rel string, want manifest.Status) {
	t.Helper()
	status, ok := set.Status(rel)
	if !ok {
		t.Fatalf("Path %s was not recorded", rel)
	}
	if status != want {
		t.Errorf("Path %s: expected status %v, got %v", rel, want, status)
	}
}

func TestCollect_BCLCategoriesOnlyForBCLStarts(t *testing.T) {
	sheet := "[Data]\nSample_ID,Sample_Type,Pair_ID\nS1,DNA,Pair1\n"
	bclLog := "running stepName \"FastqGeneration\" now\n"
	inputDir := buildLocalAppTree(t, sheet, bclLog, []string{
		"Results/MetricsOutput.tsv",
		"Results/Pair1/Pair1_CombinedVariantOutput.tsv",
		"Logs_Intermediates/StitchedRealigned/S1/S1.bam",
		"Logs_Intermediates/FastqGeneration/Reports/index.html",
		"Logs_Intermediates/FastqGeneration/S1/S1_R1.fastq.gz",
		"Logs_Intermediates/FastqGeneration/S1/S1_R2.fastq.gz",
	})

	result, err := Collect(Options{
		InputDir:   inputDir,
		IDPrefixes: []string{"S1"},
		Rules:      defaultRules(t),
		Log:        logger.Logger{},
	})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if !result.FromBCL {
		t.Fatalf("Expected a BCL-started analysis to be detected")
	}
	mustHaveStatus(t, result.Set, "Logs_Intermediates/FastqGeneration/Reports/index.html", manifest.StatusExport)
	mustHaveStatus(t, result.Set, "Logs_Intermediates/FastqGeneration/S1/S1_R1.fastq.gz", manifest.StatusExport)
	mustHaveStatus(t, result.Set, "Logs_Intermediates/FastqGeneration/S1/S1_R2.fastq.gz", manifest.StatusExport)
}

func TestCollect_ZeroSampleMatchesIsCleanNoOp(t *testing.T) {
	sheet := "[Data]\nSample_ID,Sample_Type,Pair_ID\nOTHER,DNA,Pair9\n"
	inputDir := buildLocalAppTree(t, sheet, "done\n", nil)

	result, err := Collect(Options{
		InputDir:   inputDir,
		IDPrefixes: []string{"S1"},
		Rules:      defaultRules(t),
		Log:        logger.Logger{},
	})
	if err != nil {
		t.Fatalf("Collect should not fail on zero matches: %v", err)
	}

	if result.SampleCount() != 0 {
		t.Errorf("Expected no qualifying samples, got %d", result.SampleCount())
	}
	if result.Set != nil {
		t.Errorf("No classification pass should run without qualifying samples")
	}
}

func TestCollect_TooFewMatchesWarnsAndContinues(t *testing.T) {
	sheet := "[Data]\nSample_ID,Sample_Type,Pair_ID\nS1,DNA,Pair1\n"
	inputDir := buildLocalAppTree(t, sheet, "done\n", []string{
		"Results/MetricsOutput.tsv",
	})

	// One rule expecting two matches but finding one, and one fully
	// optional rule matching nothing.
	table := "LocalApp\t2\tgeneral_all\tResults/[^/]*\\.tsv\n" +
		"LocalApp\t0\tgeneral_all\tResults/absent\\.bin\n"
	rules, err := patterns.Parse(strings.NewReader(table), patterns.InputLocalApp)
	if err != nil {
		t.Fatalf("Failed to parse pattern table: %v", err)
	}

	logDir, err := os.MkdirTemp("", "sadet-localapp-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(logDir)

	runLog := filepath.Join(logDir, "run.log")
	sink, err := logger.NewSink(runLog)
	if err != nil {
		t.Fatalf("Failed to create run log sink: %v", err)
	}

	result, err := Collect(Options{
		InputDir:   inputDir,
		IDPrefixes: []string{"S1"},
		Rules:      rules,
		Log:        logger.Logger{Sink: sink},
	})
	sink.Close()
	if err != nil {
		t.Fatalf("A match shortfall must not fail the run: %v", err)
	}

	// The matching file is still exported despite the shortfall.
	mustHaveStatus(t, result.Set, "Results/MetricsOutput.tsv", manifest.StatusExport)

	data, err := os.ReadFile(runLog)
	if err != nil {
		t.Fatalf("Failed to read run log: %v", err)
	}
	logText := string(data)

	if !strings.Contains(logText, "[SADET - WARNING] Too few matches found") {
		t.Errorf("Expected a too-few-matches warning in the run log:\n%s", logText)
	}
	if !strings.Contains(logText, "(2 matches expected, 1 found)") {
		t.Errorf("The warning should report expected and found counts:\n%s", logText)
	}
	if strings.Contains(logText, "absent") {
		t.Errorf("A rule with minimum 0 and zero matches must stay silent:\n%s", logText)
	}
}

func TestCollect_MissingLogsIntermediates(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "sadet-localapp-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	_, err = Collect(Options{
		InputDir: tempDir,
		Rules:    defaultRules(t),
		Log:      logger.Logger{},
	})
	if !errors.Is(err, kerrors.ErrNoLogsIntermediates) {
		t.Errorf("Expected ErrNoLogsIntermediates, got %v", err)
	}
}

func TestCollect_MultipleSampleSheets(t *testing.T) {
	sheet := "[Data]\nSample_ID,Sample_Type,Pair_ID\nS1,DNA,Pair1\n"
	inputDir := buildLocalAppTree(t, sheet, "done\n", nil)

	extra := filepath.Join(inputDir,
		"Logs_Intermediates", "SamplesheetValidation", "Other_SampleSheet.csv")
	if err := os.WriteFile(extra, []byte(sheet), 0644); err != nil {
		t.Fatalf("Failed to write second sheet: %v", err)
	}

	_, err := Collect(Options{
		InputDir:   inputDir,
		IDPrefixes: []string{"S1"},
		Rules:      defaultRules(t),
		Log:        logger.Logger{},
	})
	if !errors.Is(err, kerrors.ErrSingleFileExpected) {
		t.Errorf("Expected ErrSingleFileExpected, got %v", err)
	}
}

func TestCollect_UnknownSampleType(t *testing.T) {
	sheet := "[Data]\nSample_ID,Sample_Type,Pair_ID\nS1,PROTEIN,Pair1\n"
	inputDir := buildLocalAppTree(t, sheet, "done\n", nil)

	_, err := Collect(Options{
		InputDir:   inputDir,
		IDPrefixes: []string{"S1"},
		Rules:      defaultRules(t),
		Log:        logger.Logger{},
	})
	if !errors.Is(err, kerrors.ErrUnknownSampleType) {
		t.Errorf("Expected ErrUnknownSampleType, got %v", err)
	}
}

func TestCollect_RequireInPreDSkipsViolators(t *testing.T) {
	sheet := "[Data]\nSample_ID,Sample_Type,Pair_ID\n" +
		"IPH4321-C01-D01-A01,DNA,Pair1\n" +
		"IPH4321_bad_id,DNA,Pair2\n"
	inputDir := buildLocalAppTree(t, sheet, "done\n", []string{
		"Results/MetricsOutput.tsv",
	})

	result, err := Collect(Options{
		InputDir:      inputDir,
		IDPrefixes:    []string{"IPH4321"},
		RequireInPreD: true,
		Rules:         defaultRules(t),
		Log:           logger.Logger{},
	})
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(result.DNASamples) != 1 {
		t.Fatalf("Expected 1 qualifying sample, got %d", len(result.DNASamples))
	}
	if _, ok := result.DNASamples["IPH4321-C01-D01-A01"]; !ok {
		t.Errorf("The nomenclature-compliant sample should qualify")
	}
}
