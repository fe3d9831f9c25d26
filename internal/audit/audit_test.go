package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setTestLogPath points the audit log at a file inside a temp directory and
// returns a cleanup function restoring the environment.
func setTestLogPath(t *testing.T) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "sadet-audit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
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

func TestLog_CreatesFile(t *testing.T) {
	logPath := setTestLogPath(t)

	entry := NewEntry("export")
	entry.InputType = "LocalApp"
	Log(entry)

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Fatalf("Audit log file was not created")
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	logPath := setTestLogPath(t)

	Log(NewEntry("export"))
	Log(NewEntry("export"))
	Log(NewEntry("scan"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(lines))
	}
}

func TestLog_ValidJSON(t *testing.T) {
	logPath := setTestLogPath(t)

	entry := NewEntry("export")
	entry.InputType = "TSOPPI"
	entry.InputDir = "/data/runs/Run042"
	entry.ArchivePath = "/data/export/out.tar.gpg"
	entry.Engine = "builtin"
	entry.SelectedCount = 12
	entry.SkippedCount = 30
	Log(entry)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	var parsed Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}

	if parsed.Operation != "export" {
		t.Errorf("Expected operation export, got %s", parsed.Operation)
	}
	if parsed.InputType != "TSOPPI" {
		t.Errorf("Expected input type TSOPPI, got %s", parsed.InputType)
	}
	if parsed.SelectedCount != 12 {
		t.Errorf("Expected 12 selected paths, got %d", parsed.SelectedCount)
	}
	if parsed.RunID == "" {
		t.Errorf("Run ID should be set by NewEntry")
	}
}

func TestLog_TimestampFormat(t *testing.T) {
	logPath := setTestLogPath(t)

	// Log an entry without timestamp (should be auto-set).
	Log(Entry{Operation: "export"})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	var parsed Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &parsed); err != nil {
		t.Fatalf("Entry is not valid JSON: %v", err)
	}

	// Check timestamp format: 2006-01-02T15:04:05.000000Z.
	if parsed.Timestamp == "" {
		t.Errorf("Timestamp should be auto-set")
	}
	if !strings.HasSuffix(parsed.Timestamp, "Z") {
		t.Errorf("Timestamp should end with Z, got %s", parsed.Timestamp)
	}
	if !strings.Contains(parsed.Timestamp, ".") {
		t.Errorf("Timestamp should contain microseconds, got %s", parsed.Timestamp)
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	logPath := setTestLogPath(t)

	// Log an entry with only required fields.
	Log(Entry{Operation: "scan"})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}

	line := strings.TrimSpace(string(data))

	// Check that optional fields are not present.
	if strings.Contains(line, `"archive"`) {
		t.Errorf("Empty archive field should be omitted")
	}
	if strings.Contains(line, `"selected_count"`) {
		t.Errorf("Zero selected_count field should be omitted")
	}
	if strings.Contains(line, `"engine"`) {
		t.Errorf("Empty engine field should be omitted")
	}
}

func TestParseEntries_ValidData(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.123456Z","run_id":"a","op":"export","input_type":"LocalApp"}
{"ts":"2024-01-15T10:35:00.456789Z","run_id":"b","op":"scan"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(entries))
	}

	if entries[0].InputType != "LocalApp" {
		t.Errorf("Expected first input type LocalApp, got %s", entries[0].InputType)
	}
	if entries[1].Operation != "scan" {
		t.Errorf("Expected second operation scan, got %s", entries[1].Operation)
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"ts":"2024-01-15T10:30:00.123456Z","run_id":"a","op":"export"}
this is not valid json
{"ts":"2024-01-15T10:35:00.456789Z","run_id":"b","op":"export"}
`)

	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Errorf("Expected 2 valid entries (malformed should be skipped), got %d", len(entries))
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries([]byte{})
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}

	if entries != nil {
		t.Errorf("Expected nil entries for empty data, got %v", entries)
	}
}

func TestLogPath_EnvironmentOverride(t *testing.T) {
	original, hadOriginal := os.LookupEnv("SADET_AUDIT_LOG")
	os.Setenv("SADET_AUDIT_LOG", "/test/audit.jsonl")
	defer func() {
		if hadOriginal {
			os.Setenv("SADET_AUDIT_LOG", original)
		} else {
			os.Unsetenv("SADET_AUDIT_LOG")
		}
	}()

	if path := LogPath(); path != "/test/audit.jsonl" {
		t.Errorf("Expected /test/audit.jsonl, got %s", path)
	}
}
