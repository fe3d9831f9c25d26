package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"ts"`     // RFC3339 with microseconds.
	RunID     string `json:"run_id"` // UUID of the SADET run.
	Operation string `json:"op"`     // Operation name (export, scan).

	// Optional fields depending on operation.
	InputType     string `json:"input_type,omitempty"`     // LocalApp or TSOPPI.
	InputDir      string `json:"input_dir,omitempty"`      // Host-side input directory.
	ArchivePath   string `json:"archive,omitempty"`        // Produced .tar.gpg path.
	Engine        string `json:"engine,omitempty"`         // external, builtin or script-only.
	SelectedCount int    `json:"selected_count,omitempty"` // Paths selected for export.
	SkippedCount  int    `json:"skipped_count,omitempty"`  // Paths skipped.
	FindingsCount int    `json:"findings_count,omitempty"` // For scan.
	NoOp          bool   `json:"no_op,omitempty"`          // Run ended without producing output.
}

// NewEntry returns an entry with a fresh run ID and the current timestamp.
func NewEntry(op string) Entry {
	return Entry{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000000Z"),
		RunID:     uuid.New().String(),
		Operation: op,
	}
}

// Log appends an entry to the audit log.
// If logging fails, the run continues; an export should never fail just
// because audit logging failed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return
	}

	// Rotation keeps the trail bounded on long-lived analysis hosts.
	w := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     365, // days
	}
	defer w.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = w.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file. The SADET_AUDIT_LOG
// environment variable overrides the default location under the user's home
// directory. Returns an empty string when no location can be determined.
func LogPath() string {
	if path := os.Getenv("SADET_AUDIT_LOG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sadet", "audit.jsonl")
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				// Skip malformed entries.
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
