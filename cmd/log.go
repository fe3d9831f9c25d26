package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inpred/sadet/internal/audit"
	logger "github.com/inpred/sadet/internal/logging"
	"github.com/inpred/sadet/internal/ui"

	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logInputType string
	logOneline   bool
	logJSON      bool
)

// LogCmd prints the audit trail of past SADET runs.
var LogCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit trail of past export runs",
	Long: `Displays the audit trail of SADET runs.

Shows what was exported, when, and with which engine. Use filters to narrow
down the results.

Examples:
  sadet log                       # View full trail
  sadet log -n 10                 # Last 10 entries
  sadet log --reverse             # Most recent first
  sadet log --operation export    # Filter by operation (comma-separated)
  sadet log --input-type TSOPPI   # Filter by input type
  sadet log --json                # JSON output`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{Verbose: verbose, Debug: debug}
	},
	RunE: runLog,
}

func init() {
	LogCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	LogCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	LogCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	LogCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	LogCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	LogCmd.Flags().StringVar(&logInputType, "input-type", "", "filter by input type (LocalApp or TSOPPI)")
	LogCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	LogCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Debugf("Starting log command")

	entries, err := audit.ReadEntries()
	if err != nil {
		return fmt.Errorf("failed to read the audit log: %w", err)
	}
	Logger.Debugf("Parsed %d entries from audit log", len(entries))

	entries = filterEntries(entries)
	if logReverse {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	if logLimit > 0 && len(entries) > logLimit {
		if logReverse {
			entries = entries[:logLimit]
		} else {
			entries = entries[len(entries)-logLimit:]
		}
	}

	if len(entries) == 0 {
		fmt.Println("No audit log entries found.")
		return nil
	}

	if logJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, entry := range entries {
		if logOneline {
			fmt.Println(formatEntryOneline(entry))
		} else {
			fmt.Println(formatEntry(entry))
		}
	}
	return nil
}

func filterEntries(entries []audit.Entry) []audit.Entry {
	var ops map[string]bool
	if logOperation != "" {
		ops = make(map[string]bool)
		for _, op := range strings.Split(logOperation, ",") {
			ops[strings.TrimSpace(op)] = true
		}
	}

	var filtered []audit.Entry
	for _, entry := range entries {
		if ops != nil && !ops[entry.Operation] {
			continue
		}
		if logInputType != "" && entry.InputType != logInputType {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

func formatEntryOneline(entry audit.Entry) string {
	detail := entry.InputDir
	if entry.NoOp {
		detail += " (no-op)"
	}
	return fmt.Sprintf("%s  %-6s %-8s %s",
		entry.Timestamp, entry.Operation, entry.InputType, detail)
}

func formatEntry(entry audit.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", ui.Highlight.Sprint(entry.Operation), entry.Timestamp)
	fmt.Fprintf(&b, "  run ID:     %s\n", entry.RunID)
	if entry.InputType != "" {
		fmt.Fprintf(&b, "  input type: %s\n", entry.InputType)
	}
	if entry.InputDir != "" {
		fmt.Fprintf(&b, "  input dir:  %s\n", ui.Path.Sprint(entry.InputDir))
	}
	if entry.ArchivePath != "" {
		fmt.Fprintf(&b, "  archive:    %s (engine: %s)\n", ui.Path.Sprint(entry.ArchivePath), entry.Engine)
	}
	if entry.SelectedCount > 0 || entry.SkippedCount > 0 {
		fmt.Fprintf(&b, "  paths:      %d exported, %d skipped\n", entry.SelectedCount, entry.SkippedCount)
	}
	if entry.Operation == "scan" {
		fmt.Fprintf(&b, "  findings:   %d\n", entry.FindingsCount)
	}
	if entry.NoOp {
		b.WriteString("  outcome:    no-op\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
