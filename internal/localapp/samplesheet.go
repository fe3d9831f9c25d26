package localapp

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	kerrors "github.com/inpred/sadet/internal/errors"
)

// SheetVersion identifies the sample sheet flavor produced by the LocalApp.
type SheetVersion int

const (
	SheetUnknown SheetVersion = iota
	// SheetV1 sheets mark their data section with [Data].
	SheetV1
	// SheetV2 sheets mark their data section with [TSO500S_Data].
	SheetV2
)

func (v SheetVersion) String() string {
	switch v {
	case SheetV1:
		return "v1"
	case SheetV2:
		return "v2"
	default:
		return "unknown"
	}
}

// Sample types listed in LocalApp sample sheets.
const (
	SampleTypeDNA = "DNA"
	SampleTypeRNA = "RNA"
)

// Required data section columns.
var sheetColumns = []string{"Sample_Type", "Sample_ID", "Pair_ID"}

// SheetRow is one sample row from the sheet's data section.
type SheetRow struct {
	Type   string
	ID     string
	PairID string
}

// Sheet is a parsed LocalApp sample sheet.
type Sheet struct {
	Version SheetVersion
	Rows    []SheetRow
}

// ParseSampleSheet reads a LocalApp sample sheet. Sheets are nominally CSV
// but tab-separated variants exist in the wild, so both separators are
// accepted. Only the data section is extracted; all other sections are
// ignored.
func ParseSampleSheet(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample sheet %s: %w", path, err)
	}
	defer f.Close()

	sheet := &Sheet{Version: SheetUnknown}
	indexes := map[string]int{}
	inDataSection := false
	headerRead := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := splitSheetLine(scanner.Text())
		if len(fields) == 0 || fields[0] == "" {
			continue
		}

		switch {
		case fields[0] == "[Data]":
			sheet.Version = SheetV1
			inDataSection = true
		case fields[0] == "[TSO500S_Data]":
			sheet.Version = SheetV2
			inDataSection = true
		case strings.HasPrefix(fields[0], "["):
			inDataSection = false
		case inDataSection && !headerRead:
			for _, column := range sheetColumns {
				idx := indexOf(fields, column)
				if idx < 0 {
					return nil, fmt.Errorf("%w: %q in sample sheet %s",
						kerrors.ErrMissingColumn, column, path)
				}
				indexes[column] = idx
			}
			headerRead = true
		case inDataSection && headerRead:
			row, err := sheetRow(fields, indexes)
			if err != nil {
				return nil, fmt.Errorf("bad sample sheet row %q: %w", scanner.Text(), err)
			}
			sheet.Rows = append(sheet.Rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sample sheet %s: %w", path, err)
	}

	if sheet.Version == SheetUnknown {
		return nil, fmt.Errorf("%w (file %s)", kerrors.ErrNoDataSection, path)
	}

	return sheet, nil
}

func splitSheetLine(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.ReplaceAll(line, ",", "\t")
	return strings.Split(line, "\t")
}

func indexOf(fields []string, want string) int {
	for i, f := range fields {
		if f == want {
			return i
		}
	}
	return -1
}

func sheetRow(fields []string, indexes map[string]int) (SheetRow, error) {
	for _, column := range sheetColumns {
		if indexes[column] >= len(fields) {
			return SheetRow{}, fmt.Errorf("row is missing the %q field", column)
		}
	}
	return SheetRow{
		Type:   fields[indexes["Sample_Type"]],
		ID:     fields[indexes["Sample_ID"]],
		PairID: fields[indexes["Pair_ID"]],
	}, nil
}
