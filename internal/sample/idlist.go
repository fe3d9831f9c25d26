package sample

import (
	"fmt"
	"os"

	kerrors "github.com/inpred/sadet/internal/errors"
	logger "github.com/inpred/sadet/internal/logging"

	simple_util "github.com/liserjrqlxue/simple-util"
)

// ID list column names. The file is a tab-separated table whose header must
// contain both columns; column order is free.
const (
	colMatchingMethod = "matching_method"
	colTargetID       = "target_ID"
)

// MatchMethodPrefix is the only ID-matching method currently supported.
const MatchMethodPrefix = "prefix"

// LoadIDList reads the sample ID list file and returns the ID prefixes that
// should be matched against pipeline sample IDs. Rows with an unsupported
// matching method or an empty ID are warned about and skipped; rows whose ID
// is "." are treated as deliberate placeholders and skipped silently.
func LoadIDList(path string, log logger.Logger) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to access sample ID list %s: %w", path, err)
	}

	rows, _ := simple_util.File2MapArray(path, "\t", nil)

	var prefixes []string
	for _, row := range rows {
		method, methodOK := row[colMatchingMethod]
		id, idOK := row[colTargetID]
		if !methodOK || !idOK {
			return nil, fmt.Errorf("%w: %q and %q columns are required in %s",
				kerrors.ErrMissingColumn, colMatchingMethod, colTargetID, path)
		}

		switch {
		case id == ".":
			// Placeholder row.
		case id == "":
			log.Warnf(" - Unsupported ID string (encountered ID value: %q). The ID will be ignored.", id)
		case method != MatchMethodPrefix:
			log.Warnf(" - Unsupported ID matching method keyword encountered"+
				" (method keyword: %q, ID: %q). The ID will be ignored.", method, id)
		default:
			prefixes = append(prefixes, id)
		}
	}

	return prefixes, nil
}

// MatchPrefix returns the approved ID prefixes that match the given sample
// ID. An empty result means the sample is not selected for extraction.
func MatchPrefix(sampleID string, approved []string) []string {
	var matches []string
	for _, candidate := range approved {
		if len(candidate) <= len(sampleID) && sampleID[:len(candidate)] == candidate {
			matches = append(matches, candidate)
		}
	}
	return matches
}
