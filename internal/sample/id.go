package sample

import (
	"fmt"
	"regexp"
)

// inpredRegex implements version 3 of the InPreD sample nomenclature:
//
//	IP<node><patient>-<class><code>-<material><number>-<analysis><number>
//
// e.g. IPH4321-C01-D01-A01. The material-type block accepts the full set of
// documented codes, including "X" for unknown material.
var inpredRegex = regexp.MustCompile(
	`^IP([ADHO])([0-9]{4})-([CDR])(0[1-7]|50|51)-([ACDdEeLMNPpRrTX])([0-9]{2})-([ABCEFMS])([0-2][0-9]|30|XX)$`)

// MaterialUnknown is the material-type code used when the sample material
// could not be determined.
const MaterialUnknown = 'X'

// InPreDID is a parsed InPreD sample identifier.
type InPreDID struct {
	// Raw is the identifier as supplied.
	Raw string

	// Node identifies the registering InPreD node (A, D, H or O).
	Node byte

	// PatientNumber is the four-digit patient number within the node.
	PatientNumber string

	// SampleClass and SampleCode form the second identifier block.
	SampleClass byte
	SampleCode  string

	// MaterialType is the material-type code; MaterialUnknown ('X') marks
	// material of unknown type. MaterialNumber is its two-digit counter.
	MaterialType   byte
	MaterialNumber string

	// AnalysisType and AnalysisNumber form the final identifier block.
	// AnalysisNumber may be the literal "XX".
	AnalysisType   byte
	AnalysisNumber string
}

// ParseInPreDID parses an InPreD v3 sample identifier.
func ParseInPreDID(id string) (*InPreDID, error) {
	m := inpredRegex.FindStringSubmatch(id)
	if m == nil {
		return nil, fmt.Errorf("%q is not a valid InPreD sample ID", id)
	}
	return &InPreDID{
		Raw:            id,
		Node:           m[1][0],
		PatientNumber:  m[2],
		SampleClass:    m[3][0],
		SampleCode:     m[4],
		MaterialType:   m[5][0],
		MaterialNumber: m[6],
		AnalysisType:   m[7][0],
		AnalysisNumber: m[8],
	}, nil
}

// IsInPreDID reports whether the supplied string is a valid InPreD sample ID.
func IsInPreDID(id string) bool {
	return inpredRegex.MatchString(id)
}

// IsUnknownMaterial reports whether the sample material type is the
// unknown/"X" code.
func (id *InPreDID) IsUnknownMaterial() bool {
	return id.MaterialType == MaterialUnknown
}
