// Package sample handles sample identifiers and the operator-supplied sample
// ID list.
//
// # InPreD Nomenclature
//
// InPreD sample IDs (version 3) consist of four dash-separated blocks:
//
//	IPH4321-C01-D01-A01
//
// The first block carries the registering node and patient number, the third
// block carries the material-type code. The documented material codes include
// "X" for material of unknown type; ParseInPreDID accepts all of them.
//
// # ID List
//
// The operator supplies a tab-separated file listing the sample IDs to
// export. Each row names a matching method and a target ID; only "prefix"
// matching is supported. Rows with other methods are skipped with a warning
// rather than failing the run, so a shared ID list can carry entries for
// other tools.
package sample
