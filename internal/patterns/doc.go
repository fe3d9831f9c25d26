// Package patterns loads the extraction path pattern table that decides
// which pipeline output files qualify for export.
//
// # Table Format
//
// The table is tab-separated with four columns:
//
//	input_type	min_count	category	path_pattern
//
// path_pattern is a regular expression matched against the full path of each
// file relative to the input directory. min_count is the number of files
// expected to match; fewer matches produce a WARNING during classification,
// and a min_count of 0 makes the rule fully optional.
//
// Sample-scoped patterns may contain ${SAMPLE_ID} and ${PAIR_ID}
// placeholders (LocalApp) or ${DT_SAMPLE_ID}, ${DN_SAMPLE_ID} and
// ${RT_SAMPLE_ID} placeholders (TSOPPI), filled in per sample before
// matching.
//
// # Default Table
//
// A default table matching the standard TSO500 LocalApp v2.2 output layout
// is embedded in the binary; sites can override it with the --patterns-file
// flag or the patterns_file site config key.
package patterns
