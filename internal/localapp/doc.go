// Package localapp selects export-eligible files from a TSO500 LocalApp
// output directory.
//
// A collection pass validates the directory structure (Logs_Intermediates,
// exactly one sample sheet, exactly one top-level log), parses the sample
// sheet to find the samples matching the operator's ID list, and then
// classifies every path in the tree against the extraction pattern table.
//
// Sample sheets come in two flavors: v1 ([Data] section) and v2
// ([TSO500S_Data] section). Analyses started from BCL files additionally
// produce FASTQ-generation output, detected via the top-level log; the
// *_bcl pattern categories are only evaluated for such runs.
package localapp
