// Package tsoppi selects export-eligible files from a TSOPPI post-processing
// output directory.
//
// TSOPPI output is organized as one sub-directory per patient, each carrying
// a sample_list.tsv describing the analyzed samples. A patient directory is
// exported only when every listed sample matches the operator's ID list;
// mixed directories are skipped as a whole so no unapproved data can leak
// into an archive.
//
// Which pattern categories apply to a patient follows from the sample types
// present in its directory (DNA_tumor, DNA_normal, RNA_tumor).
package tsoppi
