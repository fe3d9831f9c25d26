// Package manifest classifies the paths of a pipeline output tree and turns
// the selected ones into an export manifest.
//
// # Classification
//
// Every file and directory under the input directory is tracked with one of
// three statuses:
//
//   - Export: selected by an extraction path pattern
//   - Skip: not selected (the default)
//   - Ignore: a directory on the way to an exported file
//
// The Ignore status prevents parent directories of exported files from being
// reported as "skipped" while also keeping them out of the export list, so
// tar does not archive whole directories just because one file inside them
// was selected.
//
// # Manifest
//
// The manifest is the ordered (source path, archive path) list consumed by
// the packaging stage; the checksum stage fills in per-file MD5 sums.
// Archive paths start with the input directory's basename, matching the
// layout produced by "tar -C <parent>".
package manifest
