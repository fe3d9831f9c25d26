// Package export drives a complete SADET export run.
//
// A run converts the operator-supplied host paths into container paths,
// selects files through the input-type specific walker, writes the export
// and skip path lists, generates a standalone export shell script, and then
// packages, encrypts and checksums the selection.
//
// Two packaging engines exist. The external engine streams tar into the gpg
// binary, matching the generated script byte for byte in behavior. The
// builtin engine produces the same symmetric OpenPGP (AES-256) archive
// in-process and serves as the fallback when gpg is not installed.
//
// Outcomes that require no work, such as existing outputs without
// --overwrite or zero qualifying files, are clean no-ops, not errors.
package export
