package errors

import "errors"

// Path errors indicate problems with the supplied host/container paths.
var (
	// ErrPrefixMissing indicates a supplied path does not start with the host mounting prefix.
	ErrPrefixMissing = errors.New("path does not include the host system mounting prefix")

	// ErrInputNotFound indicates the input data directory could not be located.
	ErrInputNotFound = errors.New("input data directory not found")

	// ErrOutputDirParent indicates the output directory's parent does not exist.
	ErrOutputDirParent = errors.New("parent of the output directory does not exist")

	// ErrForbiddenPrefix indicates the output file prefix contains forbidden characters.
	ErrForbiddenPrefix = errors.New("output file prefix contains forbidden characters")
)

// Input-content errors indicate malformed or unexpected pipeline output.
var (
	// ErrNoLogsIntermediates indicates the LocalApp Logs_Intermediates sub-directory is missing.
	ErrNoLogsIntermediates = errors.New("Logs_Intermediates sub-directory not found")

	// ErrSingleFileExpected indicates zero or multiple files matched a pattern that must match exactly one.
	ErrSingleFileExpected = errors.New("expected exactly one file for pattern")

	// ErrNoDataSection indicates the sample sheet contains no recognized data section.
	ErrNoDataSection = errors.New("sample sheet version not identified")

	// ErrMissingColumn indicates a required column is absent from a tabular input file.
	ErrMissingColumn = errors.New("required data field not found")

	// ErrUnknownSampleType indicates a sample sheet row carries an unrecognized sample type.
	ErrUnknownSampleType = errors.New("unknown sample type")
)

// Configuration errors indicate problems with SADET's own inputs.
var (
	// ErrPatternTable indicates the extraction path pattern table is malformed.
	ErrPatternTable = errors.New("malformed extraction path pattern table")

	// ErrUnknownCategory indicates a pattern row references an unknown pattern category.
	ErrUnknownCategory = errors.New("unknown pattern category")

	// ErrIDListFormat indicates the sample ID list file is malformed.
	ErrIDListFormat = errors.New("malformed sample ID list")

	// ErrPassphraseFormat indicates the passphrase file is empty or contains whitespace.
	ErrPassphraseFormat = errors.New("invalid passphrase file")
)

// Export errors indicate failures during packaging and encryption.
var (
	// ErrNoFilesSelected indicates no files qualified for extraction.
	ErrNoFilesSelected = errors.New("no files qualified for extraction")

	// ErrEncryptFailed indicates the archive could not be encrypted.
	ErrEncryptFailed = errors.New("failed to encrypt archive")

	// ErrGPGNotFound indicates the external gpg binary is not available.
	ErrGPGNotFound = errors.New("gpg binary not found in PATH")
)
