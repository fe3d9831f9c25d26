// Package errors provides typed error values for the SADET application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Path errors: supplied paths outside the mounting prefix (ErrPrefixMissing)
//   - Input-content errors: malformed pipeline output (ErrNoDataSection)
//   - Configuration errors: malformed SADET inputs (ErrPatternTable)
//   - Export errors: packaging/encryption failures (ErrEncryptFailed)
//
// # Usage
//
// Return errors from internal packages, wrapped with context:
//
//	return fmt.Errorf("%w: %q", errors.ErrUnknownCategory, category)
//
// Handle errors in the CLI layer:
//
//	if errors.Is(err, kerrors.ErrNoFilesSelected) {
//	    // Clean no-op exit, not a failure
//	}
package errors
