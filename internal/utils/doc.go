// Package utils provides shared utility functions for the SADET application.
//
// # Path Utilities
//
// SADET runs inside a container whose filesystem view differs from the host
// system submitting the job. All user-supplied paths are host paths and are
// rewritten by swapping the host mounting prefix for the container mounting
// prefix:
//
//   - ConvertPath: host path -> container path (or the reverse)
//   - StripPathPrefix: removes a known prefix from a path
//
// # String Utilities
//
// Functions for validating and formatting user-visible strings:
//
//   - IsValidOutputPrefix: validates output file prefixes
//   - FormatPaths: formats file paths for human-readable output
package utils
