// Package configs manages site-wide configuration for SADET.
//
// Configuration is stored in TOML format. A config file is optional: every
// setting has a built-in default matching the standard InPreD container
// deployment, and a missing file silently yields those defaults.
//
// # Site Configuration
//
// The site config stores:
//   - The container mounting prefix substituted for the host prefix
//     (default /inpred/data)
//   - An optional override path for the extraction pattern table
//   - The log-scan settings (error regex, benign-line excludes, file globs)
//
// # Example
//
//	container_mount_dir = "/inpred/data"
//
//	[scan]
//	error_pattern = "(?i)error"
//	exclude = ["*Error Rate*"]
//	include_globs = ["*.log"]
package configs
