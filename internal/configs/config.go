package configs

import (
	"fmt"
	"os"
)

// DefaultContainerMountDir is the container's inner mounting point. The host
// system mounting prefix is replaced by this prefix in all input and output
// paths. It should not change during regular use.
const DefaultContainerMountDir = "/inpred/data"

// SiteConfig carries site-wide SADET settings loaded from a TOML file.
// Every field has a working default, so running without a config file is
// fully supported.
type SiteConfig struct {
	// ContainerMountDir is the container-side path prefix substituted for
	// the host system mounting prefix.
	ContainerMountDir string `toml:"container_mount_dir"`

	// PatternsFile optionally overrides the embedded extraction path
	// pattern table.
	PatternsFile string `toml:"patterns_file"`

	// Scan configures the LocalApp log error scan.
	Scan ScanConfig `toml:"scan"`
}

// ScanConfig controls which log lines the inherited-error scan reports.
type ScanConfig struct {
	// ErrorPattern is the regular expression that flags a log line.
	ErrorPattern string `toml:"error_pattern"`

	// Exclude lists glob patterns for known-benign lines that would
	// otherwise match ErrorPattern (e.g. the "Error Rate" run metric).
	Exclude []string `toml:"exclude"`

	// IncludeGlobs lists file-name globs selecting which files under
	// Logs_Intermediates are scanned.
	IncludeGlobs []string `toml:"include_globs"`
}

// DefaultSiteConfig returns the built-in site configuration.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		ContainerMountDir: DefaultContainerMountDir,
		Scan: ScanConfig{
			ErrorPattern: `(?i)error`,
			Exclude: []string{
				"*Error Rate*",
				"*ErrorCount: 0*",
				"*0 error(s)*",
			},
			IncludeGlobs: []string{"*.log", "*stderr*.txt"},
		},
	}
}

// LoadSiteConfig loads the site configuration from path. An empty path or a
// missing file yields the defaults. Fields absent from the file keep their
// default values.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	config := DefaultSiteConfig()

	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("site config file not found: %s", path)
	}

	if err := LoadTOML(path, config); err != nil {
		return nil, fmt.Errorf("failed to load site config: %w", err)
	}
	if config.ContainerMountDir == "" {
		config.ContainerMountDir = DefaultContainerMountDir
	}

	return config, nil
}
