package cmd

import (
	logger "github.com/inpred/sadet/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is the SADET release version, surfaced through --version.
const Version = "1.0.0"

// Shared persistent flag state. Every subcommand registers -v/-d and rebuilds
// Logger in its PersistentPreRun, so helpers and workflows log consistently.
var (
	verbose bool
	debug   bool
	Logger  logger.Logger
)

// ResetGlobalState resets all command flags to their default values for
// testing. Flag values and their Changed markers persist across Execute
// calls within one process, so tests reset them between invocations.
func ResetGlobalState() {
	verbose = false
	debug = false
	Logger = logger.Logger{}

	for _, c := range []*cobra.Command{ExportCmd, ScanCmd, LogCmd} {
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}
