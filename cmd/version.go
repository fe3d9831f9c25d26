package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VersionCmd prints the SADET release version.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the SADET version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sadet version " + Version)
	},
}
