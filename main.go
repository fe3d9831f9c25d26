package main

import (
	"fmt"
	"os"

	"github.com/inpred/sadet/cmd"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "sadet",
	Version: cmd.Version,
	Short:   "SADET - Sample data extraction, packaging and encryption for TSO500 pipelines.",
	Long: `SADET extracts sample data of specified patients from LocalApp or TSOPPI
output directories, packages the selected files into an encrypted archive,
and generates checksums for transfer verification.

Available Commands:
  export     Select, package and encrypt sample data for transfer
  scan       Scan LocalApp logs for inherited error messages
  log        View the audit trail of past export runs
  version    Print the SADET version

Run 'sadet help <command>' for more details on a specific command.
`,
	Run: func(cmd *cobra.Command, args []string) {
		banner := figure.NewColorFigure("SADET", "", "green", true)
		banner.Print()
		fmt.Println("Run 'sadet --help' to see available commands.")
	},
}

func main() {
	rootCmd.AddCommand(cmd.ExportCmd)
	rootCmd.AddCommand(cmd.ScanCmd)
	rootCmd.AddCommand(cmd.LogCmd)
	rootCmd.AddCommand(cmd.VersionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
