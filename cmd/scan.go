package cmd

import (
	"fmt"

	"github.com/inpred/sadet/internal/audit"
	"github.com/inpred/sadet/internal/configs"
	logger "github.com/inpred/sadet/internal/logging"
	"github.com/inpred/sadet/internal/logscan"
	"github.com/inpred/sadet/internal/ui"
	"github.com/inpred/sadet/internal/utils"

	"github.com/spf13/cobra"
)

var (
	scanInputDir     string
	scanHostMountDir string
	scanContainerDir string
	scanOutputFile   string
	scanConfigFile   string
)

// ScanCmd scans LocalApp logs for inherited error messages.
var ScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan LocalApp logs for inherited error messages",
	Long: `Scans every log file under Logs_Intermediates of a LocalApp output
directory for error lines. Known-benign lines (such as the "Error Rate"
sequencing metric) are filtered out.

The same scan runs automatically at the start of a LocalApp export; this
command makes it available on its own.

Examples:
  sadet scan --input-dir /inpred/data/runs/Run042
  sadet scan --input-dir /data/runs/Run042 --host-mount-dir /data
  sadet scan --input-dir ... --output errors.txt`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{Verbose: verbose, Debug: debug}
	},
	RunE: runScan,
}

func init() {
	ScanCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	ScanCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	ScanCmd.Flags().StringVar(&scanInputDir, "input-dir", "", "LocalApp output directory")
	ScanCmd.Flags().StringVar(&scanHostMountDir, "host-mount-dir", "", "host system mounting prefix (omit when --input-dir is a container path)")
	ScanCmd.Flags().StringVar(&scanContainerDir, "container-mount-dir", "", "container-side mounting prefix (default from site config)")
	ScanCmd.Flags().StringVarP(&scanOutputFile, "output", "o", "", "write the findings to a file instead of stdout")
	ScanCmd.Flags().StringVar(&scanConfigFile, "config", "", "site configuration TOML file")

	_ = ScanCmd.MarkFlagRequired("input-dir")
}

func runScan(cmd *cobra.Command, args []string) error {
	Logger.Debugf("Starting scan command")

	config, err := configs.LoadSiteConfig(scanConfigFile)
	if err != nil {
		return err
	}

	inputDir := scanInputDir
	if scanHostMountDir != "" {
		containerDir := scanContainerDir
		if containerDir == "" {
			containerDir = config.ContainerMountDir
		}
		ok, converted := utils.ConvertPath(scanInputDir, scanHostMountDir, containerDir)
		if !ok {
			return Logger.ErrorfAndReturn("--input-dir value %q does not start with %q",
				scanInputDir, scanHostMountDir)
		}
		inputDir = converted
	}

	scanner, err := logscan.New(config.Scan)
	if err != nil {
		return err
	}

	spin, cleanup := startSpinner("Scanning LocalApp logs...", verbose)
	defer cleanup()

	findings, err := scanner.Scan(inputDir)
	if err != nil {
		spin.FinalMSG = ui.Error.Sprint("✗") + " Scan failed: " + err.Error()
		return err
	}

	entry := audit.NewEntry("scan")
	entry.InputType = "LocalApp"
	entry.InputDir = scanInputDir
	entry.FindingsCount = len(findings)
	audit.Log(entry)

	if len(findings) == 0 {
		spin.FinalMSG = ui.Success.Sprint("✓") + " No inherited error messages found."
		return nil
	}

	if scanOutputFile != "" {
		if err := logscan.WriteFindings(scanOutputFile, findings); err != nil {
			spin.FinalMSG = ui.Error.Sprint("✗") + " Failed to write findings: " + err.Error()
			return err
		}
		spin.FinalMSG = ui.Warning.Sprint("!") + fmt.Sprintf(" %d inherited error messages written to ", len(findings)) +
			ui.Path.Sprint(scanOutputFile)
		return nil
	}

	spin.FinalMSG = ui.Warning.Sprint("!") + fmt.Sprintf(" %d inherited error messages found:", len(findings))
	cleanup()
	for _, finding := range findings {
		fmt.Println(finding.String())
	}
	return nil
}
