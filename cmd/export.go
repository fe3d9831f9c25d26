package cmd

import (
	"context"
	"fmt"

	"github.com/inpred/sadet/internal/audit"
	"github.com/inpred/sadet/internal/configs"
	"github.com/inpred/sadet/internal/export"
	logger "github.com/inpred/sadet/internal/logging"
	"github.com/inpred/sadet/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	exportInputDir       string
	exportPassphraseFile string
	exportIDList         string
	exportOutputDir      string
	exportInputType      string
	exportHostMountDir   string
	exportContainerDir   string
	exportPrefix         string
	exportScriptOnly     bool
	exportParallel       bool
	exportRequireInPreD  bool
	exportArchiveMD5     bool
	exportOverwrite      bool
	exportBuiltinCipher  bool
	exportStageDir       string
	exportPatternsFile   string
	exportConfigFile     string
)

// ExportCmd selects, packages and encrypts sample data for transfer.
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Select, package and encrypt sample data for transfer",
	Long: `Selects result files of approved samples from a LocalApp or TSOPPI output
directory, packages them into a gpg-encrypted tar archive, and writes
checksums for transfer verification.

All supplied paths are host system paths and must start with the host
mounting prefix; SADET translates them to container paths internally.

Examples:
  sadet export --input-type LocalApp \
      --input-dir /data/runs/Run042 \
      --id-list /data/export/approved_ids.tsv \
      --passphrase-file /data/export/passphrase.txt \
      --output-dir /data/export/Run042 \
      --host-mount-dir /data

  sadet export --input-type TSOPPI --script-only ...   # only generate the script
  sadet export --input-type LocalApp --parallel ...    # checksum while packaging`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{Verbose: verbose, Debug: debug}
	},
	RunE: runExport,
}

func init() {
	ExportCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	ExportCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	ExportCmd.Flags().StringVar(&exportInputDir, "input-dir", "", "LocalApp or TSOPPI output directory (host path)")
	ExportCmd.Flags().StringVar(&exportPassphraseFile, "passphrase-file", "", "file whose first line is the encryption passphrase (host path)")
	ExportCmd.Flags().StringVar(&exportIDList, "id-list", "", "TSV file listing the approved sample IDs (host path)")
	ExportCmd.Flags().StringVar(&exportOutputDir, "output-dir", "", "destination directory for all run outputs (host path)")
	ExportCmd.Flags().StringVar(&exportInputType, "input-type", "", "input data type: LocalApp or TSOPPI")
	ExportCmd.Flags().StringVar(&exportHostMountDir, "host-mount-dir", "", "host system mounting prefix of all supplied paths")
	ExportCmd.Flags().StringVar(&exportContainerDir, "container-mount-dir", "", "container-side mounting prefix (default from site config)")
	ExportCmd.Flags().StringVar(&exportPrefix, "prefix", "", "output file prefix (default: run timestamp)")
	ExportCmd.Flags().BoolVar(&exportScriptOnly, "script-only", false, "only generate the host system export script")
	ExportCmd.Flags().BoolVar(&exportParallel, "parallel", false, "run packaging and file checksumming concurrently")
	ExportCmd.Flags().BoolVar(&exportRequireInPreD, "require-inpred-ids", false, "reject sample IDs that do not follow the InPreD nomenclature")
	ExportCmd.Flags().BoolVar(&exportArchiveMD5, "archive-md5", false, "checksum the encrypted archive instead of individual files")
	ExportCmd.Flags().BoolVar(&exportOverwrite, "overwrite", false, "allow rewriting existing output files")
	ExportCmd.Flags().BoolVar(&exportBuiltinCipher, "builtin-cipher", false, "encrypt with the built-in OpenPGP engine instead of gpg")
	ExportCmd.Flags().StringVar(&exportStageDir, "stage-dir", "", "optional staging directory for the selected files (host path)")
	ExportCmd.Flags().StringVar(&exportPatternsFile, "patterns-file", "", "extraction path pattern table overriding the built-in one")
	ExportCmd.Flags().StringVar(&exportConfigFile, "config", "", "site configuration TOML file")

	for _, flag := range []string{
		"input-dir", "passphrase-file", "id-list", "output-dir", "input-type", "host-mount-dir",
	} {
		_ = ExportCmd.MarkFlagRequired(flag)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	Logger.Debugf("Starting export command")
	cmd.Flags().Visit(func(f *pflag.Flag) {
		Logger.Debugf("flag --%s=%s", f.Name, f.Value.String())
	})

	config, err := configs.LoadSiteConfig(exportConfigFile)
	if err != nil {
		return err
	}
	containerDir := exportContainerDir
	if containerDir == "" {
		containerDir = config.ContainerMountDir
	}

	opts := export.Options{
		InputDir:          exportInputDir,
		PassphraseFile:    exportPassphraseFile,
		IDListFile:        exportIDList,
		OutputDir:         exportOutputDir,
		InputType:         exportInputType,
		HostMountDir:      exportHostMountDir,
		ContainerMountDir: containerDir,
		Prefix:            exportPrefix,
		ScriptOnly:        exportScriptOnly,
		Parallel:          exportParallel,
		RequireInPreD:     exportRequireInPreD,
		ArchiveMD5:        exportArchiveMD5,
		Overwrite:         exportOverwrite,
		BuiltinCipher:     exportBuiltinCipher,
		StageDir:          exportStageDir,
		PatternsFile:      exportPatternsFile,
		Config:            config,
		Verbose:           verbose,
		Debug:             debug,
	}

	spin, cleanup := startSpinner("Exporting sample data...", verbose)
	defer cleanup()

	summary, err := export.Run(context.Background(), opts)
	if err != nil {
		spin.FinalMSG = ui.Error.Sprint("✗") + " Export failed: " + err.Error()
		return err
	}

	entry := audit.NewEntry("export")
	entry.InputType = exportInputType
	entry.InputDir = exportInputDir
	entry.Engine = summary.Engine
	entry.SelectedCount = summary.SelectedCount
	entry.SkippedCount = summary.SkippedCount
	entry.NoOp = summary.NoOp
	if !summary.NoOp && !exportScriptOnly {
		entry.ArchivePath = summary.ArchivePath
	}
	audit.Log(entry)

	switch {
	case summary.NoOp:
		spin.FinalMSG = ui.Info.Sprint("•") + " Nothing to do. See the run log for details: " +
			ui.Path.Sprint(summary.RunLogPath)
	case exportScriptOnly:
		spin.FinalMSG = ui.Success.Sprint("✓") + " Export script generated: " +
			ui.Path.Sprint(summary.ScriptPath) + "\n" +
			ui.Info.Sprint("→") + " Run it on the host system to produce the encrypted archive."
	default:
		spin.FinalMSG = ui.Success.Sprint("✓") + fmt.Sprintf(" %d paths exported.\n", summary.SelectedCount) +
			ui.Info.Sprint("→") + " Encrypted archive: " + ui.Path.Sprint(summary.ArchivePath) + "\n" +
			ui.Info.Sprint("→") + " Checksums: " + ui.Path.Sprint(summary.ChecksumPath)
	}
	return nil
}
