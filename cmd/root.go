// Package cmd provides command-line interface functionality for odetools.
// odetools inspects and repairs PlayStation 3 disc images dumped with an
// optical drive emulator.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hansbonini/odetools/pkg"
	"github.com/hansbonini/odetools/pkg/common"
)

var (
	configFile string
	logCloser  io.Closer

	// fileSystem backs every processor and exporter
	fileSystem = afero.NewOsFs()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "odetools",
	Short: "Tools for inspecting and repairing PS3 disc images",
	Long: `odetools - A collection of utilities for PlayStation 3 disc images.

Currently supports:
  - ISO9660 path table and directory record inspection
  - Plain/encrypted region classification from the region table in sector 0
  - Sector header repair of images dumped through an ODE (COBRA NFO sidecar)
  - IRD metadata inspection

Examples:
  odetools iso tree disc.iso
  odetools image regions disc.iso
  odetools image fix disc.nfo disc.iso
  odetools image fix --dry-run --yaml fix.yaml disc.nfo disc.iso
  odetools ird info BLES00000.ird

Settings can also come from a config file (--config) or from environment
variables prefixed with ODETOOLS_, e.g. ODETOOLS_VERBOSE=true.

Use 'odetools [command] --help' for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		common.SetVerboseMode(viper.GetBool("verbose"))
		logCloser = common.ConfigureLogOutput(viper.GetString("log-file"), viper.GetInt("log-max-size"))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		if closeErr := logCloser.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", closeErr)
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

// init initializes the root command with flags and configuration settings.
func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (YAML, TOML or JSON)")
	flags.BoolP("verbose", "v", false, "Enable verbose output with per-entry debug information")
	flags.String("log-file", "", "Also write log output to this file, rotated by size")
	flags.Int("log-max-size", 10, "Maximum log file size in megabytes before rotation")

	for _, name := range []string{"verbose", "log-file", "log-max-size"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(common.FormatError("failed to bind flag "+name, err))
		}
	}
}

// initConfig reads the config file and environment variables if set.
func initConfig() {
	viper.SetEnvPrefix("ODETOOLS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if configFile == "" {
		return
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		common.LogWarn("failed to read config file %s: %v", configFile, err)
	}
}

// exportYAML writes report to path when the command's --yaml flag is set.
func exportYAML(cmd *cobra.Command, report interface{}) error {
	path, err := cmd.Flags().GetString("yaml")
	if err != nil {
		return fmt.Errorf("error getting yaml flag: %w", err)
	}
	if path == "" {
		return nil
	}
	var exporter pkg.ReportExporter = pkg.NewYAMLExporter(fileSystem)
	if err := exporter.ExportFile(report, path); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	fmt.Printf("Report written to: %s\n", path)
	return nil
}
