// Package cmd provides command-line interface for IRD files.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hansbonini/odetools/pkg"
)

// irdCmd represents the parent command for IRD operations.
var irdCmd = &cobra.Command{
	Use:   "ird",
	Short: "Inspect IRD metadata files",
	Long: `Inspect IRD files, which describe the layout and hashes of a PS3 disc.

Commands:
  info      Print IRD metadata and check its embedded disc header

Examples:
  odetools ird info BLES00000.ird`,
}

// irdInfoCmd prints the metadata of an IRD file.
var irdInfoCmd = &cobra.Command{
	Use:   "info [ird_file]",
	Short: "Print IRD metadata",
	Long: `Print the metadata stored in an IRD file.

Besides the game identifiers and hash lists, the region table held in the
embedded disc header is classified and compared with the number of region
hashes, and the header is parsed as an ISO9660 volume.

Example:
  odetools ird info BLES00000.ird
  odetools ird info --yaml ird.yaml BLES00000.ird`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := pkg.NewIRDProcessor(fileSystem)

		report, err := processor.Inspect(args[0])
		if err != nil {
			return fmt.Errorf("failed to inspect IRD file: %w", err)
		}

		pkg.NewTextExporter().WriteIRD(os.Stdout, report)
		return exportYAML(cmd, report)
	},
}

// init initializes the ird command with its subcommands and flags.
func init() {
	rootCmd.AddCommand(irdCmd)
	irdCmd.AddCommand(irdInfoCmd)

	irdInfoCmd.Flags().String("yaml", "", "Also write the IRD summary to this YAML file")
}
