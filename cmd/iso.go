// Package cmd provides command-line interface for ISO9660 inspection.
// This file contains the command that prints the directory structure
// reconstructed from the path table and directory records.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hansbonini/odetools/pkg"
)

// isoCmd represents the parent command for ISO9660 operations.
var isoCmd = &cobra.Command{
	Use:   "iso",
	Short: "Inspect ISO9660 file systems",
	Long: `Inspect the ISO9660 file system of disc images.

Commands:
  tree      Print the directory tree from the path table

Examples:
  odetools iso tree disc.iso`,
}

// isoTreeCmd prints the volume descriptor and the directory tree.
var isoTreeCmd = &cobra.Command{
	Use:   "tree [image_file]",
	Short: "Print the directory tree of an image",
	Long: `Print the directory tree of an ISO9660 image.

The primary volume descriptor is read from sector 16, then every path
table entry is assembled and the directory records of each directory are
listed under its full path. Malformed entries are reported as warnings and
skipped; only an unreadable volume descriptor is fatal. Use -v for a trace
of every path table entry and record.

Example:
  odetools iso tree disc.iso
  odetools iso tree --all --yaml tree.yaml disc.iso`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showSpecial, err := cmd.Flags().GetBool("all")
		if err != nil {
			return fmt.Errorf("error getting all flag: %w", err)
		}

		processor := pkg.NewISOProcessor(fileSystem)

		report, err := processor.Inspect(args[0])
		if err != nil {
			return fmt.Errorf("failed to inspect disc image: %w", err)
		}

		exporter := pkg.NewTextExporter()
		exporter.ShowSpecial = showSpecial
		exporter.WriteVolume(os.Stdout, report)
		return exportYAML(cmd, report)
	},
}

// init initializes the iso command with its subcommands and flags.
func init() {
	rootCmd.AddCommand(isoCmd)
	isoCmd.AddCommand(isoTreeCmd)

	isoTreeCmd.Flags().BoolP("all", "a", false, "Include the . and .. records in listings")
	isoTreeCmd.Flags().String("yaml", "", "Also write the directory tree to this YAML file")
}
