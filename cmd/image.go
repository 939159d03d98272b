// Package cmd provides command-line interface for disc image processing.
// This file contains commands for classifying the regions of PS3 disc images
// and repairing the sector headers of encrypted regions.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hansbonini/odetools/pkg"
)

// imageCmd represents the parent command for all disc image operations.
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Process PS3 disc images",
	Long: `Process PlayStation 3 disc images.

Commands:
  regions   Classify plain and encrypted regions from the region table
  fix       Repair the sector headers of encrypted regions in place

Examples:
  odetools image regions disc.iso
  odetools image fix disc.nfo disc.iso`,
}

// imageRegionsCmd prints the plain and encrypted region map of an image.
var imageRegionsCmd = &cobra.Command{
	Use:   "regions [image_or_table]",
	Short: "Classify plain and encrypted regions",
	Long: `Classify the plain and encrypted regions of a disc image.

The region table is read from sector 0 of the given file, which may be a
full disc image or a standalone copy of the table. Encrypted regions are
the gaps between consecutive plain regions.

Example:
  odetools image regions disc.iso
  odetools image regions --yaml regions.yaml disc.iso`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor := pkg.NewImageProcessor(fileSystem)

		report, err := processor.ClassifyRegions(args[0])
		if err != nil {
			return fmt.Errorf("failed to classify regions: %w", err)
		}

		pkg.NewTextExporter().WriteRegions(os.Stdout, report)
		return exportYAML(cmd, report)
	},
}

// imageFixCmd corrects the encrypted sectors of an image.
var imageFixCmd = &cobra.Command{
	Use:   "fix [nfo_file] [image_file]",
	Short: "Repair encrypted sector headers in place",
	Long: `Repair the encrypted sectors of a disc image dumped through an ODE.

The lba offset is read from the NFO sidecar. For every sector in an
encrypted region the fourth header word is XORed with (offset + sector)
and then with the sector number. The region table is validated before the
image is opened for writing; a corrupt table leaves the image untouched.
Unreadable sectors are reported and skipped.

WARNING: the image is modified in place. Use --dry-run to review the
region map first.

Example:
  odetools image fix disc.nfo disc.iso
  odetools image fix --regions table.bin disc.nfo disc.iso
  odetools image fix --dry-run disc.nfo disc.iso`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nfoFile := args[0]
		imageFile := args[1]

		regionsPath, err := cmd.Flags().GetString("regions")
		if err != nil {
			return fmt.Errorf("error getting regions flag: %w", err)
		}
		dryRun, err := cmd.Flags().GetBool("dry-run")
		if err != nil {
			return fmt.Errorf("error getting dry-run flag: %w", err)
		}

		processor := pkg.NewImageProcessor(fileSystem)

		fmt.Printf("Processing disc image: %s\n", imageFile)
		fmt.Printf("NFO file: %s\n", nfoFile)

		report, err := processor.Fix(nfoFile, imageFile, pkg.FixOptions{
			RegionsPath: regionsPath,
			DryRun:      dryRun,
		})
		if report != nil {
			pkg.NewTextExporter().WriteFix(os.Stdout, report)
			if exportErr := exportYAML(cmd, report); exportErr != nil {
				return exportErr
			}
		}
		if err != nil {
			return fmt.Errorf("failed to fix disc image: %w", err)
		}

		if message := fixOutcome(report); message != "" {
			fmt.Println(message)
		}
		return nil
	},
}

// fixOutcome returns the closing line of a repair, empty for a dry run
func fixOutcome(report *pkg.FixReport) string {
	if report.DryRun || report.Summary == nil {
		return ""
	}
	if skipped := report.Summary.Skipped; skipped > 0 {
		return fmt.Sprintf("Disc image fixed with %d sectors skipped", skipped)
	}
	return "Disc image fixed successfully!"
}

// init initializes the image command with its subcommands and flags.
func init() {
	rootCmd.AddCommand(imageCmd)
	imageCmd.AddCommand(imageRegionsCmd)
	imageCmd.AddCommand(imageFixCmd)

	imageRegionsCmd.Flags().String("yaml", "", "Also write the region map to this YAML file")

	imageFixCmd.Flags().String("regions", "", "Read the region table from this file instead of the image")
	imageFixCmd.Flags().Bool("dry-run", false, "Classify regions without modifying the image")
	imageFixCmd.Flags().String("yaml", "", "Also write the repair report to this YAML file")
}
