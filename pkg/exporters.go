package pkg

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hansbonini/odetools/pkg/common"
)

// YAMLExporter writes reports as YAML documents
type YAMLExporter struct {
	fs afero.Fs
}

// NewYAMLExporter creates a new YAML exporter writing through fs
func NewYAMLExporter(fs afero.Fs) *YAMLExporter {
	return &YAMLExporter{fs: fs}
}

// Export encodes a report to writer
func (e *YAMLExporter) Export(report interface{}, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)

	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// ExportFile encodes a report into a new file at path
func (e *YAMLExporter) ExportFile(report interface{}, path string) (err error) {
	file, err := e.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create YAML file: %w", err)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	if err := e.Export(report, file); err != nil {
		return err
	}
	common.LogInfo("report written to %s", path)
	return nil
}

// TextExporter prints reports for humans
type TextExporter struct {
	// ShowSpecial includes the "." and ".." records in directory listings
	ShowSpecial bool
}

// NewTextExporter creates a new text exporter
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// WriteVolume prints the volume descriptor fields and the directory tree
func (e *TextExporter) WriteVolume(w io.Writer, report *VolumeReport) {
	v := report.Volume
	fmt.Fprintf(w, "Volume:             %s\n", v.VolumeID)
	fmt.Fprintf(w, "System:             %s\n", v.SystemID)
	if v.PublisherID != "" {
		fmt.Fprintf(w, "Publisher:          %s\n", v.PublisherID)
	}
	fmt.Fprintf(w, "vol_space_size:     0x%08x\n", v.VolumeSpaceSize)
	fmt.Fprintf(w, "path_table_size:    0x%08x\n", v.PathTableSize)
	fmt.Fprintf(w, "lpath_table_sector: 0x%08x\n", v.LPathTableSector)
	fmt.Fprintf(w, "mpath_table_sector: 0x%08x\n", v.MPathTableSector)
	fmt.Fprintf(w, "root data_sector:   0x%08x\n", v.Root.Sector)
	fmt.Fprintf(w, "root data_length:   0x%08x\n", v.Root.Length)
	fmt.Fprintf(w, "root flags:         0x%02x\n", v.RootFlags)
	fmt.Fprintf(w, "root name_length:   %d\n", v.RootNameLength)
	fmt.Fprintln(w)

	for _, dir := range report.Directories {
		fmt.Fprintf(w, "%s (sector 0x%08x)\n", dir.Path, dir.Sector)
		for _, record := range dir.Records {
			if common.IsSpecialDirEntry(record.Name) && !e.ShowSpecial {
				continue
			}
			if record.Directory {
				fmt.Fprintf(w, "  %-32s <DIR>\n", record.Name+"/")
				continue
			}
			fmt.Fprintf(w, "  %-32s %10d bytes  %6d sectors at 0x%08x\n", common.CleanFileName(record.Name),
				record.Length, common.GetSizeInSectors(record.Length), record.Sector)
		}
	}
	e.WriteDiagnostics(w, report.Diagnostics)
}

// WriteRegions prints a region map
func (e *TextExporter) WriteRegions(w io.Writer, report *RegionReport) {
	fmt.Fprintf(w, "Plain regions (%d):\n", len(report.Regions.Plain))
	for i, region := range report.Regions.Plain {
		fmt.Fprintf(w, "  %3d  0x%08x - 0x%08x  %d sectors\n", i, region.Start, region.End, region.Sectors())
	}
	fmt.Fprintf(w, "Encrypted regions (%d):\n", len(report.Regions.Encrypted))
	for i, region := range report.Regions.Encrypted {
		fmt.Fprintf(w, "  %3d  0x%08x - 0x%08x  %d sectors\n", i, region.Start, region.End, region.Sectors())
	}
	fmt.Fprintf(w, "Encrypted sectors:  %d\n", report.EncryptedSectors)
}

// WriteFix prints the outcome of a repair
func (e *TextExporter) WriteFix(w io.Writer, report *FixReport) {
	fmt.Fprintf(w, "Image:      %s\n", report.Image)
	fmt.Fprintf(w, "LBA offset: 0x%08x\n", report.LBAOffset)
	e.WriteRegions(w, &report.Regions)
	if report.DryRun || report.Summary == nil {
		fmt.Fprintln(w, "Dry run, image left untouched")
		return
	}
	s := report.Summary
	fmt.Fprintf(w, "Corrected %d of %d sectors in %d regions, %d skipped\n",
		s.Corrected, s.Sectors, s.Regions, s.Skipped)
	e.WriteDiagnostics(w, report.Diagnostics)
}

// WriteIRD prints the IRD metadata and the results of checking its header
func (e *TextExporter) WriteIRD(w io.Writer, report *IRDReport) {
	fmt.Fprintf(w, "IRD version:    %d\n", report.Version)
	fmt.Fprintf(w, "Game ID:        %s\n", report.GameID)
	fmt.Fprintf(w, "Game name:      %s\n", report.GameName)
	fmt.Fprintf(w, "Update version: %s\n", report.UpdateVersion)
	fmt.Fprintf(w, "Game version:   %s\n", report.GameVersion)
	fmt.Fprintf(w, "App version:    %s\n", report.AppVersion)
	fmt.Fprintf(w, "Header:         %d bytes\n", report.HeaderSize)
	fmt.Fprintf(w, "Footer:         %d bytes\n", report.FooterSize)
	fmt.Fprintf(w, "Region hashes:  %d\n", len(report.RegionHashes))
	for i, hash := range report.RegionHashes {
		fmt.Fprintf(w, "  %3d  %s\n", i, hash)
	}
	fmt.Fprintf(w, "File hashes:    %d\n", report.FileCount)
	if report.Regions != nil {
		e.WriteRegions(w, report.Regions)
	}
	if report.Volume != nil {
		fmt.Fprintln(w)
		e.WriteVolume(w, report.Volume)
	}
	e.WriteDiagnostics(w, report.Diagnostics)
}

// WriteDiagnostics prints a one line summary followed by every diagnostic
func (e *TextExporter) WriteDiagnostics(w io.Writer, diagnostics []DiagnosticEntry) {
	if len(diagnostics) == 0 {
		return
	}
	counts := map[string]int{}
	for _, d := range diagnostics {
		counts[d.Severity]++
	}
	fmt.Fprintf(w, "\n%d warnings, %d errors\n", counts["warning"], counts["error"])
	for _, d := range diagnostics {
		location := ""
		if d.Offset >= 0 {
			location = fmt.Sprintf(" at 0x%08x", d.Offset)
		}
		fmt.Fprintf(w, "  [%s] %s%s: %s\n", strings.ToUpper(d.Severity), d.Kind, location, d.Message)
	}
}
