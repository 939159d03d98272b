package pkg

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hansbonini/odetools/pkg/disctest"
	"github.com/hansbonini/odetools/pkg/ps3"
)

func sampleRegionReport() *RegionReport {
	regions := &ps3.RegionMap{
		Plain:     []ps3.Region{{Start: 0, End: 99}, {Start: 150, End: 199}},
		Encrypted: []ps3.Region{{Start: 100, End: 149}},
	}
	return &RegionReport{Source: "disc.iso", Regions: regions, EncryptedSectors: regions.EncryptedSectors()}
}

func TestYAMLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLExporter(afero.NewMemMapFs()).Export(sampleRegionReport(), &buf))

	output := buf.String()
	assert.Contains(t, output, "source: disc.iso")
	assert.Contains(t, output, "encrypted_sectors: 50")
	assert.Contains(t, output, "start: 100")
	assert.Contains(t, output, "end: 149")
}

func TestYAMLExporter_ExportFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	report := &FixReport{
		Image:     "disc.iso",
		LBAOffset: 0x3a000,
		Regions:   *sampleRegionReport(),
		Summary:   &ps3.CorrectionSummary{Regions: 1, Sectors: 50, Corrected: 49, Skipped: 1},
		Diagnostics: []DiagnosticEntry{
			{Severity: "error", Kind: "io error", Offset: 0x32000, Message: "failed to read 16 bytes at sector 0x00000064"},
		},
	}

	var exporter ReportExporter = NewYAMLExporter(fs)
	require.NoError(t, exporter.ExportFile(report, "/out/fix.yaml"))

	data, err := afero.ReadFile(fs, "/out/fix.yaml")
	require.NoError(t, err)

	var decoded FixReport
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, report.LBAOffset, decoded.LBAOffset)
	assert.Equal(t, report.Regions.Regions.Encrypted, decoded.Regions.Regions.Encrypted)
	require.NotNil(t, decoded.Summary)
	assert.Equal(t, uint64(49), decoded.Summary.Corrected)
	assert.Nil(t, decoded.Summary.Failures)
	assert.Equal(t, report.Diagnostics, decoded.Diagnostics)
}

func TestYAMLExporter_ExportFileReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := NewYAMLExporter(fs).ExportFile(sampleRegionReport(), "/out.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create YAML file")
}

func TestTextExporter_WriteVolume(t *testing.T) {
	fs := newTestFs(t, map[string][]byte{testImagePath: disctest.Sample().Data})
	report, err := NewISOProcessor(fs).Inspect(testImagePath)
	require.NoError(t, err)

	tests := []struct {
		name        string
		showSpecial bool
		contains    []string
		excludes    []string
	}{
		{
			name: "files only",
			contains: []string{
				"Volume:             TEST_DISC",
				"path_table_size:    0x0000001e",
				"root data_sector:   0x00000014",
				"root flags:         0x02\n",
				"/A/B (sector 0x00000016)",
				"A/",
				"EBOOT.BIN",
				"1234 bytes       1 sectors at 0x00000017",
			},
			excludes: []string{"EBOOT.BIN;1", "  ./", "  ../", "warnings", "0x0000000014"},
		},
		{
			name:        "with special records",
			showSpecial: true,
			contains:    []string{"  ./", "  ../"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := NewTextExporter()
			exporter.ShowSpecial = tt.showSpecial

			var buf bytes.Buffer
			exporter.WriteVolume(&buf, report)
			output := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, output, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, output, s)
			}
		})
	}
}

func TestTextExporter_WriteFix(t *testing.T) {
	report := &FixReport{Image: "disc.iso", LBAOffset: 0x3a000, DryRun: true, Regions: *sampleRegionReport()}

	var buf bytes.Buffer
	NewTextExporter().WriteFix(&buf, report)
	output := buf.String()
	assert.Contains(t, output, "LBA offset: 0x0003a000")
	assert.Contains(t, output, "Plain regions (2):")
	assert.Contains(t, output, "0x00000064 - 0x00000095  50 sectors")
	assert.Contains(t, output, "Dry run, image left untouched")

	report.DryRun = false
	report.Summary = &ps3.CorrectionSummary{Regions: 1, Sectors: 50, Corrected: 49, Skipped: 1}
	report.Diagnostics = []DiagnosticEntry{
		{Severity: "error", Kind: "io error", Offset: 0x32000, Message: "failed to read 16 bytes at sector 0x00000064"},
		{Severity: "warning", Kind: "integrity warning", Offset: -1, Message: "late warning"},
	}

	buf.Reset()
	NewTextExporter().WriteFix(&buf, report)
	output = buf.String()
	assert.Contains(t, output, "Corrected 49 of 50 sectors in 1 regions, 1 skipped")
	assert.Contains(t, output, "1 warnings, 1 errors")
	assert.Contains(t, output, "[ERROR] io error at 0x00032000: failed to read 16 bytes")
	assert.Contains(t, output, "[WARNING] integrity warning: late warning")
}

func TestTextExporter_WriteIRD(t *testing.T) {
	report := &IRDReport{
		Version:      9,
		GameID:       "BLES00001",
		GameName:     "Sample Game",
		RegionHashes: []string{"01010101010101010101010101010101"},
		FileCount:    2,
		Regions:      sampleRegionReport(),
	}

	var buf bytes.Buffer
	NewTextExporter().WriteIRD(&buf, report)
	output := buf.String()
	assert.Contains(t, output, "Game ID:        BLES00001")
	assert.Contains(t, output, "Region hashes:  1")
	assert.Contains(t, output, "    0  01010101010101010101010101010101")
	assert.Contains(t, output, "File hashes:    2")
	assert.Contains(t, output, "Encrypted sectors:  50")
	assert.NotContains(t, output, "Volume:")
}
