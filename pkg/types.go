package pkg

import (
	"io"

	"github.com/hansbonini/odetools/pkg/common"
	"github.com/hansbonini/odetools/pkg/ps3"
)

// DiagnosticEntry is a recorded anomaly as it appears in reports
type DiagnosticEntry struct {
	Severity string `yaml:"severity"`
	Kind     string `yaml:"kind"`
	Offset   int64  `yaml:"offset"`
	Message  string `yaml:"message"`
}

// RecordEntry describes one directory record
type RecordEntry struct {
	Name       string `yaml:"name"`
	Sector     uint32 `yaml:"sector"`
	Length     uint32 `yaml:"length"`
	Directory  bool   `yaml:"directory,omitempty"`
	RecordedAt string `yaml:"recorded_at,omitempty"`
}

// DirectoryEntry describes one path table entry and its records
type DirectoryEntry struct {
	Number  int           `yaml:"number"`
	Path    string        `yaml:"path"`
	Sector  uint32        `yaml:"sector"`
	Parent  int           `yaml:"parent"`
	Records []RecordEntry `yaml:"records"`
}

// VolumeInfo holds the volume descriptor fields shown by inspection
type VolumeInfo struct {
	SystemID         string      `yaml:"system_id"`
	VolumeID         string      `yaml:"volume_id"`
	PublisherID      string      `yaml:"publisher_id,omitempty"`
	ApplicationID    string      `yaml:"application_id,omitempty"`
	CreationDate     string      `yaml:"creation_date,omitempty"`
	VolumeSpaceSize  uint32      `yaml:"vol_space_size"`
	PathTableSize    uint32      `yaml:"path_table_size"`
	LPathTableSector uint32      `yaml:"lpath_table_sector"`
	MPathTableSector uint32      `yaml:"mpath_table_sector"`
	Root             RecordEntry `yaml:"root"`
	RootNameLength   uint8       `yaml:"root_name_length"`
	RootFlags        uint8       `yaml:"root_flags"`
}

// VolumeReport is the result of inspecting an ISO9660 volume
type VolumeReport struct {
	Source      string            `yaml:"source"`
	Volume      VolumeInfo        `yaml:"volume"`
	Directories []DirectoryEntry  `yaml:"directories"`
	Diagnostics []DiagnosticEntry `yaml:"diagnostics,omitempty"`
}

// RegionReport is the result of classifying a region table
type RegionReport struct {
	Source           string         `yaml:"source"`
	Regions          *ps3.RegionMap `yaml:"regions"`
	EncryptedSectors uint64         `yaml:"encrypted_sectors"`
}

// FixReport is the result of repairing, or dry running the repair of, an image
type FixReport struct {
	Image       string                 `yaml:"image"`
	LBAOffset   uint32                 `yaml:"lba_offset"`
	DryRun      bool                   `yaml:"dry_run"`
	Regions     RegionReport           `yaml:"regions"`
	Summary     *ps3.CorrectionSummary `yaml:"summary,omitempty"`
	Diagnostics []DiagnosticEntry      `yaml:"diagnostics,omitempty"`
}

// IRDReport is the result of inspecting an IRD file
type IRDReport struct {
	Source        string            `yaml:"source"`
	Version       uint8             `yaml:"version"`
	GameID        string            `yaml:"game_id"`
	GameName      string            `yaml:"game_name"`
	UpdateVersion string            `yaml:"update_version"`
	GameVersion   string            `yaml:"game_version"`
	AppVersion    string            `yaml:"app_version"`
	HeaderSize    int               `yaml:"header_size"`
	FooterSize    int               `yaml:"footer_size"`
	RegionHashes  []string          `yaml:"region_hashes"`
	FileCount     int               `yaml:"file_count"`
	Regions       *RegionReport     `yaml:"regions,omitempty"`
	Volume        *VolumeReport     `yaml:"volume,omitempty"`
	Diagnostics   []DiagnosticEntry `yaml:"diagnostics,omitempty"`
}

// ReportExporter writes reports in a structured format
type ReportExporter interface {
	Export(report interface{}, writer io.Writer) error
	ExportFile(report interface{}, path string) error
}

func diagnosticEntries(items []common.Diagnostic) []DiagnosticEntry {
	entries := make([]DiagnosticEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, DiagnosticEntry{
			Severity: item.Severity.String(),
			Kind:     item.Kind.Error(),
			Offset:   item.Offset,
			Message:  item.Message,
		})
	}
	return entries
}
