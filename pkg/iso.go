// Package pkg provides the file level operations behind the odetools commands.
// This file contains ISO9660 volume inspection.
package pkg

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/hansbonini/odetools/pkg/common"
	"github.com/hansbonini/odetools/pkg/iso9660"
)

// ISOProcessor inspects the directory structure of disc images
type ISOProcessor struct {
	fs afero.Fs
}

// NewISOProcessor creates a new ISO processor instance
func NewISOProcessor(fs afero.Fs) *ISOProcessor {
	return &ISOProcessor{fs: fs}
}

// Inspect parses the volume descriptor, path table and directory records of
// an image. Non-fatal findings are listed in the report.
func (p *ISOProcessor) Inspect(imagePath string) (report *VolumeReport, err error) {
	file, err := p.fs.OpenFile(imagePath, os.O_RDONLY, 0)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToOpenImage, err)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	return inspectVolume(imagePath, file)
}

func inspectVolume(source string, image io.ReadSeeker) (*VolumeReport, error) {
	reader := iso9660.NewReader(image)
	volume, err := reader.ReadVolume()
	if err != nil {
		return nil, fmt.Errorf("failed to read volume: %w", err)
	}

	report := newVolumeReport(source, volume)
	report.Diagnostics = diagnosticEntries(reader.Diagnostics.Items())
	common.LogInfo("volume %q: %d directories, %d diagnostics", report.Volume.VolumeID,
		len(report.Directories), len(report.Diagnostics))
	return report, nil
}

func newVolumeReport(source string, volume *iso9660.Volume) *VolumeReport {
	pvd := volume.Descriptor
	report := &VolumeReport{
		Source: source,
		Volume: VolumeInfo{
			SystemID:         pvd.SystemID,
			VolumeID:         pvd.VolumeID,
			PublisherID:      pvd.PublisherID,
			ApplicationID:    pvd.ApplicationID,
			CreationDate:     pvd.CreationDate,
			VolumeSpaceSize:  pvd.VolumeSpaceSize,
			PathTableSize:    pvd.PathTableSize,
			LPathTableSector: pvd.LPathTableSector,
			MPathTableSector: pvd.MPathTableSector,
			Root:             newRecordEntry(&pvd.RootDirectory),
			RootNameLength:   pvd.RootDirectory.NameLength,
			RootFlags:        pvd.RootDirectory.Flags,
		},
		Directories: make([]DirectoryEntry, 0, volume.PathTable.Count()),
	}

	for i := range volume.PathTable.Entries {
		entry := &volume.PathTable.Entries[i]
		path, err := volume.PathTable.Resolve(i)
		if err != nil {
			path = entry.Name
		}

		directory := DirectoryEntry{
			Number:  entry.Number,
			Path:    path,
			Sector:  entry.DataSector,
			Parent:  entry.Parent + 1,
			Records: make([]RecordEntry, 0, entry.Records.Len()),
		}
		if entry.Records != nil {
			for j := range entry.Records.Records {
				directory.Records = append(directory.Records, newRecordEntry(&entry.Records.Records[j]))
			}
		}
		report.Directories = append(report.Directories, directory)
	}
	return report
}

func newRecordEntry(record *iso9660.DirectoryRecord) RecordEntry {
	entry := RecordEntry{
		Name:      record.Name,
		Sector:    record.DataSector,
		Length:    record.DataLength,
		Directory: record.IsDir(),
	}
	if at := record.RecordedAt(); !at.IsZero() {
		entry.RecordedAt = at.Format(time.RFC3339)
	}
	return entry
}
