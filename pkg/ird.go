package pkg

import (
	"os"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/hansbonini/odetools/pkg/common"
	"github.com/hansbonini/odetools/pkg/iso9660"
	"github.com/hansbonini/odetools/pkg/ps3"
)

// IRDProcessor inspects IRD metadata files
type IRDProcessor struct {
	fs afero.Fs
}

// NewIRDProcessor creates a new IRD processor instance
func NewIRDProcessor(fs afero.Fs) *IRDProcessor {
	return &IRDProcessor{fs: fs}
}

// Inspect decodes an IRD file, classifies the region table held in its
// header and parses the header as an ISO9660 volume. Only an unreadable
// IRD container is fatal.
func (p *IRDProcessor) Inspect(path string) (report *IRDReport, err error) {
	file, err := p.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadIRD, err)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	ird, err := ps3.ParseIRD(file)
	if err != nil {
		return nil, err
	}

	report = &IRDReport{
		Source:        path,
		Version:       ird.Version,
		GameID:        ird.GameID,
		GameName:      ird.GameName,
		UpdateVersion: ird.UpdateVersion,
		GameVersion:   ird.GameVersion,
		AppVersion:    ird.AppVersion,
		HeaderSize:    len(ird.Header),
		FooterSize:    len(ird.Footer),
		RegionHashes:  ird.RegionHashHex(),
		FileCount:     len(ird.Files),
	}

	diagnostics := &common.Diagnostics{}
	regions, err := ird.Regions()
	if err != nil {
		diagnostics.Error(common.ErrFormat, 0, err.Error())
	} else {
		report.Regions = &RegionReport{
			Source:           path,
			Regions:          regions,
			EncryptedSectors: regions.EncryptedSectors(),
		}
		total := len(regions.Plain) + len(regions.Encrypted)
		if total != len(ird.RegionHashes) {
			diagnostics.Warn(common.ErrIntegrity, -1, common.WarnRegionHashMismatch, len(ird.RegionHashes), total)
		}
	}

	volume, err := inspectVolume(path, ird.HeaderImage())
	if err != nil {
		diagnostics.Error(common.ErrFormat, common.SectorOffset(iso9660.PrimaryVolumeDescriptorSector), err.Error())
	} else {
		report.Volume = volume
	}

	report.Diagnostics = diagnosticEntries(diagnostics.Items())
	return report, nil
}
