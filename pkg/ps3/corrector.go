package ps3

import (
	"encoding/binary"
	"io"

	"github.com/hansbonini/odetools/pkg/common"
)

// SectorHeaderSize is the number of bytes read and rewritten per sector
const SectorHeaderSize = 16

// ProgressInterval is the number of sectors between progress log lines
const ProgressInterval = 200000

// CorrectWord applies the correction to the last header word of a sector.
// Applying it twice with the same arguments restores the input.
func CorrectWord(word, sector, lbaOffset uint32) uint32 {
	word ^= lbaOffset + sector
	word ^= sector
	return word
}

// CorrectionSummary reports the outcome of a correction pass
type CorrectionSummary struct {
	Regions   int                 `yaml:"regions"`
	Sectors   uint64              `yaml:"sectors"`
	Corrected uint64              `yaml:"corrected"`
	Skipped   uint64              `yaml:"skipped"`
	Failures  []common.Diagnostic `yaml:"-"`
}

// Corrector rewrites the sector headers of encrypted regions in place
type Corrector struct {
	image       io.ReadWriteSeeker
	lbaOffset   uint32
	Diagnostics *common.Diagnostics
}

// NewCorrector creates a corrector over an image opened for reading and writing
func NewCorrector(image io.ReadWriteSeeker, lbaOffset uint32) *Corrector {
	return &Corrector{
		image:       image,
		lbaOffset:   lbaOffset,
		Diagnostics: &common.Diagnostics{},
	}
}

// Correct processes every sector of every region in ascending order.
// A sector that cannot be read or written is recorded and skipped.
func (c *Corrector) Correct(regions []Region) CorrectionSummary {
	summary := CorrectionSummary{Regions: len(regions)}
	first := c.Diagnostics.Len()

	for i, region := range regions {
		common.LogInfo(common.InfoCorrectingRegion, i)
		var done uint64
		for sector := uint64(region.Start); sector <= uint64(region.End); sector++ {
			summary.Sectors++
			if c.correctSector(uint32(sector)) {
				summary.Corrected++
			} else {
				summary.Skipped++
			}
			done++
			if done%ProgressInterval == 0 {
				common.LogInfo(common.InfoRegionProgress, i, done)
			}
		}
	}

	summary.Failures = c.Diagnostics.Items()[first:]
	common.LogInfo(common.InfoCorrectionComplete, summary.Corrected, summary.Sectors, summary.Regions, summary.Skipped)
	return summary
}

func (c *Corrector) correctSector(sector uint32) bool {
	offset, err := common.SeekSector(c.image, sector)
	if err != nil {
		c.Diagnostics.Error(common.ErrIO, common.SectorOffset(sector), common.ErrFailedToSeekSector+": %v", sector, err)
		return false
	}

	var header [SectorHeaderSize]byte
	if _, err := io.ReadFull(c.image, header[:]); err != nil {
		c.Diagnostics.Error(common.ErrIO, offset, common.ErrFailedToReadSectorHeader+": %v", sector, err)
		return false
	}

	word := binary.BigEndian.Uint32(header[12:16])
	corrected := CorrectWord(word, sector, c.lbaOffset)
	binary.BigEndian.PutUint32(header[12:16], corrected)
	common.LogDebug(common.DebugSectorCorrection, sector, word, corrected)

	if _, err := c.image.Seek(offset, io.SeekStart); err != nil {
		c.Diagnostics.Error(common.ErrIO, offset, common.ErrFailedToSeekSector+": %v", sector, err)
		return false
	}
	if _, err := c.image.Write(header[:]); err != nil {
		c.Diagnostics.Error(common.ErrIO, offset, common.ErrFailedToWriteSectorHeader+": %v", sector, err)
		return false
	}
	return true
}
