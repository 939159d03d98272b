// Package ps3 handles the PlayStation 3 specific parts of a disc image:
// the plain region table at sector 0, the sector correction needed after
// dumping through an optical drive emulator, and IRD metadata files.
package ps3

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hansbonini/odetools/pkg/common"
)

// MaxRegions bounds the declared plain region count. IRD files store the
// total region count in a single byte.
const MaxRegions = 255

// RegionTableHeaderSize is the count plus the reserved word
const RegionTableHeaderSize = 8

// Region is an inclusive sector range
type Region struct {
	Start uint32 `yaml:"start"`
	End   uint32 `yaml:"end"`
}

// Sectors returns the number of sectors in the region
func (r Region) Sectors() uint32 {
	return r.End - r.Start + 1
}

// RegionMap holds the declared plain regions and the encrypted gaps between them
type RegionMap struct {
	Plain     []Region `yaml:"plain"`
	Encrypted []Region `yaml:"encrypted"`
}

// EncryptedSectors returns the total number of sectors to be corrected
func (m *RegionMap) EncryptedSectors() uint64 {
	var total uint64
	for _, region := range m.Encrypted {
		total += uint64(region.Sectors())
	}
	return total
}

// ClassifyRegions reads the region table at the start of r and derives the
// encrypted regions. Any error is fatal; nothing is returned partially.
func ClassifyRegions(r io.ReadSeeker) (*RegionMap, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrIO, common.ErrFailedToReadRegionCount, err)
	}

	count, err := common.ReadInt32BE(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrIO, common.ErrFailedToReadRegionCount, err)
	}
	common.LogInfo(common.InfoPlainRegionCount, count)
	if count < 0 || count > MaxRegions {
		return nil, fmt.Errorf("%w: "+common.ErrRegionCountOutOfRange, common.ErrFormat, count, MaxRegions)
	}

	// Reserved
	if err := common.SkipBytes(r, 4); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrIO, common.ErrFailedToReadRegionCount, err)
	}

	regions := &RegionMap{Plain: make([]Region, 0, count)}
	for i := 0; i < int(count); i++ {
		start, end, err := readRegionBounds(r)
		if err != nil {
			return nil, fmt.Errorf("%w: "+common.ErrFailedToReadRegion+": %w", common.ErrIO, i, err)
		}
		region, err := newRegion(start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: "+common.ErrFailedToReadRegion+": %w", common.ErrFormat, i, err)
		}
		if region.Start >= region.End {
			return nil, fmt.Errorf("%w: "+common.ErrRegionInverted, common.ErrFormat, i, region.Start, region.End)
		}
		if i > 0 && region.Start <= regions.Plain[i-1].End {
			return nil, fmt.Errorf("%w: "+common.ErrRegionOverlap, common.ErrFormat, i, region.Start, regions.Plain[i-1].End)
		}
		common.LogInfo(common.InfoPlainRegion, i, region.Start, region.End, region.Sectors())
		regions.Plain = append(regions.Plain, region)
	}

	if err := regions.deriveEncrypted(); err != nil {
		return nil, err
	}
	return regions, nil
}

// ParseRegionTable classifies a region table held in memory, such as the
// first sector of an IRD header
func ParseRegionTable(data []byte) (*RegionMap, error) {
	return ClassifyRegions(bytes.NewReader(data))
}

func readRegionBounds(r io.Reader) (int32, int32, error) {
	start, err := common.ReadInt32BE(r)
	if err != nil {
		return 0, 0, err
	}
	end, err := common.ReadInt32BE(r)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func newRegion(start, end int32) (Region, error) {
	var region Region
	var err error
	if region.Start, err = common.SafeInt32ToUint32(start); err != nil {
		return Region{}, err
	}
	if region.End, err = common.SafeInt32ToUint32(end); err != nil {
		return Region{}, err
	}
	return region, nil
}

// deriveEncrypted fills the encrypted gaps between consecutive plain regions
// and checks the result against an independent count of those gaps
func (m *RegionMap) deriveEncrypted() error {
	expected := countGaps(m.Plain)
	m.Encrypted = make([]Region, 0, expected)
	for i := 0; i+1 < len(m.Plain); i++ {
		current, next := m.Plain[i], m.Plain[i+1]
		if current.End+1 == next.Start {
			common.LogInfo(common.InfoSeamlessRegions, i, i+1)
			continue
		}
		m.Encrypted = append(m.Encrypted, Region{Start: current.End + 1, End: next.Start - 1})
	}

	common.LogInfo(common.InfoEncryptedCount, len(m.Encrypted))
	if len(m.Encrypted) != expected {
		return fmt.Errorf("%w: "+common.ErrRegionCountMismatch, common.ErrFormat, len(m.Encrypted), expected)
	}
	for i, region := range m.Encrypted {
		common.LogInfo(common.InfoEncryptedRegion, i, region.Start, region.End, region.Sectors())
	}
	return nil
}

// countGaps returns the number of consecutive plain pairs with at least one
// sector between them
func countGaps(plain []Region) int {
	gaps := 0
	for i := 1; i < len(plain); i++ {
		if uint64(plain[i].Start) > uint64(plain[i-1].End)+1 {
			gaps++
		}
	}
	return gaps
}
