package iso9660

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hansbonini/odetools/pkg/common"
)

// Reader decodes ISO9660 structures from a seekable image.
// Non-fatal findings are collected in Diagnostics.
type Reader struct {
	image       io.ReadSeeker
	Diagnostics *common.Diagnostics
}

// NewReader creates a reader over the given image
func NewReader(image io.ReadSeeker) *Reader {
	return &Reader{
		image:       image,
		Diagnostics: &common.Diagnostics{},
	}
}

// ReadVolumeDescriptor reads and validates the primary volume descriptor at sector 16
func (r *Reader) ReadVolumeDescriptor() (*PrimaryVolumeDescriptor, error) {
	if _, err := common.SeekSector(r.image, PrimaryVolumeDescriptorSector); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrIO, common.ErrFailedToReadDescriptor, err)
	}

	data := make([]byte, common.SectorSize)
	if _, err := io.ReadFull(r.image, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrIO, common.ErrFailedToReadDescriptor, err)
	}

	return decodePrimaryVolumeDescriptor(data)
}

func decodePrimaryVolumeDescriptor(data []byte) (*PrimaryVolumeDescriptor, error) {
	if data[0] != VolumeDescriptorTypePrimary {
		return nil, fmt.Errorf("%w: "+common.ErrNotPrimaryDescriptor, common.ErrFormat, data[0])
	}
	if !bytes.Equal(data[1:6], []byte(StandardIdentifier)) {
		return nil, fmt.Errorf("%w: "+common.ErrBadStandardIdentifier, common.ErrFormat, data[1:6])
	}

	pvd := &PrimaryVolumeDescriptor{
		TypeCode:             data[0],
		StandardID:           string(data[1:6]),
		Version:              data[6],
		SystemID:             common.TrimPadded(data[8:40]),
		VolumeID:             common.TrimPadded(data[40:72]),
		VolumeSpaceSize:      binary.LittleEndian.Uint32(data[80:84]),
		LogicalBlockSize:     binary.LittleEndian.Uint16(data[128:130]),
		PathTableSize:        binary.LittleEndian.Uint32(data[132:136]),
		LPathTableSector:     binary.LittleEndian.Uint32(data[140:144]),
		OptLPathTableSector:  binary.LittleEndian.Uint32(data[144:148]),
		MPathTableSector:     binary.BigEndian.Uint32(data[148:152]),
		OptMPathTableSector:  binary.BigEndian.Uint32(data[152:156]),
		RootDirectory:        decodeDirectoryRecord(data[156:190]),
		VolumeSetID:          common.TrimPadded(data[190:318]),
		PublisherID:          common.TrimPadded(data[318:446]),
		DataPreparerID:       common.TrimPadded(data[446:574]),
		ApplicationID:        common.TrimPadded(data[574:702]),
		CreationDate:         common.TrimPadded(data[813:829]),
		ModificationDate:     common.TrimPadded(data[830:846]),
		FileStructureVersion: data[881],
	}
	pvd.RootDirectory.Name = normalizeName(data[156+DirectoryRecordHeaderSize : 156+RootDirectoryRecordSize])

	return pvd, nil
}

// decodeDirectoryRecord decodes the fixed 33-byte header of a directory record.
// Both-endian fields are read from their little-endian half.
func decodeDirectoryRecord(header []byte) DirectoryRecord {
	record := DirectoryRecord{
		Length:         header[0],
		ExtAttrLength:  header[1],
		DataSector:     binary.LittleEndian.Uint32(header[2:6]),
		DataLength:     binary.LittleEndian.Uint32(header[10:14]),
		Flags:          header[25],
		InterleaveUnit: header[26],
		InterleaveGap:  header[27],
		VolumeSequence: binary.LittleEndian.Uint16(header[28:30]),
		NameLength:     header[32],
		Prev:           -1,
		Next:           -1,
	}
	copy(record.Date[:], header[18:25])
	return record
}

// normalizeName maps the single byte identifiers 0x00 and 0x01 to "." and ".."
func normalizeName(raw []byte) string {
	if len(raw) == 1 {
		switch raw[0] {
		case 0x00:
			return "."
		case 0x01:
			return ".."
		}
	}
	return common.DecodeIdentifier(raw)
}
