// Package disctest builds synthetic disc images, region tables and IRD
// streams for tests.
package disctest

import (
	"bytes"
	"encoding/binary"

	"github.com/klauspost/compress/gzip"

	"github.com/hansbonini/odetools/pkg/common"
)

// Sector layout of the Sample volume
const (
	PathTableSector = 18
	RootSector      = 20
	DirASector      = 21
	DirBSector      = 22
	FileSector      = 23
	SampleSectors   = 24

	// SamplePathTableSize is the size of the three entry path table
	SamplePathTableSize = 30
	// SampleFileLength is the data length of /A/EBOOT.BIN
	SampleFileLength = 1234
)

const (
	pvdSector     = 16
	recordHeader  = 33
	flagDirectory = 0x02
)

// Image is an in-memory disc image
type Image struct {
	Data []byte
}

// NewImage returns a zero filled image of the given sector count
func NewImage(sectors int) *Image {
	return &Image{Data: make([]byte, sectors*common.SectorSize)}
}

// Put copies p to the start of sector
func (i *Image) Put(sector uint32, p []byte) {
	copy(i.Data[common.SectorOffset(sector):], p)
}

// Reader returns a seekable reader over the image
func (i *Image) Reader() *bytes.Reader {
	return bytes.NewReader(i.Data)
}

// PathEntry encodes a little-endian path table entry including its padding
func PathEntry(name []byte, sector uint32, parent uint16) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(byte(len(name)))
	buf.WriteByte(0)
	binary.Write(buf, binary.LittleEndian, sector)
	binary.Write(buf, binary.LittleEndian, parent)
	buf.Write(name)
	if len(name)%2 != 0 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// DirectoryRecord encodes a directory record padded to an even length
func DirectoryRecord(name []byte, sector, length uint32, dir bool) []byte {
	size := recordHeader + len(name)
	if size%2 != 0 {
		size++
	}
	record := make([]byte, size)
	record[0] = byte(size)
	binary.LittleEndian.PutUint32(record[2:6], sector)
	binary.BigEndian.PutUint32(record[6:10], sector)
	binary.LittleEndian.PutUint32(record[10:14], length)
	binary.BigEndian.PutUint32(record[14:18], length)
	copy(record[18:25], []byte{99, 12, 31, 23, 59, 58, 4})
	if dir {
		record[25] = flagDirectory
	}
	binary.LittleEndian.PutUint16(record[28:30], 1)
	record[32] = byte(len(name))
	copy(record[33:], name)
	return record
}

// Directory concatenates records into one directory extent
func Directory(records ...[]byte) []byte {
	return bytes.Join(records, nil)
}

// PrimaryVolumeDescriptor encodes a type 1 volume descriptor
func PrimaryVolumeDescriptor(volumeSectors, pathTableSector, pathTableSize, rootSector uint32) []byte {
	data := make([]byte, common.SectorSize)
	data[0] = 1
	copy(data[1:6], "CD001")
	data[6] = 1
	copy(data[8:40], Padded("PS3VOLUME", 32))
	copy(data[40:72], Padded("TEST_DISC", 32))
	binary.LittleEndian.PutUint32(data[80:84], volumeSectors)
	binary.BigEndian.PutUint32(data[84:88], volumeSectors)
	binary.LittleEndian.PutUint16(data[128:130], common.SectorSize)
	binary.BigEndian.PutUint16(data[130:132], common.SectorSize)
	binary.LittleEndian.PutUint32(data[132:136], pathTableSize)
	binary.BigEndian.PutUint32(data[136:140], pathTableSize)
	binary.LittleEndian.PutUint32(data[140:144], pathTableSector)
	binary.BigEndian.PutUint32(data[148:152], pathTableSector+1)
	copy(data[156:190], DirectoryRecord([]byte{0x00}, rootSector, common.SectorSize, true))
	copy(data[318:446], Padded("PUBLISHER", 128))
	copy(data[574:702], Padded("PS3", 128))
	copy(data[813:830], "2006111100000000\x00")
	data[881] = 1
	return data
}

// Padded right pads s with spaces to size bytes
func Padded(s string, size int) []byte {
	return append([]byte(s), bytes.Repeat([]byte(" "), size-len(s))...)
}

// SamplePathTable encodes the path table of the Sample volume
func SamplePathTable() []byte {
	return Directory(
		PathEntry([]byte{0x00}, RootSector, 1),
		PathEntry([]byte("A"), DirASector, 1),
		PathEntry([]byte("B"), DirBSector, 2),
	)
}

// Sample lays out a volume with the directories /, /A and /A/B.
// /A holds the file EBOOT.BIN;1.
func Sample() *Image {
	img := NewImage(SampleSectors)
	img.Put(pvdSector, PrimaryVolumeDescriptor(SampleSectors, PathTableSector, SamplePathTableSize, RootSector))
	img.Put(PathTableSector, SamplePathTable())

	img.Put(RootSector, Directory(
		DirectoryRecord([]byte{0x00}, RootSector, common.SectorSize, true),
		DirectoryRecord([]byte{0x01}, RootSector, common.SectorSize, true),
		DirectoryRecord([]byte("A"), DirASector, common.SectorSize, true),
	))
	img.Put(DirASector, Directory(
		DirectoryRecord([]byte{0x00}, DirASector, common.SectorSize, true),
		DirectoryRecord([]byte{0x01}, RootSector, common.SectorSize, true),
		DirectoryRecord([]byte("B"), DirBSector, common.SectorSize, true),
		DirectoryRecord([]byte("EBOOT.BIN;1"), FileSector, SampleFileLength, false),
	))
	img.Put(DirBSector, Directory(
		DirectoryRecord([]byte{0x00}, DirBSector, common.SectorSize, true),
		DirectoryRecord([]byte{0x01}, DirASector, common.SectorSize, true),
	))
	return img
}

// RegionTable encodes a big-endian region table. bounds holds start/end pairs.
func RegionTable(count int32, bounds ...int32) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, count)
	binary.Write(buf, binary.BigEndian, int32(0))
	for _, b := range bounds {
		binary.Write(buf, binary.BigEndian, b)
	}
	return buf.Bytes()
}

// Gzip compresses data into a single gzip member
func Gzip(data []byte) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

// IRDFile is one file checksum entry written by IRD
type IRDFile struct {
	Sector uint64
	MD5    [16]byte
}

// IRD encodes an uncompressed IRD stream for the game BLES00001.
// Region hash i is sixteen bytes of value i+1.
func IRD(header []byte, regionHashes int, files []IRDFile) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("3IRD")
	buf.WriteByte(9)
	buf.WriteString("BLES00001")
	name := "Sample Game"
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	buf.WriteString("4.21")
	buf.WriteString("01.00")
	buf.WriteString("01.00")

	for _, part := range [][]byte{header, []byte("footer")} {
		compressed := Gzip(part)
		binary.Write(buf, binary.LittleEndian, uint32(len(compressed)))
		buf.Write(compressed)
	}

	buf.WriteByte(byte(regionHashes))
	for i := 0; i < regionHashes; i++ {
		buf.Write(bytes.Repeat([]byte{byte(i + 1)}, 16))
	}

	binary.Write(buf, binary.LittleEndian, uint32(len(files)))
	for _, file := range files {
		binary.Write(buf, binary.LittleEndian, file)
	}
	return buf.Bytes()
}

// IRDHeaderOffset is the position of the header length prefix in a stream
// produced by IRD
const IRDHeaderOffset = 4 + 1 + 9 + 1 + len("Sample Game") + 4 + 5 + 5

// SampleWithRegions returns the Sample volume with a region table in
// sector 0 declaring plain sectors 0-19 and 22-23
func SampleWithRegions() *Image {
	img := Sample()
	img.Put(0, RegionTable(2, 0, 19, 22, 23))
	return img
}
