// Package iso9660 reconstructs the directory structure of an ISO9660 image
// from its primary volume descriptor, path table and directory records.
package iso9660

import "time"

// Fixed layout sizes and locations
const (
	PrimaryVolumeDescriptorSector = 16
	VolumeDescriptorTypePrimary   = 1
	StandardIdentifier            = "CD001"

	PathTableHeaderSize       = 8
	DirectoryRecordHeaderSize = 33
	RootDirectoryRecordSize   = 34

	// FlagDirectory marks a directory record that describes a subdirectory
	FlagDirectory = 0x02
)

// NoParent marks a path table entry whose parent could not be resolved
const NoParent = -1

// PrimaryVolumeDescriptor holds the fields of the volume descriptor at sector 16
type PrimaryVolumeDescriptor struct {
	TypeCode             uint8
	StandardID           string
	Version              uint8
	SystemID             string
	VolumeID             string
	VolumeSpaceSize      uint32
	LogicalBlockSize     uint16
	PathTableSize        uint32
	LPathTableSector     uint32 // Type-L (little-endian) path table
	OptLPathTableSector  uint32
	MPathTableSector     uint32 // Type-M (big-endian) path table
	OptMPathTableSector  uint32
	RootDirectory        DirectoryRecord
	VolumeSetID          string
	PublisherID          string
	DataPreparerID       string
	ApplicationID        string
	CreationDate         string
	ModificationDate     string
	FileStructureVersion uint8
}

// DirectoryRecord is one entry of a directory's on-disc listing.
// Prev and Next index into the owning RecordList, -1 at either end.
type DirectoryRecord struct {
	Length         uint8
	ExtAttrLength  uint8
	DataSector     uint32
	DataLength     uint32
	Date           [7]byte
	Flags          uint8
	InterleaveUnit uint8
	InterleaveGap  uint8
	VolumeSequence uint16
	NameLength     uint8
	Name           string
	Prev           int
	Next           int
}

// IsDir reports whether the record describes a directory
func (d *DirectoryRecord) IsDir() bool {
	return d.Flags&FlagDirectory != 0
}

// RecordedAt decodes the 7-byte recording date. The zero time is returned
// for unset dates.
func (d *DirectoryRecord) RecordedAt() time.Time {
	if d.Date[1] == 0 || d.Date[2] == 0 {
		return time.Time{}
	}
	// GMT offset is stored in 15 minute intervals
	zone := time.FixedZone("", int(int8(d.Date[6]))*15*60)
	return time.Date(1900+int(d.Date[0]), time.Month(d.Date[1]), int(d.Date[2]),
		int(d.Date[3]), int(d.Date[4]), int(d.Date[5]), 0, zone)
}

// RecordList is the ordered, doubly linked listing of one directory
type RecordList struct {
	Sector  uint32
	Records []DirectoryRecord
}

// Empty reports whether no record could be decoded
func (l *RecordList) Empty() bool {
	return l == nil || len(l.Records) == 0
}

// Len returns the number of records
func (l *RecordList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Records)
}

func (l *RecordList) append(record DirectoryRecord) {
	n := len(l.Records)
	record.Prev = n - 1
	record.Next = -1
	if n > 0 {
		l.Records[n-1].Next = n
	}
	l.Records = append(l.Records, record)
}

// PathTableEntry is one row of the path table. Parent is the arena index
// of the parent entry; the root refers to itself.
type PathTableEntry struct {
	Number        int
	NameLength    uint8
	ExtAttrLength uint8
	Name          string
	DataSector    uint32
	ParentNumber  uint16
	Parent        int
	Records       *RecordList
}

// IsRoot reports whether the entry is its own parent
func (e *PathTableEntry) IsRoot() bool {
	return e.Parent == e.Number-1
}

// PathTable is the arena of assembled entries. Entry number n is Entries[n-1].
type PathTable struct {
	Sector  uint32
	Size    uint32
	Entries []PathTableEntry
}

// Count returns the number of assembled entries
func (t *PathTable) Count() int {
	return len(t.Entries)
}

// Volume is the result of a complete parse
type Volume struct {
	Descriptor *PrimaryVolumeDescriptor
	PathTable  *PathTable
}
