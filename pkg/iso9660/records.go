package iso9660

import (
	"io"

	"github.com/hansbonini/odetools/pkg/common"
)

// AssembleDirectoryRecords decodes the run of directory records starting at
// sector. The run ends at the first record whose length cannot hold a
// header and a name, or at the first read failure.
func (r *Reader) AssembleDirectoryRecords(sector uint32) *RecordList {
	list := &RecordList{Sector: sector}
	common.LogDebug(common.DebugAssemblingDir, sector, sector)

	start, err := common.SeekSector(r.image, sector)
	if err != nil {
		r.Diagnostics.Error(common.ErrIO, common.SectorOffset(sector), common.ErrFailedToSeekSector+": %v", sector, err)
		return list
	}

	offset := start
	for {
		header := make([]byte, DirectoryRecordHeaderSize)
		if _, err := io.ReadFull(r.image, header); err != nil {
			r.Diagnostics.Error(common.ErrIO, offset, common.ErrFailedToReadRecord+": %v", offset, err)
			break
		}

		length := header[0]
		if length <= DirectoryRecordHeaderSize {
			if length > 0 {
				r.Diagnostics.Warn(common.ErrIntegrity, offset, common.WarnInvalidRecordLen, length, offset)
			}
			break
		}

		body := make([]byte, int(length)-DirectoryRecordHeaderSize)
		if _, err := io.ReadFull(r.image, body); err != nil {
			r.Diagnostics.Error(common.ErrIO, offset+DirectoryRecordHeaderSize,
				common.ErrFailedToReadRecordName+": %v", offset+DirectoryRecordHeaderSize, err)
			break
		}

		record := decodeDirectoryRecord(header)
		record.Name = r.recordName(record.NameLength, body, offset)
		list.append(record)
		common.LogDebug(common.DebugDirectoryRecord, record.Name, record.DataSector, record.DataLength)

		offset += int64(length)
	}

	if list.Empty() {
		r.Diagnostics.Warn(common.ErrIntegrity, start, common.WarnNoDirectoryRecords, sector, sector)
	}
	return list
}

// recordName extracts the identifier from the record body, clamping a name
// length that overruns the record
func (r *Reader) recordName(nameLength uint8, body []byte, offset int64) string {
	n := int(nameLength)
	switch {
	case n == 0:
		r.Diagnostics.Warn(common.ErrIntegrity, offset, common.WarnZeroNameLength, offset)
		return ""
	case n > len(body):
		r.Diagnostics.Warn(common.ErrIntegrity, offset, common.WarnNameOverrun, n, len(body), offset)
		n = len(body)
	}
	return normalizeName(body[:n])
}

// ReadVolume runs the whole pipeline: volume descriptor, path table and
// the directory records of every path table entry. Only a missing or
// invalid volume descriptor is fatal.
func (r *Reader) ReadVolume() (*Volume, error) {
	pvd, err := r.ReadVolumeDescriptor()
	if err != nil {
		return nil, err
	}

	table := r.AssemblePathTable(pvd.LPathTableSector, pvd.PathTableSize)
	r.assembleDirectories(table)

	return &Volume{Descriptor: pvd, PathTable: table}, nil
}

// assembleDirectories attaches the directory records of every entry. An entry
// whose path cannot be resolved is recorded under the kind of the failure
// and still has its records assembled.
func (r *Reader) assembleDirectories(table *PathTable) {
	for i := range table.Entries {
		entry := &table.Entries[i]
		path, err := table.Resolve(i)
		if err != nil {
			r.Diagnostics.Error(common.KindOf(err), -1, common.ErrFailedToResolvePath, entry.Number, err)
			path = entry.Name
		}
		common.LogDebug(common.DebugAssemblingPath, path)
		entry.Records = r.AssembleDirectoryRecords(entry.DataSector)
	}
}
