package iso9660

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/hansbonini/odetools/pkg/common"
)

// AssemblePathTable decodes the little-endian path table of the given size
// starting at sector. Decoding stops at the zero length sentinel, at the
// declared size or at the first read failure; everything decoded until then
// is returned.
func (r *Reader) AssemblePathTable(sector, size uint32) *PathTable {
	table := &PathTable{Sector: sector, Size: size}

	start, err := common.SeekSector(r.image, sector)
	if err != nil {
		r.Diagnostics.Error(common.ErrIO, common.SectorOffset(sector), common.ErrFailedToSeekSector+": %v", sector, err)
		return table
	}

	var processed uint64
	for processed < uint64(size) {
		offset := start + int64(processed)
		common.LogDebug(common.DebugPathTableAt, offset)

		var header [PathTableHeaderSize]byte
		if _, err := io.ReadFull(r.image, header[:]); err != nil {
			r.Diagnostics.Error(common.ErrIO, offset, common.ErrFailedToReadPathEntry+": %v", offset, err)
			return table
		}

		length := header[0]
		if length == 0 {
			common.LogInfo(common.InfoPathTableEnd, processed, size)
			break
		}

		name := make([]byte, length)
		if _, err := io.ReadFull(r.image, name); err != nil {
			r.Diagnostics.Error(common.ErrIO, offset+PathTableHeaderSize, common.ErrFailedToReadDirName+": %v", offset+PathTableHeaderSize, err)
			return table
		}
		processed += PathTableHeaderSize + uint64(length)

		// Entries are padded to an even length
		if length%2 != 0 {
			if _, err := r.image.Seek(1, io.SeekCurrent); err != nil {
				r.Diagnostics.Error(common.ErrIO, offset, common.ErrFailedToReadPathEntry+": %v", offset, err)
				return table
			}
			processed++
		}

		entry := PathTableEntry{
			Number:        len(table.Entries) + 1,
			NameLength:    length,
			ExtAttrLength: header[1],
			Name:          common.DecodeIdentifier(name),
			DataSector:    binary.LittleEndian.Uint32(header[2:6]),
			ParentNumber:  binary.LittleEndian.Uint16(header[6:8]),
		}
		entry.Parent = r.resolveParent(&entry, offset)
		table.Entries = append(table.Entries, entry)

		if common.VerboseMode {
			path, err := table.Resolve(len(table.Entries) - 1)
			if err != nil {
				path = err.Error()
			}
			common.LogDebug(common.DebugPathTableEntry, entry.DataSector, entry.ParentNumber, entry.Name, path)
		}
	}

	return table
}

// resolveParent maps a 1-based parent number to an arena index. The entry
// being assembled counts as a candidate so the root can name itself.
func (r *Reader) resolveParent(entry *PathTableEntry, offset int64) int {
	parent := int(entry.ParentNumber)
	if parent < 1 || parent > entry.Number {
		r.Diagnostics.Warn(common.ErrIntegrity, offset, common.WarnUnresolvedParent,
			entry.Number, entry.Name, parent, entry.Number)
		return NoParent
	}
	if parent == entry.Number && entry.Number != 1 {
		r.Diagnostics.Warn(common.ErrIntegrity, offset, common.WarnSelfParent, entry.Number, entry.Name)
	}
	return parent - 1
}

// Resolve returns the absolute path of the entry at the given arena index.
// The root resolves to "/". An entry without a resolvable parent is rooted
// at its own name. Parent chains that revisit an entry fail with ErrCycle.
func (t *PathTable) Resolve(index int) (string, error) {
	if index < 0 || index >= len(t.Entries) {
		return "", fmt.Errorf("%w: "+common.ErrEntryOutOfRange, common.ErrIntegrity, index+1, len(t.Entries))
	}

	var names []string
	visited := make(map[int]bool)
	for i := index; ; {
		if visited[i] {
			return "", fmt.Errorf("%w: "+common.ErrPathCycle, common.ErrCycle, i+1)
		}
		visited[i] = true

		entry := &t.Entries[i]
		if entry.Parent == i {
			break
		}
		names = append(names, entry.Name)
		if entry.Parent == NoParent {
			break
		}
		if entry.Parent < 0 || entry.Parent >= len(t.Entries) {
			return "", fmt.Errorf("%w: "+common.ErrEntryOutOfRange, common.ErrIntegrity, entry.Parent+1, len(t.Entries))
		}
		i = entry.Parent
	}

	// Names were collected leaf first
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return "/" + strings.Join(names, "/"), nil
}
