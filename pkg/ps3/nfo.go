package ps3

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hansbonini/odetools/pkg/common"
)

// NFO sidecar layout
const (
	nfoLBAOffsetStart = 2
	nfoLBAOffsetEnd   = 6
)

// ReadLBAOffset reads the lba offset stored at bytes 2..5 of an NFO sidecar.
// The value is stored in the byte order of the machine that wrote it.
func ReadLBAOffset(r io.ReadSeeker) (uint32, error) {
	if _, err := r.Seek(nfoLBAOffsetStart, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", common.ErrIO, common.ErrFailedToReadNFO, err)
	}
	raw, err := common.ReadBytes(r, nfoLBAOffsetEnd-nfoLBAOffsetStart)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", common.ErrIO, common.ErrFailedToReadNFO, err)
	}

	offset := binary.NativeEndian.Uint32(raw)
	common.LogInfo(common.InfoLBAOffset, offset)
	return offset, nil
}
