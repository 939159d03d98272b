package ps3

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/hansbonini/odetools/pkg/common"
)

// IRDMagic opens every IRD stream
const IRDMagic = "3IRD"

// MaxIRDSectionSize bounds the decompressed size of the header and footer
const MaxIRDSectionSize = 64 << 20

// IRDFileHash is the checksum of one file of the disc, keyed by its start sector
type IRDFileHash struct {
	Sector uint64   `yaml:"sector"`
	MD5    [16]byte `yaml:"-"`
}

// Hex returns the checksum as lower case hex
func (f IRDFileHash) Hex() string {
	return hex.EncodeToString(f.MD5[:])
}

// IRD is the decoded content of an IRD file. Header and Footer hold the
// decompressed first and last sectors of the disc.
type IRD struct {
	Version       uint8
	GameID        string
	GameName      string
	UpdateVersion string
	GameVersion   string
	AppVersion    string
	Header        []byte
	Footer        []byte
	RegionHashes  [][16]byte
	Files         []IRDFileHash
}

// ParseIRD decodes an IRD stream, transparently removing an outer gzip layer
func ParseIRD(r io.Reader) (*IRD, error) {
	buffered := bufio.NewReader(r)
	stream := io.Reader(buffered)
	if magic, err := buffered.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, fmt.Errorf("%w: "+common.ErrFailedToInflate+": %w", common.ErrFormat, "IRD", err)
		}
		defer zr.Close()
		stream = zr
	}

	magic, err := common.ReadBytes(stream, len(IRDMagic))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", common.ErrIO, common.ErrFailedToReadIRD, err)
	}
	if string(magic) != IRDMagic {
		return nil, fmt.Errorf("%w: "+common.ErrBadIRDMagic, common.ErrFormat, magic)
	}

	ird := &IRD{}
	if ird.Version, err = readUint8(stream); err != nil {
		return nil, irdReadError(err)
	}
	fields := []struct {
		target *string
		size   int
	}{
		{&ird.GameID, 9},
		{&ird.GameName, -1},
		{&ird.UpdateVersion, 4},
		{&ird.GameVersion, 5},
		{&ird.AppVersion, 5},
	}
	for _, field := range fields {
		if *field.target, err = readIRDString(stream, field.size); err != nil {
			return nil, irdReadError(err)
		}
	}

	if ird.Header, err = readPrefixedGzip(stream, "IRD header", MaxIRDSectionSize); err != nil {
		return nil, err
	}
	if ird.Footer, err = readPrefixedGzip(stream, "IRD footer", MaxIRDSectionSize); err != nil {
		return nil, err
	}

	regionCount, err := readUint8(stream)
	if err != nil {
		return nil, irdReadError(err)
	}
	ird.RegionHashes = make([][16]byte, regionCount)
	for i := range ird.RegionHashes {
		if _, err := io.ReadFull(stream, ird.RegionHashes[i][:]); err != nil {
			return nil, irdReadError(err)
		}
	}

	fileCount, err := common.ReadUint32LE(stream)
	if err != nil {
		return nil, irdReadError(err)
	}
	for i := uint32(0); i < fileCount; i++ {
		var file IRDFileHash
		if err := binary.Read(stream, binary.LittleEndian, &file); err != nil {
			return nil, irdReadError(err)
		}
		ird.Files = append(ird.Files, file)
	}

	common.LogInfo(common.InfoIRDLoaded, ird.GameID, ird.GameName, len(ird.RegionHashes), len(ird.Files))
	return ird, nil
}

// Regions classifies the region table stored in the first header sector
func (ird *IRD) Regions() (*RegionMap, error) {
	return ParseRegionTable(ird.Header)
}

// HeaderImage exposes the decompressed header as a seekable partial image
func (ird *IRD) HeaderImage() io.ReadSeeker {
	return bytes.NewReader(ird.Header)
}

// RegionHashHex returns the region checksums as lower case hex
func (ird *IRD) RegionHashHex() []string {
	hashes := make([]string, len(ird.RegionHashes))
	for i, hash := range ird.RegionHashes {
		hashes[i] = hex.EncodeToString(hash[:])
	}
	return hashes
}

func irdReadError(err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrIO, common.ErrFailedToReadIRD, err)
}

func readUint8(r io.Reader) (uint8, error) {
	b, err := common.ReadBytes(r, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// readIRDString reads a fixed size ASCII field, or a length prefixed UTF-8
// string when size is negative. Trailing NUL padding is removed.
func readIRDString(r io.Reader, size int) (string, error) {
	if size < 0 {
		length, err := readUint8(r)
		if err != nil {
			return "", err
		}
		size = int(length)
	}
	raw, err := common.ReadBytes(r, size)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\x00"), nil
}

func readPrefixedGzip(r io.Reader, what string, limit int64) ([]byte, error) {
	size, err := common.ReadUint32LE(r)
	if err != nil {
		return nil, irdReadError(err)
	}

	var compressed bytes.Buffer
	if _, err := io.CopyN(&compressed, r, int64(size)); err != nil {
		return nil, irdReadError(err)
	}

	zr, err := gzip.NewReader(&compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: "+common.ErrFailedToInflate+": %w", common.ErrFormat, what, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: "+common.ErrFailedToInflate+": %w", common.ErrFormat, what, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: "+common.ErrIRDSectionTooLarge, common.ErrFormat, what, limit)
	}
	return data, nil
}
