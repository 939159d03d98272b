package ps3

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hansbonini/odetools/pkg/common"
	"github.com/hansbonini/odetools/pkg/disctest"
)

func TestClassifyRegions(t *testing.T) {
	tests := []struct {
		name      string
		table     []byte
		plain     []Region
		encrypted []Region
	}{
		{
			name:      "single gap",
			table:     disctest.RegionTable(2, 0, 99, 150, 199),
			plain:     []Region{{0, 99}, {150, 199}},
			encrypted: []Region{{100, 149}},
		},
		{
			name:      "seamless regions",
			table:     disctest.RegionTable(2, 0, 99, 100, 199),
			plain:     []Region{{0, 99}, {100, 199}},
			encrypted: []Region{},
		},
		{
			name:      "typical disc layout",
			table:     disctest.RegionTable(3, 0, 0x1f, 0x40, 0x7f, 0x90, 0x1000),
			plain:     []Region{{0, 0x1f}, {0x40, 0x7f}, {0x90, 0x1000}},
			encrypted: []Region{{0x20, 0x3f}, {0x80, 0x8f}},
		},
		{
			name:      "no regions",
			table:     disctest.RegionTable(0),
			plain:     []Region{},
			encrypted: []Region{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions, err := ClassifyRegions(bytes.NewReader(tt.table))
			require.NoError(t, err)
			assert.Equal(t, tt.plain, regions.Plain)
			assert.Equal(t, tt.encrypted, regions.Encrypted)
		})
	}
}

func TestClassifyRegions_Errors(t *testing.T) {
	tests := []struct {
		name  string
		table []byte
		kind  error
	}{
		{"inverted region", disctest.RegionTable(2, 0, 99, 199, 150), common.ErrFormat},
		{"single sector region", disctest.RegionTable(1, 5, 5), common.ErrFormat},
		{"overlapping regions", disctest.RegionTable(2, 0, 99, 50, 199), common.ErrFormat},
		{"negative count", disctest.RegionTable(-1), common.ErrFormat},
		{"count too large", disctest.RegionTable(MaxRegions + 1), common.ErrFormat},
		{"negative sector", disctest.RegionTable(1, -4, 10), common.ErrFormat},
		{"truncated table", disctest.RegionTable(2, 0, 99, 150), common.ErrIO},
		{"empty input", nil, common.ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions, err := ClassifyRegions(bytes.NewReader(tt.table))
			assert.Nil(t, regions)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestParseRegionTable_SectorSized(t *testing.T) {
	sector := make([]byte, common.SectorSize)
	copy(sector, disctest.RegionTable(2, 0, 99, 150, 199))

	regions, err := ParseRegionTable(sector)
	require.NoError(t, err)
	assert.Equal(t, []Region{{100, 149}}, regions.Encrypted)
	assert.Equal(t, uint64(50), regions.EncryptedSectors())
}

func TestRegionSectors(t *testing.T) {
	assert.Equal(t, uint32(50), Region{Start: 100, End: 149}.Sectors())
	assert.Equal(t, uint32(1), Region{Start: 7, End: 7}.Sectors())
	assert.Len(t, disctest.RegionTable(0), RegionTableHeaderSize)
}

func TestCountGaps(t *testing.T) {
	tests := []struct {
		name     string
		plain    []Region
		expected int
	}{
		{"none", nil, 0},
		{"single region", []Region{{0, 99}}, 0},
		{"one gap", []Region{{0, 99}, {150, 199}}, 1},
		{"seamless", []Region{{0, 99}, {100, 199}}, 0},
		{"mixed", []Region{{0, 9}, {10, 19}, {30, 39}, {41, 50}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, countGaps(tt.plain))
		})
	}
}

func TestDeriveEncrypted_CountMismatch(t *testing.T) {
	regions := &RegionMap{Plain: []Region{{0, 99}, {50, 199}}}

	err := regions.deriveEncrypted()
	assert.ErrorIs(t, err, common.ErrFormat)
	assert.Contains(t, err.Error(), "found 1 encrypted regions, expected 0")
}
