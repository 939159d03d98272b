package pkg

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hansbonini/odetools/pkg/common"
	"github.com/hansbonini/odetools/pkg/disctest"
)

const testIRDPath = "/games/BLES00001.ird"

func TestIRDProcessor_Inspect(t *testing.T) {
	files := []disctest.IRDFile{{Sector: disctest.FileSector, MD5: [16]byte{0xaa}}}
	stream := disctest.Gzip(disctest.IRD(disctest.SampleWithRegions().Data, 3, files))
	fs := newTestFs(t, map[string][]byte{testIRDPath: stream})

	report, err := NewIRDProcessor(fs).Inspect(testIRDPath)
	require.NoError(t, err)

	assert.Equal(t, testIRDPath, report.Source)
	assert.Equal(t, uint8(9), report.Version)
	assert.Equal(t, "BLES00001", report.GameID)
	assert.Equal(t, "Sample Game", report.GameName)
	assert.Equal(t, "4.21", report.UpdateVersion)
	assert.Equal(t, "01.00", report.GameVersion)
	assert.Equal(t, "01.00", report.AppVersion)
	assert.Equal(t, disctest.SampleSectors*common.SectorSize, report.HeaderSize)
	assert.Equal(t, len("footer"), report.FooterSize)
	assert.Equal(t, 1, report.FileCount)
	require.Len(t, report.RegionHashes, 3)
	assert.Equal(t, "01010101010101010101010101010101", report.RegionHashes[0])

	require.NotNil(t, report.Regions)
	assert.Equal(t, uint64(2), report.Regions.EncryptedSectors)

	require.NotNil(t, report.Volume)
	assert.Equal(t, "TEST_DISC", report.Volume.Volume.VolumeID)
	require.Len(t, report.Volume.Directories, 3)
	assert.Equal(t, "/A/B", report.Volume.Directories[2].Path)

	assert.Empty(t, report.Diagnostics)
}

func TestIRDProcessor_InspectInconsistentHeader(t *testing.T) {
	t.Run("region hash count mismatch", func(t *testing.T) {
		stream := disctest.IRD(disctest.SampleWithRegions().Data, 2, nil)
		fs := newTestFs(t, map[string][]byte{testIRDPath: stream})

		report, err := NewIRDProcessor(fs).Inspect(testIRDPath)
		require.NoError(t, err)

		require.Len(t, report.Diagnostics, 1)
		assert.Equal(t, "warning", report.Diagnostics[0].Severity)
		assert.Equal(t, "IRD lists 2 region hashes but its header describes 3 regions", report.Diagnostics[0].Message)
		assert.NotNil(t, report.Volume)
	})

	t.Run("header without volume descriptor", func(t *testing.T) {
		stream := disctest.IRD(disctest.RegionTable(2, 0, 19, 22, 23), 3, nil)
		fs := newTestFs(t, map[string][]byte{testIRDPath: stream})

		report, err := NewIRDProcessor(fs).Inspect(testIRDPath)
		require.NoError(t, err)

		assert.NotNil(t, report.Regions)
		assert.Nil(t, report.Volume)
		require.Len(t, report.Diagnostics, 1)
		assert.Equal(t, "error", report.Diagnostics[0].Severity)
		assert.Equal(t, "format error", report.Diagnostics[0].Kind)
	})

	t.Run("corrupt region table", func(t *testing.T) {
		img := disctest.Sample()
		img.Put(0, disctest.RegionTable(-1))
		stream := disctest.IRD(img.Data, 0, nil)
		fs := newTestFs(t, map[string][]byte{testIRDPath: stream})

		report, err := NewIRDProcessor(fs).Inspect(testIRDPath)
		require.NoError(t, err)

		assert.Nil(t, report.Regions)
		assert.NotNil(t, report.Volume)
		require.Len(t, report.Diagnostics, 1)
		assert.Equal(t, "format error", report.Diagnostics[0].Kind)
	})
}

func TestIRDProcessor_InspectErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewIRDProcessor(afero.NewMemMapFs()).Inspect(testIRDPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read IRD file")
	})

	t.Run("bad magic", func(t *testing.T) {
		fs := newTestFs(t, map[string][]byte{testIRDPath: []byte("4IRD\x09BLES00001")})
		_, err := NewIRDProcessor(fs).Inspect(testIRDPath)
		assert.ErrorIs(t, err, common.ErrFormat)
	})
}
