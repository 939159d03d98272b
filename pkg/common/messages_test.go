// Package common provides tests for message and logging functionality
package common

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestSetVerboseMode(t *testing.T) {
	SetVerboseMode(true)
	assert.True(t, VerboseMode)

	SetVerboseMode(false)
	assert.False(t, VerboseMode)
}

func TestLogDebug_VerboseEnabled(t *testing.T) {
	buf := captureLog(t)
	SetVerboseMode(true)
	defer SetVerboseMode(false)

	LogDebug(DebugAssemblingDir, 0x14, 0x14)

	assert.Contains(t, buf.String(), "[DEBUG] assembling directory records at sector 0x00000014 (20)")
}

func TestLogDebug_VerboseDisabled(t *testing.T) {
	buf := captureLog(t)
	SetVerboseMode(false)

	LogDebug("This should not appear", 42)

	assert.Empty(t, buf.String())
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		log      func(string, ...interface{})
		message  string
		args     []interface{}
		expected string
	}{
		{"info", LogInfo, InfoPlainRegionCount, []interface{}{3}, "[INFO] this image has 3 plain regions"},
		{"warn", LogWarn, WarnZeroNameLength, []interface{}{0x800}, "[WARN] bad name length 0 in directory record at byte 0x00000800, ignoring"},
		{"error", LogError, ErrFailedToReadRecord, []interface{}{0x1000}, "[ERROR] failed to read directory record at byte 0x00001000"},
		{"no args", LogInfo, "Simple message with 100% literal text", nil, "[INFO] Simple message with 100% literal text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			tt.log(tt.message, tt.args...)
			assert.Contains(t, buf.String(), tt.expected)
		})
	}
}

func TestFormatError(t *testing.T) {
	originalError := fmt.Errorf("original error")

	formattedError := FormatError(ErrFailedToOpenImage, originalError)

	assert.Equal(t, "failed to open disc image: original error", formattedError.Error())
	assert.True(t, errors.Is(formattedError, originalError))

	formattedError = FormatError(ErrFailedToOpenNFO, "missing")
	assert.Equal(t, "failed to open nfo file: missing", formattedError.Error())
}

func TestMessageConstants(t *testing.T) {
	constants := map[string]string{
		"ErrFailedToReadDescriptor": ErrFailedToReadDescriptor,
		"ErrRegionInverted":         ErrRegionInverted,
		"ErrRegionCountMismatch":    ErrRegionCountMismatch,
		"ErrPathCycle":              ErrPathCycle,
		"ErrFailedToResolvePath":    ErrFailedToResolvePath,
		"ErrIRDSectionTooLarge":     ErrIRDSectionTooLarge,
		"InfoCorrectionComplete":    InfoCorrectionComplete,
		"InfoEncryptedRegion":       InfoEncryptedRegion,
		"WarnUnresolvedParent":      WarnUnresolvedParent,
		"WarnNoDirectoryRecords":    WarnNoDirectoryRecords,
		"DebugPathTableEntry":       DebugPathTableEntry,
	}

	for name, value := range constants {
		assert.GreaterOrEqual(t, len(value), 10, "message constant %s seems too short: %q", name, value)
	}
}

func TestHexFieldWidth(t *testing.T) {
	buf := captureLog(t)

	LogWarn(WarnInvalidRecordLen, 20, 0x1000)
	LogInfo(InfoEncryptedRegion, 0, 0x64, 0x95, 0x32)

	output := buf.String()
	assert.Contains(t, output, "invalid directory record length 20 found at byte 0x00001000\n")
	assert.Contains(t, output, "start 0x00000064 end 0x00000095 length 0x00000032\n")
	assert.NotContains(t, output, "0x0000001000")
}

func TestConfigureLogOutput(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	path := filepath.Join(t.TempDir(), "odetools.log")
	closer := ConfigureLogOutput(path, 1)
	LogInfo(InfoLBAOffset, 0x3a000)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] got lba sector offset 0x0003a000 from nfo")
}

func TestConfigureLogOutput_NoFile(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	closer := ConfigureLogOutput("", 0)
	assert.NoError(t, closer.Close())
}
