package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDiagnostics_ZeroValue(t *testing.T) {
	var d Diagnostics
	assert.Zero(t, d.Len())
	assert.Empty(t, d.Items())
	assert.NoError(t, d.Err())
	assert.False(t, d.Has(ErrIO))
}

func TestDiagnostics_Record(t *testing.T) {
	captureLog(t)

	var d Diagnostics
	d.Warn(ErrIntegrity, 0x800, WarnZeroNameLength, 0x800)
	d.Error(ErrIO, 0x1000, ErrFailedToReadRecord+": %v", 0x1000, errors.New("unexpected EOF"))
	d.Error(ErrCycle, -1, ErrPathCycle, 4)

	require.Equal(t, 3, d.Len())
	assert.Equal(t, 1, d.Warnings())
	assert.Equal(t, 2, d.Errors())
	assert.True(t, d.Has(ErrIntegrity))
	assert.True(t, d.Has(ErrCycle))
	assert.False(t, d.Has(ErrFormat))

	first := d.Items()[0]
	assert.Equal(t, SeverityWarning, first.Severity)
	assert.Equal(t, int64(0x800), first.Offset)
	assert.Equal(t, "bad name length 0 in directory record at byte 0x00000800, ignoring", first.Message)
	assert.Equal(t, "integrity warning: "+first.Message, first.Error())

	err := d.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, ErrCycle)
	assert.NotErrorIs(t, err, ErrIntegrity)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestDiagnostics_MessageWithoutArgs(t *testing.T) {
	captureLog(t)

	var d Diagnostics
	d.Error(ErrFormat, 0, "region table 100% invalid")
	assert.Equal(t, "region table 100% invalid", d.Items()[0].Message)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"cycle", fmt.Errorf("%w: "+ErrPathCycle, ErrCycle, 3), ErrCycle},
		{"integrity", fmt.Errorf("%w: "+ErrEntryOutOfRange, ErrIntegrity, 8, 4), ErrIntegrity},
		{"format", fmt.Errorf("%w: bad magic", ErrFormat), ErrFormat},
		{"io", fmt.Errorf("%w: %w", ErrIO, errors.New("unexpected EOF")), ErrIO},
		{"unclassified", errors.New("plain failure"), ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
}
