package romdb

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crankboy/romdb/pkg/errors"
	"github.com/crankboy/romdb/pkg/records"
)

func TestChecksum(t *testing.T) {
	// CRC32/IEEE check value
	crc, err := Checksum(strings.NewReader("123456789"))
	require.NoError(t, err)
	assert.Equal(t, records.CRC("CBF43926"), crc)

	crc, err = Checksum(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, records.CRC("00000000"), crc)
}

func TestChecksumFile(t *testing.T) {
	rom := writeFile(t, filepath.Join(t.TempDir(), "game.gb"), "123456789")

	crc, err := ChecksumFile(rom)
	require.NoError(t, err)
	assert.Equal(t, records.CRC("CBF43926"), crc)

	_, err = ChecksumFile(filepath.Join(t.TempDir(), "missing.gb"))
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestResolveKey(t *testing.T) {
	rom := writeFile(t, filepath.Join(t.TempDir(), "game.gbc"), "123456789")

	tests := []struct {
		name     string
		arg      string
		want     records.CRC
		wantFile string
		wantErr  bool
	}{
		{name: "rom file", arg: rom, want: "CBF43926", wantFile: rom},
		{name: "uppercase crc", arg: "3358E30A", want: "3358E30A"},
		{name: "lowercase crc", arg: "3358e30a", want: "3358E30A"},
		{name: "padded crc", arg: " 3358e30a ", want: "3358E30A"},
		{name: "too short", arg: "3358E3", wantErr: true},
		{name: "not hex", arg: "ZZZZZZZZ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, file, err := ResolveKey(tt.arg)
			if tt.wantErr {
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFile, file)
		})
	}
}

func TestLookupMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "33.json"), `{"3358E30A": {"long": "A", "short": "A"}}`)

	_, err := Lookup(dir, "33000000")
	assert.True(t, errors.IsNotFound(err))

	_, err = Lookup(dir, "44000000")
	assert.True(t, errors.IsNotFound(err))

	rec, err := Lookup(dir, "3358E30A")
	require.NoError(t, err)
	assert.Equal(t, "A", rec.Long)
}
