package romdb

import (
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/crankboy/romdb/internal/export/sqlite"
	"github.com/crankboy/romdb/pkg/errors"
	"github.com/crankboy/romdb/pkg/records"
	"github.com/crankboy/romdb/pkg/shards"
)

// Checksum returns the CRC32 (IEEE) of r in the database key format.
func Checksum(r io.Reader) (records.CRC, error) {
	h := crc32.NewIEEE()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return records.CRC(fmt.Sprintf("%08X", h.Sum32())), nil
}

// ChecksumFile computes the database key of a ROM file.
func ChecksumFile(path string) (records.CRC, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	crc, err := Checksum(f)
	if err != nil {
		return "", errors.WrapIO("read", path, err)
	}
	return crc, nil
}

// Lookup finds the record for crc in a shard directory, the same way the
// emulator does: open the shard named after the first two hex digits and
// read the uppercase key.
func Lookup(dir string, crc records.CRC) (records.Record, error) {
	return shards.Read(dir, crc)
}

// LookupSQLite finds the record for crc in an exported SQLite database.
func LookupSQLite(ctx context.Context, path string, crc records.CRC) (records.Record, error) {
	return sqlite.Lookup(ctx, path, crc)
}

// ResolveKey turns a lookup argument into a checksum. Arguments naming an
// existing file are hashed and the file is returned alongside; anything else
// must be an 8-digit hex checksum.
func ResolveKey(arg string) (crc records.CRC, file string, err error) {
	if info, statErr := os.Stat(arg); statErr == nil && !info.IsDir() {
		crc, err = ChecksumFile(arg)
		return crc, arg, err
	}
	crc, err = records.ParseCRC(arg)
	return crc, "", err
}
