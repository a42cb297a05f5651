// Package shards partitions a record set by checksum prefix and stores each
// partition as its own JSON file.
//
// The database directory holds up to 256 files named after the lowercase
// two-character prefix ("1a.json"), each mapping uppercase checksums to
// records. A reader needs only the checksum to find the one file to open.
package shards

import (
	"maps"
	"slices"
	"strings"

	"github.com/crankboy/romdb/pkg/constants"
	"github.com/crankboy/romdb/pkg/errors"
	"github.com/crankboy/romdb/pkg/records"
)

const hexDigits = "0123456789ABCDEF"

// Shard is the subset of records sharing a checksum prefix.
type Shard struct {
	// Prefix is the uppercase two-character checksum prefix.
	Prefix  string
	Records map[records.CRC]records.Record
}

// FileName returns the name of the file storing the shard.
func (s Shard) FileName() string {
	return FileName(s.Prefix)
}

// Len returns the number of records in the shard.
func (s Shard) Len() int {
	return len(s.Records)
}

// FileName returns the shard file name for a prefix.
func FileName(prefix string) string {
	return strings.ToLower(prefix) + constants.ShardExtension
}

// Prefixes returns every shard prefix, 00 through FF, in order.
func Prefixes() []string {
	out := make([]string, 0, constants.ShardCount)
	for i := 0; i < len(hexDigits); i++ {
		for j := 0; j < len(hexDigits); j++ {
			out = append(out, string([]byte{hexDigits[i], hexDigits[j]}))
		}
	}
	return out
}

// Partition splits set into shards by checksum prefix.
// Only non-empty shards are returned, ordered by prefix. Checksums without a
// valid hexadecimal prefix are dropped.
func Partition(set *records.Set) []Shard {
	buckets := make(map[string]map[records.CRC]records.Record, constants.ShardCount)
	for _, p := range Prefixes() {
		buckets[p] = make(map[records.CRC]records.Record)
	}

	for crc, rec := range set.All() {
		prefix, ok := crc.Prefix()
		if !ok {
			continue
		}
		buckets[prefix][crc] = rec
	}

	var out []Shard
	for _, p := range slices.Sorted(maps.Keys(buckets)) {
		if len(buckets[p]) == 0 {
			continue
		}
		out = append(out, Shard{Prefix: p, Records: buckets[p]})
	}
	return out
}

// PrefixFor returns the shard prefix a checksum is routed to.
func PrefixFor(crc records.CRC) (string, error) {
	p, ok := crc.Prefix()
	if !ok {
		return "", errors.NewValidationError("crc", crc, "no hexadecimal prefix")
	}
	return p, nil
}
