package romdb

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/crankboy/romdb/pkg/constants"
	"github.com/crankboy/romdb/pkg/errors"
	"github.com/crankboy/romdb/pkg/logging"
	"github.com/crankboy/romdb/pkg/records"
	"github.com/crankboy/romdb/pkg/shards"
)

// Index answers repeated lookups against a shard directory. Decoded shards
// stay in memory for the TTL, so scanning a ROM library reads each shard
// file at most once.
type Index struct {
	dir   string
	cache *gocache.Cache
	reads atomic.Int64
}

// NewIndex creates an index over dir. A ttl of zero keeps shards until the
// index is dropped.
func NewIndex(dir string, ttl time.Duration) *Index {
	return &Index{
		dir:   dir,
		cache: gocache.New(ttl, 0),
	}
}

// Dir returns the shard directory.
func (ix *Index) Dir() string {
	return ix.dir
}

// Reads reports how many shard files the index has decoded.
func (ix *Index) Reads() int {
	return int(ix.reads.Load())
}

// Lookup finds the record for crc.
func (ix *Index) Lookup(crc records.CRC) (records.Record, error) {
	prefix, err := shards.PrefixFor(crc)
	if err != nil {
		return records.Record{}, err
	}

	shard, err := ix.shard(prefix)
	if err != nil {
		return records.Record{}, err
	}
	rec, ok := shard[records.Canonical(crc.String())]
	if !ok {
		return records.Record{}, errors.NewNotFoundError("game", crc.String())
	}
	return rec, nil
}

func (ix *Index) shard(prefix string) (map[records.CRC]records.Record, error) {
	if v, ok := ix.cache.Get(prefix); ok {
		return v.(map[records.CRC]records.Record), nil
	}

	ix.reads.Add(1)
	shard, err := shards.ReadShard(ix.dir, prefix)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
		// No shard file means no games with this prefix.
		shard = map[records.CRC]records.Record{}
	}
	ix.cache.Set(prefix, shard, gocache.DefaultExpiration)
	return shard, nil
}

// ScanResult is one ROM found by Scan.
type ScanResult struct {
	File   string         `json:"file" yaml:"file"`
	CRC    records.CRC    `json:"crc" yaml:"crc"`
	Found  bool           `json:"found" yaml:"found"`
	Record records.Record `json:"record,omitzero" yaml:"record,omitempty"`
}

// Scan walks root and resolves every file whose extension is in exts
// (case-insensitive; constants.DefaultROMExtensions when empty). Unknown
// ROMs are reported with Found false. Results are in path order.
func Scan(ctx context.Context, ix *Index, root string, exts ...string) ([]ScanResult, error) {
	if len(exts) == 0 {
		exts = constants.DefaultROMExtensions
	}
	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		wanted[strings.ToLower(ext)] = true
	}

	logger := logging.FromContext(ctx)
	var results []ScanResult
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WrapIO("walk", path, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !wanted[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		crc, err := ChecksumFile(path)
		if err != nil {
			return err
		}
		result := ScanResult{File: path, CRC: crc}
		rec, err := ix.Lookup(crc)
		switch {
		case err == nil:
			result.Found = true
			result.Record = rec
		case errors.IsNotFound(err):
			logger.Debug().Str("file", path).Str("crc", crc.String()).Msg("Unknown ROM")
		default:
			return err
		}
		results = append(results, result)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b ScanResult) int {
		return strings.Compare(a.File, b.File)
	})
	return results, nil
}
