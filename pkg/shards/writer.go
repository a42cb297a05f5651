package shards

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/crankboy/romdb/pkg/constants"
	"github.com/crankboy/romdb/pkg/errors"
	"github.com/crankboy/romdb/pkg/logging"
	"github.com/crankboy/romdb/pkg/records"
)

// WriteStats summarizes a Write call.
type WriteStats struct {
	Written int
	Failed  int
	Bytes   int64
}

// Writer stores shards as files in a directory.
type Writer struct {
	Dir string
}

// NewWriter returns a Writer for dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Write creates the output directory and writes one file per shard.
// Failing to create the directory aborts the write and is returned. A
// failure on an individual file is logged and counted, and the remaining
// shards are still written.
func (w *Writer) Write(ctx context.Context, shards []Shard) (WriteStats, error) {
	logger := logging.FromContext(ctx)
	var stats WriteStats

	if err := os.MkdirAll(w.Dir, constants.DirPermissions); err != nil {
		return stats, errors.WrapIO("create", w.Dir, err)
	}

	for _, s := range shards {
		n, err := w.writeShard(s)
		if err != nil {
			logger.Error().
				Err(err).
				Str("shard", s.FileName()).
				Msg("Could not write shard file")
			stats.Failed++
			continue
		}
		stats.Written++
		stats.Bytes += int64(n)
	}
	return stats, nil
}

func (w *Writer) writeShard(s Shard) (int, error) {
	data, err := Encode(s)
	if err != nil {
		return 0, errors.WrapResource("encode", "shard", s.Prefix, err)
	}

	path := filepath.Join(w.Dir, s.FileName())
	tmp, err := os.CreateTemp(w.Dir, "."+s.FileName()+"-*")
	if err != nil {
		return 0, errors.WrapIO("create", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return 0, errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return 0, errors.WrapIO("chmod", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, errors.WrapIO("rename", path, err)
	}
	return len(data), nil
}

// Encode serializes a shard: keys sorted, four-space indentation, non-ASCII
// and HTML characters written literally, no trailing newline.
func Encode(s Shard) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", constants.ShardIndent)
	if err := enc.Encode(s.Records); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes encoding/json
// always emits back into the literal characters. Escaped backslashes are
// skipped as pairs so a title containing the text \u2028 is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if seq := data[i:min(i+6, len(data))]; bytes.Equal(seq, []byte(`\u2028`)) || bytes.Equal(seq, []byte(`\u2029`)) {
			r := '\u2028'
			if seq[5] == '9' {
				r = '\u2029'
			}
			out = utf8.AppendRune(out, r)
			i += 5
			continue
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// ReadShard decodes the shard file for prefix. A missing file is a
// NotFoundError.
func ReadShard(dir, prefix string) (map[records.CRC]records.Record, error) {
	path := filepath.Join(dir, FileName(prefix))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("shard", FileName(prefix))
		}
		return nil, errors.WrapIO("read", path, err)
	}

	var raw map[string]records.Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	shard := make(map[records.CRC]records.Record, len(raw))
	for key, rec := range raw {
		shard[records.Canonical(key)] = rec
	}
	return shard, nil
}

// Read looks up one checksum in a shard directory.
func Read(dir string, crc records.CRC) (records.Record, error) {
	prefix, err := PrefixFor(crc)
	if err != nil {
		return records.Record{}, err
	}

	shard, err := ReadShard(dir, prefix)
	if err != nil {
		if errors.IsNotFound(err) {
			return records.Record{}, errors.NewNotFoundError("game", crc.String())
		}
		return records.Record{}, err
	}
	rec, ok := shard[records.Canonical(crc.String())]
	if !ok {
		return records.Record{}, errors.NewNotFoundError("game", crc.String())
	}
	return rec, nil
}

// Load reads every shard file in dir back into one set. A directory that
// does not exist yet is an empty database.
func Load(dir string) (*records.Set, error) {
	set := records.NewSet()
	for _, prefix := range Prefixes() {
		shard, err := ReadShard(dir, prefix)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		for crc, rec := range shard {
			set.Put(crc, rec)
		}
	}
	return set, nil
}
