// Package overrides merges locally curated title files into a record set.
//
// Override files map checksums to records already in database shape:
//
//	{
//	    "1A2B3C4D": {"long": "Tobu Tobu Girl (World)", "short": "Tobu Tobu Girl"}
//	}
//
// They are applied after every catalog, so they always win. Entries keyed by
// the XXXXXXXX placeholder are skipped.
package overrides

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/crankboy/romdb/pkg/errors"
	"github.com/crankboy/romdb/pkg/logging"
	"github.com/crankboy/romdb/pkg/records"
)

// Source is a named override file.
type Source struct {
	// Name describes the contents in log messages, e.g. "homebrew games".
	Name string
	// Path locates the file; .yaml and .yml files are read as YAML, anything
	// else as JSON.
	Path string
}

// Stats counts the outcome of merging one source.
type Stats struct {
	Added   int
	Skipped int
}

// Entries is the decoded content of an override file.
type Entries map[string]records.Record

// Load reads and decodes an override file.
// A missing file yields an error matching errors.ErrNotFound; content that
// does not decode yields a *errors.ParseError.
func Load(path string) (Entries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("override file", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return Decode(data, formatOf(path), path)
}

// Decode parses override data in the given format ("json" or "yaml").
func Decode(data []byte, format, name string) (Entries, error) {
	if format == "yaml" {
		return decodeYAML(data, name)
	}
	var entries Entries
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.WrapParse(format, name, err)
	}
	if entries == nil {
		entries = Entries{}
	}
	return entries, nil
}

// decodeYAML walks the top-level mapping instead of unmarshaling it so that
// keys keep their written form: an unquoted 12345678 would otherwise become
// an integer and 0000E000 a float.
func decodeYAML(data []byte, name string) (Entries, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	entries := Entries{}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return entries, nil
	}

	var values []*ast.MappingValueNode
	switch body := file.Docs[0].Body.(type) {
	case *ast.MappingNode:
		values = body.Values
	case *ast.MappingValueNode:
		values = []*ast.MappingValueNode{body}
	default:
		return nil, errors.NewParseError("yaml", name, "top level must be a mapping of checksums", nil)
	}

	for _, mv := range values {
		key := mv.Key.GetToken().Value
		var fields map[string]any
		if err := yaml.NodeToValue(mv.Value, &fields); err != nil {
			return nil, errors.WrapParse("yaml", name, err)
		}
		var js bytes.Buffer
		enc := json.NewEncoder(&js)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(fields); err != nil {
			return nil, errors.WrapParse("yaml", name, err)
		}
		var rec records.Record
		if err := json.Unmarshal(js.Bytes(), &rec); err != nil {
			return nil, errors.WrapParse("yaml", name, err)
		}
		entries[key] = rec
	}
	return entries, nil
}

// Merge writes entries into set, skipping the sentinel checksum.
// Keys are trimmed and uppercased; records are stored as given. Entries are
// visited in key order so that keys differing only in case resolve the same
// way on every run.
func Merge(ctx context.Context, set *records.Set, entries Entries) Stats {
	logger := logging.FromContext(ctx)
	var stats Stats
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		rec := entries[key]
		crc := records.Canonical(key)
		if crc.IsSentinel() {
			logger.Warn().
				Str("title", rec.DisplayName()).
				Msg("Skipped invalid entry")
			stats.Skipped++
			continue
		}
		set.Put(crc, rec)
		stats.Added++
	}
	return stats
}

// Apply loads src and merges it into set.
// A missing file is logged and skipped with a nil error. Any other failure
// is returned and leaves set unchanged.
func Apply(ctx context.Context, set *records.Set, src Source) (Stats, error) {
	ctx = logging.WithFields(ctx, map[string]any{"source": src.Name, "path": src.Path})
	logger := logging.FromContext(ctx)
	base := filepath.Base(src.Path)

	logger.Info().Msgf("Looking for '%s'", base)
	entries, err := Load(src.Path)
	if err != nil {
		if errors.IsNotFound(err) {
			logger.Info().Msgf("'%s' not found, skipping", base)
			return Stats{}, nil
		}
		return Stats{}, errors.WrapResource("load", "overrides", src.Name, err)
	}

	stats := Merge(ctx, set, entries)
	logger.Info().
		Int("added", stats.Added).
		Int("skipped", stats.Skipped).
		Msgf("Integrated %d %s", stats.Added, src.Name)
	return stats, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
