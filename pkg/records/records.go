// Package records defines the title database model: checksums, title records
// and the Set that accumulates them across the build stages.
//
// A Set is the one mutable value of a build. It is created once, handed by
// pointer to each stage in turn (catalogs, then overrides) and finally
// consumed by the shard partitioner. Later writes for a checksum replace
// earlier ones.
package records

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/crankboy/romdb/pkg/constants"
	"github.com/crankboy/romdb/pkg/errors"
)

// CRC is a canonical (uppercase) 8-character hexadecimal ROM checksum.
type CRC string

// String returns the checksum text.
func (c CRC) String() string {
	return string(c)
}

// Prefix returns the uppercase shard prefix of the checksum, and false when
// the checksum is too short or does not start with two hexadecimal digits.
func (c CRC) Prefix() (string, bool) {
	if len(c) < constants.PrefixLength {
		return "", false
	}
	p := strings.ToUpper(string(c[:constants.PrefixLength]))
	if !isHex(p) {
		return "", false
	}
	return p, true
}

// IsSentinel reports whether the checksum is the "unknown" placeholder.
func (c CRC) IsSentinel() bool {
	return strings.EqualFold(string(c), constants.SentinelCRC)
}

// Canonical trims and uppercases a checksum key without validating it.
func Canonical(key string) CRC {
	return CRC(strings.ToUpper(strings.TrimSpace(key)))
}

// ParseCRC canonicalizes and validates a checksum.
func ParseCRC(s string) (CRC, error) {
	c := Canonical(s)
	if len(c) != constants.CRCLength || !isHex(string(c)) {
		return "", errors.NewValidationError("crc", s, "must be 8 hexadecimal characters")
	}
	return c, nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch >= '0' && ch <= '9', ch >= 'A' && ch <= 'F', ch >= 'a' && ch <= 'f':
		default:
			return false
		}
	}
	return s != ""
}

// Record is the title information stored for one checksum.
type Record struct {
	Long  string
	Short string

	// Extra holds fields beyond long/short found in curated override files.
	// They are written back unchanged.
	Extra map[string]json.RawMessage
}

// MarshalJSON writes long and short first, followed by any extra fields in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeField(&buf, "long", r.Long); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeField(&buf, "short", r.Short); err != nil {
		return nil, err
	}
	for _, k := range slices.Sorted(maps.Keys(r.Extra)) {
		buf.WriteByte(',')
		if err := writeField(&buf, k, r.Extra[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads long and short and keeps everything else in Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = Record{}
	for k, v := range fields {
		switch k {
		case "long":
			if err := json.Unmarshal(v, &r.Long); err != nil {
				return err
			}
		case "short":
			if err := json.Unmarshal(v, &r.Short); err != nil {
				return err
			}
		default:
			if r.Extra == nil {
				r.Extra = make(map[string]json.RawMessage)
			}
			r.Extra[k] = v
		}
	}
	return nil
}

// DisplayName returns the long title, or a placeholder when it is empty.
func (r Record) DisplayName() string {
	if r.Long == "" {
		return constants.UnknownTitle
	}
	return r.Long
}

// writeField encodes "key":value without HTML escaping so titles keep
// characters like & and < literal.
func writeField(buf *bytes.Buffer, key string, value any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(key); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
	buf.WriteByte(':')
	if raw, ok := value.(json.RawMessage); ok {
		// Re-encode so escapes in the source file come out literally.
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		value = v
	}
	if err := enc.Encode(value); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Set is the unified checksum → record mapping built up by a database build.
type Set struct {
	records map[CRC]Record
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{records: make(map[CRC]Record)}
}

// Put stores rec under crc, replacing any existing record.
// It reports whether a previous record was replaced.
func (s *Set) Put(crc CRC, rec Record) bool {
	_, replaced := s.records[crc]
	s.records[crc] = rec
	return replaced
}

// Get returns the record stored under crc.
func (s *Set) Get(crc CRC) (Record, bool) {
	rec, ok := s.records[crc]
	return rec, ok
}

// Len returns the number of distinct checksums.
func (s *Set) Len() int {
	return len(s.records)
}

// CRCs returns all checksums in ascending order.
func (s *Set) CRCs() []CRC {
	return slices.Sorted(maps.Keys(s.records))
}

// All returns a copy of the mapping.
func (s *Set) All() map[CRC]Record {
	return maps.Clone(s.records)
}
