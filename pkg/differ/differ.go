package differ

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"

	"github.com/crankboy/romdb/pkg/records"
)

// Differ handles change detection between record sets.
type Differ interface {
	// Sets compares the existing database with an updated one.
	Sets(existing, updated *records.Set) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
	compareExtra bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields: make(map[string]bool),
		compareExtra: true,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Sets compares two record sets. Every section of the result is ordered by
// checksum.
func (diff *differ) Sets(existing, updated *records.Set) *Changeset {
	changeset := &Changeset{
		Added:   []Entry{},
		Updated: []Update{},
		Removed: []Entry{},
	}

	for _, crc := range updated.CRCs() {
		rec, _ := updated.Get(crc)
		old, ok := existing.Get(crc)
		if !ok {
			changeset.Added = append(changeset.Added, Entry{CRC: crc, Record: rec})
			continue
		}
		if changes := diff.record(old, rec); len(changes) > 0 {
			changeset.Updated = append(changeset.Updated, Update{
				CRC:      crc,
				Existing: old,
				New:      rec,
				Changes:  changes,
			})
		}
	}

	for _, crc := range existing.CRCs() {
		if _, ok := updated.Get(crc); !ok {
			rec, _ := existing.Get(crc)
			changeset.Removed = append(changeset.Removed, Entry{CRC: crc, Record: rec})
		}
	}

	changeset.Summary = calculateSummary(changeset)
	return changeset
}

// record returns the field changes between two versions of one game.
func (diff *differ) record(existing, updated records.Record) []FieldChange {
	var changes []FieldChange

	if !diff.ignoreFields["long"] && existing.Long != updated.Long {
		changes = append(changes, fieldChange("long", existing.Long, updated.Long))
	}
	if !diff.ignoreFields["short"] && existing.Short != updated.Short {
		changes = append(changes, fieldChange("short", existing.Short, updated.Short))
	}
	if !diff.compareExtra {
		return changes
	}

	keys := make(map[string]struct{})
	for k := range existing.Extra {
		keys[k] = struct{}{}
	}
	for k := range updated.Extra {
		keys[k] = struct{}{}
	}
	for _, k := range slices.Sorted(maps.Keys(keys)) {
		if diff.ignoreFields[k] {
			continue
		}
		oldRaw, newRaw := existing.Extra[k], updated.Extra[k]
		if bytes.Equal(compact(oldRaw), compact(newRaw)) {
			continue
		}
		changes = append(changes, fieldChange(k, string(oldRaw), string(newRaw)))
	}

	return changes
}

func fieldChange(path, oldValue, newValue string) FieldChange {
	fc := FieldChange{Path: path, OldValue: oldValue, NewValue: newValue, Type: ChangeTypeUpdate}
	switch {
	case oldValue == "":
		fc.Type = ChangeTypeAdd
	case newValue == "":
		fc.Type = ChangeTypeRemove
	}
	return fc
}

// compact normalizes whitespace so that reformatted JSON compares equal.
func compact(raw []byte) []byte {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
