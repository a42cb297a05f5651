// Package differ compares two record sets, typically the database already on
// disk and the one a build is about to write.
package differ

import (
	"fmt"
	"strings"

	"github.com/crankboy/romdb/pkg/records"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a game was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a game was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates a game was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     `json:"path" yaml:"path"` // "long", "short" or an extra field name
	OldValue string     `json:"old,omitempty" yaml:"old,omitempty"`
	NewValue string     `json:"new,omitempty" yaml:"new,omitempty"`
	Type     ChangeType `json:"type" yaml:"type"`
}

// Update represents an update to an existing game.
type Update struct {
	CRC      records.CRC    `json:"crc" yaml:"crc"`
	Existing records.Record `json:"-" yaml:"-"`
	New      records.Record `json:"-" yaml:"-"`
	Changes  []FieldChange  `json:"changes" yaml:"changes"`
}

// Entry is an added or removed game.
type Entry struct {
	CRC    records.CRC    `json:"crc" yaml:"crc"`
	Record records.Record `json:"record" yaml:"record"`
}

// Changeset represents all changes between two record sets.
type Changeset struct {
	Added   []Entry  `json:"added" yaml:"added"`
	Updated []Update `json:"updated" yaml:"updated"`
	Removed []Entry  `json:"removed" yaml:"removed"`
	Summary Summary  `json:"summary" yaml:"summary"`
}

// Summary provides summary statistics for a changeset.
type Summary struct {
	Added        int `json:"added" yaml:"added"`
	Updated      int `json:"updated" yaml:"updated"`
	Removed      int `json:"removed" yaml:"removed"`
	TotalChanges int `json:"total_changes" yaml:"total_changes"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

func calculateSummary(c *Changeset) Summary {
	return Summary{
		Added:        len(c.Added),
		Updated:      len(c.Updated),
		Removed:      len(c.Removed),
		TotalChanges: len(c.Added) + len(c.Updated) + len(c.Removed),
	}
}

// String returns a one-line description of the summary.
func (s Summary) String() string {
	if s.TotalChanges == 0 {
		return "no changes"
	}
	return fmt.Sprintf("%d added, %d updated, %d removed", s.Added, s.Updated, s.Removed)
}

// Print writes a human readable changeset, listing at most limit games per
// section. A limit of zero or less lists everything.
func (c *Changeset) Print(limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Changes: %s\n", c.Summary)

	section := func(title string, n int, line func(i int) string) {
		if n == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s (%d):\n", title, n)
		shown := n
		if limit > 0 && shown > limit {
			shown = limit
		}
		for i := 0; i < shown; i++ {
			b.WriteString("  " + line(i) + "\n")
		}
		if shown < n {
			fmt.Fprintf(&b, "  ... and %d more\n", n-shown)
		}
	}

	section("Added", len(c.Added), func(i int) string {
		return fmt.Sprintf("+ %s %s", c.Added[i].CRC, c.Added[i].Record.DisplayName())
	})
	section("Updated", len(c.Updated), func(i int) string {
		u := c.Updated[i]
		parts := make([]string, 0, len(u.Changes))
		for _, fc := range u.Changes {
			parts = append(parts, fmt.Sprintf("%s: %q -> %q", fc.Path, fc.OldValue, fc.NewValue))
		}
		return fmt.Sprintf("~ %s %s", u.CRC, strings.Join(parts, ", "))
	})
	section("Removed", len(c.Removed), func(i int) string {
		return fmt.Sprintf("- %s %s", c.Removed[i].CRC, c.Removed[i].Record.DisplayName())
	})

	return b.String()
}
