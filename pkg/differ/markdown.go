package differ

import (
	"fmt"
	"io"
	"strings"

	md "github.com/nao1215/markdown"
)

// WriteMarkdown renders the changeset as a Markdown document, suitable for
// the description of a database update. Each section lists at most limit
// games; a limit of zero or less lists everything.
func (c *Changeset) WriteMarkdown(w io.Writer, limit int) error {
	doc := md.NewMarkdown(w)
	doc.H1("Title database changes").LF()
	doc.PlainText(md.Bold(capitalize(c.Summary.String()))).LF()

	if len(c.Added) > 0 {
		rows := make([][]string, 0, len(c.Added))
		for _, e := range c.Added {
			rows = append(rows, []string{md.Code(e.CRC.String()), cell(e.Record.Long), cell(e.Record.Short)})
		}
		section(doc, "Added", []string{"CRC", "Title", "Short title"}, rows, limit)
	}

	if len(c.Updated) > 0 {
		var rows [][]string
		for _, u := range c.Updated {
			for _, fc := range u.Changes {
				rows = append(rows, []string{md.Code(u.CRC.String()), fc.Path, cell(fc.OldValue), cell(fc.NewValue)})
			}
		}
		section(doc, "Updated", []string{"CRC", "Field", "Old", "New"}, rows, limit)
	}

	if len(c.Removed) > 0 {
		rows := make([][]string, 0, len(c.Removed))
		for _, e := range c.Removed {
			rows = append(rows, []string{md.Code(e.CRC.String()), cell(e.Record.Long)})
		}
		section(doc, "Removed", []string{"CRC", "Title"}, rows, limit)
	}

	return doc.Build()
}

func section(doc *md.Markdown, title string, header []string, rows [][]string, limit int) {
	doc.H2(fmt.Sprintf("%s (%d)", title, len(rows))).LF()
	shown := rows
	if limit > 0 && len(rows) > limit {
		shown = rows[:limit]
	}
	doc.Table(md.TableSet{Header: header, Rows: shown}).LF()
	if len(shown) < len(rows) {
		doc.PlainText(md.Italic(fmt.Sprintf("... and %d more", len(rows)-len(shown)))).LF()
	}
}

// cell escapes pipes so titles cannot break the table layout.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
