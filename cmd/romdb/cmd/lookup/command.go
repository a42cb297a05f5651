// Package lookup implements the lookup command, which resolves a ROM file or
// checksum against a generated database.
package lookup

import (
	"context"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/crankboy/romdb"
	"github.com/crankboy/romdb/cmd/application"
	"github.com/crankboy/romdb/internal/cmd/output"
	"github.com/crankboy/romdb/pkg/records"
)

// Flags holds the lookup command flags.
type Flags struct {
	DBDir  string
	SQLite string
}

// Result is what lookup prints.
type Result struct {
	CRC    records.CRC    `json:"crc" yaml:"crc"`
	File   string         `json:"file,omitempty" yaml:"file,omitempty"`
	Record records.Record `json:"record" yaml:"record"`
}

// TableData renders the result as a property table.
func (r Result) TableData() output.Data {
	rows := [][]string{
		{"CRC", r.CRC.String()},
	}
	if r.File != "" {
		rows = append(rows, []string{"File", r.File})
	}
	rows = append(rows,
		[]string{"Long", r.Record.DisplayName()},
		[]string{"Short", r.Record.Short},
	)
	for _, k := range slices.Sorted(maps.Keys(r.Record.Extra)) {
		rows = append(rows, []string{output.Header(k), string(r.Record.Extra[k])})
	}
	return output.Data{
		Headers: []string{"Property", "Value"},
		Rows:    rows,
	}
}

// NewCommand creates the lookup command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "lookup <rom-file|crc>",
		GroupID: "core",
		Short:   "Find the title of a ROM",
		Args:    cobra.ExactArgs(1),
		Long: `Lookup resolves a ROM against the generated database the same way the
emulator does: it computes the CRC32 of the file, opens the shard named
after the first two hex digits and reads the entry.

The argument may also be an 8-digit checksum.`,
		Example: `  romdb lookup "Tetris DX (World).gbc"
  romdb lookup 3358e30a -o yaml
  romdb lookup 3358E30A --sqlite romdb.sqlite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), app, flags, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.DBDir, "db-dir", "", "shard directory to search (default from config)")
	cmd.Flags().StringVar(&flags.SQLite, "sqlite", "", "search an exported SQLite database instead of the shards")

	return cmd
}

// Run resolves arg and prints the matching record to w.
func Run(ctx context.Context, app application.Application, flags *Flags, arg string, w io.Writer) error {
	if flags == nil {
		flags = &Flags{}
	}

	crc, file, err := romdb.ResolveKey(arg)
	if err != nil {
		return err
	}
	result := Result{CRC: crc, File: file}

	app.Logger().Debug().
		Str("crc", crc.String()).
		Str("file", result.File).
		Msg("Looking up game")

	var rec records.Record
	switch {
	case flags.SQLite != "":
		rec, err = romdb.LookupSQLite(ctx, flags.SQLite, crc)
	default:
		dir := flags.DBDir
		if dir == "" {
			dir = app.OutputDir()
		}
		rec, err = romdb.Lookup(dir, crc)
	}
	if err != nil {
		return err
	}
	result.Record = rec

	return output.NewFormatter(output.DetectFormat(app.OutputFormat())).Format(w, result)
}
