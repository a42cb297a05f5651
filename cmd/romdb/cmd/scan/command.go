// Package scan implements the scan command, which names every ROM in a
// library directory.
package scan

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/crankboy/romdb"
	"github.com/crankboy/romdb/cmd/application"
	"github.com/crankboy/romdb/internal/cmd/output"
	"github.com/crankboy/romdb/pkg/constants"
)

// Flags holds the scan command flags.
type Flags struct {
	DBDir      string
	Extensions []string
}

// Results is what scan prints.
type Results []romdb.ScanResult

// TableData renders one row per ROM.
func (r Results) TableData() output.Data {
	rows := make([][]string, 0, len(r))
	for _, res := range r {
		title, short := "(unknown)", ""
		if res.Found {
			title, short = res.Record.DisplayName(), res.Record.Short
		}
		rows = append(rows, []string{res.File, res.CRC.String(), title, short})
	}
	return output.Data{
		Headers: []string{"File", "CRC", "Title", "Short"},
		Rows:    rows,
	}
}

// NewCommand creates the scan command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "scan <rom-dir>",
		GroupID: "core",
		Short:   "Name every ROM in a directory",
		Args:    cobra.ExactArgs(1),
		Long: `Scan walks a ROM library, computes the CRC32 of every Game Boy and
Game Boy Color ROM and looks each one up in the generated database.

ROMs missing from the database are listed as unknown.`,
		Example: `  romdb scan ~/roms
  romdb scan ~/roms --ext gb --ext gbc --ext sgb -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), app, flags, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.DBDir, "db-dir", "", "shard directory to search (default from config)")
	cmd.Flags().StringSliceVar(&flags.Extensions, "ext", constants.DefaultROMExtensions, "ROM file extensions to include")

	return cmd
}

// Run scans root and prints one result per ROM to w.
func Run(ctx context.Context, app application.Application, flags *Flags, root string, w io.Writer) error {
	if flags == nil {
		flags = &Flags{}
	}
	dir := flags.DBDir
	if dir == "" {
		dir = app.OutputDir()
	}

	ix := romdb.NewIndex(dir, constants.ShardCacheTTL)
	results, err := romdb.Scan(ctx, ix, root, flags.Extensions...)
	if err != nil {
		return err
	}

	found := 0
	for _, r := range results {
		if r.Found {
			found++
		}
	}
	app.Logger().Info().
		Int("roms", len(results)).
		Int("found", found).
		Int("shards_read", ix.Reads()).
		Msgf("Named %d of %d ROMs", found, len(results))

	return output.NewFormatter(output.DetectFormat(app.OutputFormat())).Format(w, Results(results))
}
