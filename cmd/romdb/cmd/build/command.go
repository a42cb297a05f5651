// Package build implements the build command, which regenerates the shard
// database from the configured catalogs and override files.
package build

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/crankboy/romdb"
	"github.com/crankboy/romdb/cmd/application"
	"github.com/crankboy/romdb/internal/cmd/output"
	"github.com/crankboy/romdb/pkg/constants"
	"github.com/crankboy/romdb/pkg/differ"
	"github.com/crankboy/romdb/pkg/errors"
)

// Flags holds the build command flags. Empty values fall back to the
// loaded configuration.
type Flags struct {
	OutputDir  string
	SQLitePath string
	Catalogs   []string
	Overrides  []string
	DryRun     bool
	Diff       bool
	Changes    string
}

// diffLimit caps how many games per section --diff lists.
const diffLimit = 25

// diffReport is the structured output of --diff.
type diffReport struct {
	Report    *romdb.Report     `json:"report" yaml:"report"`
	Changeset *differ.Changeset `json:"changeset" yaml:"changeset"`
}

// NewCommand creates the build command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "build",
		GroupID: "core",
		Short:   "Regenerate the title database",
		Args:    cobra.NoArgs,
		Long: `Build downloads the libretro Game Boy and Game Boy Color catalogs,
derives a long and short title for every ROM checksum, merges the curated
override files and writes one JSON file per checksum prefix.

Unreachable catalogs and unreadable override files are skipped with an error
in the log. An output directory that cannot be created is reported and
nothing is written.`,
		Example: `  romdb build                                  # Rebuild Source/db
  romdb build --output-dir /tmp/db              # Write somewhere else
  romdb build --catalog ./Game\ Boy.dat         # Use a local catalog
  romdb build --sqlite romdb.sqlite -o json     # Also export SQLite, print JSON report
  romdb build --dry-run --diff                  # Show what a rebuild would change
  romdb build --changes CHANGES.md              # Write the changes as Markdown`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "directory receiving the shard files (default from config)")
	cmd.Flags().StringVar(&flags.SQLitePath, "sqlite", "", "also export the database to this SQLite file")
	cmd.Flags().StringArrayVar(&flags.Catalogs, "catalog", nil, "catalog URL or path, repeatable; replaces the configured catalogs")
	cmd.Flags().StringArrayVar(&flags.Overrides, "override", nil, "override file, repeatable; replaces the configured override files")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "build and compare without writing any files")
	cmd.Flags().BoolVar(&flags.Diff, "diff", false, "list the games that changed since the last build")
	cmd.Flags().StringVar(&flags.Changes, "changes", "", "write the changes since the last build to this Markdown file")

	return cmd
}

// Run executes one build and prints its report to w.
func Run(ctx context.Context, app application.Application, flags *Flags, w io.Writer) error {
	if flags == nil {
		flags = &Flags{}
	}

	var opts []romdb.Option
	if flags.OutputDir != "" {
		opts = append(opts, romdb.WithOutputDir(flags.OutputDir))
	}
	if flags.SQLitePath != "" {
		opts = append(opts, romdb.WithSQLiteExport(flags.SQLitePath))
	}
	if len(flags.Catalogs) > 0 {
		opts = append(opts, romdb.WithCatalogs(flags.Catalogs...))
	}
	if len(flags.Overrides) > 0 {
		opts = append(opts, romdb.WithOverrideFiles(flags.Overrides...))
	}
	if flags.DryRun {
		opts = append(opts, romdb.WithDryRun(true))
	}

	builder, err := app.Builder(opts...)
	if err != nil {
		return err
	}

	report, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	if flags.Changes != "" {
		if err := writeChanges(flags.Changes, report); err != nil {
			return err
		}
		app.Logger().Info().Str("path", flags.Changes).Msg("Wrote change report")
	}

	return printReport(w, report, output.DetectFormat(app.OutputFormat()), flags.Diff)
}

func printReport(w io.Writer, report *romdb.Report, format output.Format, diff bool) error {
	if format != output.FormatTable {
		if diff && report.Changeset != nil {
			return output.NewFormatter(format).Format(w, diffReport{report, report.Changeset})
		}
		return output.NewFormatter(format).Format(w, report)
	}

	text := report.Summary() + "\n"
	if diff && report.Changeset != nil {
		text += "\n" + report.Changeset.Print(diffLimit)
	}
	_, err := io.WriteString(w, text)
	return err
}

// writeChanges writes the Markdown change report. It is written on dry runs
// too, since previewing the changes is what a dry run is for.
func writeChanges(path string, report *romdb.Report) error {
	if report.Changeset == nil {
		return errors.NewResourceError("write", "change report", path,
			errors.New("existing database could not be read"))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := report.Changeset.WriteMarkdown(f, 0); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}
