package romdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/crankboy/romdb/pkg/differ"
)

// SourceReport describes one processed catalog.
type SourceReport struct {
	Source string `json:"source" yaml:"source"`
	// Games counts every entry read, duplicates included.
	Games int    `json:"games" yaml:"games"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	Err   error  `json:"-" yaml:"-"`
}

// OverrideReport describes one applied override file.
type OverrideReport struct {
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path" yaml:"path"`
	Added   int    `json:"added" yaml:"added"`
	Skipped int    `json:"skipped" yaml:"skipped"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
	Err     error  `json:"-" yaml:"-"`
}

// Report summarizes a build.
type Report struct {
	RunID         string            `json:"run_id" yaml:"run_id"`
	OutputDir     string            `json:"output_dir" yaml:"output_dir"`
	Catalogs      []SourceReport    `json:"catalogs" yaml:"catalogs"`
	Overrides     []OverrideReport  `json:"overrides" yaml:"overrides"`
	Games         int               `json:"games" yaml:"games"`
	Shards        int               `json:"shards" yaml:"shards"`
	FilesWritten  int               `json:"files_written" yaml:"files_written"`
	WriteFailures int               `json:"write_failures" yaml:"write_failures"`
	BytesWritten  int64             `json:"bytes_written" yaml:"bytes_written"`
	Changes       differ.Summary    `json:"changes" yaml:"changes"`
	Changeset     *differ.Changeset `json:"-" yaml:"-"`
	DryRun        bool              `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	OutputError   string            `json:"output_error,omitempty" yaml:"output_error,omitempty"`
	OutputErr     error             `json:"-" yaml:"-"`
	SQLitePath    string            `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
	ExportError   string            `json:"export_error,omitempty" yaml:"export_error,omitempty"`
	ExportErr     error             `json:"-" yaml:"-"`
	StartedAt     time.Time         `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time         `json:"finished_at" yaml:"finished_at"`
}

// FailedSources returns the catalogs that contributed nothing because they
// could not be fetched.
func (r *Report) FailedSources() []string {
	var failed []string
	for _, c := range r.Catalogs {
		if c.Err != nil && c.Games == 0 {
			failed = append(failed, c.Source)
		}
	}
	return failed
}

// Summary renders the report for terminal output.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s\n", r.RunID)
	for _, c := range r.Catalogs {
		if c.Err != nil && c.Games == 0 {
			fmt.Fprintf(&b, "  catalog  %-40s skipped (%v)\n", shorten(c.Source), c.Err)
			continue
		}
		fmt.Fprintf(&b, "  catalog  %-40s %s games\n", shorten(c.Source), humanize.Comma(int64(c.Games)))
	}
	for _, o := range r.Overrides {
		if o.Err != nil {
			fmt.Fprintf(&b, "  override %-40s failed (%v)\n", o.Name, o.Err)
			continue
		}
		fmt.Fprintf(&b, "  override %-40s %d added, %d skipped\n", o.Name, o.Added, o.Skipped)
	}
	fmt.Fprintf(&b, "%s unique games in %d shards\n", humanize.Comma(int64(r.Games)), r.Shards)
	if r.Changeset != nil {
		fmt.Fprintf(&b, "Changes since last build: %s\n", r.Changes)
	}
	if r.DryRun {
		fmt.Fprintf(&b, "Dry run, nothing written to %s", r.OutputDir)
		return b.String()
	}
	if r.OutputErr != nil {
		fmt.Fprintf(&b, "Could not write to %s: %v", r.OutputDir, r.OutputErr)
		return b.String()
	}
	fmt.Fprintf(&b, "Wrote %d files (%s) to %s", r.FilesWritten, humanize.Bytes(uint64(r.BytesWritten)), r.OutputDir)
	if r.WriteFailures > 0 {
		fmt.Fprintf(&b, ", %d failed", r.WriteFailures)
	}
	if r.SQLitePath != "" {
		if r.ExportErr != nil {
			fmt.Fprintf(&b, "\nSQLite export to %s failed: %v", r.SQLitePath, r.ExportErr)
		} else {
			fmt.Fprintf(&b, "\nSQLite export written to %s", r.SQLitePath)
		}
	}
	return b.String()
}

// shorten keeps the file name of long catalog URLs.
func shorten(source string) string {
	if i := strings.LastIndex(source, "/"); i >= 0 && len(source) > 40 {
		return source[i+1:]
	}
	return source
}

// Duration reports how long the build took.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
