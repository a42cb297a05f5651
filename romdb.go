// Package romdb builds the checksum-indexed game title database used by the
// CrankBoy emulator.
//
// A build downloads the libretro Game Boy and Game Boy Color catalogs, derives
// a long and short title for every ROM checksum, merges curated override
// files on top and writes the result as 256 JSON shard files keyed by the
// first two hex digits of the checksum.
//
// Example usage:
//
//	b, err := romdb.New(romdb.WithOutputDir("Source/db"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	report, err := b.Build(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(report.Summary())
package romdb

import (
	"bytes"
	"context"

	"github.com/google/uuid"

	"github.com/crankboy/romdb/internal/export/sqlite"
	"github.com/crankboy/romdb/internal/transport"
	"github.com/crankboy/romdb/pkg/dat"
	"github.com/crankboy/romdb/pkg/differ"
	"github.com/crankboy/romdb/pkg/logging"
	"github.com/crankboy/romdb/pkg/overrides"
	"github.com/crankboy/romdb/pkg/records"
	"github.com/crankboy/romdb/pkg/shards"
	"github.com/crankboy/romdb/pkg/titles"
)

// Builder runs the database build pipeline.
type Builder struct {
	cfg        *config
	normalizer *titles.Normalizer
}

// New creates a Builder. Without options it reads the upstream libretro
// catalogs and the override files under scripts/ and writes to Source/db.
func New(opts ...Option) (*Builder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.fetcher == nil {
		cfg.fetcher = transport.New()
	}
	return &Builder{
		cfg:        cfg,
		normalizer: titles.New(cfg.rules),
	}, nil
}

// OutputDir returns the directory the shard files are written to.
func (b *Builder) OutputDir() string {
	return b.cfg.outputDir
}

// Build runs one complete build.
//
// Unreachable catalogs, unreadable override files and individual shard
// files that cannot be written are logged and recorded in the report; the
// build carries on with what it has. A failure to create the output
// directory ends the build early and is recorded in Report.OutputErr. Only
// cancellation of ctx is returned as an error.
//
// The report also compares the result with the database already in the
// output directory. With WithDryRun nothing is written.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	report := &Report{
		RunID:     runID,
		OutputDir: b.cfg.outputDir,
		StartedAt: b.cfg.now(),
	}
	set := records.NewSet()

	report.Catalogs = b.ingestCatalogs(logging.WithStage(ctx, "catalogs"), set)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	report.Overrides = b.applyOverrides(logging.WithStage(ctx, "overrides"), set)
	report.Games = set.Len()
	logger.Info().
		Int("games", report.Games).
		Msgf("Total unique games after merging: %d", report.Games)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	parts := shards.Partition(set)
	report.Shards = len(parts)
	b.compare(logging.WithStage(ctx, "diff"), set, report)

	if b.cfg.dryRun {
		report.DryRun = true
		report.FinishedAt = b.cfg.now()
		logger.Info().Msg("Dry run, no files written")
		return report, nil
	}

	stats, err := shards.NewWriter(b.cfg.outputDir).Write(logging.WithStage(ctx, "shards"), parts)
	report.FilesWritten = stats.Written
	report.WriteFailures = stats.Failed
	report.BytesWritten = stats.Bytes
	if err != nil {
		logger.Error().Err(err).Msg("Could not create output directory")
		report.OutputErr, report.OutputError = err, err.Error()
		report.FinishedAt = b.cfg.now()
		return report, nil
	}
	logger.Info().
		Int("files", stats.Written).
		Int("failed", stats.Failed).
		Msgf("Successfully generated %d database files in '%s'", stats.Written, b.cfg.outputDir)

	if b.cfg.sqlitePath != "" {
		report.SQLitePath = b.cfg.sqlitePath
		if err := b.export(logging.WithStage(ctx, "export"), set, runID); err != nil {
			report.ExportErr, report.ExportError = err, err.Error()
		}
	}

	report.FinishedAt = b.cfg.now()
	return report, nil
}

func (b *Builder) ingestCatalogs(ctx context.Context, set *records.Set) []SourceReport {
	reports := make([]SourceReport, 0, len(b.cfg.catalogs))
	for _, src := range b.cfg.catalogs {
		reports = append(reports, b.ingestCatalog(logging.WithSource(ctx, src), set, src))
	}
	return reports
}

func (b *Builder) ingestCatalog(ctx context.Context, set *records.Set, src string) SourceReport {
	logger := logging.FromContext(ctx)
	rep := SourceReport{Source: src}

	logger.Info().Msgf("Processing %s...", src)
	data, err := b.cfg.fetcher.Fetch(ctx, src)
	if err != nil {
		logger.Error().Err(err).Msg("Network error, skipping source")
		rep.Err, rep.Error = err, err.Error()
		return rep
	}

	scanner := dat.NewScanner(bytes.NewReader(data))
	for scanner.Next() {
		e := scanner.Entry()
		set.Put(e.CRC, b.normalizer.Normalize(e.Comment))
	}
	rep.Games = scanner.Count()
	if err := scanner.Err(); err != nil {
		logger.Warn().Err(err).Msg("Catalog ended early, keeping the entries read so far")
		rep.Err, rep.Error = err, err.Error()
	}

	logger.Info().Int("games", rep.Games).Msgf("Found and processed %d games", rep.Games)
	return rep
}

func (b *Builder) applyOverrides(ctx context.Context, set *records.Set) []OverrideReport {
	reports := make([]OverrideReport, 0, len(b.cfg.overrides))
	for _, src := range b.cfg.overrides {
		stats, err := overrides.Apply(ctx, set, src)
		rep := OverrideReport{
			Name:    src.Name,
			Path:    src.Path,
			Added:   stats.Added,
			Skipped: stats.Skipped,
		}
		if err != nil {
			logging.FromContext(ctx).Error().
				Err(err).
				Str("source", src.Name).
				Msg("Could not read override file, skipping")
			rep.Err, rep.Error = err, err.Error()
		}
		reports = append(reports, rep)
	}
	return reports
}

// compare records how the new database differs from the one on disk.
func (b *Builder) compare(ctx context.Context, set *records.Set, report *Report) {
	logger := logging.FromContext(ctx)
	existing, err := shards.Load(b.cfg.outputDir)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not read existing database, skipping change report")
		return
	}
	cs := differ.New().Sets(existing, set)
	report.Changeset = cs
	report.Changes = cs.Summary
	logger.Info().
		Int("added", cs.Summary.Added).
		Int("updated", cs.Summary.Updated).
		Int("removed", cs.Summary.Removed).
		Msgf("Changes since last build: %s", cs.Summary)
}

func (b *Builder) export(ctx context.Context, set *records.Set, runID string) error {
	logger := logging.FromContext(ctx)
	meta := sqlite.Meta{RunID: runID, GeneratedAt: b.cfg.now()}
	if err := sqlite.Export(ctx, b.cfg.sqlitePath, set, meta); err != nil {
		logger.Error().Err(err).Str("path", b.cfg.sqlitePath).Msg("SQLite export failed")
		return err
	}
	logger.Info().Str("path", b.cfg.sqlitePath).Msg("Exported SQLite database")
	return nil
}
