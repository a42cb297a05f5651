package romdb

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/crankboy/romdb/internal/transport"
	"github.com/crankboy/romdb/pkg/constants"
	"github.com/crankboy/romdb/pkg/errors"
	"github.com/crankboy/romdb/pkg/overrides"
	"github.com/crankboy/romdb/pkg/titles"
)

// Option is a function that configures a Builder
type Option func(*config) error

// config holds the settings of a Builder.
type config struct {
	catalogs   []string
	overrides  []overrides.Source
	outputDir  string
	sqlitePath string
	dryRun     bool
	fetcher    transport.Fetcher
	rules      titles.Rules
	now        func() time.Time
}

func defaultConfig() *config {
	srcs := make([]overrides.Source, 0, len(constants.DefaultOverrideFiles))
	for _, p := range constants.DefaultOverrideFiles {
		srcs = append(srcs, OverrideSource(p))
	}
	return &config{
		catalogs:  append([]string(nil), constants.DefaultCatalogURLs...),
		overrides: srcs,
		outputDir: constants.DefaultOutputDir,
		rules:     titles.DefaultRules(),
		now:       time.Now,
	}
}

// OverrideSource names an override file after its base name, so
// "scripts/homebrew.json" is reported as "homebrew".
func OverrideSource(path string) overrides.Source {
	base := filepath.Base(path)
	return overrides.Source{
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Path: path,
	}
}

// WithCatalogs sets the catalog sources, in processing order.
// When two catalogs list the same checksum the later one wins.
func WithCatalogs(sources ...string) Option {
	return func(c *config) error {
		c.catalogs = append([]string(nil), sources...)
		return nil
	}
}

// WithOverrides sets the override sources, in merge order.
func WithOverrides(sources ...overrides.Source) Option {
	return func(c *config) error {
		c.overrides = append([]overrides.Source(nil), sources...)
		return nil
	}
}

// WithOverrideFiles sets the override sources from file paths.
func WithOverrideFiles(paths ...string) Option {
	return func(c *config) error {
		c.overrides = c.overrides[:0:0]
		for _, p := range paths {
			c.overrides = append(c.overrides, OverrideSource(p))
		}
		return nil
	}
}

// WithOutputDir sets the directory receiving the shard files.
func WithOutputDir(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return errors.NewValidationError("output_dir", dir, "cannot be empty")
		}
		c.outputDir = dir
		return nil
	}
}

// WithSQLiteExport additionally writes the database to a SQLite file.
func WithSQLiteExport(path string) Option {
	return func(c *config) error {
		c.sqlitePath = path
		return nil
	}
}

// WithFetcher sets how catalog sources are retrieved.
func WithFetcher(f transport.Fetcher) Option {
	return func(c *config) error {
		if f == nil {
			return errors.NewValidationError("fetcher", nil, "cannot be nil")
		}
		c.fetcher = f
		return nil
	}
}

// WithTitleRules replaces the title normalization rules.
func WithTitleRules(rules titles.Rules) Option {
	return func(c *config) error {
		c.rules = rules
		return nil
	}
}

// WithClock sets the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}

// WithDryRun builds and compares the database without writing anything.
func WithDryRun(enabled bool) Option {
	return func(c *config) error {
		c.dryRun = enabled
		return nil
	}
}
