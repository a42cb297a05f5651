// Package app provides the application context and dependency management
// for the romdb CLI. It centralizes configuration, logging and the shared
// catalog transport so that commands only depend on application.Application.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/crankboy/romdb"
	"github.com/crankboy/romdb/cmd/application"
	"github.com/crankboy/romdb/internal/transport"
	"github.com/crankboy/romdb/pkg/errors"
)

var _ application.Application = (*App)(nil)

// App represents the romdb application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// out receives command output; nil means stdout
	out io.Writer

	// Catalog transport (lazy-initialized, shared across builds)
	mu     sync.Mutex
	client *transport.Client
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the default locations; the --config flag
// reloads it once flags are parsed.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// OutputDir returns the configured shard directory.
func (a *App) OutputDir() string {
	return a.config.OutputDir
}

// SQLitePath returns the configured SQLite export path.
func (a *App) SQLitePath() string {
	return a.config.SQLitePath
}

// Builder returns a database builder configured from the application
// configuration. opts are applied last and win over the configuration.
func (a *App) Builder(opts ...romdb.Option) (*romdb.Builder, error) {
	base := []romdb.Option{
		romdb.WithCatalogs(a.config.CatalogURLs...),
		romdb.WithOverrideFiles(a.config.OverrideFiles...),
		romdb.WithOutputDir(a.config.OutputDir),
		romdb.WithFetcher(a.transport()),
	}
	if a.config.SQLitePath != "" {
		base = append(base, romdb.WithSQLiteExport(a.config.SQLitePath))
	}

	b, err := romdb.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "builder", "", err)
	}
	return b, nil
}

// transport returns the shared catalog client, creating it on first use.
func (a *App) transport() *transport.Client {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil {
		a.client = transport.New(
			transport.WithUserAgent(a.config.UserAgent),
			transport.WithTimeout(a.config.HTTPTimeout),
		)
	}
	return a.client
}

// Shutdown releases pooled connections held by the catalog client.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	client := a.client
	a.mu.Unlock()

	if client != nil {
		client.CloseIdleConnections()
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput redirects command output, mainly for tests.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
