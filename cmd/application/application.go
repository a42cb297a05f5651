// Package application provides the application interface for romdb commands.
//
// Commands accept an Application rather than the concrete app type so they
// can be tested against internal/cmd/application.Mock.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            b, err := app.Builder()
//	            if err != nil {
//	                return err
//	            }
//	            _, err = b.Build(cmd.Context())
//	            return err
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/crankboy/romdb"
)

// Application provides what commands need from the application layer.
type Application interface {
	// Builder returns a database builder configured from the loaded
	// configuration. Extra options are applied after the configured ones.
	Builder(opts ...romdb.Option) (*romdb.Builder, error)

	// OutputDir returns the configured shard directory.
	OutputDir() string

	// SQLitePath returns the configured SQLite export path, or "".
	SQLitePath() string

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
