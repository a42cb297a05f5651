package application

import (
	"github.com/rs/zerolog"

	"github.com/crankboy/romdb"
	cmdapp "github.com/crankboy/romdb/cmd/application"
	"github.com/crankboy/romdb/pkg/logging"
)

var _ cmdapp.Application = (*Mock)(nil)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    BuilderFunc: func(opts ...romdb.Option) (*romdb.Builder, error) {
//	        return romdb.New(append(opts, romdb.WithFetcher(fake))...)
//	    },
//	}
//	cmd := build.NewCommand(mock)
type Mock struct {
	BuilderFunc      func(opts ...romdb.Option) (*romdb.Builder, error)
	OutputDirFunc    func() string
	SQLitePathFunc   func() string
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Builder returns a builder using the mock function or romdb defaults.
func (m *Mock) Builder(opts ...romdb.Option) (*romdb.Builder, error) {
	if m.BuilderFunc != nil {
		return m.BuilderFunc(opts...)
	}
	return romdb.New(opts...)
}

// OutputDir returns the shard directory using the mock function or "db".
func (m *Mock) OutputDir() string {
	if m.OutputDirFunc != nil {
		return m.OutputDirFunc()
	}
	return "db"
}

// SQLitePath returns the export path using the mock function or "".
func (m *Mock) SQLitePath() string {
	if m.SQLitePathFunc != nil {
		return m.SQLitePathFunc()
	}
	return ""
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	return logging.NewNopLogger()
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}
