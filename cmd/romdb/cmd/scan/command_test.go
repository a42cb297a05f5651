package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crankboy/romdb"
	"github.com/crankboy/romdb/internal/cmd/application"
)

func library(t *testing.T) (db, roms string) {
	t.Helper()
	db = t.TempDir()
	shard := `{
    "CBF43926": {
        "long": "Test ROM (World)",
        "short": "Test ROM"
    }
}`
	require.NoError(t, os.WriteFile(filepath.Join(db, "cb.json"), []byte(shard), 0o644))

	roms = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(roms, "known.gb"), []byte("123456789"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(roms, "other.gbc"), []byte("a"), 0o644))
	return db, roms
}

func TestRunJSON(t *testing.T) {
	db, roms := library(t)
	mock := &application.Mock{
		OutputDirFunc:    func() string { return db },
		OutputFormatFunc: func() string { return "json" },
	}

	var buf bytes.Buffer
	require.NoError(t, Run(context.Background(), mock, nil, roms, &buf))

	var results []romdb.ScanResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &results))
	require.Len(t, results, 2)
	assert.True(t, results[0].Found)
	assert.Equal(t, "Test ROM", results[0].Record.Short)
	assert.False(t, results[1].Found)
}

func TestRunTable(t *testing.T) {
	db, roms := library(t)
	mock := &application.Mock{OutputFormatFunc: func() string { return "table" }}

	var buf bytes.Buffer
	require.NoError(t, Run(context.Background(), mock, &Flags{DBDir: db}, roms, &buf))
	assert.Contains(t, buf.String(), "Test ROM (World)")
	assert.Contains(t, buf.String(), "(unknown)")
	assert.Contains(t, buf.String(), "E8B7BE43")
}

func TestCommandExtensions(t *testing.T) {
	db, roms := library(t)
	mock := &application.Mock{OutputFormatFunc: func() string { return "json" }}
	cmd := NewCommand(mock)

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{roms, "--db-dir", db, "--ext", "gb"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var results []romdb.ScanResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(roms, "known.gb"), results[0].File)
}
