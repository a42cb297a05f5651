package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crankboy/romdb/pkg/errors"
	"github.com/crankboy/romdb/pkg/records"
)

func TestExportAndLookup(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "romdb.sqlite")

	set := records.NewSet()
	set.Put("3358E30A", records.Record{Long: "Pokémon - Crystal Version (USA, Europe) (Rev 1)", Short: "Pokémon - Crystal Version"})
	set.Put("0BADF00D", records.Record{
		Long:  "Tobu Tobu Girl (World)",
		Short: "Tobu Tobu Girl",
		Extra: map[string]json.RawMessage{"author": json.RawMessage(`"Tangram Games"`)},
	})

	meta := Meta{RunID: "run-1", GeneratedAt: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, Export(ctx, path, set, meta))

	rec, err := Lookup(ctx, path, "3358E30A")
	require.NoError(t, err)
	assert.Equal(t, "Pokémon - Crystal Version", rec.Short)
	assert.Nil(t, rec.Extra)

	rec, err = Lookup(ctx, path, "0BADF00D")
	require.NoError(t, err)
	assert.JSONEq(t, `"Tangram Games"`, string(rec.Extra["author"]))

	_, err = Lookup(ctx, path, "FFFFFFFF")
	assert.True(t, errors.IsNotFound(err))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var games, runID string
	require.NoError(t, db.QueryRow(`SELECT value FROM meta WHERE key = 'games'`).Scan(&games))
	require.NoError(t, db.QueryRow(`SELECT value FROM meta WHERE key = 'run_id'`).Scan(&runID))
	assert.Equal(t, "2", games)
	assert.Equal(t, "run-1", runID)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestExportReplacesExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "romdb.sqlite")

	first := records.NewSet()
	first.Put("11111111", records.Record{Long: "Old", Short: "Old"})
	require.NoError(t, Export(ctx, path, first, Meta{RunID: "a"}))

	second := records.NewSet()
	second.Put("22222222", records.Record{Long: "New", Short: "New"})
	require.NoError(t, Export(ctx, path, second, Meta{RunID: "b"}))

	_, err := Lookup(ctx, path, "11111111")
	assert.True(t, errors.IsNotFound(err))
	rec, err := Lookup(ctx, path, "22222222")
	require.NoError(t, err)
	assert.Equal(t, "New", rec.Long)
}

func TestLookupMissingDatabase(t *testing.T) {
	_, err := Lookup(context.Background(), filepath.Join(t.TempDir(), "none.sqlite"), "11111111")
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))
}
