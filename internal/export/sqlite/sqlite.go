// Package sqlite exports a record set to a single SQLite file, for tools that
// prefer one indexed database over the shard directory.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/crankboy/romdb/pkg/constants"
	"github.com/crankboy/romdb/pkg/errors"
	"github.com/crankboy/romdb/pkg/records"
)

const schema = `
CREATE TABLE games (
	crc   TEXT PRIMARY KEY,
	long  TEXT NOT NULL,
	short TEXT NOT NULL,
	extra TEXT
);
CREATE INDEX idx_games_short ON games(short);
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Meta is stored alongside the games table.
type Meta struct {
	RunID       string
	GeneratedAt time.Time
}

// Export writes set to a new SQLite database at path, replacing any existing
// file once the export has completed.
func Export(ctx context.Context, path string, set *records.Set, meta Meta) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)

	if err := write(ctx, tmpPath, set, meta); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapResource("export", "sqlite", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

func write(ctx context.Context, path string, set *records.Set, meta Meta) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO games (crc, long, short, extra) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, crc := range set.CRCs() {
		rec, _ := set.Get(crc)
		var extra sql.NullString
		if len(rec.Extra) > 0 {
			b, err := json.Marshal(rec.Extra)
			if err != nil {
				return err
			}
			extra = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, crc.String(), rec.Long, rec.Short, extra); err != nil {
			return err
		}
	}

	for k, v := range map[string]string{
		"run_id":       meta.RunID,
		"generated_at": meta.GeneratedAt.UTC().Format(time.RFC3339),
		"games":        strconv.Itoa(set.Len()),
	} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Lookup reads one record back from an exported database.
func Lookup(ctx context.Context, path string, crc records.CRC) (records.Record, error) {
	if _, err := os.Stat(path); err != nil {
		return records.Record{}, errors.WrapIO("open", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return records.Record{}, errors.WrapIO("open", path, err)
	}
	defer func() { _ = db.Close() }()

	var rec records.Record
	var extra sql.NullString
	row := db.QueryRowContext(ctx, `SELECT long, short, extra FROM games WHERE crc = ?`, crc.String())
	if err := row.Scan(&rec.Long, &rec.Short, &extra); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return records.Record{}, errors.NewNotFoundError("game", crc.String())
		}
		return records.Record{}, errors.WrapResource("query", "sqlite", path, err)
	}
	if extra.Valid {
		if err := json.Unmarshal([]byte(extra.String), &rec.Extra); err != nil {
			return records.Record{}, errors.WrapParse("json", path, err)
		}
	}
	return rec, nil
}
