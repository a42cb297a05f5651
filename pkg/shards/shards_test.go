package shards

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/crankboy/romdb/pkg/errors"
	"github.com/crankboy/romdb/pkg/logging"
	"github.com/crankboy/romdb/pkg/records"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleSet() *records.Set {
	set := records.NewSet()
	set.Put("1A2B3C4D", records.Record{Long: "Seiken Densetsu 2 (Seiken Densetsu Collection)", Short: "Seiken Densetsu 2 (Seiken Densetsu Collection)"})
	set.Put("1AFFFFFF", records.Record{Long: "Pokémon - Crystal Version (USA, Europe) (Rev 1)", Short: "Pokémon - Crystal Version"})
	set.Put("00000000", records.Record{Long: "Zero (World)", Short: "Zero"})
	set.Put("FF123456", records.Record{Long: "Tom & Jerry (USA)", Short: "Tom & Jerry"})
	return set
}

func TestPrefixes(t *testing.T) {
	p := Prefixes()
	require.Len(t, p, 256)
	assert.Equal(t, "00", p[0])
	assert.Equal(t, "0F", p[15])
	assert.Equal(t, "10", p[16])
	assert.Equal(t, "FF", p[255])
}

func TestFileName(t *testing.T) {
	p, err := PrefixFor(records.Canonical("1a2b3c4d"))
	require.NoError(t, err)
	assert.Equal(t, "1a.json", FileName(p))
	assert.Equal(t, "ff.json", Shard{Prefix: "FF"}.FileName())
}

func TestPartition(t *testing.T) {
	set := sampleSet()
	got := Partition(set)

	want := []Shard{
		{Prefix: "00", Records: map[records.CRC]records.Record{"00000000": {Long: "Zero (World)", Short: "Zero"}}},
		{Prefix: "1A", Records: map[records.CRC]records.Record{
			"1A2B3C4D": {Long: "Seiken Densetsu 2 (Seiken Densetsu Collection)", Short: "Seiken Densetsu 2 (Seiken Densetsu Collection)"},
			"1AFFFFFF": {Long: "Pokémon - Crystal Version (USA, Europe) (Rev 1)", Short: "Pokémon - Crystal Version"},
		}},
		{Prefix: "FF", Records: map[records.CRC]records.Record{"FF123456": {Long: "Tom & Jerry (USA)", Short: "Tom & Jerry"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Partition() mismatch (-want +got):\n%s", diff)
	}
}

func TestPartitionIsLosslessAndDisjoint(t *testing.T) {
	set := records.NewSet()
	for i, p := range Prefixes() {
		if i%3 == 0 {
			set.Put(records.CRC(p+"000000"), records.Record{Long: p})
			set.Put(records.CRC(p+"ABCDEF"), records.Record{Long: p + "-2"})
		}
	}

	seen := make(map[records.CRC]string)
	for _, s := range Partition(set) {
		require.NotEmpty(t, s.Records, "empty shards must not be emitted")
		for crc := range s.Records {
			prev, dup := seen[crc]
			require.False(t, dup, "%s appears in %s and %s", crc, prev, s.Prefix)
			seen[crc] = s.Prefix
			assert.Equal(t, strings.ToUpper(string(crc[:2])), s.Prefix)
		}
	}

	rebuilt := make(map[records.CRC]records.Record)
	for _, s := range Partition(set) {
		for crc, rec := range s.Records {
			rebuilt[crc] = rec
		}
	}
	if diff := cmp.Diff(set.All(), rebuilt); diff != "" {
		t.Errorf("partition is not lossless (-want +got):\n%s", diff)
	}
}

func TestPartitionDropsInvalidPrefixes(t *testing.T) {
	set := records.NewSet()
	set.Put("ZZ000000", records.Record{Long: "bad"})
	set.Put("A", records.Record{Long: "short"})
	set.Put("AB000000", records.Record{Long: "good"})

	got := Partition(set)
	require.Len(t, got, 1)
	assert.Equal(t, "AB", got[0].Prefix)
}

func TestPartitionEmpty(t *testing.T) {
	assert.Empty(t, Partition(records.NewSet()))
}

func TestEncode(t *testing.T) {
	data, err := Encode(Shard{Prefix: "1A", Records: map[records.CRC]records.Record{
		"1AFFFFFF": {Long: "Pokémon - Crystal Version (USA, Europe) (Rev 1)", Short: "Pokémon - Crystal Version"},
		"1A000001": {Long: "Tom & Jerry <Proto>", Short: "Tom & Jerry"},
	}})
	require.NoError(t, err)

	want := `{
    "1A000001": {
        "long": "Tom & Jerry <Proto>",
        "short": "Tom & Jerry"
    },
    "1AFFFFFF": {
        "long": "Pokémon - Crystal Version (USA, Europe) (Rev 1)",
        "short": "Pokémon - Crystal Version"
    }
}`
	assert.Equal(t, want, string(data))
}

func TestEncodeLineSeparators(t *testing.T) {
	data, err := Encode(Shard{Prefix: "1A", Records: map[records.CRC]records.Record{
		"1A000001": {Long: "Café \u2028 A&B\u2029", Short: `C:\u2028`},
	}})
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"long\": \"Café \u2028 A&B\u2029\"")
	assert.Contains(t, string(data), `"short": "C:\\u2028"`)

	var back map[string]records.Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "Café \u2028 A&B\u2029", back["1A000001"].Long)
	assert.Equal(t, `C:\u2028`, back["1A000001"].Short)
}

func TestWriterWrite(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	dir := filepath.Join(t.TempDir(), "Source", "db")

	stats, err := NewWriter(dir).Write(ctx, Partition(sampleSet()))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Written)
	assert.Equal(t, 0, stats.Failed)
	assert.Positive(t, stats.Bytes)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"00.json", "1a.json", "ff.json"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "1a.json"))
	require.NoError(t, err)
	var decoded map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Pokémon - Crystal Version", decoded["1AFFFFFF"]["short"])
}

func TestWriterDirectoryFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewWriter(filepath.Join(blocker, "db")).Write(context.Background(), Partition(sampleSet()))
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestWriterContinuesAfterFileFailure(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	dir := t.TempDir()
	// A directory where 1a.json should go makes that rename fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "1a.json"), 0o755))

	stats, err := NewWriter(dir).Write(ctx, Partition(sampleSet()))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Written)
	assert.Equal(t, 1, stats.Failed)
	assert.FileExists(t, filepath.Join(dir, "ff.json"))
	tl.AssertContains(t, "Could not write shard file")

	leftovers, err := filepath.Glob(filepath.Join(dir, ".1a.json-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temporary files are cleaned up")
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWriter(dir).Write(context.Background(), Partition(sampleSet()))
	require.NoError(t, err)

	rec, err := Read(dir, records.Canonical("1affffff"))
	require.NoError(t, err)
	assert.Equal(t, "Pokémon - Crystal Version", rec.Short)

	_, err = Read(dir, "1A000000")
	assert.True(t, errors.IsNotFound(err), "missing key")

	_, err = Read(dir, "77000000")
	assert.True(t, errors.IsNotFound(err), "missing shard")

	_, err = Read(dir, "??")
	assert.True(t, errors.IsValidationError(err))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWriter(dir).Write(context.Background(), Partition(sampleSet()))
	require.NoError(t, err)

	loaded, err := Load(dir)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleSet().All(), loaded.All()); diff != "" {
		t.Errorf("loaded database mismatch (-want +got):\n%s", diff)
	}

	empty, err := Load(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Zero(t, empty.Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ab.json"), []byte("{"), 0o644))
	_, err = Load(dir)
	assert.True(t, errors.IsParseError(err))
}

func TestReadShardCanonicalizesKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ab.json"),
		[]byte(`{"abcd1234": {"long": "Lower Key", "short": "Lower Key"}}`), 0o644))

	shard, err := ReadShard(dir, "AB")
	require.NoError(t, err)
	assert.Equal(t, "Lower Key", shard["ABCD1234"].Long)

	_, err = ReadShard(dir, "CD")
	assert.True(t, errors.IsNotFound(err))
}
