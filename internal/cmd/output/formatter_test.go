package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type game struct {
	CRC  string `json:"crc" yaml:"crc"`
	Long string `json:"long" yaml:"long"`
}

func (g game) TableData() Data {
	return Data{
		Headers: []string{Header("crc"), Header("long_title")},
		Rows:    [][]string{{g.CRC, g.Long}},
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, game{CRC: "3358E30A", Long: "Pokémon & Friends"}))
	assert.Equal(t, "{\n  \"crc\": \"3358E30A\",\n  \"long\": \"Pokémon & Friends\"\n}\n", buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, game{CRC: "3358E30A", Long: "Tetris"}))
	assert.Contains(t, buf.String(), "crc: 3358E30A")
	assert.Contains(t, buf.String(), "long: Tetris")
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, game{CRC: "3358E30A", Long: "Tetris"}))
	out := buf.String()
	assert.Contains(t, out, "3358E30A")
	assert.Contains(t, out, "Tetris")
	assert.Contains(t, strings.ToUpper(out), "LONG TITLE")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"games": 3}))
	assert.JSONEq(t, `{"games": 3}`, buf.String())
}

func TestHeader(t *testing.T) {
	assert.Equal(t, "Files Written", Header("files_written"))
}
