package titles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crankboy/romdb/pkg/records"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		long string
		want records.Record
	}{
		{
			name: "annotations removed and name corrected",
			long: "Pokemon - Crystal Version (USA, Europe) (Rev 1)",
			want: records.Record{
				Long:  "Pokémon - Crystal Version (USA, Europe) (Rev 1)",
				Short: "Pokémon - Crystal Version",
			},
		},
		{
			name: "allow-listed phrase kept",
			long: "Seiken Densetsu 2 (Seiken Densetsu Collection)",
			want: records.Record{
				Long:  "Seiken Densetsu 2 (Seiken Densetsu Collection)",
				Short: "Seiken Densetsu 2 (Seiken Densetsu Collection)",
			},
		},
		{
			name: "allow-listed phrase kept among removed ones",
			long: "Final Fantasy Legend, The (World) (Collection of SaGa) (Rev 2)",
			want: records.Record{
				Long:  "Final Fantasy Legend, The (World) (Collection of SaGa) (Rev 2)",
				Short: "Final Fantasy Legend, The (Collection of SaGa)",
			},
		},
		{
			name: "capitalization fix",
			long: "Beavis and Butt-head (USA, Europe)",
			want: records.Record{
				Long:  "Beavis and Butt-Head (USA, Europe)",
				Short: "Beavis and Butt-Head",
			},
		},
		{
			name: "no annotations",
			long: "  Tetris  ",
			want: records.Record{Long: "  Tetris  ", Short: "Tetris"},
		},
		{
			name: "annotation in the middle",
			long: "Wario Land (USA) - Super Mario Land 3",
			want: records.Record{
				Long:  "Wario Land (USA) - Super Mario Land 3",
				Short: "Wario Land - Super Mario Land 3",
			},
		},
		{
			name: "unbalanced parenthesis left alone",
			long: "Broken (Title",
			want: records.Record{Long: "Broken (Title", Short: "Broken (Title"},
		},
		{
			name: "empty",
			long: "",
			want: records.Record{},
		},
	}

	n := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.long))
		})
	}
}

func TestShortIdempotent(t *testing.T) {
	n := Default()
	inputs := []string{
		"Pokemon - Crystal Version (USA, Europe) (Rev 1)",
		"Seiken Densetsu 2 (Seiken Densetsu Collection)",
		"Castlevania II - Belmont's Revenge (USA, Europe) (Castlevania Anniversary Collection)",
		"Zelda no Densetsu - Yume o Miru Shima DX (Japan) (SGB Enhanced) (GB Compatible)",
		"(Prototype)",
	}
	for _, in := range inputs {
		once := n.Short(in)
		assert.Equal(t, once, n.Short(once), in)
	}
}

func TestShortPreservesOnlyExactPhrases(t *testing.T) {
	n := Default()
	// Case differs from the allow-list entry, so it is removed.
	assert.Equal(t, "Seiken Densetsu 2", n.Short("Seiken Densetsu 2 (seiken densetsu collection)"))
	// Leading whitespace before a kept phrase is kept with it.
	assert.Equal(t, "Contra  (Contra Anniversary Collection)", n.Short("Contra  (Contra Anniversary Collection) (USA)"))
}

func TestCustomRules(t *testing.T) {
	n := New(Rules{
		Keep:        []string{"(DX)"},
		Corrections: []Correction{{From: "Megaman", To: "Mega Man"}, {From: "Mega Man", To: "MEGA MAN"}},
	})

	rec := n.Normalize("Megaman (DX) (Japan)")
	assert.Equal(t, "MEGA MAN (DX)", rec.Short)
	assert.Equal(t, "MEGA MAN (DX) (Japan)", rec.Long)
}

func TestNormalizeComposesNFC(t *testing.T) {
	decomposed := "Poke\u0301mon Pinball (USA)"
	rec := Default().Normalize(decomposed)
	assert.Equal(t, "Pok\u00e9mon Pinball (USA)", rec.Long)
	assert.Equal(t, "Pok\u00e9mon Pinball", rec.Short)
}
