// Package titles derives short display titles from full catalog titles.
//
// Catalog titles carry region, revision and language annotations in
// parentheses ("Tetris (World) (Rev 1)"). The short title drops them, except
// for a handful of phrases that are part of how a compilation release is
// known. A small table of spelling corrections is then applied to both titles.
package titles

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/crankboy/romdb/pkg/records"
)

// annotationPattern matches a parenthesized group with any leading whitespace.
var annotationPattern = regexp.MustCompile(`\s*\([^)]*\)`)

// Correction replaces every occurrence of From with To.
type Correction struct {
	From string
	To   string
}

// Rules parameterize a Normalizer.
type Rules struct {
	// Keep lists parenthesized phrases, parentheses included, that stay in
	// the short title.
	Keep []string

	// Corrections are applied in order to both the long and short title.
	Corrections []Correction
}

// DefaultRules returns the rules used for the Game Boy database.
func DefaultRules() Rules {
	return Rules{
		Keep: []string{
			"(Seiken Densetsu Collection)",
			"(Castlevania Anniversary Collection)",
			"(Contra Anniversary Collection)",
			"(Collection of Mana)",
			"(Collection of SaGa)",
		},
		Corrections: []Correction{
			{From: "Butt-head", To: "Butt-Head"},
			{From: "Pokemon", To: "Pokémon"},
		},
	}
}

// Normalizer turns catalog titles into records.
type Normalizer struct {
	keep        map[string]struct{}
	corrections []Correction
}

// New builds a Normalizer from rules.
func New(rules Rules) *Normalizer {
	keep := make(map[string]struct{}, len(rules.Keep))
	for _, phrase := range rules.Keep {
		keep[phrase] = struct{}{}
	}
	return &Normalizer{
		keep:        keep,
		corrections: append([]Correction(nil), rules.Corrections...),
	}
}

// Default returns a Normalizer using DefaultRules.
func Default() *Normalizer {
	return New(DefaultRules())
}

// Short strips parenthesized annotations that are not allow-listed and trims
// the result. Corrections are not applied.
func (n *Normalizer) Short(long string) string {
	short := annotationPattern.ReplaceAllStringFunc(long, func(m string) string {
		if _, ok := n.keep[strings.TrimSpace(m)]; ok {
			return m
		}
		return ""
	})
	return strings.TrimSpace(short)
}

// Correct applies the correction table to a title.
func (n *Normalizer) Correct(title string) string {
	for _, c := range n.corrections {
		title = strings.ReplaceAll(title, c.From, c.To)
	}
	return title
}

// Normalize builds the record for a catalog title: the short title is
// derived first, then both titles are corrected and composed to NFC so that
// the same visible title always has the same bytes.
func (n *Normalizer) Normalize(long string) records.Record {
	short := n.Short(long)
	return records.Record{
		Long:  norm.NFC.String(n.Correct(long)),
		Short: norm.NFC.String(n.Correct(short)),
	}
}
