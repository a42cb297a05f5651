// Package dat extracts game entries from clrmamepro-style DAT catalogs such
// as the libretro metadat files.
//
// A catalog is a sequence of blocks separated by blank lines. Only blocks
// starting with the "game (" marker are considered, and from those only the
// comment (the full title) and the ROM crc are read:
//
//	game (
//		comment "Tetris (World) (Rev 1)"
//		genre "Puzzle"
//		rom ( crc 46DF91AD )
//	)
//
// Blocks missing either field are skipped without error; catalogs routinely
// contain headers and non-game entries.
package dat

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/crankboy/romdb/pkg/records"
)

// BlockMarker starts every block that describes a game.
const BlockMarker = "game ("

// maxBlockSize bounds a single block; real entries are a few hundred bytes.
const maxBlockSize = 1 << 20

var (
	commentPattern = regexp.MustCompile(`comment\s+"(.*?)"`)
	crcPattern     = regexp.MustCompile(`crc\s+([0-9A-Fa-f]{8})`)
)

// Entry is one game extracted from a catalog.
type Entry struct {
	CRC     records.CRC
	Comment string
}

// ParseBlock extracts an entry from a single catalog block.
// It never fails: blocks that are not game entries, or that lack a comment
// or crc, return false.
func ParseBlock(block string) (Entry, bool) {
	if !strings.HasPrefix(strings.TrimSpace(block), BlockMarker) {
		return Entry{}, false
	}
	comment := commentPattern.FindStringSubmatch(block)
	if comment == nil {
		return Entry{}, false
	}
	crc := crcPattern.FindStringSubmatch(block)
	if crc == nil {
		return Entry{}, false
	}
	return Entry{
		CRC:     records.Canonical(crc[1]),
		Comment: comment[1],
	}, true
}

// Scanner reads entries from a catalog one block at a time.
// Like bufio.Scanner it is single-use.
type Scanner struct {
	blocks *bufio.Scanner
	entry  Entry
	count  int
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxBlockSize)
	s.Split(splitBlocks)
	return &Scanner{blocks: s}
}

// Next advances to the next game entry, skipping blocks that do not parse.
// It returns false at the end of input or on a read error.
func (s *Scanner) Next() bool {
	for s.blocks.Scan() {
		if e, ok := ParseBlock(s.blocks.Text()); ok {
			s.entry = e
			s.count++
			return true
		}
	}
	return false
}

// Entry returns the entry found by the last call to Next.
func (s *Scanner) Entry() Entry {
	return s.entry
}

// Count returns the number of entries returned so far.
func (s *Scanner) Count() int {
	return s.count
}

// Err returns the first read error encountered, if any.
func (s *Scanner) Err() error {
	return s.blocks.Err()
}

// splitBlocks is a bufio.SplitFunc yielding text between blank lines.
// Both LF and CRLF line endings are recognized.
func splitBlocks(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i := bytes.IndexByte(data, '\n'); i >= 0; {
		rest := data[i+1:]
		switch {
		case bytes.HasPrefix(rest, []byte("\n")):
			return i + 2, data[:i], nil
		case bytes.HasPrefix(rest, []byte("\r\n")):
			return i + 3, bytes.TrimSuffix(data[:i], []byte("\r")), nil
		}
		next := bytes.IndexByte(rest, '\n')
		if next < 0 {
			break
		}
		i += next + 1
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
