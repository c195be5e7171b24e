package scanner

import "bytes"

// MagicNumber identifies a binary file format by a fixed byte prefix.
type MagicNumber struct {
	Name   string
	Prefix []byte
}

// DefaultMagicNumbers returns the executable markers checked during header
// verification: the two-byte Windows PE marker and the four-byte ELF marker.
func DefaultMagicNumbers() []MagicNumber {
	return []MagicNumber{
		{Name: "Windows executable (MZ)", Prefix: []byte{0x4D, 0x5A}},
		{Name: "ELF executable", Prefix: []byte{0x7F, 'E', 'L', 'F'}},
	}
}

// MatchMagic checks the given header prefix against the magic number set and
// returns the matching entry, if any. Only the prefix is ever inspected; the
// check never requires full-file scanning.
func MatchMagic(header []byte, magics []MagicNumber) (MagicNumber, bool) {
	for _, m := range magics {
		if len(header) >= len(m.Prefix) && bytes.Equal(header[:len(m.Prefix)], m.Prefix) {
			return m, true
		}
	}
	return MagicNumber{}, false
}
