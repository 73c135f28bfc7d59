// Package escape implements the in-band tag markers used to smuggle
// extended values through JSON strings.
//
// A tagged string is two private-use runes followed by the payload text:
// the tag marker U+F000+tag and the separator U+F000. Tags are printable
// ASCII, so every marker lies in the reserved block U+F000..U+F07F.
//
// A plain string whose first rune falls into the reserved block cannot be
// told apart from a tagged one; such strings are not escaped and will be
// rejected or misread by a typed decoder.
package escape

import (
	"strings"
	"unicode/utf8"
)

const (
	// Base is the first rune of the reserved block and doubles as the
	// separator between tag marker and payload.
	Base rune = 0xF000
	// Last is the last rune of the reserved block.
	Last rune = Base + 0x7F

	// markerLen is the UTF-8 length of every rune in the reserved block.
	markerLen = 3
	// leadByte is the first UTF-8 byte of every rune in the reserved block.
	leadByte = 0xEF
)

var separator = string(Base)

// ValidTag reports whether tag can be used as a tag character.
func ValidTag(tag byte) bool {
	return tag >= '!' && tag <= '~'
}

// Wrap returns text prefixed with the marker for tag.
func Wrap(tag byte, text string) string {
	var b strings.Builder
	b.Grow(2*markerLen + len(text))
	b.WriteRune(Base + rune(tag))
	b.WriteString(separator)
	b.WriteString(text)
	return b.String()
}

// Unwrap splits a tagged string into its tag and payload. ok is false if s
// does not start with a tag marker followed by the separator.
func Unwrap(s string) (tag byte, text string, ok bool) {
	if len(s) < 2*markerLen || s[0] != leadByte {
		return 0, "", false
	}
	r, n := utf8.DecodeRuneInString(s)
	if r <= Base || r > Last {
		return 0, "", false
	}
	if !strings.HasPrefix(s[n:], separator) {
		return 0, "", false
	}
	tag = byte(r - Base)
	if !ValidTag(tag) {
		return 0, "", false
	}
	return tag, s[n+markerLen:], true
}

// Marked reports whether s starts with a rune from the reserved block.
// A marked string that does not Unwrap is malformed.
func Marked(s string) bool {
	if len(s) < markerLen || s[0] != leadByte {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r >= Base && r <= Last
}
