package tilemapping

import (
	"fmt"
	"unicode/utf8"
)

// Letters are plain runes. The 0 rune marks an empty square.
const EmptySquareMarker rune = 0

// Five Hebrew letters take a different glyph at the end of a word. Tiles
// always carry the regular form; the final form only ever appears as the
// last letter of a word read off the board.
var finalForms = map[rune]rune{
	'כ': 'ך',
	'מ': 'ם',
	'נ': 'ן',
	'פ': 'ף',
	'צ': 'ץ',
}

var regularForms = func() map[rune]rune {
	m := make(map[rune]rune, len(finalForms))
	for reg, fin := range finalForms {
		m[fin] = reg
	}
	return m
}()

// HebrewLetters is the tile alphabet, in alphabetical order.
var HebrewLetters = []rune("אבגדהוזחטיכלמנסעפצקרשת")

// ToFinalForm returns the word-final glyph for r, or r itself if it has none.
func ToFinalForm(r rune) rune {
	if f, ok := finalForms[r]; ok {
		return f
	}
	return r
}

// ToRegularForm maps a final glyph back to the tile it is written with.
func ToRegularForm(r rune) rune {
	if reg, ok := regularForms[r]; ok {
		return reg
	}
	return r
}

// IsFinalForm returns true if r is one of the five word-final glyphs.
func IsFinalForm(r rune) bool {
	_, ok := regularForms[r]
	return ok
}

// NormalizeFinal replaces the last letter of word with its final form.
func NormalizeFinal(word []rune) string {
	if len(word) == 0 {
		return ""
	}
	out := make([]rune, len(word))
	copy(out, word)
	out[len(out)-1] = ToFinalForm(out[len(out)-1])
	return string(out)
}

// ParseLetter turns user or wire input into a single tile letter. Final
// glyphs are accepted and mapped to the regular tile.
func ParseLetter(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%q is not a single letter", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || r == EmptySquareMarker {
		return 0, fmt.Errorf("%q is not a valid letter", s)
	}
	return ToRegularForm(r), nil
}
