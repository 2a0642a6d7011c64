package game

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/domino14/tashbetz/tilemapping"
)

var ErrLetterNotOnRack = errors.New("letter is not on the rack")

// A Rack is a player's ordered hand of letters. Letters keep the order they
// were drawn in; a letter taken back from the board goes to the end.
type Rack struct {
	letters []rune
}

func NewRack(letters []rune) *Rack {
	return &Rack{letters: slices.Clone(letters)}
}

// RackFromStrings parses the letters stored in a game document.
func RackFromStrings(letters []string) (*Rack, error) {
	r := &Rack{letters: make([]rune, 0, len(letters))}
	for _, s := range letters {
		l, err := tilemapping.ParseLetter(s)
		if err != nil {
			return nil, fmt.Errorf("rack letter %q: %w", s, err)
		}
		r.letters = append(r.letters, l)
	}
	return r, nil
}

func (r *Rack) Letters() []rune {
	return slices.Clone(r.letters)
}

func (r *Rack) Strings() []string {
	return runesToStrings(r.letters)
}

func (r *Rack) Len() int {
	return len(r.letters)
}

func (r *Rack) Has(letter rune) bool {
	return lo.Contains(r.letters, letter)
}

// Take removes the first copy of letter.
func (r *Rack) Take(letter rune) error {
	idx := lo.IndexOf(r.letters, letter)
	if idx < 0 {
		return ErrLetterNotOnRack
	}
	r.letters = slices.Delete(r.letters, idx, idx+1)
	return nil
}

func (r *Rack) Add(letters ...rune) {
	r.letters = append(r.letters, letters...)
}

// Refill draws from the bag until the rack holds RackTileLimit letters and
// returns what was drawn.
func (r *Rack) Refill(bag *tilemapping.Bag) []rune {
	drawn := bag.Draw(RackTileLimit - len(r.letters))
	r.letters = append(r.letters, drawn...)
	return drawn
}

func (r *Rack) Copy() *Rack {
	return NewRack(r.letters)
}

func (r *Rack) String() string {
	return string(r.letters)
}
