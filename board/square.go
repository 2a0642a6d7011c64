package board

import (
	"fmt"

	"github.com/domino14/tashbetz/tilemapping"
)

// A Square is a single square on the board. A tentative square holds a
// letter placed during the current, uncommitted turn.
type Square struct {
	letter    rune
	tentative bool
}

func (s Square) String() string {
	if s.tentative {
		return fmt.Sprintf("<(%c) tentative>", s.letter)
	}
	return fmt.Sprintf("<(%c)>", s.letter)
}

func (s *Square) Letter() rune {
	return s.letter
}

func (s *Square) IsEmpty() bool {
	return s.letter == tilemapping.EmptySquareMarker
}

// IsTentative is true for a letter placed this turn and not yet committed.
func (s *Square) IsTentative() bool {
	return s.tentative
}

// IsCommitted is true for a letter that came from a prior turn.
func (s *Square) IsCommitted() bool {
	return !s.IsEmpty() && !s.tentative
}

func (s *Square) clear() {
	s.letter = tilemapping.EmptySquareMarker
	s.tentative = false
}

// DisplayString shows committed letters as-is and tentative letters in
// brackets, or a dot for an empty square.
func (s Square) DisplayString() string {
	if s.letter == tilemapping.EmptySquareMarker {
		return " . "
	}
	if s.tentative {
		return "[" + string(s.letter) + "]"
	}
	return " " + string(s.letter) + " "
}
