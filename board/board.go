// Package board holds the shared letter grid. Squares are either empty,
// committed (placed in an earlier turn and never changed again), or
// tentative (placed during the turn in progress).
package board

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tashbetz/tilemapping"
)

// DefaultDim is the side length of the game board.
const DefaultDim = 10

type BoardDirection uint8

const (
	HorizontalDirection BoardDirection = iota
	VerticalDirection
)

func (bd BoardDirection) String() string {
	if bd == HorizontalDirection {
		return "(horizontal)"
	} else if bd == VerticalDirection {
		return "(vertical)"
	}
	return "none"
}

var (
	ErrSquareOccupied = errors.New("square is already occupied")
	ErrNotTentative   = errors.New("square has no tentative tile")
	ErrOutOfBounds    = errors.New("position is off the board")
	ErrEmptyLetter    = errors.New("cannot place an empty letter")
)

// A GameBoard is a square grid of Squares.
type GameBoard struct {
	squares     [][]*Square
	tilesPlayed int
}

// MakeBoard creates an empty board of the given dimension.
func MakeBoard(dim int) *GameBoard {
	rows := make([][]*Square, dim)
	for i := range rows {
		rows[i] = make([]*Square, dim)
		for j := range rows[i] {
			rows[i][j] = &Square{}
		}
	}
	return &GameBoard{squares: rows}
}

// NewBoard creates an empty 10x10 board.
func NewBoard() *GameBoard {
	return MakeBoard(DefaultDim)
}

// Dim is the dimension of the board. It assumes the board is square.
func (g *GameBoard) Dim() int {
	return len(g.squares)
}

func (g *GameBoard) posExists(row int, col int) bool {
	d := g.Dim()
	return row >= 0 && row < d && col >= 0 && col < d
}

func (g *GameBoard) GetSquare(row int, col int) *Square {
	return g.squares[row][col]
}

func (g *GameBoard) GetLetter(row int, col int) rune {
	return g.squares[row][col].letter
}

// TilesPlayed counts the occupied squares, tentative ones included.
func (g *GameBoard) TilesPlayed() int {
	return g.tilesPlayed
}

// IsEmpty returns if the board is empty.
func (g *GameBoard) IsEmpty() bool {
	return g.tilesPlayed == 0
}

// PlaceTentative puts letter on an empty square and marks it tentative.
func (g *GameBoard) PlaceTentative(row, col int, letter rune) error {
	if !g.posExists(row, col) {
		return ErrOutOfBounds
	}
	if letter == tilemapping.EmptySquareMarker {
		return ErrEmptyLetter
	}
	sq := g.squares[row][col]
	if !sq.IsEmpty() {
		return ErrSquareOccupied
	}
	sq.letter = letter
	sq.tentative = true
	g.tilesPlayed++
	return nil
}

// RetractTentative empties a tentative square and returns its letter, which
// the caller puts back on the rack.
func (g *GameBoard) RetractTentative(row, col int) (rune, error) {
	if !g.posExists(row, col) {
		return 0, ErrOutOfBounds
	}
	sq := g.squares[row][col]
	if !sq.tentative {
		return 0, ErrNotTentative
	}
	letter := sq.letter
	sq.clear()
	g.tilesPlayed--
	return letter, nil
}

// MoveTentative moves a tentative tile to another empty square. Moving a
// tile onto itself does nothing. If the destination is unusable the tile
// stays where it was.
func (g *GameBoard) MoveTentative(fromRow, fromCol, toRow, toCol int) error {
	if fromRow == toRow && fromCol == toCol {
		if !g.posExists(fromRow, fromCol) {
			return ErrOutOfBounds
		}
		return nil
	}
	letter, err := g.RetractTentative(fromRow, fromCol)
	if err != nil {
		return err
	}
	if err = g.PlaceTentative(toRow, toCol, letter); err != nil {
		// put it back; the source square was tentative a moment ago
		if restoreErr := g.PlaceTentative(fromRow, fromCol, letter); restoreErr != nil {
			log.Error().Err(restoreErr).Msg("could not restore tentative tile")
		}
		return err
	}
	return nil
}

// TentativePosition is a square holding a tile placed this turn.
type TentativePosition struct {
	Row    int
	Col    int
	Letter rune
}

// TentativePositions lists tentative squares in row-major order.
func (g *GameBoard) TentativePositions() []TentativePosition {
	var ps []TentativePosition
	for i, row := range g.squares {
		for j, sq := range row {
			if sq.tentative {
				ps = append(ps, TentativePosition{Row: i, Col: j, Letter: sq.letter})
			}
		}
	}
	return ps
}

// CommitTentative turns every tentative square into a committed one and
// returns how many there were.
func (g *GameBoard) CommitTentative() int {
	n := 0
	for _, row := range g.squares {
		for _, sq := range row {
			if sq.tentative {
				sq.tentative = false
				n++
			}
		}
	}
	return n
}

// DiscardTentative empties every tentative square and returns their letters
// in row-major order.
func (g *GameBoard) DiscardTentative() []rune {
	var letters []rune
	for _, row := range g.squares {
		for _, sq := range row {
			if sq.tentative {
				letters = append(letters, sq.letter)
				sq.clear()
				g.tilesPlayed--
			}
		}
	}
	return letters
}

// Clear clears the board.
func (g *GameBoard) Clear() {
	for _, row := range g.squares {
		for _, sq := range row {
			sq.clear()
		}
	}
	g.tilesPlayed = 0
}

// Copy returns a deep copy of the board.
func (g *GameBoard) Copy() *GameBoard {
	n := MakeBoard(g.Dim())
	for i, row := range g.squares {
		for j, sq := range row {
			*n.squares[i][j] = *sq
		}
	}
	n.tilesPlayed = g.tilesPlayed
	return n
}

// CopyFrom makes g a copy of g2 without allocating new squares.
func (g *GameBoard) CopyFrom(g2 *GameBoard) {
	if g.Dim() != g2.Dim() {
		*g = *g2.Copy()
		return
	}
	for i, row := range g2.squares {
		for j, sq := range row {
			*g.squares[i][j] = *sq
		}
	}
	g.tilesPlayed = g2.tilesPlayed
}

// Equals is true when both boards hold the same letters with the same
// tentative marks.
func (g *GameBoard) Equals(g2 *GameBoard) bool {
	if g.Dim() != g2.Dim() {
		log.Debug().Int("dim1", g.Dim()).Int("dim2", g2.Dim()).Msg("dims don't match")
		return false
	}
	for i, row := range g.squares {
		for j, sq := range row {
			if *sq != *g2.squares[i][j] {
				log.Debug().Int("row", i).Int("col", j).Msg("squares not equal")
				return false
			}
		}
	}
	return true
}
