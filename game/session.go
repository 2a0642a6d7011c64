package game

import (
	"github.com/domino14/tashbetz/board"
	"github.com/domino14/tashbetz/lexicon"
	"github.com/domino14/tashbetz/tilemapping"
)

// A Session is one player's view of one game. It holds the last
// authoritative document, the board with any tentative tiles laid over it,
// the board as it stood at the start of the turn, and the working rack.
// Only the Controller changes it.
type Session struct {
	playerID string
	lexicon  lexicon.Lexicon
	bag      *tilemapping.Bag

	state       *State
	fingerprint uint64

	board    *board.GameBoard
	snapshot *board.GameBoard
	rack     *Rack
}

func NewSession(playerID string, lex lexicon.Lexicon, bag *tilemapping.Bag) *Session {
	return &Session{
		playerID: playerID,
		lexicon:  lex,
		bag:      bag,
		board:    board.NewBoard(),
		snapshot: board.NewBoard(),
		rack:     NewRack(nil),
	}
}

func (s *Session) PlayerID() string {
	return s.playerID
}

// State returns a copy of the last applied document, or nil if none has
// been applied yet.
func (s *Session) State() *State {
	if s.state == nil {
		return nil
	}
	return s.state.Clone()
}

func (s *Session) GameID() string {
	if s.state == nil {
		return ""
	}
	return s.state.ID
}

// Board is the live board. Callers must not modify it.
func (s *Session) Board() *board.GameBoard {
	return s.board
}

// Snapshot is the board as it was when the turn started.
func (s *Session) Snapshot() *board.GameBoard {
	return s.snapshot
}

func (s *Session) Rack() *Rack {
	return s.rack.Copy()
}
