// Package game holds the turn engine: the authoritative game document, the
// racks, the turn diff and scoring, and the controller that decides who may
// edit the board and how a finished turn is committed.
package game

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/domino14/tashbetz/tilemapping"
)

type Status string

const (
	// StatusWaiting means the second player has not joined. Nobody edits.
	StatusWaiting Status = "waiting"
	// StatusActive means exactly one player, CurrentTurn, holds the board.
	StatusActive Status = "active"
	// StatusFinished is terminal.
	StatusFinished Status = "finished"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusActive, StatusFinished:
		return true
	}
	return false
}

const RackTileLimit = 8

var (
	ErrNotWaiting    = errors.New("game is not waiting for a player")
	ErrAlreadyInGame = errors.New("player is already in this game")
	ErrNoPlayerID    = errors.New("player id is empty")
)

// State is the shared game document. The remote store owns it; clients
// keep a copy that is replaced whole whenever a new version arrives.
type State struct {
	ID             string
	Player1        string
	Player2        string
	Board          map[string]string
	Player1Letters []string
	Player2Letters []string
	Player1Score   int
	Player2Score   int
	CurrentTurn    string
	Status         Status
	// Revision and UpdatedAt are assigned by the store on every write.
	Revision  int64
	UpdatedAt time.Time
}

// NewState creates a game that is waiting for an opponent.
func NewState(player1 string) *State {
	return &State{
		ID:      uuid.NewString(),
		Player1: player1,
		Board:   map[string]string{},
		Status:  StatusWaiting,
	}
}

// Join seats player2, deals both racks, and gives the first turn to
// player1. The input is not modified.
func Join(st *State, player2 string, bag *tilemapping.Bag) (*State, error) {
	if st.Status != StatusWaiting {
		return nil, ErrNotWaiting
	}
	if player2 == "" {
		return nil, ErrNoPlayerID
	}
	if player2 == st.Player1 {
		return nil, ErrAlreadyInGame
	}
	next := st.Clone()
	next.Player2 = player2
	next.Player1Letters = runesToStrings(bag.Draw(RackTileLimit))
	next.Player2Letters = runesToStrings(bag.Draw(RackTileLimit))
	next.Status = StatusActive
	next.CurrentTurn = st.Player1
	return next, nil
}

// Clone returns a deep copy.
func (st *State) Clone() *State {
	c := *st
	c.Board = maps.Clone(st.Board)
	if c.Board == nil {
		c.Board = map[string]string{}
	}
	c.Player1Letters = slices.Clone(st.Player1Letters)
	c.Player2Letters = slices.Clone(st.Player2Letters)
	return &c
}

// PlayerIndex is 1 or 2 for a seated player and 0 for anyone else.
func (st *State) PlayerIndex(playerID string) int {
	switch {
	case playerID == "":
		return 0
	case playerID == st.Player1:
		return 1
	case playerID == st.Player2:
		return 2
	}
	return 0
}

// Opponent returns the other seated player's ID.
func (st *State) Opponent(playerID string) string {
	switch st.PlayerIndex(playerID) {
	case 1:
		return st.Player2
	case 2:
		return st.Player1
	}
	return ""
}

func (st *State) LettersFor(playerID string) []string {
	switch st.PlayerIndex(playerID) {
	case 1:
		return st.Player1Letters
	case 2:
		return st.Player2Letters
	}
	return nil
}

func (st *State) ScoreFor(playerID string) int {
	switch st.PlayerIndex(playerID) {
	case 1:
		return st.Player1Score
	case 2:
		return st.Player2Score
	}
	return 0
}

func (st *State) setLettersFor(playerID string, letters []string) {
	switch st.PlayerIndex(playerID) {
	case 1:
		st.Player1Letters = letters
	case 2:
		st.Player2Letters = letters
	}
}

func (st *State) setScoreFor(playerID string, score int) {
	switch st.PlayerIndex(playerID) {
	case 1:
		st.Player1Score = score
	case 2:
		st.Player2Score = score
	}
}

func (st *State) String() string {
	return fmt.Sprintf("game %v rev %d (%v) turn=%v %v:%d %v:%d tiles=%d",
		st.ID, st.Revision, st.Status, st.CurrentTurn,
		st.Player1, st.Player1Score, st.Player2, st.Player2Score, len(st.Board))
}

func runesToStrings(rs []rune) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
