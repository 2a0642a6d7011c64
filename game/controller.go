package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tashbetz/board"
)

var (
	ErrNotYourTurn   = errors.New("it is not your turn")
	ErrNoGame        = errors.New("no game loaded")
	ErrWrongGame     = errors.New("snapshot belongs to another game")
	ErrStaleSnapshot = errors.New("snapshot is older than the applied state")
)

// A StateWriter persists the next version of a game. It returns the state
// as written, with the revision the store assigned.
type StateWriter interface {
	MergeWrite(ctx context.Context, st *State) (*State, error)
}

// TurnResult describes a committed turn.
type TurnResult struct {
	Words []string
	Score int
	Drawn []rune
	State *State
}

// The Controller is the single entry point for changing a Session. It is
// not safe for concurrent use; callers that receive snapshots on another
// goroutine must serialize them with user actions.
type Controller struct {
	session *Session
	writer  StateWriter
}

func NewController(s *Session, w StateWriter) *Controller {
	return &Controller{session: s, writer: w}
}

func (c *Controller) Session() *Session {
	return c.session
}

// CanEdit reports whether the local player may touch the board right now.
func (c *Controller) CanEdit() bool {
	st := c.session.state
	return st != nil && st.Status == StatusActive &&
		st.CurrentTurn != "" && st.CurrentTurn == c.session.playerID
}

// Place puts a letter from the rack on the board as a tentative tile.
func (c *Controller) Place(row, col int, letter rune) error {
	if !c.CanEdit() {
		return ErrNotYourTurn
	}
	s := c.session
	if !s.rack.Has(letter) {
		return ErrLetterNotOnRack
	}
	if err := s.board.PlaceTentative(row, col, letter); err != nil {
		return err
	}
	return s.rack.Take(letter)
}

// Retract takes a tentative tile off the board and puts it back on the
// rack.
func (c *Controller) Retract(row, col int) error {
	if !c.CanEdit() {
		return ErrNotYourTurn
	}
	letter, err := c.session.board.RetractTentative(row, col)
	if err != nil {
		return err
	}
	c.session.rack.Add(letter)
	return nil
}

// Move relocates a tentative tile.
func (c *Controller) Move(fromRow, fromCol, toRow, toCol int) error {
	if !c.CanEdit() {
		return ErrNotYourTurn
	}
	return c.session.board.MoveTentative(fromRow, fromCol, toRow, toCol)
}

// Revert throws away every tentative tile and restores the rack to its
// last authoritative contents.
func (c *Controller) Revert() error {
	s := c.session
	if s.state == nil {
		return ErrNoGame
	}
	rack, err := RackFromStrings(s.state.LettersFor(s.playerID))
	if err != nil {
		return err
	}
	discarded := s.board.DiscardTentative()
	s.rack = rack
	log.Debug().Int("discarded", len(discarded)).Msg("reverted-turn")
	return nil
}

// Preview evaluates the turn in progress without committing it.
func (c *Controller) Preview() Evaluation {
	s := c.session
	return Evaluate(NewWords(s.board, s.snapshot), s.lexicon)
}

// CommitTurn scores the tentative tiles and, if every new word is valid,
// writes the next version of the game. Nothing changes locally unless the
// write succeeds.
func (c *Controller) CommitTurn(ctx context.Context) (*TurnResult, error) {
	if !c.CanEdit() {
		return nil, ErrNotYourTurn
	}
	s := c.session
	words := NewWords(s.board, s.snapshot)
	eval := Evaluate(words, s.lexicon)
	if !eval.Valid() {
		log.Info().Strs("invalid", eval.InvalidWords).Msg("rejected-turn")
		return nil, &InvalidWordsError{Words: eval.InvalidWords}
	}

	rack := s.rack.Copy()
	drawn := rack.Refill(s.bag)

	next := s.state.Clone()
	next.Board = s.board.ToSparseMap()
	next.setLettersFor(s.playerID, rack.Strings())
	next.setScoreFor(s.playerID, next.ScoreFor(s.playerID)+eval.TotalScore)
	next.CurrentTurn = next.Opponent(s.playerID)

	written, err := c.writer.MergeWrite(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("writing turn: %w", err)
	}
	fp, err := Fingerprint(written)
	if err != nil {
		return nil, err
	}

	placed := s.board.CommitTentative()
	s.snapshot = s.board.Copy()
	s.rack = rack
	s.state = written.Clone()
	s.fingerprint = fp

	log.Info().Str("game", written.ID).Int64("rev", written.Revision).
		Int("placed", placed).Strs("words", eval.ValidWords).
		Int("score", eval.TotalScore).Msg("committed-turn")

	return &TurnResult{
		Words: eval.ValidWords,
		Score: eval.TotalScore,
		Drawn: drawn,
		State: written.Clone(),
	}, nil
}

// ApplySnapshot adopts a document received from the store. Older
// revisions are refused with ErrStaleSnapshot, and a repeat of the applied
// revision with identical content is ignored. Anything else replaces the
// session state.
func (c *Controller) ApplySnapshot(st *State) error {
	if st == nil {
		return ErrNoGame
	}
	s := c.session
	if s.state != nil {
		if st.ID != s.state.ID {
			return ErrWrongGame
		}
		if st.Revision < s.state.Revision {
			log.Debug().Int64("have", s.state.Revision).Int64("got", st.Revision).
				Msg("stale-snapshot")
			return ErrStaleSnapshot
		}
	}
	fp, err := Fingerprint(st)
	if err != nil {
		return err
	}
	if s.state != nil && st.Revision == s.state.Revision && fp == s.fingerprint {
		return nil
	}

	// Parse everything before touching the session.
	nb := board.MakeBoard(s.board.Dim())
	if err := nb.LoadFromSparseMap(st.Board); err != nil {
		return err
	}
	rack, err := RackFromStrings(st.LettersFor(s.playerID))
	if err != nil {
		return err
	}

	hadTurn := c.CanEdit()
	pending := s.board.TentativePositions()

	s.state = st.Clone()
	s.fingerprint = fp
	s.board = nb
	s.snapshot = nb.Copy()
	s.rack = rack

	switch nowTurn := c.CanEdit(); {
	case !hadTurn && nowTurn:
		log.Info().Str("game", st.ID).Int64("rev", st.Revision).Msg("turn-granted")
	case hadTurn && !nowTurn:
		log.Info().Str("game", st.ID).Int("discarded", len(pending)).Msg("turn-lost")
	case hadTurn && nowTurn:
		// Still our turn: keep whatever tentative tiles still fit.
		for _, p := range pending {
			if !s.rack.Has(p.Letter) {
				continue
			}
			if s.board.PlaceTentative(p.Row, p.Col, p.Letter) == nil {
				_ = s.rack.Take(p.Letter)
			}
		}
	}
	log.Debug().Str("game", st.ID).Int64("rev", st.Revision).Msg("applied-snapshot")
	return nil
}
