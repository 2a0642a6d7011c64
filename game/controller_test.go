package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/tashbetz/board"
	"github.com/domino14/tashbetz/lexicon"
	"github.com/domino14/tashbetz/tilemapping"
)

type fakeWriter struct {
	writes []*State
	err    error
}

func (w *fakeWriter) MergeWrite(ctx context.Context, st *State) (*State, error) {
	if w.err != nil {
		return nil, w.err
	}
	written := st.Clone()
	written.Revision++
	w.writes = append(w.writes, written.Clone())
	return written, nil
}

// onlyTavBag always draws ת.
func onlyTavBag(t *testing.T) *tilemapping.Bag {
	ld, err := tilemapping.NewLetterDistribution("tav", map[rune]float64{'ת': 1})
	if err != nil {
		t.Fatal(err)
	}
	return tilemapping.NewBag(ld, rand.NewPCG(1, 2))
}

func activeState() *State {
	return &State{
		ID:             "g1",
		Player1:        "alice",
		Player2:        "bob",
		Board:          map[string]string{},
		Player1Letters: []string{"ש", "ל", "ו", "מ", "א", "ב", "ג", "ד"},
		Player2Letters: []string{"ה", "ו", "ז", "ח", "ט", "י", "כ", "ל"},
		Status:         StatusActive,
		CurrentTurn:    "alice",
		Revision:       1,
	}
}

func newTestController(t *testing.T, player string, words ...string) (*Controller, *fakeWriter) {
	var lex lexicon.Lexicon = lexicon.AcceptAll{}
	if len(words) > 0 {
		lex = lexicon.NewWordSet("test", words)
	}
	w := &fakeWriter{}
	c := NewController(NewSession(player, lex, onlyTavBag(t)), w)
	return c, w
}

func placeShalom(is *is.I, c *Controller) {
	is.NoErr(c.Place(2, 6, 'ש'))
	is.NoErr(c.Place(2, 5, 'ל'))
	is.NoErr(c.Place(2, 4, 'ו'))
	is.NoErr(c.Place(2, 3, 'מ'))
}

func TestCanEdit(t *testing.T) {
	is := is.New(t)
	alice, _ := newTestController(t, "alice")
	bob, _ := newTestController(t, "bob")
	is.True(!alice.CanEdit())

	st := activeState()
	is.NoErr(alice.ApplySnapshot(st))
	is.NoErr(bob.ApplySnapshot(st))
	is.True(alice.CanEdit())
	is.True(!bob.CanEdit())

	waiting := activeState()
	waiting.Status = StatusWaiting
	waiting.Revision = 2
	is.NoErr(alice.ApplySnapshot(waiting))
	is.True(!alice.CanEdit())
}

func TestEditWithoutPermission(t *testing.T) {
	is := is.New(t)
	bob, w := newTestController(t, "bob")
	is.NoErr(bob.ApplySnapshot(activeState()))

	is.True(errors.Is(bob.Place(0, 0, 'ה'), ErrNotYourTurn))
	is.True(errors.Is(bob.Retract(0, 0), ErrNotYourTurn))
	is.True(errors.Is(bob.Move(0, 0, 1, 1), ErrNotYourTurn))
	_, err := bob.CommitTurn(context.Background())
	is.True(errors.Is(err, ErrNotYourTurn))
	is.True(bob.Session().Board().IsEmpty())
	is.Equal(len(w.writes), 0)
}

func TestPlaceTakesFromRack(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController(t, "alice")
	is.NoErr(c.ApplySnapshot(activeState()))

	is.NoErr(c.Place(0, 0, 'ש'))
	is.Equal(c.Session().Rack().String(), "לומאבגד")
	is.True(errors.Is(c.Place(0, 1, 'ש'), ErrLetterNotOnRack))
	is.True(errors.Is(c.Place(0, 0, 'ל'), board.ErrSquareOccupied))
	// a failed placement keeps the letter
	is.Equal(c.Session().Rack().Len(), 7)

	is.NoErr(c.Move(0, 0, 5, 5))
	is.Equal(c.Session().Board().GetLetter(5, 5), 'ש')

	is.NoErr(c.Retract(5, 5))
	is.Equal(c.Session().Rack().String(), "לומאבגדש")
	is.True(c.Session().Board().IsEmpty())
}

func TestCommitTurn(t *testing.T) {
	is := is.New(t)
	c, w := newTestController(t, "alice", "שלום")
	is.NoErr(c.ApplySnapshot(activeState()))
	placeShalom(is, c)

	is.Equal(c.Preview().TotalScore, 6)
	res, err := c.CommitTurn(context.Background())
	is.NoErr(err)
	is.Equal(res.Words, []string{"שלום"})
	is.Equal(res.Score, 6)
	is.Equal(string(res.Drawn), "תתתת")

	is.Equal(len(w.writes), 1)
	written := w.writes[0]
	is.Equal(written.Revision, int64(2))
	is.Equal(written.CurrentTurn, "bob")
	is.Equal(written.Player1Score, 6)
	is.Equal(written.Player2Score, 0)
	is.Equal(written.Player1Letters, []string{"א", "ב", "ג", "ד", "ת", "ת", "ת", "ת"})
	is.Equal(written.Player2Letters, activeState().Player2Letters)
	is.Equal(written.Board, map[string]string{"2,6": "ש", "2,5": "ל", "2,4": "ו", "2,3": "מ"})

	s := c.Session()
	is.True(!c.CanEdit())
	is.Equal(s.State().Revision, int64(2))
	is.Equal(len(s.Board().TentativePositions()), 0)
	is.True(s.Board().GetSquare(2, 6).IsCommitted())
	is.True(s.Snapshot().Equals(s.Board()))
	is.Equal(s.Rack().Len(), RackTileLimit)
}

func TestCommitInvalidChangesNothing(t *testing.T) {
	is := is.New(t)
	c, w := newTestController(t, "alice", "שלום")
	is.NoErr(c.ApplySnapshot(activeState()))
	// שלום plus a crossing אב that is not a word
	placeShalom(is, c)
	is.NoErr(c.Place(3, 6, 'א'))

	_, err := c.CommitTurn(context.Background())
	var iwe *InvalidWordsError
	is.True(errors.As(err, &iwe))
	is.Equal(iwe.Words, []string{"שא"})
	is.Equal(len(w.writes), 0)

	s := c.Session()
	is.True(c.CanEdit())
	is.Equal(s.State().Revision, int64(1))
	is.Equal(len(s.Board().TentativePositions()), 5)
	is.Equal(s.State().Player1Score, 0)
	is.True(s.Snapshot().IsEmpty())
}

func TestCommitWriteFailureChangesNothing(t *testing.T) {
	is := is.New(t)
	c, w := newTestController(t, "alice")
	w.err = errors.New("store unavailable")
	is.NoErr(c.ApplySnapshot(activeState()))
	placeShalom(is, c)

	_, err := c.CommitTurn(context.Background())
	is.True(errors.Is(err, w.err))
	is.True(c.CanEdit())
	is.Equal(len(c.Session().Board().TentativePositions()), 4)
	is.Equal(c.Session().Rack().Len(), 4)
	is.Equal(c.Session().State().Revision, int64(1))
}

func TestCommitWithoutTiles(t *testing.T) {
	is := is.New(t)
	c, w := newTestController(t, "alice", "שלום")
	is.NoErr(c.ApplySnapshot(activeState()))
	res, err := c.CommitTurn(context.Background())
	is.NoErr(err)
	is.Equal(res.Score, 0)
	is.Equal(len(res.Drawn), 0)
	is.Equal(w.writes[0].CurrentTurn, "bob")
}

func TestRevertRestoresRack(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController(t, "alice")
	is.NoErr(c.ApplySnapshot(activeState()))
	placeShalom(is, c)
	is.NoErr(c.Revert())
	is.True(c.Session().Board().IsEmpty())
	is.Equal(c.Session().Rack().Strings(), activeState().Player1Letters)
}

func TestApplySnapshotIdempotent(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController(t, "alice")
	st := activeState()
	is.NoErr(c.ApplySnapshot(st))
	is.NoErr(c.Place(0, 0, 'ש'))

	// the same document again leaves the turn in progress alone
	is.NoErr(c.ApplySnapshot(st.Clone()))
	is.Equal(c.Session().Board().GetLetter(0, 0), 'ש')
	is.Equal(c.Session().Rack().Len(), 7)
	is.True(c.CanEdit())

	// and twice in a row for the opponent is the same as once
	bob, _ := newTestController(t, "bob")
	is.NoErr(bob.ApplySnapshot(st))
	before := bob.Session().Board().Copy()
	is.NoErr(bob.ApplySnapshot(st))
	is.True(bob.Session().Board().Equals(before))
	is.Equal(bob.Session().Rack().Strings(), st.Player2Letters)
	is.Equal(bob.Session().State().CurrentTurn, "alice")
}

func TestApplyStaleSnapshot(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController(t, "bob")
	st := activeState()
	is.NoErr(c.ApplySnapshot(st))

	next := st.Clone()
	next.Revision = 2
	next.Board = map[string]string{"0,9": "א", "0,8": "ב"}
	next.CurrentTurn = "bob"
	is.NoErr(c.ApplySnapshot(next))

	is.True(errors.Is(c.ApplySnapshot(st), ErrStaleSnapshot))
	is.Equal(c.Session().State().Revision, int64(2))
	is.Equal(c.Session().Board().GetLetter(0, 9), 'א')
	is.True(c.CanEdit())
}

func TestApplyWrongGame(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController(t, "alice")
	is.NoErr(c.ApplySnapshot(activeState()))
	other := activeState()
	other.ID = "g2"
	other.Revision = 5
	is.True(errors.Is(c.ApplySnapshot(other), ErrWrongGame))
	is.Equal(c.Session().GameID(), "g1")
}

func TestApplyMalformedSnapshot(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController(t, "alice")
	is.NoErr(c.ApplySnapshot(activeState()))
	bad := activeState()
	bad.Revision = 2
	bad.Board = map[string]string{"12,0": "א"}
	is.True(c.ApplySnapshot(bad) != nil)
	is.Equal(c.Session().State().Revision, int64(1))
}

func TestLosingTurnDiscardsTentative(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController(t, "alice")
	st := activeState()
	is.NoErr(c.ApplySnapshot(st))
	placeShalom(is, c)

	next := st.Clone()
	next.Revision = 2
	next.CurrentTurn = "bob"
	is.NoErr(c.ApplySnapshot(next))

	is.True(!c.CanEdit())
	is.True(c.Session().Board().IsEmpty())
	is.Equal(c.Session().Rack().Strings(), st.Player1Letters)
}

func TestKeepTurnKeepsFittingTiles(t *testing.T) {
	is := is.New(t)
	c, _ := newTestController(t, "alice")
	st := activeState()
	is.NoErr(c.ApplySnapshot(st))
	is.NoErr(c.Place(0, 0, 'ש'))
	is.NoErr(c.Place(5, 5, 'ל'))

	// a new revision that is still alice's turn but fills 0,0
	next := st.Clone()
	next.Revision = 2
	next.Board = map[string]string{"0,0": "ת"}
	is.NoErr(c.ApplySnapshot(next))

	b := c.Session().Board()
	is.True(b.GetSquare(0, 0).IsCommitted())
	is.True(b.GetSquare(5, 5).IsTentative())
	is.Equal(c.Session().Rack().String(), "שומאבגד")
	is.True(c.Session().Snapshot().GetSquare(5, 5).IsEmpty())
}

func TestTurnGrantedCapturesSnapshot(t *testing.T) {
	is := is.New(t)
	alice, aw := newTestController(t, "alice", "שלום", "שלומי")
	bob, _ := newTestController(t, "bob", "שלום", "שלומי")

	st := activeState()
	is.NoErr(alice.ApplySnapshot(st))
	is.NoErr(bob.ApplySnapshot(st))
	placeShalom(is, alice)
	_, err := alice.CommitTurn(context.Background())
	is.NoErr(err)

	is.NoErr(bob.ApplySnapshot(aw.writes[0]))
	is.True(bob.CanEdit())
	is.Equal(bob.Session().Snapshot().TilesPlayed(), 4)

	// extending שלום to שלומי scores only the longer word
	is.NoErr(bob.Place(2, 2, 'י'))
	eval := bob.Preview()
	is.Equal(eval.ValidWords, []string{"שלומי"})
	is.Equal(eval.TotalScore, 8)
}
