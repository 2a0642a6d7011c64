package game

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestNewStateAndJoin(t *testing.T) {
	is := is.New(t)
	st := NewState("alice")
	is.True(st.ID != "")
	is.Equal(st.Status, StatusWaiting)
	is.Equal(st.CurrentTurn, "")

	_, err := Join(st, "alice", onlyTavBag(t))
	is.True(errors.Is(err, ErrAlreadyInGame))
	// nobody could ever take the second turn
	_, err = Join(st, "", onlyTavBag(t))
	is.True(errors.Is(err, ErrNoPlayerID))

	joined, err := Join(st, "bob", onlyTavBag(t))
	is.NoErr(err)
	is.Equal(joined.Status, StatusActive)
	is.Equal(joined.CurrentTurn, "alice")
	is.Equal(len(joined.Player1Letters), RackTileLimit)
	is.Equal(len(joined.Player2Letters), RackTileLimit)
	// the waiting document is untouched
	is.Equal(st.Player2, "")
	is.Equal(st.Status, StatusWaiting)

	_, err = Join(joined, "carol", onlyTavBag(t))
	is.True(errors.Is(err, ErrNotWaiting))
}

func TestCloneIsDeep(t *testing.T) {
	is := is.New(t)
	st := activeState()
	st.Board["0,0"] = "א"
	c := st.Clone()
	c.Board["0,1"] = "ב"
	c.Player1Letters[0] = "ת"
	is.Equal(len(st.Board), 1)
	is.Equal(st.Player1Letters[0], "ש")
}

func TestPlayerAccessors(t *testing.T) {
	is := is.New(t)
	st := activeState()
	st.Player2Score = 12
	is.Equal(st.PlayerIndex("alice"), 1)
	is.Equal(st.PlayerIndex("bob"), 2)
	is.Equal(st.PlayerIndex("mallory"), 0)
	is.Equal(st.Opponent("alice"), "bob")
	is.Equal(st.Opponent("bob"), "alice")
	is.Equal(st.Opponent("mallory"), "")
	is.Equal(st.ScoreFor("bob"), 12)
	is.Equal(st.LettersFor("alice"), st.Player1Letters)
	is.Equal(st.LettersFor("mallory"), []string(nil))

	// an open seat never matches an empty ID
	waiting := NewState("alice")
	is.Equal(waiting.PlayerIndex(""), 0)
}
