package game

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestDocumentRoundTrip(t *testing.T) {
	is := is.New(t)
	st := activeState()
	st.Board = map[string]string{"2,6": "ש", "2,5": "ל"}
	st.Player1Score = 6
	st.Revision = 42
	st.UpdatedAt = time.Date(2026, 3, 1, 12, 0, 0, 5, time.UTC)

	bts, err := MarshalState(st)
	is.NoErr(err)
	back, err := UnmarshalState(bts)
	is.NoErr(err)
	is.True(back.UpdatedAt.Equal(st.UpdatedAt))
	back.UpdatedAt = st.UpdatedAt
	is.Equal(back, st)
}

func TestDocumentMissingFields(t *testing.T) {
	is := is.New(t)
	doc, err := structpb.NewStruct(map[string]any{
		"id":      "g1",
		"player1": "alice",
		"status":  "waiting",
	})
	is.NoErr(err)
	st, err := StateFromDocument(doc)
	is.NoErr(err)
	is.Equal(st.Player2, "")
	is.Equal(len(st.Board), 0)
	is.Equal(len(st.Player1Letters), 0)
	is.Equal(st.Revision, int64(0))
}

func TestDocumentRejectsBadFields(t *testing.T) {
	for name, fields := range map[string]map[string]any{
		"status":  {"status": "paused"},
		"score":   {"status": "active", "player1Score": "six"},
		"letters": {"status": "active", "player1Letters": "שלום"},
		"square":  {"status": "active", "board": map[string]any{"0,0": 5}},
		"board":   {"status": "active", "board": []any{"א"}},
		"time":    {"status": "active", "updatedAt": "yesterday"},
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			doc, err := structpb.NewStruct(fields)
			is.NoErr(err)
			_, err = StateFromDocument(doc)
			is.True(errors.Is(err, ErrBadDocument))
		})
	}
}

func TestFingerprint(t *testing.T) {
	is := is.New(t)
	st := activeState()
	st.Board = map[string]string{"0,0": "א", "0,1": "ב", "5,5": "ג"}
	a, err := Fingerprint(st)
	is.NoErr(err)
	b, err := Fingerprint(st.Clone())
	is.NoErr(err)
	is.Equal(a, b)

	changed := st.Clone()
	changed.Board["5,6"] = "ד"
	c, err := Fingerprint(changed)
	is.NoErr(err)
	is.True(a != c)
}
