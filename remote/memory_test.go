package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/require"

	"github.com/domino14/tashbetz/game"
)

func TestMemoryStore(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "nope")
	is.True(errors.Is(err, ErrNotFound))

	st := game.NewState("alice")
	created, err := s.Create(ctx, st)
	is.NoErr(err)
	is.Equal(created.Revision, int64(1))
	is.True(!created.UpdatedAt.IsZero())
	_, err = s.Create(ctx, st)
	is.True(errors.Is(err, ErrExists))

	next := created.Clone()
	next.Player2 = "bob"
	written, err := s.MergeWrite(ctx, next)
	is.NoErr(err)
	is.Equal(written.Revision, int64(2))

	// a write based on revision 1 is now out of date
	_, err = s.MergeWrite(ctx, next)
	is.True(errors.Is(err, ErrConflict))

	got, err := s.Get(ctx, st.ID)
	is.NoErr(err)
	is.Equal(got.Player2, "bob")
	is.Equal(got.Revision, int64(2))

	missing := game.NewState("carol")
	_, err = s.MergeWrite(ctx, missing)
	is.True(errors.Is(err, ErrNotFound))
}

func TestMemoryFeedDeliversInOrder(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	f := NewMemoryFeed()

	got := make(chan int64, 10)
	sub, err := f.Subscribe(ctx, "g1", func(st *game.State) {
		got <- st.Revision
	})
	is.NoErr(err)
	other, err := f.Subscribe(ctx, "g2", func(st *game.State) {
		t.Errorf("unexpected delivery for %v", st.ID)
	})
	is.NoErr(err)
	defer other.Unsubscribe()

	for rev := int64(1); rev <= 5; rev++ {
		is.NoErr(f.Publish(ctx, &game.State{ID: "g1", Revision: rev, Status: game.StatusActive}))
	}
	for rev := int64(1); rev <= 5; rev++ {
		select {
		case r := <-got:
			is.Equal(r, rev)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}

	is.NoErr(sub.Unsubscribe())
	is.NoErr(sub.Unsubscribe())
	is.NoErr(f.Publish(ctx, &game.State{ID: "g1", Revision: 6}))
	require.Never(t, func() bool { return len(got) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}
