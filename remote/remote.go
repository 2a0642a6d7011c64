// Package remote connects a game Controller to the shared document store
// and the change feed that announces new versions of a game.
package remote

import (
	"context"
	"errors"

	"github.com/domino14/tashbetz/game"
)

var (
	ErrNotFound = errors.New("game not found")
	ErrExists   = errors.New("game already exists")
	// ErrConflict is returned when a write was based on a revision that is
	// no longer the latest.
	ErrConflict = errors.New("game was changed by another writer")
)

// A DocumentStore keeps the authoritative copy of every game. Create and
// MergeWrite assign the revision and the update time and return the state
// as stored.
type DocumentStore interface {
	Create(ctx context.Context, st *game.State) (*game.State, error)
	Get(ctx context.Context, id string) (*game.State, error)
	MergeWrite(ctx context.Context, st *game.State) (*game.State, error)
}

type Subscription interface {
	Unsubscribe() error
}

// A ChangeFeed delivers every published version of a game to its
// subscribers, in publish order, on a goroutine of the feed's choosing.
type ChangeFeed interface {
	Publish(ctx context.Context, st *game.State) error
	Subscribe(ctx context.Context, gameID string, fn func(*game.State)) (Subscription, error)
}
