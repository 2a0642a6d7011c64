package remote

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tashbetz/game"
)

const DefaultWriteAttempts = 3

// A Bridge ties one Controller to a store and a feed. It writes committed
// turns to the store and announces them on the feed, and it applies every
// version announced by the feed to the controller. Inbound versions and
// the caller's own actions (through Do) are serialized by one lock, so the
// controller is only ever used by one goroutine at a time.
type Bridge struct {
	store    DocumentStore
	feed     ChangeFeed
	attempts uint
	delay    time.Duration

	mu       sync.Mutex
	ctrl     *game.Controller
	gameID   string
	sub      Subscription
	onUpdate func(*game.State)
}

func NewBridge(store DocumentStore, feed ChangeFeed, attempts uint) *Bridge {
	if attempts == 0 {
		attempts = DefaultWriteAttempts
	}
	return &Bridge{
		store:    store,
		feed:     feed,
		attempts: attempts,
		delay:    100 * time.Millisecond,
	}
}

// OnUpdate registers fn to be called, under the bridge lock, after a
// version from the feed has been applied.
func (b *Bridge) OnUpdate(fn func(*game.State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onUpdate = fn
}

func permanent(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrExists) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (b *Bridge) retry(ctx context.Context, what string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(b.attempts),
		retry.Delay(b.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return !permanent(err) }),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Str("op", what).Msg("remote-call-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// Create stores a new game.
func (b *Bridge) Create(ctx context.Context, st *game.State) (*game.State, error) {
	var created *game.State
	err := b.retry(ctx, "create", func() error {
		var err error
		created, err = b.store.Create(ctx, st)
		return err
	})
	return created, err
}

func (b *Bridge) Get(ctx context.Context, id string) (*game.State, error) {
	var st *game.State
	err := b.retry(ctx, "get", func() error {
		var err error
		st, err = b.store.Get(ctx, id)
		return err
	})
	return st, err
}

// MergeWrite writes st to the store and publishes the stored version. A
// failed publish is logged but does not fail the write: the store is
// authoritative and the other side picks the change up on its next load.
func (b *Bridge) MergeWrite(ctx context.Context, st *game.State) (*game.State, error) {
	var written *game.State
	err := b.retry(ctx, "write", func() error {
		var err error
		written, err = b.store.MergeWrite(ctx, st)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = b.retry(ctx, "publish", func() error {
		return b.feed.Publish(ctx, written)
	})
	if err != nil {
		log.Err(err).Str("game", written.ID).Int64("rev", written.Revision).Msg("publish-failed")
	}
	return written, nil
}

// Attach subscribes to gameID, then loads the current version and applies
// it to ctrl. Any previous attachment is dropped.
func (b *Bridge) Attach(ctx context.Context, ctrl *game.Controller, gameID string) error {
	b.Detach()

	b.mu.Lock()
	b.ctrl = ctrl
	b.gameID = gameID
	b.mu.Unlock()

	sub, err := b.feed.Subscribe(ctx, gameID, b.receive)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.sub = sub
	b.mu.Unlock()

	st, err := b.Get(ctx, gameID)
	if err != nil {
		b.Detach()
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	// The feed may already have delivered something newer.
	if err := ctrl.ApplySnapshot(st); err != nil && !errors.Is(err, game.ErrStaleSnapshot) {
		return err
	}
	log.Info().Str("game", gameID).Int64("rev", st.Revision).Msg("attached")
	return nil
}

// Detach stops listening for changes.
func (b *Bridge) Detach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			log.Err(err).Msg("unsubscribe-failed")
		}
		b.sub = nil
	}
	b.ctrl = nil
	b.gameID = ""
}

func (b *Bridge) receive(st *game.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// a previous subscription may still be draining
	if b.ctrl == nil || st.ID != b.gameID {
		return
	}
	prev := b.ctrl.Session().State()
	err := b.ctrl.ApplySnapshot(st)
	switch {
	case errors.Is(err, game.ErrStaleSnapshot):
		return
	case err != nil:
		log.Err(err).Str("game", st.ID).Int64("rev", st.Revision).Msg("apply-snapshot-failed")
		return
	}
	// our own writes come back through the feed too
	if prev != nil && prev.Revision == st.Revision {
		return
	}
	if b.onUpdate != nil {
		b.onUpdate(st)
	}
}

// Do runs fn with the attached controller while holding the bridge lock.
func (b *Bridge) Do(fn func(*game.Controller) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctrl == nil {
		return game.ErrNoGame
	}
	return fn(b.ctrl)
}
