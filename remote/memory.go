package remote

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tashbetz/game"
)

// MemoryStore is a DocumentStore kept in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*game.State
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]*game.State),
		now:   time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, st *game.State) (*game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[st.ID]; ok {
		return nil, ErrExists
	}
	stored := st.Clone()
	stored.Revision = 1
	stored.UpdatedAt = s.now().UTC()
	s.games[st.ID] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*game.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (s *MemoryStore) MergeWrite(ctx context.Context, st *game.State) (*game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.games[st.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if st.Revision != cur.Revision {
		return nil, ErrConflict
	}
	stored := st.Clone()
	stored.Revision = cur.Revision + 1
	stored.UpdatedAt = s.now().UTC()
	s.games[st.ID] = stored
	return stored.Clone(), nil
}

// MemoryFeed is a ChangeFeed for subscribers in the same process. Each
// subscriber has its own queue and goroutine, so a slow subscriber does
// not hold up the publisher.
type MemoryFeed struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]*memorySubscription
}

type memorySubscription struct {
	feed   *MemoryFeed
	gameID string
	id     int
	ch     chan *game.State
	once   sync.Once
}

const memoryFeedBuffer = 64

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string]map[int]*memorySubscription)}
}

func (f *MemoryFeed) Publish(ctx context.Context, st *game.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs[st.ID] {
		select {
		case sub.ch <- st.Clone():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, gameID string, fn func(*game.State)) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	sub := &memorySubscription{
		feed:   f,
		gameID: gameID,
		id:     f.nextID,
		ch:     make(chan *game.State, memoryFeedBuffer),
	}
	if f.subs[gameID] == nil {
		f.subs[gameID] = make(map[int]*memorySubscription)
	}
	f.subs[gameID][sub.id] = sub
	go func() {
		for st := range sub.ch {
			fn(st)
		}
		log.Debug().Str("game", gameID).Int("sub", sub.id).Msg("subscription-closed")
	}()
	return sub, nil
}

func (s *memorySubscription) Unsubscribe() error {
	s.once.Do(func() {
		s.feed.mu.Lock()
		defer s.feed.mu.Unlock()
		delete(s.feed.subs[s.gameID], s.id)
		close(s.ch)
	})
	return nil
}
