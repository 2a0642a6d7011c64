// Package natsfeed announces new versions of a game over NATS.
package natsfeed

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tashbetz/game"
	"github.com/domino14/tashbetz/remote"
)

const SubjectPrefix = "tashbetz.game."

func Subject(gameID string) string {
	return SubjectPrefix + gameID
}

// Feed is a remote.ChangeFeed over a NATS connection. Messages carry the
// binary game document.
type Feed struct {
	nc *nats.Conn
}

// Connect dials the NATS server, retrying with backoff.
func Connect(ctx context.Context, url string, attempts uint) (*Feed, error) {
	var nc *nats.Conn
	err := retry.Do(
		func() error {
			var err error
			nc, err = nats.Connect(url, nats.Name("tashbetz"))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Str("url", url).Msg("nats-connect-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		return nil, err
	}
	log.Info().Str("url", nc.ConnectedUrl()).Msg("connected-to-nats")
	return &Feed{nc: nc}, nil
}

func (f *Feed) Publish(ctx context.Context, st *game.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := game.MarshalState(st)
	if err != nil {
		return err
	}
	log.Debug().Str("game", st.ID).Int64("rev", st.Revision).Int("bytes", len(data)).Msg("publish")
	return f.nc.Publish(Subject(st.ID), data)
}

// Subscribe calls fn for every version of gameID published from now on.
// Messages that do not decode are logged and dropped.
func (f *Feed) Subscribe(ctx context.Context, gameID string, fn func(*game.State)) (remote.Subscription, error) {
	sub, err := f.nc.Subscribe(Subject(gameID), func(m *nats.Msg) {
		st, err := game.UnmarshalState(m.Data)
		if err != nil {
			log.Err(err).Str("subject", m.Subject).Msg("bad-game-message")
			return
		}
		fn(st)
	})
	if err != nil {
		return nil, err
	}
	// make sure the server has the subscription before anything is published
	if err := f.nc.Flush(); err != nil {
		sub.Unsubscribe()
		return nil, err
	}
	return sub, nil
}

// Close drains the connection.
func (f *Feed) Close() error {
	return f.nc.Drain()
}
