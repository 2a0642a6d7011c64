package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/domino14/tashbetz/board"
	"github.com/domino14/tashbetz/game"
	"github.com/domino14/tashbetz/remote/sqlitestore"
	"github.com/domino14/tashbetz/tilemapping"
)

func (sc *ShellController) attach(ctx context.Context, gameID string) error {
	if sc.player == "" {
		return errNoPlayer
	}
	ctrl := game.NewController(game.NewSession(sc.player, sc.lexicon, sc.bag), sc.bridge)
	if err := sc.bridge.Attach(ctx, ctrl, gameID); err != nil {
		return err
	}
	sc.gameID = gameID
	return nil
}

func (sc *ShellController) newGame(ctx context.Context) (*Response, error) {
	if sc.player == "" {
		return nil, errNoPlayer
	}
	st, err := sc.bridge.Create(ctx, game.NewState(sc.player))
	if err != nil {
		return nil, err
	}
	if err := sc.attach(ctx, st.ID); err != nil {
		return nil, err
	}
	return Msg("Created game " + st.ID + ". Waiting for an opponent to join."), nil
}

func (sc *ShellController) join(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("join <game-id>")
	}
	if sc.player == "" {
		return nil, errNoPlayer
	}
	st, err := sc.bridge.Get(ctx, cmd.args[0])
	if err != nil {
		return nil, err
	}
	joined, err := game.Join(st, sc.player, sc.bag)
	if err != nil {
		return nil, err
	}
	// attach first so the write below comes back to us through the feed
	if err := sc.attach(ctx, st.ID); err != nil {
		return nil, err
	}
	if _, err := sc.bridge.MergeWrite(ctx, joined); err != nil {
		return nil, err
	}
	return Msg("Joined game " + st.ID + ". " + joined.Player1 + " moves first."), nil
}

func (sc *ShellController) load(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("load <game-id>")
	}
	if err := sc.attach(ctx, cmd.args[0]); err != nil {
		return nil, err
	}
	return sc.show()
}

type gameLister interface {
	List(ctx context.Context) ([]sqlitestore.GameSummary, error)
}

func (sc *ShellController) list(ctx context.Context) (*Response, error) {
	lister, ok := sc.store.(gameLister)
	if !ok {
		return nil, errors.New("this store cannot list games")
	}
	games, err := lister.List(ctx)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, g := range games {
		fmt.Fprintf(&sb, "%s  rev %-4d %s\n", g.ID, g.Revision, g.UpdatedAt.Local().Format(time.DateTime))
	}
	if sb.Len() == 0 {
		return Msg("No games."), nil
	}
	return Msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) show() (*Response, error) {
	var text string
	err := sc.bridge.Do(func(c *game.Controller) error {
		text = c.Session().ToDisplayText()
		return nil
	})
	return Msg(text), err
}

func (sc *ShellController) rack() (*Response, error) {
	var text string
	err := sc.bridge.Do(func(c *game.Controller) error {
		text = strings.Join(c.Session().Rack().Strings(), " ")
		return nil
	})
	return Msg(text), err
}

func intArgs(args []string, n int, usage string) ([]int, error) {
	if len(args) != n {
		return nil, errors.New(usage)
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", usage, err)
		}
		out[i] = v
	}
	return out, nil
}

func (sc *ShellController) place(cmd *shellcmd) (*Response, error) {
	const usage = "place <row> <col> <letter>"
	if len(cmd.args) != 3 {
		return nil, errors.New(usage)
	}
	pos, err := intArgs(cmd.args[:2], 2, usage)
	if err != nil {
		return nil, err
	}
	letter, err := tilemapping.ParseLetter(cmd.args[2])
	if err != nil {
		return nil, err
	}
	err = sc.bridge.Do(func(c *game.Controller) error {
		return c.Place(pos[0], pos[1], letter)
	})
	if err != nil {
		return nil, err
	}
	return sc.show()
}

func (sc *ShellController) retract(cmd *shellcmd) (*Response, error) {
	pos, err := intArgs(cmd.args, 2, "retract <row> <col>")
	if err != nil {
		return nil, err
	}
	err = sc.bridge.Do(func(c *game.Controller) error {
		return c.Retract(pos[0], pos[1])
	})
	if err != nil {
		return nil, err
	}
	return sc.show()
}

func (sc *ShellController) move(cmd *shellcmd) (*Response, error) {
	pos, err := intArgs(cmd.args, 4, "move <from-row> <from-col> <to-row> <to-col>")
	if err != nil {
		return nil, err
	}
	err = sc.bridge.Do(func(c *game.Controller) error {
		return c.Move(pos[0], pos[1], pos[2], pos[3])
	})
	if err != nil {
		return nil, err
	}
	return sc.show()
}

func (sc *ShellController) revert() (*Response, error) {
	err := sc.bridge.Do(func(c *game.Controller) error {
		return c.Revert()
	})
	if err != nil {
		return nil, err
	}
	return sc.show()
}

func (sc *ShellController) words() (*Response, error) {
	var eval game.Evaluation
	err := sc.bridge.Do(func(c *game.Controller) error {
		eval = c.Preview()
		return nil
	})
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, w := range eval.ValidWords {
		fmt.Fprintf(&sb, "  %-12s %d\n", w, game.WordScore(w))
	}
	for _, w := range eval.InvalidWords {
		fmt.Fprintf(&sb, "  %-12s invalid\n", w)
	}
	fmt.Fprintf(&sb, "Total: %d", eval.TotalScore)
	return Msg(sb.String()), nil
}

func (sc *ShellController) commit(ctx context.Context) (*Response, error) {
	var res *game.TurnResult
	var display string
	err := sc.bridge.Do(func(c *game.Controller) error {
		var err error
		res, err = c.CommitTurn(ctx)
		if err != nil {
			return err
		}
		display = c.Session().ToDisplayText()
		return nil
	})
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Committed for %d points (%s). Drew %s.\n%s",
		res.Score, strings.Join(res.Words, ", "), string(res.Drawn), display)
	return Msg(msg), nil
}

type stateView struct {
	ID          string            `yaml:"id"`
	Status      game.Status       `yaml:"status"`
	Revision    int64             `yaml:"revision"`
	UpdatedAt   time.Time         `yaml:"updated_at"`
	CurrentTurn string            `yaml:"current_turn"`
	Players     []playerView      `yaml:"players"`
	Board       map[string]string `yaml:"board"`
	Tentative   []string          `yaml:"tentative,omitempty"`
}

type playerView struct {
	ID      string   `yaml:"id"`
	Score   int      `yaml:"score"`
	Letters []string `yaml:"letters"`
}

func (sc *ShellController) state() (*Response, error) {
	var view stateView
	err := sc.bridge.Do(func(c *game.Controller) error {
		st := c.Session().State()
		if st == nil {
			return game.ErrNoGame
		}
		view = stateView{
			ID:          st.ID,
			Status:      st.Status,
			Revision:    st.Revision,
			UpdatedAt:   st.UpdatedAt,
			CurrentTurn: st.CurrentTurn,
			Players: []playerView{
				{st.Player1, st.Player1Score, st.Player1Letters},
				{st.Player2, st.Player2Score, st.Player2Letters},
			},
			Board: st.Board,
		}
		for _, p := range c.Session().Board().TentativePositions() {
			view.Tentative = append(view.Tentative,
				board.SparseKey(p.Row, p.Col)+"="+string(p.Letter))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	bts, err := yaml.Marshal(view)
	if err != nil {
		return nil, err
	}
	return Msg(strings.TrimRight(string(bts), "\n")), nil
}
