// Package shell is a terminal client for one player. It drives a game
// Controller through a remote Bridge, so two shells pointed at the same
// store and feed can play each other.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tashbetz/config"
	"github.com/domino14/tashbetz/game"
	"github.com/domino14/tashbetz/lexicon"
	"github.com/domino14/tashbetz/remote"
	"github.com/domino14/tashbetz/tilemapping"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoPlayer          = errors.New("no player set; start with --player=<id>")
)

type Response struct {
	message string
}

func Msg(message string) *Response {
	return &Response{message: message}
}

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

// extractFields splits a line into a command, its positional arguments,
// and -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := &shellcmd{cmd: fields[0], options: map[string]string{}}
	for i := 1; i < len(fields); i++ {
		f := fields[i]
		if strings.HasPrefix(f, "-") && len(f) > 1 {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			cmd.options[strings.TrimLeft(f, "-")] = fields[i+1]
			i++
			continue
		}
		cmd.args = append(cmd.args, f)
	}
	return cmd, nil
}

// Options are the collaborators a shell needs.
type Options struct {
	Config  *config.Config
	Player  string
	Store   remote.DocumentStore
	Feed    remote.ChangeFeed
	Lexicon lexicon.Lexicon
	Bag     *tilemapping.Bag
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	cfg     *config.Config
	player  string
	store   remote.DocumentStore
	lexicon lexicon.Lexicon
	bag     *tilemapping.Bag
	bridge  *remote.Bridge
	// gameID is the attached game, if any.
	gameID string
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func newShellController(opts Options, out io.Writer) *ShellController {
	attempts := uint(0)
	if opts.Config != nil {
		attempts = uint(max(0, opts.Config.GetInt(config.ConfigWriteRetries)))
	}
	sc := &ShellController{
		out:     out,
		cfg:     opts.Config,
		player:  opts.Player,
		store:   opts.Store,
		lexicon: opts.Lexicon,
		bag:     opts.Bag,
		bridge:  remote.NewBridge(opts.Store, opts.Feed, attempts),
	}
	sc.bridge.OnUpdate(sc.remoteUpdate)
	return sc
}

func NewShellController(opts Options) (*ShellController, error) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[34mתשבץ>\033[0m ",
		HistoryFile:     "/tmp/tashbetz-readline.tmp",
		AutoComplete:    completer(),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc := newShellController(opts, l.Stderr())
	sc.l = l
	return sc, nil
}

// remoteUpdate runs under the bridge lock when the other player's change
// arrives.
func (sc *ShellController) remoteUpdate(st *game.State) {
	msg := fmt.Sprintf("\nGame updated (rev %d).", st.Revision)
	if st.Status == game.StatusActive && st.CurrentTurn == sc.player {
		msg += " Your turn."
	}
	sc.showMessage(msg)
}

func (sc *ShellController) handle(ctx context.Context, line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "new", "n":
		return sc.newGame(ctx)
	case "join", "j":
		return sc.join(ctx, cmd)
	case "load", "l":
		return sc.load(ctx, cmd)
	case "list", "ls":
		return sc.list(ctx)
	case "show", "s", "b":
		return sc.show()
	case "rack", "r":
		return sc.rack()
	case "place", "p":
		return sc.place(cmd)
	case "retract", "rt":
		return sc.retract(cmd)
	case "move", "mv":
		return sc.move(cmd)
	case "revert":
		return sc.revert()
	case "words", "w":
		return sc.words()
	case "commit", "c":
		return sc.commit(ctx)
	case "state":
		return sc.state()
	case "help", "h":
		return sc.help(cmd)
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

// Execute runs one line and prints its result.
func (sc *ShellController) Execute(ctx context.Context, line string) {
	resp, err := sc.handle(ctx, line)
	if err != nil {
		sc.showError(err)
	} else if resp != nil {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(ctx context.Context, sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "bye" {
			sig <- syscall.SIGINT
			break
		}
		sc.Execute(ctx, line)
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup drops the subscription to the current game.
func (sc *ShellController) Cleanup() {
	sc.bridge.Detach()
}
