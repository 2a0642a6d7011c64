package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/tashbetz/config"
	"github.com/domino14/tashbetz/lexicon"
	"github.com/domino14/tashbetz/remote"
	"github.com/domino14/tashbetz/remote/natsfeed"
	"github.com/domino14/tashbetz/remote/sqlitestore"
	"github.com/domino14/tashbetz/shell"
	"github.com/domino14/tashbetz/tilemapping"
)

var (
	GitVersion string
)

func setupLogging(cfg *config.Config) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	level := zerolog.InfoLevel
	if cfg.GetBool(config.ConfigDebug) {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
}

func main() {
	// Relative data paths fall back to the executable's directory.
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.AdjustRelativePaths(exPath)
	setupLogging(cfg)
	log.Info().Str("version", GitVersion).Str("player", cfg.GetString(config.ConfigPlayer)).
		Msg("starting")

	attempts := uint(max(1, cfg.GetInt(config.ConfigWriteRetries)))

	var (
		ld   *tilemapping.LetterDistribution
		lex  lexicon.Lexicon
		feed remote.ChangeFeed
	)
	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		var err error
		ld, err = tilemapping.NamedLetterDistribution(cfg, cfg.GetString(config.ConfigLetterDistribution))
		return err
	})
	g.Go(func() error {
		var err error
		lex, err = lexicon.Get(cfg)
		return err
	})
	g.Go(func() error {
		url := cfg.GetString(config.ConfigNatsURL)
		if url == "" {
			log.Warn().Msg("no nats-url set; changes are only seen by this process")
			feed = remote.NewMemoryFeed()
			return nil
		}
		nf, err := natsfeed.Connect(gctx, url, attempts)
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		feed = nf
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("startup-failed")
	}
	if nf, ok := feed.(*natsfeed.Feed); ok {
		defer nf.Close()
	}

	dbPath := cfg.GetString(config.ConfigDBPath)
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			log.Fatal().Err(err).Msg("creating db directory")
		}
	}
	store, err := sqlitestore.New(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("opening store")
	}
	defer store.Close()

	sc, err := shell.NewShellController(shell.Options{
		Config:  cfg,
		Player:  cfg.GetString(config.ConfigPlayer),
		Store:   store,
		Feed:    feed,
		Lexicon: lex,
		Bag:     ld.MakeBag(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("starting shell")
	}

	ctx, cancel := context.WithCancel(context.Background())
	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		cancel()
		close(idleConnsClosed)
	}()

	go sc.Loop(ctx, sig)
	log.Info().Msg("started loop")

	<-idleConnsClosed
	sc.Cleanup()
	log.Info().Msg("shutting down")
}
