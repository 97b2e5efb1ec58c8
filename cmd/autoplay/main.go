package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/nnaakkaaii/expectimax2048/internal/config"
	"github.com/nnaakkaaii/expectimax2048/internal/logx"
	"github.com/nnaakkaaii/expectimax2048/internal/remote"
	"github.com/nnaakkaaii/expectimax2048/internal/usecase"
)

func main() {
	remoteURL := flag.String("remote", "", "base URL of a game server (empty = play locally)")
	gameID := flag.String("game", "", "existing game id on the remote server (empty = create one)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	cfg, err := config.Load(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		fatal(err)
	}
	log, err := logx.NewLogger(cfg.LogLevel, cfg.Pretty)
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver, err := newDriver(ctx, *remoteURL, *gameID, *seed, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create remote game")
	}

	log.Info().
		Int("depth", cfg.MaxDepth).
		Bool("cache", cfg.Cache).
		Dur("delay", cfg.Delay).
		Msg("autoplay started")

	res, err := usecase.AutoPlay(ctx, driver, cfg.NewSolver(), usecase.AutoPlayConfig{
		Delay:    cfg.Delay,
		MaxMoves: cfg.MaxMoves,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Int("moves", res.Moves).Msg("autoplay failed")
	}
	os.Stdout.WriteString(res.Final.String())
}

// newDriver はローカルのゲームか、リモートのゲーム（新規または既存）を返す
func newDriver(ctx context.Context, remoteURL, gameID string, seed int64, log zerolog.Logger) (usecase.Driver, error) {
	switch {
	case remoteURL == "":
		return usecase.NewLocalDriver(rand.New(rand.NewSource(seed))), nil
	case gameID != "":
		return remote.NewClient(remoteURL, gameID), nil
	}
	c, err := remote.CreateGame(ctx, remoteURL, &seed)
	if err != nil {
		return nil, err
	}
	log.Info().Str("game", c.GameID()).Msg("created remote game")
	return c, nil
}

func fatal(err error) {
	l := zerolog.New(os.Stderr)
	l.Fatal().Err(err).Msg("invalid configuration")
}
