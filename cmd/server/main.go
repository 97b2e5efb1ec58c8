package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nnaakkaaii/expectimax2048/internal/app"
	"github.com/nnaakkaaii/expectimax2048/internal/config"
	"github.com/nnaakkaaii/expectimax2048/internal/httpapi"
	"github.com/nnaakkaaii/expectimax2048/internal/logx"
)

func main() {
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

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewServer(app.NewService(), cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := serve(ctx, srv, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// serve はctxが終わるまでsrvを動かし、終了時にShutdownする
func serve(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func fatal(err error) {
	l := zerolog.New(os.Stderr)
	l.Fatal().Err(err).Msg("invalid configuration")
}
