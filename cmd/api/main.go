package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/patteyb/twitter-interface/internal/config"
	"github.com/patteyb/twitter-interface/internal/handler"
	"github.com/patteyb/twitter-interface/internal/service/feed"
	"github.com/patteyb/twitter-interface/internal/service/fetch"
	"github.com/patteyb/twitter-interface/internal/service/twitter"
	"github.com/patteyb/twitter-interface/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg.Log)
	log.Logger = logger
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("no .env file loaded, continuing with system environment variables only")
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}

	client := twitter.NewClient(ctx, cfg.Twitter)
	fetcher := fetch.NewFetcher(client, logger)
	feedService := feed.NewService(fetcher, cfg.Twitter, logger)

	// initial load runs in the background; pages show whatever has arrived
	go func() {
		if err := feedService.Refresh(ctx); err != nil {
			logger.Warn().Err(err).Msg("initial refresh failed")
		}
	}()

	if cfg.Refresh.Enabled() {
		logger.Info().Dur("interval", cfg.Refresh.Interval).Msg("periodic refresh enabled")
		go feedService.Run(ctx, cfg.Refresh.Interval)
	}

	router := handler.NewRouter(logger, feedService, renderer)

	startServer(ctx, logger, cfg.Server, router)
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func startServer(ctx context.Context, logger zerolog.Logger, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		// event streams end with the process context
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	logger.Info().Str("addr", serverCfg.Addr).Msg("twitter interface listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
