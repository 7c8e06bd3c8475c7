package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/lueurxax/websearch-engine/internal/config"
	"github.com/lueurxax/websearch-engine/internal/query"
	"github.com/lueurxax/websearch-engine/internal/searchapi"
	"github.com/lueurxax/websearch-engine/internal/spellcheck"
	db "github.com/lueurxax/websearch-engine/internal/storage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	setLogLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	store, err := db.New(ctx, cfg.DSN(), &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	lex, err := spellcheck.NewStoreLexicon(store, cfg.SpellcheckMetaPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load spellcheck lexicon cache")
	}

	server := searchapi.NewServer(query.New(store), spellcheck.New(lex), cfg.SearchAPIPort, &logger)

	logger.Info().Msg("starting search api")

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("search api error")
	}

	logger.Info().Msg("search api stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
