// Command seed normalizes and enqueues one or more URLs passed as
// arguments, a thin wrapper over the URL Normalizer (C1) and Queue
// Manager (C4) for bootstrapping a fresh crawl.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/lueurxax/websearch-engine/internal/config"
	"github.com/lueurxax/websearch-engine/internal/normalize"
	db "github.com/lueurxax/websearch-engine/internal/storage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if len(os.Args) < 2 {
		logger.Fatal().Msg("usage: seed <url> [url...]")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

	store, err := db.New(ctx, cfg.DSN(), &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	seeded := 0

	for _, raw := range os.Args[1:] {
		url, err := normalize.Normalize(raw)
		if err != nil || url == "" {
			logger.Warn().Err(err).Str("raw", raw).Msg("skipping invalid seed url")
			continue
		}

		domain := normalize.RegistrableDomain(url)

		if err := store.Enqueue(ctx, url, domain); err != nil {
			logger.Error().Err(err).Str("url", url).Msg("enqueue seed url failed")
			continue
		}

		logger.Info().Str("url", url).Str("domain", domain).Msg("seeded")
		seeded++
	}

	logger.Info().Int("seeded", seeded).Int("requested", len(os.Args)-1).Msg("seed complete")
}
