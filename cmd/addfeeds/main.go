// Command addfeeds reads newline-delimited feed URLs from stdin and
// registers each as a NewsFeed due for immediate polling, a thin
// wrapper over the Storage Gateway's upsert_feed operation (C3) for
// bootstrapping the News Fetcher (C9).
package main

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/websearch-engine/internal/config"
	"github.com/lueurxax/websearch-engine/internal/normalize"
	db "github.com/lueurxax/websearch-engine/internal/storage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

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

	added := 0

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		feedURL, err := normalize.Normalize(raw)
		if err != nil || feedURL == "" {
			logger.Warn().Err(err).Str("raw", raw).Msg("skipping invalid feed url")
			continue
		}

		err = store.UpsertFeed(ctx, db.UpsertFeedParams{
			FeedURL:         feedURL,
			HomeURL:         normalize.RegistrableDomain(feedURL),
			DiscoveredByURL: feedURL,
		})
		if err != nil {
			logger.Error().Err(err).Str("feed_url", feedURL).Msg("upsert feed failed")
			continue
		}

		logger.Info().Str("feed_url", feedURL).Msg("feed added")
		added++
	}

	if err := scanner.Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to read feed list")
	}

	logger.Info().Int("added", added).Msg("addfeeds complete")
}
