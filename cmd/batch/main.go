package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/websearch-engine/internal/batch"
	"github.com/lueurxax/websearch-engine/internal/config"
	"github.com/lueurxax/websearch-engine/internal/lexicon"
	"github.com/lueurxax/websearch-engine/internal/newsfeed"
	"github.com/lueurxax/websearch-engine/internal/platform/observability"
	db "github.com/lueurxax/websearch-engine/internal/storage"
)

const externalListWeight = 1.0

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

	poller := newsfeed.New(store, cfg.CrawlerUserAgent, cfg.BatchTotalNodes, cfg.BatchNodeIndex, &logger)

	holderID := cfg.NodeID
	if holderID == "" {
		hostname, _ := os.Hostname()
		holderID = fmt.Sprintf("%s-%d", hostname, os.Getpid())
	}

	external := loadExternalLexicon(cfg.LexiconCountedListURL, cfg.LexiconRankedListURL, &logger)

	runner := batch.New(store, poller, batch.Config{
		Role:          batch.Role(cfg.BatchRole),
		HolderID:      holderID,
		TotalNodes:    cfg.BatchTotalNodes,
		NodeIndex:     cfg.BatchNodeIndex,
		CycleInterval: time.Duration(cfg.BatchIntervalS) * time.Second,
		QueueTTL:      time.Duration(cfg.QueueClaimTTLS) * time.Second,
		DupThreshold:  cfg.BatchDupThreshold,
		FeedsPerCycle: cfg.BatchFeedsPerCyc,
		LexiconTop:    cfg.SpellcheckMetaMaxWords,
		LexiconMeta:   cfg.SpellcheckMetaPath,
		LockTTL:       time.Duration(cfg.BatchLockTTLS) * time.Second,
		External:      external,
	}, &logger)

	health := observability.NewServer(store, cfg.HealthPort, &logger)

	go func() {
		if err := health.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("health server error")
		}
	}()

	logger.Info().Str("role", string(cfg.BatchRole)).Int("node_index", cfg.BatchNodeIndex).Msg("starting batch runner")

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("batch runner error")
	}

	logger.Info().Msg("batch runner stopped")
}

// loadExternalLexicon fetches the two canonical external frequency
// lists configured via LEXICON_COUNTED_LIST_URL / LEXICON_RANKED_LIST_URL,
// per §4.13. Either or both may be unset; a fetch failure is logged and
// skipped rather than failing the whole batch run.
func loadExternalLexicon(countedURL, rankedURL string, logger *zerolog.Logger) lexicon.ExternalFrequencies {
	out := lexicon.ExternalFrequencies{}

	if countedURL != "" {
		if err := fetchAndIngest(countedURL, out, lexicon.IngestCountedList); err != nil {
			logger.Warn().Err(err).Str("url", countedURL).Msg("fetch counted lexicon list failed")
		}
	}

	if rankedURL != "" {
		if err := fetchAndIngest(rankedURL, out, lexicon.IngestRankedList); err != nil {
			logger.Warn().Err(err).Str("url", rankedURL).Msg("fetch ranked lexicon list failed")
		}
	}

	return out
}

func fetchAndIngest(url string, out lexicon.ExternalFrequencies, ingest func(io.Reader, float64, lexicon.ExternalFrequencies) error) error {
	resp, err := http.Get(url) //nolint:gosec,noctx // operator-configured list URL, not user input
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	return ingest(resp.Body, externalListWeight, out)
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
