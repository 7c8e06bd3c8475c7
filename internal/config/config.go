// Package config loads process configuration from the environment.
//
// Every binary in this module (crawler, batch runner, search API, and the
// small operator CLIs) shares the same Config struct; each binary only
// reads the fields it needs. Values come from the environment, with an
// optional .env file loaded first for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting used across the module,
// matching the variables named in the specification's external interfaces.
type Config struct {
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"websearch"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`

	CrawlerUserAgent   string  `env:"CRAWLER_USER_AGENT" envDefault:"WebSearchBot/1.0 (+https://example.invalid/bot)"`
	QueueBatchSize     int     `env:"QUEUE_BATCH_SIZE" envDefault:"50"`
	QueueClaimTTLS     int     `env:"QUEUE_CLAIM_TTL_S" envDefault:"900"`
	CrawlerConcurrency int     `env:"CRAWLER_CONCURRENCY" envDefault:"8"`
	CrawlerRPS         float64 `env:"CRAWLER_RPS" envDefault:"1"`
	RequestTimeoutS    int     `env:"REQUEST_TIMEOUT_S" envDefault:"15"`

	BatchIntervalS    int    `env:"BATCH_INTERVAL_S" envDefault:"300"`
	BatchTotalNodes   int    `env:"BATCH_TOTAL_NODES" envDefault:"1"`
	BatchNodeIndex    int    `env:"BATCH_NODE_INDEX" envDefault:"0"`
	BatchRole         string `env:"BATCH_ROLE" envDefault:"auto"`
	BatchFeedsPerCyc  int    `env:"BATCH_FEEDS_PER_CYCLE" envDefault:"100"`
	BatchDupThreshold int    `env:"BATCH_DUP_HAMMING_THRESHOLD" envDefault:"3"`
	BatchLockTTLS     int    `env:"BATCH_LOCK_TTL_S" envDefault:"600"`
	NodeID            string `env:"NODE_ID" envDefault:""`

	SpellcheckMetaPath     string `env:"SPELLCHECK_META_PATH" envDefault:"./spellcheck_meta.json"`
	SpellcheckMetaMaxWords int    `env:"SPELLCHECK_META_MAX_WORDS" envDefault:"120000"`

	LexiconCountedListURL string `env:"LEXICON_COUNTED_LIST_URL" envDefault:""`
	LexiconRankedListURL  string `env:"LEXICON_RANKED_LIST_URL" envDefault:""`

	SearchAPIPort int `env:"SEARCH_API_PORT" envDefault:"8090"`

	HealthPort int    `env:"HEALTH_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads Config from the environment, loading a .env file first if
// one is present in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// DSN builds a libpq-style connection string from the discrete Postgres
// settings, the way pgxpool.ParseConfig expects it.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB,
	)
}
