package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websearch_queue_depth",
		Help: "Number of URLs currently queued for crawling",
	})

	QueueClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websearch_queue_claimed_total",
		Help: "Total number of crawl queue entries claimed",
	})

	QueueReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websearch_queue_reaped_total",
		Help: "Total number of stale in_progress queue entries reset to queued",
	})

	DocumentsCrawled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websearch_documents_crawled_total",
		Help: "Total number of crawl queue entries resolved, by terminal status",
	}, []string{"status"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "websearch_fetch_duration_seconds",
		Help:    "Duration of outbound HTTP fetches during crawling",
		Buckets: prometheus.DefBuckets,
	})

	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websearch_fetch_errors_total",
		Help: "Total number of fetch failures by reason",
	}, []string{"reason"})

	RateLimitWaits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websearch_rate_limit_waits_total",
		Help: "Total number of times the scheduler waited on a domain's rate limit",
	})

	FeedsPolled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websearch_feeds_polled_total",
		Help: "Total number of news fetcher poll passes over due feeds, by result",
	}, []string{"result"})

	ArticlesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websearch_articles_ingested_total",
		Help: "Total number of news articles ingested from feeds",
	})

	DuplicateClustersFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websearch_duplicate_clusters_total",
		Help: "Total number of near-duplicate document pairs found by the duplicate detector",
	})

	BatchCycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "websearch_batch_cycle_duration_seconds",
		Help:    "Duration of a batch runner cycle, by stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	BatchCycleErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websearch_batch_cycle_errors_total",
		Help: "Total number of failed batch runner cycles",
	})

	IsCoordinator = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websearch_batch_is_coordinator",
		Help: "Whether this node resolved to the coordinator role last cycle (0=no, 1=yes)",
	})

	DocumentCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websearch_document_count",
		Help: "Current number of done documents in the index",
	})

	LexiconWordCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websearch_lexicon_word_count",
		Help: "Current number of words staged into the spellcheck lexicon",
	})

	SearchRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "websearch_search_request_duration_seconds",
		Help:    "Duration of search API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	SearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websearch_search_requests_total",
		Help: "Total number of search API requests, by endpoint and status",
	}, []string{"endpoint", "status"})

	SpellcheckSuggestions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websearch_spellcheck_suggestions_total",
		Help: "Total number of queries that received a spelling correction",
	})
)
