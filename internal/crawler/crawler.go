// Package crawler implements the crawl worker (C8): a scheduler loop
// that claims queued URLs, fetches and classifies them, extracts and
// validates content, and persists successful documents, grounded on
// the teacher's Solr-backed crawler of the same name (rate limiter,
// sitemap/feed discovery, content extraction), rewired onto the
// Postgres storage gateway built out in internal/storage.
package crawler

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/websearch-engine/internal/extract"
	"github.com/lueurxax/websearch-engine/internal/fetch"
	"github.com/lueurxax/websearch-engine/internal/normalize"
	"github.com/lueurxax/websearch-engine/internal/platform/observability"
	"github.com/lueurxax/websearch-engine/internal/platform/worker"
	"github.com/lueurxax/websearch-engine/internal/ratelimit"
	db "github.com/lueurxax/websearch-engine/internal/storage"
	"github.com/lueurxax/websearch-engine/internal/tokenize"
)

const (
	maxQualityWordCount = 300
	maxOutlinkPenalty   = 0.4
	defaultFreshness    = 0.1
	freshnessWindowDays = 365
)

// Quality implements §4.8's quality(content, outlink_count) formula.
func Quality(wordCount, outlinkCount int) float64 {
	if wordCount == 0 {
		return 0
	}

	base := float64(wordCount) / maxQualityWordCount
	if base > 1 {
		base = 1
	}

	penalty := float64(outlinkCount) / float64(wordCount)
	if penalty > maxOutlinkPenalty {
		penalty = maxOutlinkPenalty
	}

	q := base - penalty
	if q < 0 {
		q = 0
	}

	return q
}

// Freshness implements §4.8's freshness(updated_at, published_at)
// formula.
func Freshness(updatedAt, publishedAt *time.Time, now time.Time) float64 {
	ts := updatedAt
	if ts == nil {
		ts = publishedAt
	}

	if ts == nil {
		return defaultFreshness
	}

	days := now.Sub(*ts).Hours() / 24
	if days < 0 {
		days = 0
	}

	if days > freshnessWindowDays {
		days = freshnessWindowDays
	}

	return 1 - days/freshnessWindowDays
}

// Worker runs the crawl scheduler loop.
type Worker struct {
	store       *db.DB
	fetcher     *fetch.Fetcher
	limiter     *ratelimit.Limiter
	logger      *zerolog.Logger
	concurrency int
	batchSize   int
}

// Config configures a Worker.
type Config struct {
	Concurrency int
	BatchSize   int
	UserAgent   string
	Timeout     time.Duration
	RPS         float64
}

// New returns a Worker backed by store.
func New(store *db.DB, cfg Config, logger *zerolog.Logger) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = cfg.Concurrency * 4
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}

	return &Worker{
		store:       store,
		fetcher:     fetch.New(cfg.Timeout, cfg.UserAgent),
		limiter:     ratelimit.New(rps),
		logger:      logger,
		concurrency: cfg.Concurrency,
		batchSize:   cfg.BatchSize,
	}
}

// Run drives the scheduler loop described in §4.8's concurrency
// section: a pending buffer refilled by batch claims, and a bounded set
// of in-flight fetches admitted by the rate limiter.
func (w *Worker) Run(ctx context.Context) error {
	sem := make(chan struct{}, w.concurrency)
	done := make(chan struct{}, w.concurrency)
	inFlight := 0

	var pending []db.QueueEntry

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if len(pending) == 0 && inFlight == 0 {
			claimed, err := w.store.Claim(ctx, w.batchSize)
			if err != nil {
				w.logger.Error().Err(err).Msg("claim failed")
			}

			pending = claimed
			observability.QueueClaimed.Add(float64(len(claimed)))

			if depth, err := w.store.QueueDepth(ctx); err == nil {
				observability.QueueDepth.Set(float64(depth))
			}

			if len(pending) == 0 {
				if err := worker.Wait(ctx, 2*time.Second); err != nil {
					return err
				}

				continue
			}
		}

		admitted := false

		remaining := pending[:0]

		for _, entry := range pending {
			if inFlight < w.concurrency && w.limiter.TryReserve(entry.Domain) {
				admitted = true

				inFlight++

				sem <- struct{}{}

				go func(e db.QueueEntry) {
					defer func() { <-sem; done <- struct{}{} }()
					defer worker.RecoverPanic(w.logger, "crawl worker processOne")

					w.processOne(ctx, e)
				}(entry)

				continue
			}

			remaining = append(remaining, entry)
		}

		pending = remaining

		if !admitted && inFlight > 0 {
			select {
			case <-done:
				inFlight--
			case <-time.After(200 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		} else {
			for {
				select {
				case <-done:
					inFlight--
					continue
				default:
				}

				break
			}
		}

		if !admitted && inFlight == 0 && len(pending) > 0 {
			if err := worker.Wait(ctx, 500*time.Millisecond); err != nil {
				return err
			}
		}
	}
}

// processOne runs one item through the state machine in §4.8.
func (w *Worker) processOne(ctx context.Context, entry db.QueueEntry) {
	fetchStart := time.Now()
	res, err := w.fetcher.Fetch(ctx, entry.URL)
	observability.FetchDuration.Observe(time.Since(fetchStart).Seconds())

	if err != nil {
		observability.FetchErrors.WithLabelValues("transport").Inc()
		w.mark(ctx, entry.URL, db.StatusProcessingError)

		return
	}

	if res.StatusCode >= 400 {
		w.mark(ctx, entry.URL, db.StatusNonSuccessStatusError)
		return
	}

	if looksLikeFeed(res.ContentType, res.Body) {
		w.registerFeed(ctx, entry.URL, res.Body)
		w.mark(ctx, entry.URL, db.StatusDone)

		return
	}

	if !strings.Contains(res.ContentType, "text/html") {
		w.mark(ctx, entry.URL, db.StatusProcessingError)
		return
	}

	page, err := extract.Extract(res.Body, entry.URL)
	if err != nil || !page.Valid() {
		w.mark(ctx, entry.URL, db.StatusValidationError)
		return
	}

	w.persist(ctx, entry, page)
}

func looksLikeFeed(contentType string, body []byte) bool {
	lower := strings.ToLower(contentType)
	if strings.Contains(lower, "rss") || strings.Contains(lower, "atom") {
		return true
	}

	if strings.Contains(lower, "xml") {
		head := body
		if len(head) > 512 {
			head = head[:512]
		}

		headLower := bytes.ToLower(head)

		return bytes.Contains(headLower, []byte("<rss")) ||
			bytes.Contains(headLower, []byte("<feed")) ||
			bytes.Contains(headLower, []byte("<atom"))
	}

	return false
}

func (w *Worker) registerFeed(ctx context.Context, feedURL string, _ []byte) {
	home := feedURL
	if u := normalize.RegistrableDomain(feedURL); u != "" {
		home = u
	}

	err := w.store.UpsertFeed(ctx, db.UpsertFeedParams{
		FeedURL:         feedURL,
		HomeURL:         home,
		DiscoveredByURL: feedURL,
	})
	if err != nil {
		w.logger.Warn().Err(err).Str("feed_url", feedURL).Msg("register discovered feed failed")
	}
}

func (w *Worker) persist(ctx context.Context, entry db.QueueEntry, page *extract.Page) {
	wordCount := len(strings.Fields(page.Content))
	quality := Quality(wordCount, len(page.Outlinks))
	freshness := Freshness(page.UpdatedAt, page.PublishedAt, time.Now().UTC())

	result := db.CrawlResult{
		Document: db.UpsertDocumentParams{
			URL:            entry.URL,
			CanonicalURL:   entry.URL,
			Title:          page.Title,
			Description:    page.Description,
			Content:        page.Content,
			PublishedAt:    page.PublishedAt,
			UpdatedAt:      page.UpdatedAt,
			WordCount:      wordCount,
			QualityScore:   quality,
			FreshnessScore: freshness,
			Status:         db.StatusDone,
		},
		OutgoingTargets: page.Outlinks,
	}

	result.Tokens = documentTokens(page)

	for _, target := range page.Outlinks {
		domain := normalize.RegistrableDomain(target)
		result.DiscoveredURLs = append(result.DiscoveredURLs, db.NewURLDomain(target, domain))
	}

	if _, err := w.store.PersistCrawlResult(ctx, result); err != nil {
		w.logger.Error().Err(err).Str("url", entry.URL).Msg("persist crawl result failed")
		w.mark(ctx, entry.URL, db.StatusProcessingError)

		return
	}

	for _, feedURL := range page.FeedLinks {
		w.registerFeed(ctx, feedURL, nil)
	}

	w.mark(ctx, entry.URL, db.StatusDone)
}

// documentTokens builds the token rows for a page. DocID is left unset
// since PersistCrawlResult fills it in once the document row is
// assigned inside the same transaction.
func documentTokens(page *extract.Page) []db.Token {
	var toks []db.Token

	add := func(text string, field int) {
		for term, freq := range tokenize.Tokenize(text) {
			toks = append(toks, db.Token{
				SourceType: db.SourceWeb,
				Term:       term,
				Field:      field,
				Frequency:  freq,
			})
		}
	}

	add(page.Title, db.FieldTitle)
	add(page.Description, db.FieldDescription)
	add(page.Content, db.FieldBody)

	return toks
}

func (w *Worker) mark(ctx context.Context, url, status string) {
	observability.DocumentsCrawled.WithLabelValues(status).Inc()

	if err := w.store.Mark(ctx, url, status); err != nil {
		w.logger.Error().Err(err).Str("url", url).Str("status", status).Msg("mark queue entry failed")
	}
}
