package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CrawlResult bundles everything C8 needs to persist atomically for one
// successfully validated document.
type CrawlResult struct {
	Document        UpsertDocumentParams
	Tokens          []Token
	OutgoingTargets []string
	DiscoveredURLs  []urlDomain
}

// PersistCrawlResult implements §4.8's persistence discipline: a single
// scoped transaction upserts the document, fully replaces its tokens
// and outlinks, enqueues discovered URLs with on-conflict-do-nothing
// so re-crawls are idempotent, and optionally backfills a news article
// at the same URL with the deep-crawled content (a no-op UPDATE when
// no such article exists). Returns the document's id.
func (db *DB) PersistCrawlResult(ctx context.Context, r CrawlResult) (int64, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin crawl result tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var docID int64

	const upsertDocQ = `
		INSERT INTO documents (url, canonical_url, title, description, content, published_at, updated_at, word_count, quality_score, freshness_score, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (url) DO UPDATE SET
			canonical_url = EXCLUDED.canonical_url,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			content = EXCLUDED.content,
			published_at = EXCLUDED.published_at,
			updated_at = EXCLUDED.updated_at,
			word_count = EXCLUDED.word_count,
			quality_score = EXCLUDED.quality_score,
			freshness_score = EXCLUDED.freshness_score,
			status = EXCLUDED.status
		RETURNING id`

	p := r.Document

	err = tx.QueryRow(ctx, upsertDocQ,
		p.URL, toText(p.CanonicalURL), toText(p.Title), toText(p.Description), toText(p.Content),
		toTimestamptzPtr(p.PublishedAt), toTimestamptzPtr(p.UpdatedAt), toInt4(p.WordCount),
		p.QualityScore, p.FreshnessScore, p.Status,
	).Scan(&docID)
	if err != nil {
		return 0, fmt.Errorf("upsert document: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM tokens WHERE doc_id = $1", docID); err != nil {
		return 0, fmt.Errorf("delete existing tokens: %w", err)
	}

	if len(r.Tokens) > 0 {
		rows := make([][]any, 0, len(r.Tokens))
		for _, t := range r.Tokens {
			rows = append(rows, []any{docID, nil, t.SourceType, t.Term, t.Field, t.Frequency, t.Positions})
		}

		_, err = tx.CopyFrom(ctx, pgx.Identifier{"tokens"},
			[]string{"doc_id", "article_url", "source_type", "term", "field", "frequency", "positions"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return 0, fmt.Errorf("copy tokens: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM links_outgoing WHERE source_doc_id = $1", docID); err != nil {
		return 0, fmt.Errorf("delete existing outlinks: %w", err)
	}

	for _, target := range r.OutgoingTargets {
		_, err := tx.Exec(ctx,
			"INSERT INTO links_outgoing (source_doc_id, target_url) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			docID, target)
		if err != nil {
			return 0, fmt.Errorf("insert outlink: %w", err)
		}
	}

	for _, d := range r.DiscoveredURLs {
		_, err := tx.Exec(ctx,
			`INSERT INTO crawl_queue (url, status, domain, attempt_count) VALUES ($1, $2, $3, 0)
			 ON CONFLICT (url) DO NOTHING`,
			d.URL, StatusQueued, d.Domain)
		if err != nil {
			return 0, fmt.Errorf("enqueue discovered url: %w", err)
		}
	}

	const backfillArticleQ = `
		UPDATE news_articles SET
			title = COALESCE(NULLIF($2, ''), title),
			description = COALESCE(NULLIF($3, ''), description),
			content = COALESCE(NULLIF($4, ''), content)
		WHERE url = $1`

	if _, err := tx.Exec(ctx, backfillArticleQ, p.URL, p.Title, p.Description, p.Content); err != nil {
		return 0, fmt.Errorf("backfill news article: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit crawl result tx: %w", err)
	}

	return docID, nil
}

// NewURLDomain builds the (url, domain) pair EnqueueMany/PersistCrawlResult
// expect from an already-derived domain; it does not derive it from url.
func NewURLDomain(url, domain string) urlDomain {
	return urlDomain{URL: url, Domain: domain}
}
