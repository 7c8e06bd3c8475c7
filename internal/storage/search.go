package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WebCandidate is a scored web-document row ready for C14's
// intent-scoring pass.
type WebCandidate struct {
	DocID        int64
	URL          string
	Title        string
	Description  string
	TokenScore   float64
	MatchedTerms int
}

// WebFieldWeights are the §4.14 step 6 per-field multipliers for web
// documents.
var WebFieldWeights = map[int]float64{
	FieldTitle:       3.2,
	FieldDescription: 1.7,
	FieldBody:        1.0,
}

// WebCandidates retrieves up to candidateLimit done documents having
// any token whose term is in terms, with token_score and matched_terms
// computed per §4.14 step 6.
func (db *DB) WebCandidates(ctx context.Context, terms []string, candidateLimit int) ([]WebCandidate, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	const q = `
		SELECT d.id, d.url, d.title, d.description,
		       SUM(t.frequency * COALESCE(ts.idf, 1) *
		           CASE t.field WHEN 1 THEN 3.2 WHEN 2 THEN 1.7 ELSE 1.0 END) AS token_score,
		       COUNT(DISTINCT t.term) AS matched_terms
		FROM documents d
		JOIN tokens t ON t.doc_id = d.id AND t.source_type = $1
		LEFT JOIN term_statistics ts ON ts.term = t.term
		WHERE d.status = $2 AND t.term = ANY($3)
		GROUP BY d.id, d.url, d.title, d.description
		ORDER BY token_score DESC, d.url ASC
		LIMIT $4`

	rows, err := db.Pool.Query(ctx, q, SourceWeb, StatusDone, terms, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("web candidates: %w", err)
	}
	defer rows.Close()

	var out []WebCandidate

	for rows.Next() {
		var (
			c           WebCandidate
			title, desc pgtype.Text
		)

		if err := rows.Scan(&c.DocID, &c.URL, &title, &desc, &c.TokenScore, &c.MatchedTerms); err != nil {
			return nil, fmt.Errorf("scan web candidate: %w", err)
		}

		c.Title = fromText(title)
		c.Description = fromText(desc)

		out = append(out, c)
	}

	return out, rows.Err()
}

// NewsCandidate is a scored news-article row ready for C14's
// intent-scoring pass. It carries feed metadata so the wire layer can
// shape §6's `feed{…}` object without a second round trip.
type NewsCandidate struct {
	URL          string
	FeedURL      string
	Title        string
	Description  string
	Author       string
	PublishedAt  *time.Time
	FeedName     string
	FeedHomeURL  string
	FeedLink     string
	TokenScore   float64
	MatchedTerms int
}

// NewsCandidates retrieves up to candidateLimit news articles
// symmetrically to WebCandidates, with flat field weighting (§4.14
// step 7), joined against news_feeds for the response's feed object.
func (db *DB) NewsCandidates(ctx context.Context, terms []string, candidateLimit int) ([]NewsCandidate, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	const q = `
		SELECT a.url, a.feed_url, a.title, a.description, a.author, a.published_at,
		       f.name, f.home_url, f.link,
		       SUM(t.frequency) AS token_score,
		       COUNT(DISTINCT t.term) AS matched_terms
		FROM news_articles a
		JOIN tokens t ON t.article_url = a.url AND t.source_type = $1
		LEFT JOIN news_feeds f ON f.feed_url = a.feed_url
		WHERE t.term = ANY($2)
		GROUP BY a.url, a.feed_url, a.title, a.description, a.author, a.published_at, f.name, f.home_url, f.link
		ORDER BY token_score DESC, a.url ASC
		LIMIT $3`

	rows, err := db.Pool.Query(ctx, q, SourceNews, terms, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("news candidates: %w", err)
	}
	defer rows.Close()

	var out []NewsCandidate

	for rows.Next() {
		var (
			c                                NewsCandidate
			title, desc, author             pgtype.Text
			feedName, feedHomeURL, feedLink pgtype.Text
			published                        pgtype.Timestamptz
		)

		err := rows.Scan(&c.URL, &c.FeedURL, &title, &desc, &author, &published,
			&feedName, &feedHomeURL, &feedLink, &c.TokenScore, &c.MatchedTerms)
		if err != nil {
			return nil, fmt.Errorf("scan news candidate: %w", err)
		}

		c.Title = fromText(title)
		c.Description = fromText(desc)
		c.Author = fromText(author)
		c.PublishedAt = fromTimestamptzPtr(published)
		c.FeedName = fromText(feedName)
		c.FeedHomeURL = fromText(feedHomeURL)
		c.FeedLink = fromText(feedLink)

		out = append(out, c)
	}

	return out, rows.Err()
}

// WebCandidateSkeleton is the minimal projection C14's fallback path
// retrieves when the primary candidate query faults: the ranking
// inputs plus the url identifier, with title/description (the free
// text most likely to carry the encoding fault) left out entirely.
type WebCandidateSkeleton struct {
	DocID        int64
	URL          string
	TokenScore   float64
	MatchedTerms int
}

// WebCandidatesSkeleton implements §4.14's fallback: retry under ASCII
// client encoding, projecting only the url and the numeric ranking
// inputs, so a character-encoding fault in title/description text
// cannot recur.
func (db *DB) WebCandidatesSkeleton(ctx context.Context, terms []string, candidateLimit int) ([]WebCandidateSkeleton, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	const q = `
		SELECT d.id, d.url,
		       SUM(t.frequency * COALESCE(ts.idf, 1) *
		           CASE t.field WHEN 1 THEN 3.2 WHEN 2 THEN 1.7 ELSE 1.0 END) AS token_score,
		       COUNT(DISTINCT t.term) AS matched_terms
		FROM documents d
		JOIN tokens t ON t.doc_id = d.id AND t.source_type = $1
		LEFT JOIN term_statistics ts ON ts.term = t.term
		WHERE d.status = $2 AND t.term = ANY($3)
		GROUP BY d.id, d.url
		ORDER BY token_score DESC, d.url ASC
		LIMIT $4`

	rows, err := db.runAsciiQuery(ctx, q, SourceWeb, StatusDone, terms, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("web candidates skeleton: %w", err)
	}
	defer rows.Close()

	var out []WebCandidateSkeleton

	for rows.Next() {
		var c WebCandidateSkeleton
		if err := rows.Scan(&c.DocID, &c.URL, &c.TokenScore, &c.MatchedTerms); err != nil {
			return nil, fmt.Errorf("scan web candidate skeleton: %w", err)
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

// NewsCandidateSkeleton is NewsCandidates' minimal counterpart.
type NewsCandidateSkeleton struct {
	URL          string
	TokenScore   float64
	MatchedTerms int
}

// NewsCandidatesSkeleton is WebCandidatesSkeleton's news-side
// counterpart.
func (db *DB) NewsCandidatesSkeleton(ctx context.Context, terms []string, candidateLimit int) ([]NewsCandidateSkeleton, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	const q = `
		SELECT a.url,
		       SUM(t.frequency) AS token_score,
		       COUNT(DISTINCT t.term) AS matched_terms
		FROM news_articles a
		JOIN tokens t ON t.article_url = a.url AND t.source_type = $1
		WHERE t.term = ANY($2)
		GROUP BY a.url
		ORDER BY token_score DESC, a.url ASC
		LIMIT $3`

	rows, err := db.runAsciiQuery(ctx, q, SourceNews, terms, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("news candidates skeleton: %w", err)
	}
	defer rows.Close()

	var out []NewsCandidateSkeleton

	for rows.Next() {
		var c NewsCandidateSkeleton
		if err := rows.Scan(&c.URL, &c.TokenScore, &c.MatchedTerms); err != nil {
			return nil, fmt.Errorf("scan news candidate skeleton: %w", err)
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

// runAsciiQuery runs q on a connection whose client_encoding is forced
// to SQL_ASCII for the duration of the query, per §4.14's fallback:
// malformed multi-byte sequences in untouched text columns no longer
// abort the numeric-only projection.
func (db *DB) runAsciiQuery(ctx context.Context, q string, args ...any) (pgx.Rows, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire ascii conn: %w", err)
	}

	if _, err := conn.Exec(ctx, "SET client_encoding = 'SQL_ASCII'"); err != nil {
		conn.Release()
		return nil, fmt.Errorf("set client encoding: %w", err)
	}

	rows, err := conn.Query(ctx, q, args...)
	if err != nil {
		_, _ = conn.Exec(context.Background(), "RESET client_encoding")
		conn.Release()
		return nil, err
	}

	return &releasingRows{Rows: rows, conn: conn}, nil
}

// releasingRows releases the pooled connection back once the caller is
// done iterating, since runAsciiQuery hands out a bare acquisition
// instead of routing through the pool's own Query.
type releasingRows struct {
	pgx.Rows
	conn *pgxpool.Conn
}

func (r *releasingRows) Close() {
	r.Rows.Close()
	_, _ = r.conn.Exec(context.Background(), "RESET client_encoding")
	r.conn.Release()
}
