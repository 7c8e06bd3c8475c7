package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ReplaceDocumentTokens atomically replaces every token row for docID
// with toks, matching §4.8's persistence discipline: a document's token
// set is always fully rewritten, never patched incrementally.
func (db *DB) ReplaceDocumentTokens(ctx context.Context, docID int64, toks []Token) error {
	return db.replaceTokens(ctx, "doc_id = $1", docID, toks)
}

// ReplaceArticleTokens atomically replaces every token row for the news
// article identified by articleURL.
func (db *DB) ReplaceArticleTokens(ctx context.Context, articleURL string, toks []Token) error {
	return db.replaceTokens(ctx, "article_url = $1", articleURL, toks)
}

func (db *DB) replaceTokens(ctx context.Context, whereCol string, key any, toks []Token) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tokens tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM tokens WHERE "+whereCol, key); err != nil {
		return fmt.Errorf("delete existing tokens: %w", err)
	}

	rows := make([][]any, 0, len(toks))
	for _, t := range toks {
		rows = append(rows, []any{t.DocID, t.ArticleURL, t.SourceType, t.Term, t.Field, t.Frequency, t.Positions})
	}

	if len(rows) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"tokens"},
			[]string{"doc_id", "article_url", "source_type", "term", "field", "frequency", "positions"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copy tokens: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tokens tx: %w", err)
	}

	return nil
}

// TermDocFrequency returns, for every term in the tokens table, the number of
// distinct documents (source_type = web) containing it, used by the
// BM25 stats job to compute idf.
func (db *DB) TermDocFrequency(ctx context.Context) (map[string]int64, error) {
	const q = `
		SELECT term, COUNT(DISTINCT doc_id)
		FROM tokens
		WHERE source_type = $1 AND doc_id IS NOT NULL
		GROUP BY term`

	rows, err := db.Pool.Query(ctx, q, SourceWeb)
	if err != nil {
		return nil, fmt.Errorf("term doc frequency: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)

	for rows.Next() {
		var (
			term string
			df   int64
		)

		if err := rows.Scan(&term, &df); err != nil {
			return nil, fmt.Errorf("scan term doc frequency: %w", err)
		}

		out[term] = df
	}

	return out, rows.Err()
}

// DocumentCorpusTexts returns title/description/content concatenated
// for every done document, used by the lexicon builder (§4.13) to
// extract real dictionary words — unstemmed, unlike the tokens table.
func (db *DB) DocumentCorpusTexts(ctx context.Context) ([]string, error) {
	const q = `
		SELECT COALESCE(title, '') || ' ' || COALESCE(description, '') || ' ' || COALESCE(content, '')
		FROM documents WHERE status = $1`

	return db.queryTexts(ctx, q, StatusDone)
}

// ArticleCorpusTexts is DocumentCorpusTexts' news-side counterpart,
// over every news article's title/description/content.
func (db *DB) ArticleCorpusTexts(ctx context.Context) ([]string, error) {
	const q = `
		SELECT COALESCE(title, '') || ' ' || COALESCE(description, '') || ' ' || COALESCE(content, '')
		FROM news_articles`

	return db.queryTexts(ctx, q)
}

func (db *DB) queryTexts(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query corpus texts: %w", err)
	}
	defer rows.Close()

	var out []string

	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan corpus text: %w", err)
		}

		out = append(out, text)
	}

	return out, rows.Err()
}

