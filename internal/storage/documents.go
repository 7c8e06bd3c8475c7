package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// UpsertDocument inserts or updates a document keyed by URL, returning
// its id. It runs directly on the pool, outside any transaction; C8
// persists documents through PersistCrawlResult instead.
func (db *DB) UpsertDocument(ctx context.Context, p UpsertDocumentParams) (int64, error) {
	const q = `
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

	var id int64

	row := db.Pool.QueryRow(ctx, q,
		p.URL, toText(p.CanonicalURL), toText(p.Title), toText(p.Description), toText(p.Content),
		toTimestamptzPtr(p.PublishedAt), toTimestamptzPtr(p.UpdatedAt), toInt4(p.WordCount),
		p.QualityScore, p.FreshnessScore, p.Status,
	)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert document: %w", err)
	}

	return id, nil
}

func (db *DB) scanDocument(row pgx.Row) (*Document, error) {
	var (
		d                                     Document
		canonicalURL, title, desc, content    pgtype.Text
		published, updated                    pgtype.Timestamptz
		createdAt                             pgtype.Timestamptz
		wordCount                             pgtype.Int4
	)

	err := row.Scan(&d.ID, &d.URL, &canonicalURL, &title, &desc, &content, &published, &updated,
		&wordCount, &d.QualityScore, &d.FreshnessScore, &d.Status, &createdAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("scan document: %w", err)
	}

	d.CanonicalURL = fromText(canonicalURL)
	d.Title = fromText(title)
	d.Description = fromText(desc)
	d.Content = fromText(content)
	d.PublishedAt = fromTimestamptzPtr(published)
	d.UpdatedAt = fromTimestamptzPtr(updated)
	d.WordCount = int(wordCount.Int32)
	d.CreatedAt = fromTimestamptz(createdAt)

	return &d, nil
}

// GetDocumentByID looks up a document by its primary key. C14 does not
// call it; its candidate queries already carry the result-row fields.
func (db *DB) GetDocumentByID(ctx context.Context, id int64) (*Document, error) {
	const q = `
		SELECT id, url, canonical_url, title, description, content, published_at, updated_at,
		       word_count, quality_score, freshness_score, status, created_at
		FROM documents WHERE id = $1`

	return db.scanDocument(db.Pool.QueryRow(ctx, q, id))
}

// CountDoneDocuments returns the number of documents with status 'done',
// used as doc_total by the BM25 stats job.
func (db *DB) CountDoneDocuments(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM documents WHERE status = $1`

	var count int64
	if err := db.Pool.QueryRow(ctx, q, StatusDone).Scan(&count); err != nil {
		return 0, fmt.Errorf("count done documents: %w", err)
	}

	return count, nil
}

// AverageDocumentLength returns AVG(word_count) over documents with
// status 'done'.
func (db *DB) AverageDocumentLength(ctx context.Context) (float64, error) {
	const q = `SELECT COALESCE(AVG(word_count), 0) FROM documents WHERE status = $1`

	var avg float64
	if err := db.Pool.QueryRow(ctx, q, StatusDone).Scan(&avg); err != nil {
		return 0, fmt.Errorf("average document length: %w", err)
	}

	return avg, nil
}

// IterDoneDocumentIDs returns the ids of documents with status 'done',
// optionally restricted to a shard by id mod total_nodes == node_index.
func (db *DB) IterDoneDocumentIDs(ctx context.Context, totalNodes, nodeIndex int) ([]int64, error) {
	q := `SELECT id FROM documents WHERE status = $1`

	args := []any{StatusDone}
	if totalNodes > 1 {
		q += ` AND id % $2 = $3`
		args = append(args, totalNodes, nodeIndex)
	}

	rows, err := db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("iter done document ids: %w", err)
	}
	defer rows.Close()

	var ids []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan document id: %w", err)
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// DocumentContent returns the content column for a single document,
// used by the duplicate detector to compute a SimHash.
func (db *DB) DocumentContent(ctx context.Context, docID int64) (string, error) {
	const q = `SELECT content FROM documents WHERE id = $1`

	var content string
	if err := db.Pool.QueryRow(ctx, q, docID).Scan(&content); err != nil {
		return "", fmt.Errorf("document content: %w", err)
	}

	return content, nil
}

// AllDoneDocumentURLs returns (id, url) for every done document, used to
// resolve outlinks into the link graph.
func (db *DB) AllDoneDocumentURLs(ctx context.Context) (map[string]int64, error) {
	const q = `SELECT id, url FROM documents WHERE status = $1`

	rows, err := db.Pool.Query(ctx, q, StatusDone)
	if err != nil {
		return nil, fmt.Errorf("all done document urls: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)

	for rows.Next() {
		var (
			id  int64
			url string
		)

		if err := rows.Scan(&id, &url); err != nil {
			return nil, fmt.Errorf("scan document url: %w", err)
		}

		out[url] = id
	}

	return out, rows.Err()
}
