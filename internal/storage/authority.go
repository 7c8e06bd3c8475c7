package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertAuthorityBulk bulk-writes PageRank scores and indegrees via the
// staging-then-merge pattern.
func (db *DB) UpsertAuthorityBulk(ctx context.Context, rows []Authority) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin authority tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `CREATE TEMPORARY TABLE authority_staging (doc_id BIGINT, pagerank DOUBLE PRECISION, inlink_count INT) ON COMMIT DROP`)
	if err != nil {
		return fmt.Errorf("create authority staging: %w", err)
	}

	copyRows := make([][]any, 0, len(rows))
	for _, a := range rows {
		copyRows = append(copyRows, []any{a.DocID, a.PageRank, a.InlinkCount})
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"authority_staging"}, []string{"doc_id", "pagerank", "inlink_count"}, pgx.CopyFromRows(copyRows)); err != nil {
		return fmt.Errorf("copy authority staging: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO document_authority (doc_id, pagerank, inlink_count)
		SELECT doc_id, pagerank, inlink_count FROM authority_staging
		ON CONFLICT (doc_id) DO UPDATE SET
			pagerank = EXCLUDED.pagerank,
			inlink_count = EXCLUDED.inlink_count`)
	if err != nil {
		return fmt.Errorf("merge authority staging: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit authority tx: %w", err)
	}

	return nil
}

// AuthorityByDocID returns pagerank for every scored document. C14's
// candidate scoring does not read it.
func (db *DB) AuthorityByDocID(ctx context.Context) (map[int64]Authority, error) {
	const q = `SELECT doc_id, pagerank, inlink_count FROM document_authority`

	rows, err := db.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("authority by doc id: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]Authority)

	for rows.Next() {
		var a Authority
		if err := rows.Scan(&a.DocID, &a.PageRank, &a.InlinkCount); err != nil {
			return nil, fmt.Errorf("scan authority: %w", err)
		}

		out[a.DocID] = a
	}

	return out, rows.Err()
}
