package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertFingerprints bulk-writes SimHash fingerprints via the
// staging-then-merge pattern used throughout the batch jobs.
func (db *DB) UpsertFingerprints(ctx context.Context, fps []Fingerprint) error {
	if len(fps) == 0 {
		return nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin fingerprints tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `CREATE TEMPORARY TABLE fingerprint_staging (doc_id BIGINT, fingerprint BIGINT) ON COMMIT DROP`)
	if err != nil {
		return fmt.Errorf("create fingerprint staging: %w", err)
	}

	rows := make([][]any, 0, len(fps))
	for _, f := range fps {
		rows = append(rows, []any{f.DocID, f.Fingerprint})
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"fingerprint_staging"}, []string{"doc_id", "fingerprint"}, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy fingerprint staging: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO document_fingerprints (doc_id, fingerprint)
		SELECT doc_id, fingerprint FROM fingerprint_staging
		ON CONFLICT (doc_id) DO UPDATE SET fingerprint = EXCLUDED.fingerprint`)
	if err != nil {
		return fmt.Errorf("merge fingerprint staging: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit fingerprints tx: %w", err)
	}

	return nil
}

// FingerprintsByDocID returns the current fingerprint for every
// document that has one, for near-duplicate comparisons.
func (db *DB) FingerprintsByDocID(ctx context.Context) (map[int64]int64, error) {
	const q = `SELECT doc_id, fingerprint FROM document_fingerprints`

	rows, err := db.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fingerprints by doc id: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int64)

	for rows.Next() {
		var (
			docID int64
			fp    int64
		)

		if err := rows.Scan(&docID, &fp); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}

		out[docID] = fp
	}

	return out, rows.Err()
}
