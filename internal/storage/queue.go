package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Enqueue inserts url as queued with the caller-supplied domain if it is
// not already present. A no-op (not an error) if the url is already tracked.
func (db *DB) Enqueue(ctx context.Context, url, domain string) error {
	const q = `
		INSERT INTO crawl_queue (url, status, domain, attempt_count)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (url) DO NOTHING`

	if _, err := db.Pool.Exec(ctx, q, url, StatusQueued, domain); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}

	return nil
}

// urlDomain pairs a URL with its already-derived registrable domain,
// letting EnqueueMany avoid recomputing it per row.
type urlDomain struct {
	URL    string
	Domain string
}

// EnqueueMany stages a batch of (url, domain) pairs into a temporary
// table and merges them in, per §4.3's staging-then-merge bulk-write
// pattern. Rows already tracked are left untouched.
func (db *DB) EnqueueMany(ctx context.Context, entries []urlDomain) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin enqueue tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		CREATE TEMPORARY TABLE queue_staging (url TEXT, domain TEXT) ON COMMIT DROP`)
	if err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{e.URL, e.Domain})
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"queue_staging"}, []string{"url", "domain"}, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy queue staging: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO crawl_queue (url, status, domain, attempt_count)
		SELECT url, $1, domain, 0 FROM queue_staging
		ON CONFLICT (url) DO NOTHING`, StatusQueued)
	if err != nil {
		return fmt.Errorf("merge queue staging: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit enqueue tx: %w", err)
	}

	return nil
}

// Claim atomically selects up to n queued entries, transitions them to
// in_progress, stamps last_attempt and increments attempt_count, and
// returns them. FOR UPDATE SKIP LOCKED makes concurrent claimers safe
// without blocking on each other; ordering by (domain, last_attempt,
// attempt_count) gives a fair, non-starving tie-break across domains.
func (db *DB) Claim(ctx context.Context, n int) ([]QueueEntry, error) {
	const q = `
		WITH candidates AS (
			SELECT url
			FROM crawl_queue
			WHERE status = $1
			ORDER BY domain, last_attempt NULLS FIRST, attempt_count
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		UPDATE crawl_queue AS q
		SET status = $3, last_attempt = now(), attempt_count = q.attempt_count + 1
		FROM candidates
		WHERE q.url = candidates.url
		RETURNING q.url, q.status, q.domain, q.last_attempt, q.attempt_count`

	rows, err := db.Pool.Query(ctx, q, StatusQueued, n, StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	defer rows.Close()

	var entries []QueueEntry

	for rows.Next() {
		var e QueueEntry

		if err := rows.Scan(&e.URL, &e.Status, &e.Domain, &e.LastAttempt, &e.AttemptCount); err != nil {
			return nil, fmt.Errorf("scan claimed entry: %w", err)
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Mark transitions url to a terminal status and stamps last_attempt.
func (db *DB) Mark(ctx context.Context, url, status string) error {
	const q = `UPDATE crawl_queue SET status = $1, last_attempt = now() WHERE url = $2`

	if _, err := db.Pool.Exec(ctx, q, status, url); err != nil {
		return fmt.Errorf("mark queue entry: %w", err)
	}

	return nil
}

// ReapStale requeues in_progress entries whose last_attempt is older
// than ttl, recovering claims abandoned by a crashed worker. This is
// the watchdog mentioned as an open question in §4.4; SPEC_FULL.md
// resolves it with a default ttl of QUEUE_CLAIM_TTL_S.
func (db *DB) ReapStale(ctx context.Context, ttl time.Duration) (int64, error) {
	const q = `
		UPDATE crawl_queue
		SET status = $1
		WHERE status = $2 AND last_attempt < now() - ($3 * interval '1 second')`

	tag, err := db.Pool.Exec(ctx, q, StatusQueued, StatusInProgress, ttl.Seconds())
	if err != nil {
		return 0, fmt.Errorf("reap stale queue entries: %w", err)
	}

	return tag.RowsAffected(), nil
}

// QueueDepth returns the number of entries currently queued.
func (db *DB) QueueDepth(ctx context.Context) (int64, error) {
	const q = `SELECT COUNT(*) FROM crawl_queue WHERE status = $1`

	var count int64
	if err := db.Pool.QueryRow(ctx, q, StatusQueued).Scan(&count); err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}

	return count, nil
}
