package db

import (
	"context"
	"fmt"
)

// ReplaceOutlinks atomically replaces the outgoing-link rows recorded
// for sourceDocID with targetURLs, mirroring the token-replacement
// discipline: a document's link set reflects only its latest crawl.
func (db *DB) ReplaceOutlinks(ctx context.Context, sourceDocID int64, targetURLs []string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin outlinks tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM links_outgoing WHERE source_doc_id = $1", sourceDocID); err != nil {
		return fmt.Errorf("delete existing outlinks: %w", err)
	}

	for _, target := range targetURLs {
		_, err := tx.Exec(ctx,
			`INSERT INTO links_outgoing (source_doc_id, target_url) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			sourceDocID, target)
		if err != nil {
			return fmt.Errorf("insert outlink: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit outlinks tx: %w", err)
	}

	return nil
}

// RebuildResolvedLinks truncates links_resolved and repopulates it with
// distinct (source_doc_id, target_doc_id) pairs for every outgoing link
// whose target_url matches a known document, ready for PageRank. It is
// the Postgres-side half of C11's link-graph rebuild; the Go side joins
// against AllDoneDocumentURLs to resolve target_url to an id, since the
// document table is keyed by url rather than a foreign key on
// links_outgoing.
func (db *DB) RebuildResolvedLinks(ctx context.Context, edges []ResolvedEdge) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin resolved links tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "TRUNCATE links_resolved"); err != nil {
		return fmt.Errorf("truncate links_resolved: %w", err)
	}

	for _, e := range edges {
		if e.SourceDocID == e.TargetDocID {
			continue
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO links_resolved (source_doc_id, target_doc_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			e.SourceDocID, e.TargetDocID)
		if err != nil {
			return fmt.Errorf("insert resolved link: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit resolved links tx: %w", err)
	}

	return nil
}

// AllOutgoingTargets returns every (source_doc_id, target_url) pair
// currently recorded, for the link-graph rebuild to resolve against
// known document URLs.
func (db *DB) AllOutgoingTargets(ctx context.Context) (map[int64][]string, error) {
	const q = `SELECT source_doc_id, target_url FROM links_outgoing`

	rows, err := db.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("all outgoing targets: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]string)

	for rows.Next() {
		var (
			sourceID int64
			target   string
		)

		if err := rows.Scan(&sourceID, &target); err != nil {
			return nil, fmt.Errorf("scan outgoing target: %w", err)
		}

		out[sourceID] = append(out[sourceID], target)
	}

	return out, rows.Err()
}

// AllResolvedEdges returns every (source, target) pair in links_resolved,
// the adjacency list PageRank iterates over.
func (db *DB) AllResolvedEdges(ctx context.Context) ([]ResolvedEdge, error) {
	const q = `SELECT source_doc_id, target_doc_id FROM links_resolved`

	rows, err := db.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("all resolved edges: %w", err)
	}
	defer rows.Close()

	var edges []ResolvedEdge

	for rows.Next() {
		var e ResolvedEdge
		if err := rows.Scan(&e.SourceDocID, &e.TargetDocID); err != nil {
			return nil, fmt.Errorf("scan resolved edge: %w", err)
		}

		edges = append(edges, e)
	}

	return edges, rows.Err()
}
