package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ReplaceTermStatistics wholesale-replaces term_statistics, per §4.12:
// the table is recomputed and swapped in full each batch cycle rather
// than merged incrementally.
func (db *DB) ReplaceTermStatistics(ctx context.Context, stats []TermStat) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin term statistics tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "TRUNCATE term_statistics"); err != nil {
		return fmt.Errorf("truncate term statistics: %w", err)
	}

	rows := make([][]any, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []any{s.Term, s.DocFreq, s.IDF, s.AvgDocLen})
	}

	if len(rows) > 0 {
		_, err = tx.CopyFrom(ctx, pgx.Identifier{"term_statistics"},
			[]string{"term", "doc_frequency", "idf", "avg_doc_len"}, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy term statistics: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit term statistics tx: %w", err)
	}

	return nil
}

// TermStatsByTerm returns idf for the requested terms. C14 does not call
// it; WebCandidates joins term_statistics in SQL instead.
func (db *DB) TermStatsByTerm(ctx context.Context, terms []string) (map[string]TermStat, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	const q = `SELECT term, doc_frequency, idf, avg_doc_len FROM term_statistics WHERE term = ANY($1)`

	rows, err := db.Pool.Query(ctx, q, terms)
	if err != nil {
		return nil, fmt.Errorf("term stats by term: %w", err)
	}
	defer rows.Close()

	out := make(map[string]TermStat)

	for rows.Next() {
		var s TermStat
		if err := rows.Scan(&s.Term, &s.DocFreq, &s.IDF, &s.AvgDocLen); err != nil {
			return nil, fmt.Errorf("scan term stat: %w", err)
		}

		out[s.Term] = s
	}

	return out, rows.Err()
}
