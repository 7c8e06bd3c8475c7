package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertLexiconBulk stages every row in entries and merges it into
// spellcheck_dictionary, then deletes any existing row absent from the
// staged set, per §4.13: the lexicon always reflects exactly the words
// seen in the current build pass.
func (db *DB) UpsertLexiconBulk(ctx context.Context, entries []LexiconRow) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin lexicon tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		CREATE TEMPORARY TABLE lexicon_staging (
			word TEXT, doc_frequency BIGINT, total_frequency BIGINT,
			external_frequency BIGINT, popularity_score DOUBLE PRECISION
		) ON COMMIT DROP`)
	if err != nil {
		return fmt.Errorf("create lexicon staging: %w", err)
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{e.Word, e.DocFrequency, e.TotalFrequency, e.ExternalFrequency, e.PopularityScore})
	}

	if len(rows) > 0 {
		_, err = tx.CopyFrom(ctx, pgx.Identifier{"lexicon_staging"},
			[]string{"word", "doc_frequency", "total_frequency", "external_frequency", "popularity_score"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy lexicon staging: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO spellcheck_dictionary (word, doc_frequency, total_frequency, external_frequency, popularity_score)
		SELECT word, doc_frequency, total_frequency, external_frequency, popularity_score FROM lexicon_staging
		ON CONFLICT (word) DO UPDATE SET
			doc_frequency = EXCLUDED.doc_frequency,
			total_frequency = EXCLUDED.total_frequency,
			external_frequency = EXCLUDED.external_frequency,
			popularity_score = EXCLUDED.popularity_score`)
	if err != nil {
		return fmt.Errorf("merge lexicon staging: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM spellcheck_dictionary
		WHERE word NOT IN (SELECT word FROM lexicon_staging)`)
	if err != nil {
		return fmt.Errorf("delete absent lexicon rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit lexicon tx: %w", err)
	}

	return nil
}

// TopLexiconWords returns the top limit words by popularity_score. The
// spell-check meta file is not built from it; the batch runner writes
// that file from the lexicon builder's in-memory entries.
func (db *DB) TopLexiconWords(ctx context.Context, limit int) ([]LexiconRow, error) {
	const q = `
		SELECT word, doc_frequency, total_frequency, external_frequency, popularity_score
		FROM spellcheck_dictionary
		ORDER BY popularity_score DESC
		LIMIT $1`

	rows, err := db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("top lexicon words: %w", err)
	}
	defer rows.Close()

	var out []LexiconRow

	for rows.Next() {
		var r LexiconRow
		if err := rows.Scan(&r.Word, &r.DocFrequency, &r.TotalFrequency, &r.ExternalFrequency, &r.PopularityScore); err != nil {
			return nil, fmt.Errorf("scan lexicon row: %w", err)
		}

		out = append(out, r)
	}

	return out, rows.Err()
}

// LexiconLookup fetches a single lexicon row by exact word, the
// fallback path used when a word is absent from the spell checker's
// in-memory meta-file cache.
func (db *DB) LexiconLookup(ctx context.Context, word string) (*LexiconRow, error) {
	const q = `
		SELECT word, doc_frequency, total_frequency, external_frequency, popularity_score
		FROM spellcheck_dictionary WHERE word = $1`

	var r LexiconRow
	if err := db.Pool.QueryRow(ctx, q, word).Scan(&r.Word, &r.DocFrequency, &r.TotalFrequency, &r.ExternalFrequency, &r.PopularityScore); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("lexicon lookup: %w", err)
	}

	return &r, nil
}

// TrigramCandidates returns words within the given length window whose
// trigram similarity to word exceeds the pg_trgm threshold, ordered by
// similarity desc then popularity desc, capped at limit. This is the
// primary candidate-generation path in §4.15 step 4.
func (db *DB) TrigramCandidates(ctx context.Context, word string, minLen, maxLen, limit int) ([]LexiconRow, error) {
	const q = `
		SELECT word, doc_frequency, total_frequency, external_frequency, popularity_score
		FROM spellcheck_dictionary
		WHERE length(word) BETWEEN $1 AND $2
		  AND popularity_score >= 2.0
		  AND word % $3
		ORDER BY similarity(word, $3) DESC, popularity_score DESC
		LIMIT $4`

	rows, err := db.Pool.Query(ctx, q, minLen, maxLen, word, limit)
	if err != nil {
		return nil, fmt.Errorf("trigram candidates: %w", err)
	}
	defer rows.Close()

	var out []LexiconRow

	for rows.Next() {
		var r LexiconRow
		if err := rows.Scan(&r.Word, &r.DocFrequency, &r.TotalFrequency, &r.ExternalFrequency, &r.PopularityScore); err != nil {
			return nil, fmt.Errorf("scan trigram candidate: %w", err)
		}

		out = append(out, r)
	}

	return out, rows.Err()
}

// FirstLetterCandidates returns words within the given length window
// sharing word's first letter, ordered by popularity desc, capped at
// limit. Used when trigram similarity is unavailable (§4.15 step 4
// fallback).
func (db *DB) FirstLetterCandidates(ctx context.Context, word string, minLen, maxLen int, firstLetter byte, limit int) ([]LexiconRow, error) {
	const q = `
		SELECT word, doc_frequency, total_frequency, external_frequency, popularity_score
		FROM spellcheck_dictionary
		WHERE length(word) BETWEEN $1 AND $2
		  AND popularity_score >= 2.0
		  AND left(word, 1) = $3
		ORDER BY popularity_score DESC
		LIMIT $4`

	rows, err := db.Pool.Query(ctx, q, minLen, maxLen, string(firstLetter), limit)
	if err != nil {
		return nil, fmt.Errorf("first letter candidates: %w", err)
	}
	defer rows.Close()

	var out []LexiconRow

	for rows.Next() {
		var r LexiconRow
		if err := rows.Scan(&r.Word, &r.DocFrequency, &r.TotalFrequency, &r.ExternalFrequency, &r.PopularityScore); err != nil {
			return nil, fmt.Errorf("scan first-letter candidate: %w", err)
		}

		out = append(out, r)
	}

	return out, rows.Err()
}
