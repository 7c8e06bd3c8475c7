package spellcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	db "github.com/lueurxax/websearch-engine/internal/storage"
)

type metaWord struct {
	Word            string  `json:"word"`
	DocFrequency    int64   `json:"doc_frequency"`
	TotalFrequency  int64   `json:"total_frequency"`
	PopularityScore float64 `json:"popularity_score"`
}

// StoreLexicon adapts *db.DB plus an in-memory meta-file cache to the
// Lexicon interface: Lookup checks the cache first, falling back to
// the store only on a miss, per §4.15 step 2.
type StoreLexicon struct {
	store *db.DB
	cache map[string]db.LexiconRow
}

// NewStoreLexicon returns a StoreLexicon backed by store, with its
// cache populated from the meta file at path if present.
func NewStoreLexicon(store *db.DB, metaPath string) (*StoreLexicon, error) {
	sl := &StoreLexicon{store: store, cache: make(map[string]db.LexiconRow)}

	if metaPath == "" {
		return sl, nil
	}

	f, err := os.Open(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return sl, nil
		}

		return nil, fmt.Errorf("open spellcheck meta file: %w", err)
	}
	defer f.Close()

	var words []metaWord
	if err := json.NewDecoder(f).Decode(&words); err != nil {
		return nil, fmt.Errorf("decode spellcheck meta file: %w", err)
	}

	for _, w := range words {
		sl.cache[w.Word] = db.LexiconRow{
			Word: w.Word, DocFrequency: w.DocFrequency,
			TotalFrequency: w.TotalFrequency, PopularityScore: w.PopularityScore,
		}
	}

	return sl, nil
}

// Lookup satisfies Lexicon.
func (s *StoreLexicon) Lookup(ctx context.Context, word string) (*db.LexiconRow, bool) {
	if row, ok := s.cache[word]; ok {
		return &row, true
	}

	row, err := s.store.LexiconLookup(ctx, word)
	if err != nil || row == nil {
		return nil, false
	}

	return row, true
}

// TrigramCandidates satisfies Lexicon.
func (s *StoreLexicon) TrigramCandidates(ctx context.Context, word string, minLen, maxLen, limit int) ([]db.LexiconRow, error) {
	return s.store.TrigramCandidates(ctx, word, minLen, maxLen, limit)
}

// FirstLetterCandidates satisfies Lexicon.
func (s *StoreLexicon) FirstLetterCandidates(ctx context.Context, word string, minLen, maxLen int, firstLetter byte, limit int) ([]db.LexiconRow, error) {
	return s.store.FirstLetterCandidates(ctx, word, minLen, maxLen, firstLetter, limit)
}
