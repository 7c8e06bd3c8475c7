// Package spellcheck implements candidate generation, OSA-distance
// ranking, and case-preserving correction of search queries, per
// §4.15.
package spellcheck

import (
	"context"
	"regexp"
	"sort"
	"strings"

	db "github.com/lueurxax/websearch-engine/internal/storage"
	"github.com/lueurxax/websearch-engine/internal/tokenize"
)

const (
	suspectThreshold = 3.0
	candidateCap     = 120
	lengthWindow     = 2
)

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{2,32}\b`)

// Lexicon resolves words to their scored lexicon entry, consulting an
// in-memory cache before falling back to the store.
type Lexicon interface {
	Lookup(ctx context.Context, word string) (*db.LexiconRow, bool)
	TrigramCandidates(ctx context.Context, word string, minLen, maxLen, limit int) ([]db.LexiconRow, error)
	FirstLetterCandidates(ctx context.Context, word string, minLen, maxLen int, firstLetter byte, limit int) ([]db.LexiconRow, error)
}

// Checker holds the lexicon source used to evaluate queries.
type Checker struct {
	lex Lexicon
}

// New returns a Checker backed by lex.
func New(lex Lexicon) *Checker {
	return &Checker{lex: lex}
}

// Suggestion is a single accepted word-level correction.
type Suggestion struct {
	Original  string
	Corrected string
}

// Check extracts candidate words from q, evaluates each for
// suspicion, and returns the corrected query string plus the list of
// word-level corrections applied. ok is false when no suspect word was
// correctable, matching §4.15 step 6 ("no suggestion").
func (c *Checker) Check(ctx context.Context, q string) (corrected string, suggestions []Suggestion, ok bool) {
	matches := wordPattern.FindAllStringIndex(q, -1)
	if len(matches) == 0 {
		return q, nil, false
	}

	type replacement struct {
		start, end int
		word       string
	}

	var repls []replacement

	for _, m := range matches {
		raw := q[m[0]:m[1]]
		lower := strings.ToLower(raw)

		if tokenize.IsStopword(lower) {
			continue
		}

		entry, known := c.lex.Lookup(ctx, lower)

		popularity := 0.0
		if known {
			popularity = entry.PopularityScore
		}

		if known && popularity >= suspectThreshold {
			continue
		}

		best, found := c.bestCorrection(ctx, lower, popularity, known)
		if !found {
			continue
		}

		repls = append(repls, replacement{start: m[0], end: m[1], word: applyCase(raw, best)})
		suggestions = append(suggestions, Suggestion{Original: raw, Corrected: applyCase(raw, best)})
	}

	if len(repls) == 0 {
		return q, nil, false
	}

	var b strings.Builder

	last := 0

	for _, r := range repls {
		b.WriteString(q[last:r.start])
		b.WriteString(r.word)

		last = r.end
	}

	b.WriteString(q[last:])

	return b.String(), suggestions, true
}

// bestCorrection implements §4.15 steps 4-5 for a single suspect word.
func (c *Checker) bestCorrection(ctx context.Context, word string, knownPopularity float64, known bool) (string, bool) {
	minLen := len(word) - lengthWindow
	if minLen < 2 {
		minLen = 2
	}

	maxLen := len(word) + lengthWindow

	candidates, err := c.lex.TrigramCandidates(ctx, word, minLen, maxLen, candidateCap)
	if err != nil || len(candidates) == 0 {
		if len(word) > 0 {
			candidates, _ = c.lex.FirstLetterCandidates(ctx, word, minLen, maxLen, word[0], candidateCap)
		}
	}

	maxDistance := 2
	if len(word) <= 3 {
		maxDistance = 1
	}

	type ranked struct {
		row      db.LexiconRow
		distance int
	}

	var ranks []ranked

	for _, cand := range candidates {
		if cand.Word == word {
			continue
		}

		d := OSADistance(word, cand.Word)
		if d > maxDistance {
			continue
		}

		if !accept(knownPopularity, known, cand.PopularityScore, d) {
			continue
		}

		ranks = append(ranks, ranked{row: cand, distance: d})
	}

	if len(ranks) == 0 {
		return "", false
	}

	sort.Slice(ranks, func(i, j int) bool {
		a, b := ranks[i], ranks[j]
		if a.distance != b.distance {
			return a.distance < b.distance
		}

		if a.row.PopularityScore != b.row.PopularityScore {
			return a.row.PopularityScore > b.row.PopularityScore
		}

		if a.row.DocFrequency != b.row.DocFrequency {
			return a.row.DocFrequency > b.row.DocFrequency
		}

		if a.row.TotalFrequency != b.row.TotalFrequency {
			return a.row.TotalFrequency > b.row.TotalFrequency
		}

		return a.row.Word < b.row.Word
	})

	return ranks[0].row.Word, true
}

// accept implements §4.15 step 5's acceptance policy.
func accept(knownPopularity float64, known bool, candPopularity float64, distance int) bool {
	if known && knownPopularity > 0 {
		threshold := 4.0
		if distance == 1 {
			threshold = 1.8
		}

		return candPopularity >= knownPopularity*threshold
	}

	threshold := 2.5
	if distance == 1 {
		threshold = 0.5
	}

	return candPopularity >= threshold
}

// applyCase rewrites replacement to match original's casing pattern:
// ALL-UPPER, Capitalized, or unchanged (lowercase/mixed).
func applyCase(original, replacement string) string {
	if original == strings.ToUpper(original) && original != strings.ToLower(original) {
		return strings.ToUpper(replacement)
	}

	runes := []rune(original)
	if len(runes) > 0 && runes[0] == []rune(strings.ToUpper(string(runes[0])))[0] &&
		string(runes[0]) != strings.ToLower(string(runes[0])) {
		r := []rune(replacement)
		if len(r) == 0 {
			return replacement
		}

		return strings.ToUpper(string(r[0])) + string(r[1:])
	}

	return replacement
}
