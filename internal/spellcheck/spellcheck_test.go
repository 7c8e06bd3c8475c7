package spellcheck_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	db "github.com/lueurxax/websearch-engine/internal/storage"
	"github.com/lueurxax/websearch-engine/internal/spellcheck"
)

type fakeLexicon struct {
	words map[string]db.LexiconRow
}

func (f *fakeLexicon) Lookup(_ context.Context, word string) (*db.LexiconRow, bool) {
	row, ok := f.words[word]
	if !ok {
		return nil, false
	}

	return &row, true
}

func (f *fakeLexicon) TrigramCandidates(_ context.Context, word string, minLen, maxLen, limit int) ([]db.LexiconRow, error) {
	var out []db.LexiconRow

	for w, row := range f.words {
		if w == word {
			continue
		}

		if len(w) < minLen || len(w) > maxLen {
			continue
		}

		if row.PopularityScore < 2.0 {
			continue
		}

		out = append(out, row)
	}

	return out, nil
}

func (f *fakeLexicon) FirstLetterCandidates(_ context.Context, word string, minLen, maxLen int, firstLetter byte, limit int) ([]db.LexiconRow, error) {
	var out []db.LexiconRow

	for w, row := range f.words {
		if len(w) < minLen || len(w) > maxLen || w[0] != firstLetter {
			continue
		}

		out = append(out, row)
	}

	return out, nil
}

func TestCheckCorrectsUnknownWordPreservingCase(t *testing.T) {
	t.Parallel()

	lex := &fakeLexicon{words: map[string]db.LexiconRow{
		"golang": {Word: "golang", PopularityScore: 10, DocFrequency: 50, TotalFrequency: 100},
	}}

	c := spellcheck.New(lex)

	corrected, suggestions, ok := c.Check(context.Background(), "Golnag tutorial")
	require.True(t, ok)
	assert.Equal(t, "Golang tutorial", corrected)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Golnag", suggestions[0].Original)
}

func TestCheckLeavesKnownPopularWordAlone(t *testing.T) {
	t.Parallel()

	lex := &fakeLexicon{words: map[string]db.LexiconRow{
		"golang": {Word: "golang", PopularityScore: 10},
	}}

	c := spellcheck.New(lex)

	corrected, _, ok := c.Check(context.Background(), "golang")
	assert.False(t, ok)
	assert.Equal(t, "golang", corrected)
}

func TestCheckReturnsNoSuggestionWhenNoCandidateQualifies(t *testing.T) {
	t.Parallel()

	lex := &fakeLexicon{words: map[string]db.LexiconRow{}}

	c := spellcheck.New(lex)

	_, _, ok := c.Check(context.Background(), "zzxqv")
	assert.False(t, ok)
}

func TestApplyCaseAllUpper(t *testing.T) {
	t.Parallel()

	lex := &fakeLexicon{words: map[string]db.LexiconRow{
		"golang": {Word: "golang", PopularityScore: 10, DocFrequency: 50, TotalFrequency: 100},
	}}

	c := spellcheck.New(lex)

	corrected, _, ok := c.Check(context.Background(), "GOLNAG")
	require.True(t, ok)
	assert.Equal(t, "GOLANG", corrected)
}
