package lexicon_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/websearch-engine/internal/lexicon"
)

func TestIngestCountedListScoresByCount(t *testing.T) {
	t.Parallel()

	out := make(lexicon.ExternalFrequencies)
	err := lexicon.IngestCountedList(strings.NewReader("apple 100\nbanana 10\n"), 1.0, out)
	require.NoError(t, err)

	assert.Greater(t, out["apple"], out["banana"])
}

func TestIngestRankedListScoresTopRankHigher(t *testing.T) {
	t.Parallel()

	out := make(lexicon.ExternalFrequencies)
	err := lexicon.IngestRankedList(strings.NewReader("the\nquick\nbrown\nfox\n"), 1.0, out)
	require.NoError(t, err)

	assert.Greater(t, out["the"], out["fox"])
}

func TestIngestSkipsNonAlphaWords(t *testing.T) {
	t.Parallel()

	out := make(lexicon.ExternalFrequencies)
	err := lexicon.IngestCountedList(strings.NewReader("a1b2 50\nx 50\n"), 1.0, out)
	require.NoError(t, err)

	assert.NotContains(t, out, "a1b2")
	assert.NotContains(t, out, "x") // length 1, below the [2,32] window
}

func TestCorpusWordsExtractsLowercaseAlpha(t *testing.T) {
	t.Parallel()

	words := lexicon.CorpusWords("Go 1.24 Release Notes!")
	assert.Equal(t, []string{"go", "release", "notes"}, words)
}

func TestPopularityScoreIncreasesWithEachFrequency(t *testing.T) {
	t.Parallel()

	base := lexicon.PopularityScore(0, 0, 0)
	withDoc := lexicon.PopularityScore(10, 0, 0)
	withTotal := lexicon.PopularityScore(0, 10, 0)
	withExternal := lexicon.PopularityScore(0, 0, 10)

	assert.Greater(t, withDoc, base)
	assert.Greater(t, withTotal, base)
	assert.Greater(t, withExternal, base)
}

func TestBuildOnlyKeepsAlphabeticWords(t *testing.T) {
	t.Parallel()

	entries := lexicon.Build(
		map[string]int64{"go": 5},
		map[string]int64{"go": 20, "x1": 10},
		lexicon.ExternalFrequencies{"go": 100},
	)

	var words []string
	for _, e := range entries {
		words = append(words, e.Word)
	}

	assert.Contains(t, words, "go")
	assert.NotContains(t, words, "x1")
}

func TestBuildCorpusFrequenciesCountsDocsNotOccurrences(t *testing.T) {
	t.Parallel()

	docFreq, totalFreq := lexicon.BuildCorpusFrequencies([]string{
		"go is great, go is fast",
		"go rocks",
	})

	assert.Equal(t, int64(2), docFreq["go"])
	assert.Equal(t, int64(3), totalFreq["go"])
	assert.Equal(t, int64(1), docFreq["rocks"])
}
