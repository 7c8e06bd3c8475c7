package tokenize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/websearch-engine/internal/tokenize"
)

func TestTokenizeDropsStopwordsAndStems(t *testing.T) {
	t.Parallel()

	freqs := tokenize.Tokenize("The runners are running and ran quickly")

	assert.NotContains(t, freqs, "the")
	assert.NotContains(t, freqs, "and")
	assert.NotContains(t, freqs, "are")

	// "running" stems to "run"; "runners" and "ran" keep stems of their own.
	var stems []string
	for term := range freqs {
		stems = append(stems, term)
	}

	assert.Contains(t, stems, "run")
}

func TestTokenizeQueryAndDocumentAlign(t *testing.T) {
	t.Parallel()

	doc := tokenize.Tokenize("Qwen Chat is a chat application")
	query := tokenize.Tokenize("chat")

	for term := range query {
		assert.Contains(t, doc, term)
	}
}

func TestWordsOrderAndDedup(t *testing.T) {
	t.Parallel()

	words := tokenize.Words("cloudflare status cloudflare update")
	assert.Equal(t, []string{"cloudflare", "status", "update"}, words)
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "qwen chat", tokenize.NormalizeText("  Qwen, Chat!! "))
}
