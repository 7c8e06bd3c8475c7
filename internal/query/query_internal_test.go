package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentScoreRewardsFullTermCoverage(t *testing.T) {
	t.Parallel()

	shape := parseQuery("golang concurrency")

	partial := scoreInput{tokenScore: 10, matchedTerms: 1, totalTerms: 2, title: "Golang tutorial", url: "https://example.com/go"}
	full := scoreInput{tokenScore: 10, matchedTerms: 2, totalTerms: 2, title: "Golang concurrency guide", url: "https://example.com/go-concurrency"}

	assert.Greater(t, IntentScore(full, shape), IntentScore(partial, shape))
}

func TestIntentScoreRewardsTitlePhraseMatch(t *testing.T) {
	t.Parallel()

	shape := parseQuery("rate limiting")

	withPhrase := scoreInput{tokenScore: 5, matchedTerms: 2, totalTerms: 2, title: "A guide to rate limiting in Go", url: "https://example.com/a"}
	without := scoreInput{tokenScore: 5, matchedTerms: 2, totalTerms: 2, title: "Limiting your rate of requests", url: "https://example.com/b"}

	assert.Greater(t, IntentScore(withPhrase, shape), IntentScore(without, shape))
}

func TestIntentScoreAddsNewsBonus(t *testing.T) {
	t.Parallel()

	shape := parseQuery("election results")

	web := scoreInput{tokenScore: 5, matchedTerms: 2, totalTerms: 2, title: "Election results", url: "https://example.com/a"}
	news := web
	news.isNews = true

	assert.Greater(t, IntentScore(news, shape), IntentScore(web, shape))
}

func TestCandidateLimitRespectsCeiling(t *testing.T) {
	t.Parallel()

	assert.Equal(t, maxCandidateLimit, candidateLimit(0, 1000))
	assert.Equal(t, 0+5+200, candidateLimit(0, 5))
}

func TestPageHandlesOutOfRangeOffset(t *testing.T) {
	t.Parallel()

	items := []scored{{result: Result{URL: "a"}, score: 1}}
	assert.Empty(t, page(items, 5, 10))
}

func TestPageNewsHandlesOutOfRangeOffset(t *testing.T) {
	t.Parallel()

	items := []newsScored{{result: NewsResult{URL: "a"}, score: 1}}
	assert.Empty(t, pageNews(items, 5, 10))
}

func TestPageNewsCarriesFeedIntoResult(t *testing.T) {
	t.Parallel()

	items := []newsScored{{
		result: NewsResult{URL: "a", Feed: FeedRef{Name: "BBC"}, Author: "Jane Doe"},
		score:  3.5,
	}}

	out := pageNews(items, 0, 10)
	require.Len(t, out, 1)
	assert.Equal(t, "BBC", out[0].Feed.Name)
	assert.Equal(t, "Jane Doe", out[0].Author)
	assert.Equal(t, 3.5, out[0].Score)
}

func TestSkeletonScoreRewardsFullCoverageWithoutTextSignals(t *testing.T) {
	t.Parallel()

	partial := skeletonScore(10, 1, 2)
	full := skeletonScore(10, 2, 2)

	assert.Greater(t, full, partial)
}
