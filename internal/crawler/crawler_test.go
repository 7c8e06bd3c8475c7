package crawler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/websearch-engine/internal/crawler"
)

func TestQualityZeroWordsIsZero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, crawler.Quality(0, 0))
}

func TestQualityRewardsLongerContent(t *testing.T) {
	t.Parallel()

	short := crawler.Quality(50, 2)
	long := crawler.Quality(300, 2)

	assert.Less(t, short, long)
}

func TestQualityPenalizesLinkHeavyContent(t *testing.T) {
	t.Parallel()

	clean := crawler.Quality(300, 2)
	linky := crawler.Quality(300, 200)

	assert.Less(t, linky, clean)
}

func TestQualityPenaltyCapped(t *testing.T) {
	t.Parallel()

	// outlinkCount/wordCount far exceeds 0.4, penalty should clamp there:
	// full-length content (base 1) keeps 1 - 0.4.
	q := crawler.Quality(300, 1000)
	assert.InDelta(t, 0.6, q, 1e-9)
}

func TestFreshnessNoTimestampsUsesDefault(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.1, crawler.Freshness(nil, nil, time.Now()), 0.0001)
}

func TestFreshnessRecentArticleScoresHigh(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	published := now.Add(-24 * time.Hour)

	score := crawler.Freshness(nil, &published, now)
	assert.Greater(t, score, 0.9)
}

func TestFreshnessOldArticleScoresLow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	published := now.AddDate(-2, 0, 0)

	score := crawler.Freshness(nil, &published, now)
	assert.Equal(t, 0.0, score)
}

func TestFreshnessPrefersUpdatedOverPublished(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	oldPublished := now.AddDate(-2, 0, 0)
	recentUpdate := now.Add(-time.Hour)

	score := crawler.Freshness(&recentUpdate, &oldPublished, now)
	assert.Greater(t, score, 0.9)
}
