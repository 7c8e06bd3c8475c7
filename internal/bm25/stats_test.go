package bm25_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/websearch-engine/internal/bm25"
)

func TestIDFDecreasesAsDocFrequencyRises(t *testing.T) {
	t.Parallel()

	rare := bm25.IDF(1000, 2)
	common := bm25.IDF(1000, 900)

	assert.Greater(t, rare, common)
}

func TestBuildTermStatsCarriesAvgDocLen(t *testing.T) {
	t.Parallel()

	stats := bm25.BuildTermStats(map[string]int64{"go": 10, "rust": 5}, 1000, 42.5)

	assert.Len(t, stats, 2)

	for _, s := range stats {
		assert.Equal(t, 42.5, s.AvgDocLen)
	}
}
