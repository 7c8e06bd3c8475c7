package newsfeed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/websearch-engine/internal/newsfeed"
)

func TestShardIndexIsWithinRange(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		idx := newsfeed.ShardIndex("https://example.com/feed.xml", 4)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 4)
	}
}

func TestShardIndexSingleNodeIsZero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, newsfeed.ShardIndex("https://example.com/feed.xml", 1))
}
