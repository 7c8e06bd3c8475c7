package linkgraph_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/websearch-engine/internal/linkgraph"
)

func TestPageRankSumsToApproximatelyOne(t *testing.T) {
	t.Parallel()

	nodes := []int64{1, 2, 3}
	edges := [][2]int64{{1, 2}, {2, 3}, {3, 1}, {1, 3}}

	scores := linkgraph.PageRank(nodes, edges)

	sum := 0.0
	for _, s := range scores {
		sum += s.PageRank
	}

	assert.InDelta(t, 1.0, sum, 0.01)
}

func TestPageRankFavorsMoreInlinks(t *testing.T) {
	t.Parallel()

	nodes := []int64{1, 2, 3}
	// Everyone links to 3.
	edges := [][2]int64{{1, 3}, {2, 3}}

	scores := linkgraph.PageRank(nodes, edges)

	var prByID = make(map[int64]float64)
	for _, s := range scores {
		prByID[s.DocID] = s.PageRank
	}

	assert.Greater(t, prByID[3], prByID[1])
	assert.Greater(t, prByID[3], prByID[2])
}

func TestPageRankDanglingNodeContributesNothing(t *testing.T) {
	t.Parallel()

	nodes := []int64{1, 2}
	var edges [][2]int64 // no edges at all: both dangling

	scores := linkgraph.PageRank(nodes, edges)
	for _, s := range scores {
		assert.False(t, math.IsNaN(s.PageRank))
		assert.InDelta(t, (1-0.85)/2, s.PageRank, 0.001)
	}
}

func TestResolveEdgesExcludesSelfLoopsAndUnknownTargets(t *testing.T) {
	t.Parallel()

	outgoing := map[int64][]string{
		1: {"https://a.example/x", "https://self.example/", "https://unknown.example/"},
	}
	urlToID := map[string]int64{
		"https://a.example/x":    2,
		"https://self.example/":  1,
	}

	edges := linkgraph.ResolveEdges(outgoing, urlToID)

	assert.Equal(t, [][2]int64{{1, 2}}, edges)
}
