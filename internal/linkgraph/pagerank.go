// Package linkgraph resolves outlinks into the document graph and
// computes PageRank over it, per §4.11.
package linkgraph

const (
	iterations = 20
	damping    = 0.85
)

// Score is one document's computed authority.
type Score struct {
	DocID       int64
	PageRank    float64
	InlinkCount int
}

// PageRank runs the power-iteration method over edges (a list of
// source->target document id pairs) across the full set of node ids.
// Dangling nodes (no outgoing edges) contribute nothing to the next
// iteration, matching the formulation in §4.11.
func PageRank(nodeIDs []int64, edges [][2]int64) []Score {
	n := len(nodeIDs)
	if n == 0 {
		return nil
	}

	index := make(map[int64]int, n)
	for i, id := range nodeIDs {
		index[id] = i
	}

	outdeg := make([]int, n)
	inlinks := make([][]int, n)
	inlinkCount := make([]int, n)

	for _, e := range edges {
		src, ok1 := index[e[0]]
		dst, ok2 := index[e[1]]

		if !ok1 || !ok2 {
			continue
		}

		outdeg[src]++
		inlinks[dst] = append(inlinks[dst], src)
		inlinkCount[dst]++
	}

	pr := make([]float64, n)
	for i := range pr {
		pr[i] = 1.0 / float64(n)
	}

	base := (1 - damping) / float64(n)

	for iter := 0; iter < iterations; iter++ {
		next := make([]float64, n)
		for v := 0; v < n; v++ {
			sum := 0.0
			for _, u := range inlinks[v] {
				if outdeg[u] > 0 {
					sum += pr[u] / float64(outdeg[u])
				}
			}

			next[v] = base + damping*sum
		}

		pr = next
	}

	scores := make([]Score, n)
	for i, id := range nodeIDs {
		scores[i] = Score{DocID: id, PageRank: pr[i], InlinkCount: inlinkCount[i]}
	}

	return scores
}

// ResolveEdges joins each source document's recorded outgoing target
// URLs against the set of known document URLs, returning distinct
// (source, target) id pairs, excluding self-loops, ready for
// RebuildResolvedLinks and PageRank.
func ResolveEdges(outgoing map[int64][]string, urlToID map[string]int64) [][2]int64 {
	seen := make(map[[2]int64]struct{})

	var edges [][2]int64

	for sourceID, targets := range outgoing {
		for _, target := range targets {
			targetID, ok := urlToID[target]
			if !ok || targetID == sourceID {
				continue
			}

			key := [2]int64{sourceID, targetID}
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}

			edges = append(edges, key)
		}
	}

	return edges
}
