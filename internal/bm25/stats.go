// Package bm25 computes corpus-wide term statistics used by C14's
// scoring pass, per §4.12.
package bm25

import "math"

// IDF computes ln((docTotal - df + 0.5)/(df + 0.5) + 1), the standard
// BM25 inverse document frequency.
func IDF(docTotal, df int64) float64 {
	return math.Log((float64(docTotal-df)+0.5)/(float64(df)+0.5) + 1)
}

// TermStat is one term's computed statistics, ready for
// ReplaceTermStatistics.
type TermStat struct {
	Term      string
	DocFreq   int64
	IDF       float64
	AvgDocLen float64
}

// BuildTermStats computes idf for every term in docFreq given the
// corpus-wide docTotal and avgDocLen, both precomputed by the caller
// from AverageDocumentLength/CountDoneDocuments.
func BuildTermStats(docFreq map[string]int64, docTotal int64, avgDocLen float64) []TermStat {
	stats := make([]TermStat, 0, len(docFreq))

	for term, df := range docFreq {
		stats = append(stats, TermStat{
			Term:      term,
			DocFreq:   df,
			IDF:       IDF(docTotal, df),
			AvgDocLen: avgDocLen,
		})
	}

	return stats
}
