// Package lexicon builds the scored spellcheck dictionary from external
// word-frequency lists and the crawled corpus, per §4.13.
package lexicon

import (
	"bufio"
	"encoding/json"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	db "github.com/lueurxax/websearch-engine/internal/storage"
)

var alphaWord = regexp.MustCompile(`^[a-z]{2,32}$`)

// CountedLineScore scores a "word<sep>count" line per §4.13: counted
// lines contribute ln(1+count)*6*weight.
func CountedLineScore(count int64, weight float64) int64 {
	return int64(math.Log(1+float64(count)) * 6 * weight)
}

// RankedLineScore scores a word at the given 1-based rank out of limit
// entries: ln(1 + max(1, limit-rank+1))*5*weight.
func RankedLineScore(rank, limit int, weight float64) int64 {
	remaining := limit - rank + 1
	if remaining < 1 {
		remaining = 1
	}

	return int64(math.Log(1+float64(remaining)) * 5 * weight)
}

// ExternalFrequencies accumulates external_frequency per normalized
// word, keeping only alphabetic words of length >= 2.
type ExternalFrequencies map[string]int64

func (e ExternalFrequencies) add(word string, score int64) {
	word = strings.ToLower(strings.TrimSpace(word))
	if !alphaWord.MatchString(word) {
		return
	}

	e[word] += score
}

// IngestCountedList reads "word count" pairs (whitespace separated),
// one per line, scoring each with CountedLineScore.
func IngestCountedList(r io.Reader, weight float64, out ExternalFrequencies) error {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		count, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}

		out.add(fields[0], CountedLineScore(count, weight))
	}

	return scanner.Err()
}

// IngestRankedList reads one word per line, in descending-popularity
// rank order, scoring each with RankedLineScore.
func IngestRankedList(r io.Reader, weight float64, out ExternalFrequencies) error {
	lines := make([]string, 0, 1024)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			lines = append(lines, word)
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	limit := len(lines)

	for i, word := range lines {
		out.add(word, RankedLineScore(i+1, limit, weight))
	}

	return nil
}

var corpusWordPattern = regexp.MustCompile(`[a-z]{2,32}`)

// CorpusWords extracts every alphabetic word-regex match from text,
// for aggregating total_frequency and doc_frequency over document and
// article title/description/content.
func CorpusWords(text string) []string {
	return corpusWordPattern.FindAllString(strings.ToLower(text), -1)
}

// BuildCorpusFrequencies scans texts (one entry per document or
// article) through CorpusWords, accumulating total_frequency (every
// occurrence) and doc_frequency (distinct documents containing the
// word), per §4.13. Unlike the stemmed tokens table, this operates on
// real dictionary words.
func BuildCorpusFrequencies(texts []string) (docFreq, totalFreq map[string]int64) {
	docFreq = make(map[string]int64)
	totalFreq = make(map[string]int64)

	for _, text := range texts {
		words := CorpusWords(text)

		seen := make(map[string]struct{}, len(words))

		for _, w := range words {
			totalFreq[w]++

			if _, ok := seen[w]; !ok {
				docFreq[w]++
				seen[w] = struct{}{}
			}
		}
	}

	return docFreq, totalFreq
}

// PopularityScore computes ln(1+docFreq)*4 + ln(1+totalFreq)*2 +
// ln(1+extFreq)*3, per §4.13's final scoring formula.
func PopularityScore(docFreq, totalFreq, extFreq int64) float64 {
	return math.Log(1+float64(docFreq))*4 +
		math.Log(1+float64(totalFreq))*2 +
		math.Log(1+float64(extFreq))*3
}

// Entry is one scored lexicon row, ready to stage into the store.
type Entry struct {
	Word              string
	DocFrequency      int64
	TotalFrequency    int64
	ExternalFrequency int64
	PopularityScore   float64
}

// Build merges per-document corpus word counts, a corpus-wide total
// frequency map, and external frequencies into scored Entry rows for
// every alphabetic word of length [2,32].
func Build(docFreq, totalFreq map[string]int64, external ExternalFrequencies) []Entry {
	words := make(map[string]struct{}, len(totalFreq)+len(external))
	for w := range totalFreq {
		words[w] = struct{}{}
	}

	for w := range external {
		words[w] = struct{}{}
	}

	entries := make([]Entry, 0, len(words))

	for w := range words {
		if !alphaWord.MatchString(w) {
			continue
		}

		df := docFreq[w]
		tf := totalFreq[w]
		ef := external[w]

		entries = append(entries, Entry{
			Word:              w,
			DocFrequency:      df,
			TotalFrequency:    tf,
			ExternalFrequency: ef,
			PopularityScore:   PopularityScore(df, tf, ef),
		})
	}

	return entries
}

// ToStorageRows converts Entry values to the storage layer's row type.
func ToStorageRows(entries []Entry) []db.LexiconRow {
	rows := make([]db.LexiconRow, len(entries))
	for i, e := range entries {
		rows[i] = db.LexiconRow{
			Word:              e.Word,
			DocFrequency:      e.DocFrequency,
			TotalFrequency:    e.TotalFrequency,
			ExternalFrequency: e.ExternalFrequency,
			PopularityScore:   e.PopularityScore,
		}
	}

	return rows
}

// metaWord is the on-disk shape of the spellcheck meta file.
type metaWord struct {
	Word            string  `json:"word"`
	DocFrequency    int64   `json:"doc_frequency"`
	TotalFrequency  int64   `json:"total_frequency"`
	PopularityScore float64 `json:"popularity_score"`
}

// WriteMetaFile writes the top maxWords entries by popularity to path
// as JSON, for the spell checker's in-memory cache to load at startup.
func WriteMetaFile(path string, entries []Entry, maxWords int) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PopularityScore > sorted[j].PopularityScore
	})

	if len(sorted) > maxWords {
		sorted = sorted[:maxWords]
	}

	words := make([]metaWord, len(sorted))
	for i, e := range sorted {
		words[i] = metaWord{
			Word:            e.Word,
			DocFrequency:    e.DocFrequency,
			TotalFrequency:  e.TotalFrequency,
			PopularityScore: e.PopularityScore,
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(words)
}
