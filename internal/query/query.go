// Package query implements candidate retrieval, intent scoring, and
// pagination for search requests, per §4.14.
package query

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	db "github.com/lueurxax/websearch-engine/internal/storage"
	"github.com/lueurxax/websearch-engine/internal/tokenize"
)

// Result is a single scored, ready-to-display web hit.
type Result struct {
	URL         string
	Title       string
	Description string
	Score       float64
}

// FeedRef identifies the feed a news hit came from, per §6's
// `feed{…}` object.
type FeedRef struct {
	Name    string
	HomeURL string
	Link    string
}

// NewsResult is a single scored, ready-to-display news hit. It carries
// the fields §6 requires beyond Result: feed, author, published_at.
type NewsResult struct {
	URL         string
	Title       string
	Description string
	Score       float64
	Feed        FeedRef
	Author      string
	PublishedAt *time.Time
}

// Response is the paginated outcome of a search, segregating web and
// news hits per SPEC_FULL.md's response-shape decision.
type Response struct {
	Web         []Result
	News        []NewsResult
	ApproxTotal int
	Degraded    bool
}

const (
	maxCandidateLimit = 2000
	minCandidateBase  = 10
)

// candidateLimit implements §4.14 step 5.
func candidateLimit(offset, limit int) int {
	byOffset := offset + limit + 200
	byMultiple := minCandidateBase * limit

	cl := byOffset
	if byMultiple > cl {
		cl = byMultiple
	}

	if cl > maxCandidateLimit {
		cl = maxCandidateLimit
	}

	return cl
}

// queryShape is the parsed, derived form of a raw query string, per
// §4.14 steps 1-4.
type queryShape struct {
	terms        []string
	words        []string
	phrase       string
	compact      string
}

func parseQuery(q string) queryShape {
	freqs := tokenize.Tokenize(q)

	terms := make([]string, 0, len(freqs))
	for t := range freqs {
		terms = append(terms, t)
	}

	words := tokenize.Words(q)
	phrase := tokenize.NormalizeText(q)
	compact := strings.Join(words, "")

	return queryShape{terms: terms, words: words, phrase: phrase, compact: compact}
}

// scoreInput carries everything IntentScore needs about one candidate.
type scoreInput struct {
	tokenScore   float64
	matchedTerms int
	totalTerms   int
	title        string
	url          string
	description  string
	isNews       bool
}

const (
	weightCoverage        = 25.0
	weightFullCoverage    = 40.0
	weightPhraseTitle     = 140.0
	weightPhraseURL       = 70.0
	weightPhraseDesc      = 25.0
	weightCompactURL      = 90.0
	weightTitleHit        = 22.0
	weightURLHit          = 16.0
	weightCompactURLHit   = 12.0
	weightFullTitleWords  = 80.0
	weightFullURLWords    = 55.0
	weightFullCompactURL  = 45.0
	weightNewsBonus       = 8.0
)

// IntentScore computes §4.14 step 8's composite ranking score for one
// candidate against the parsed query.
func IntentScore(in scoreInput, q queryShape) float64 {
	base := math.Log(1+math.Max(in.tokenScore, 0)) * 12

	score := base

	if in.totalTerms > 0 {
		score += (float64(in.matchedTerms) / float64(in.totalTerms)) * weightCoverage
		if in.matchedTerms == in.totalTerms {
			score += weightFullCoverage
		}
	}

	normTitle := tokenize.NormalizeText(in.title)
	lowerURL := strings.ToLower(in.url)
	compactURL := strings.ReplaceAll(strings.ReplaceAll(lowerURL, "/", ""), "-", "")
	normDesc := tokenize.NormalizeText(in.description)

	if q.phrase != "" {
		if strings.Contains(normTitle, q.phrase) {
			score += weightPhraseTitle
		}

		if strings.Contains(lowerURL, q.phrase) {
			score += weightPhraseURL
		}

		if strings.Contains(normDesc, q.phrase) {
			score += weightPhraseDesc
		}
	}

	if q.compact != "" && strings.Contains(compactURL, q.compact) {
		score += weightCompactURL
	}

	titleHits, urlHits, compactHits := 0, 0, 0
	allTitle, allURL, allCompact := len(q.words) > 0, len(q.words) > 0, len(q.words) > 0

	for _, w := range q.words {
		inTitle := strings.Contains(normTitle, w)
		inURL := strings.Contains(lowerURL, w)
		inCompact := strings.Contains(compactURL, w)

		if inTitle {
			titleHits++
		} else {
			allTitle = false
		}

		if inURL {
			urlHits++
		} else {
			allURL = false
		}

		if inCompact {
			compactHits++
		} else {
			allCompact = false
		}
	}

	score += float64(titleHits)*weightTitleHit + float64(urlHits)*weightURLHit + float64(compactHits)*weightCompactURLHit

	if allTitle {
		score += weightFullTitleWords
	}

	if allURL {
		score += weightFullURLWords
	}

	if allCompact {
		score += weightFullCompactURL
	}

	if in.isNews {
		score += weightNewsBonus
	}

	return score
}

// scored pairs a candidate with its computed score, for sorting.
type scored struct {
	result Result
	score  float64
}

// newsScored is scored's news-side counterpart.
type newsScored struct {
	result NewsResult
	score  float64
}

// Engine executes search requests against the storage gateway.
type Engine struct {
	store *db.DB
}

// New returns a query Engine backed by store.
func New(store *db.DB) *Engine {
	return &Engine{store: store}
}

// Search implements §4.14 end to end: parse, retrieve, score, sort,
// paginate.
func (e *Engine) Search(ctx context.Context, q string, limit, offset int) (*Response, error) {
	if strings.TrimSpace(q) == "" {
		return &Response{}, nil
	}

	shape := parseQuery(q)
	if len(shape.terms) == 0 {
		return &Response{}, nil
	}

	cl := candidateLimit(offset, limit)

	webCands, err := e.store.WebCandidates(ctx, shape.terms, cl)
	if err != nil {
		return e.degradedFallback(ctx, shape, cl, limit, offset), nil
	}

	newsCands, err := e.store.NewsCandidates(ctx, shape.terms, cl)
	if err != nil {
		return e.degradedFallback(ctx, shape, cl, limit, offset), nil
	}

	totalTerms := len(shape.terms)

	webItems := make([]scored, 0, len(webCands))
	for _, c := range webCands {
		in := scoreInput{
			tokenScore: c.TokenScore, matchedTerms: c.MatchedTerms, totalTerms: totalTerms,
			title: c.Title, url: c.URL, description: c.Description,
		}
		webItems = append(webItems, scored{
			result: Result{URL: c.URL, Title: c.Title, Description: c.Description},
			score:  IntentScore(in, shape),
		})
	}

	newsItems := make([]newsScored, 0, len(newsCands))
	for _, c := range newsCands {
		in := scoreInput{
			tokenScore: c.TokenScore, matchedTerms: c.MatchedTerms, totalTerms: totalTerms,
			title: c.Title, url: c.URL, description: c.Description, isNews: true,
		}
		newsItems = append(newsItems, newsScored{
			result: NewsResult{
				URL: c.URL, Title: c.Title, Description: c.Description,
				Feed:        FeedRef{Name: c.FeedName, HomeURL: c.FeedHomeURL, Link: c.FeedLink},
				Author:      c.Author,
				PublishedAt: c.PublishedAt,
			},
			score: IntentScore(in, shape),
		})
	}

	sortScored(webItems)
	sortNewsScored(newsItems)

	return &Response{
		Web:         page(webItems, offset, limit),
		News:        pageNews(newsItems, offset, limit),
		ApproxTotal: len(webItems) + len(newsItems),
	}, nil
}

func sortScored(items []scored) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}

		return items[i].result.URL < items[j].result.URL
	})
}

func page(items []scored, offset, limit int) []Result {
	if offset >= len(items) {
		return nil
	}

	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	out := make([]Result, 0, end-offset)
	for _, s := range items[offset:end] {
		r := s.result
		r.Score = s.score
		out = append(out, r)
	}

	return out
}

func sortNewsScored(items []newsScored) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}

		return items[i].result.URL < items[j].result.URL
	})
}

func pageNews(items []newsScored, offset, limit int) []NewsResult {
	if offset >= len(items) {
		return nil
	}

	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	out := make([]NewsResult, 0, end-offset)
	for _, s := range items[offset:end] {
		r := s.result
		r.Score = s.score
		out = append(out, r)
	}

	return out
}

// skeletonScore implements §4.14's degraded ranking: the damped
// base+coverage terms from IntentScore, with no phrase/url/title bonus
// since the skeleton projection carries no free text to match against.
func skeletonScore(tokenScore float64, matchedTerms, totalTerms int) float64 {
	score := math.Log(1+math.Max(tokenScore, 0)) * 12

	if totalTerms > 0 {
		score += (float64(matchedTerms) / float64(totalTerms)) * weightCoverage
		if matchedTerms == totalTerms {
			score += weightFullCoverage
		}
	}

	return score
}

// degradedFallback implements §4.14's fallback: when the primary
// candidate query faults, retry under ASCII client encoding projecting
// only url and the numeric ranking inputs, and rank what comes back by
// skeletonScore instead of returning nothing.
func (e *Engine) degradedFallback(ctx context.Context, shape queryShape, cl, limit, offset int) *Response {
	totalTerms := len(shape.terms)

	webCands, err := e.store.WebCandidatesSkeleton(ctx, shape.terms, cl)
	if err != nil {
		webCands = nil
	}

	newsCands, err := e.store.NewsCandidatesSkeleton(ctx, shape.terms, cl)
	if err != nil {
		newsCands = nil
	}

	webItems := make([]scored, 0, len(webCands))
	for _, c := range webCands {
		webItems = append(webItems, scored{
			result: Result{URL: c.URL},
			score:  skeletonScore(c.TokenScore, c.MatchedTerms, totalTerms),
		})
	}

	newsItems := make([]newsScored, 0, len(newsCands))
	for _, c := range newsCands {
		newsItems = append(newsItems, newsScored{
			result: NewsResult{URL: c.URL},
			score:  skeletonScore(c.TokenScore, c.MatchedTerms, totalTerms),
		})
	}

	sortScored(webItems)
	sortNewsScored(newsItems)

	return &Response{
		Web:         page(webItems, offset, limit),
		News:        pageNews(newsItems, offset, limit),
		ApproxTotal: len(webItems) + len(newsItems),
		Degraded:    true,
	}
}
