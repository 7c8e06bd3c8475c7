package db

import "time"

// Document mirrors the documents table.
type Document struct {
	ID             int64
	URL            string
	CanonicalURL   string
	Title          string
	Description    string
	Content        string
	PublishedAt    *time.Time
	UpdatedAt      *time.Time
	WordCount      int
	QualityScore   float64
	FreshnessScore float64
	Status         string
	CreatedAt      time.Time
}

// UpsertDocumentParams carries the fields C8 supplies when persisting a
// successfully fetched page.
type UpsertDocumentParams struct {
	URL            string
	CanonicalURL   string
	Title          string
	Description    string
	Content        string
	PublishedAt    *time.Time
	UpdatedAt      *time.Time
	WordCount      int
	QualityScore   float64
	FreshnessScore float64
	Status         string
}

// Token mirrors the tokens table. Exactly one of DocID / ArticleURL is
// set, matching SourceType.
type Token struct {
	DocID      *int64
	ArticleURL *string
	SourceType int
	Term       string
	Field      int
	Frequency  int
	Positions  []int32
}

// QueueEntry mirrors a crawl_queue row.
type QueueEntry struct {
	URL          string
	Status       string
	Domain       string
	LastAttempt  *time.Time
	AttemptCount int
}

// NewsFeed mirrors the news_feeds table.
type NewsFeed struct {
	FeedURL            string
	HomeURL            string
	Name               string
	Link               string
	Image              string
	DiscoveredByURL    string
	LastPublished      *time.Time
	LastFetched        *time.Time
	NextFetchAt        *time.Time
	PublishRatePerHour float32
}

// UpsertFeedParams carries the fields used when registering or updating
// a feed discovered during extraction or seeded in bulk.
type UpsertFeedParams struct {
	FeedURL         string
	HomeURL         string
	Name            string
	Link            string
	Image           string
	DiscoveredByURL string
	LastPublished   *time.Time
}

// NewsArticle mirrors the news_articles table.
type NewsArticle struct {
	URL         string
	FeedURL     string
	Title       string
	Description string
	Image       string
	Content     string
	Author      string
	PublishedAt *time.Time
	UpdatedAt   *time.Time
}

// UpsertArticleParams carries the fields used by the news fetcher's
// COALESCE-merge upsert: blank fields never overwrite present ones.
type UpsertArticleParams struct {
	URL         string
	FeedURL     string
	Title       string
	Description string
	Image       string
	Content     string
	Author      string
	PublishedAt *time.Time
	UpdatedAt   *time.Time
}

// Fingerprint pairs a document with its SimHash value.
type Fingerprint struct {
	DocID       int64
	Fingerprint int64
}

// Authority pairs a document with its computed PageRank and indegree.
type Authority struct {
	DocID       int64
	PageRank    float64
	InlinkCount int
}

// TermStat mirrors a term_statistics row.
type TermStat struct {
	Term        string
	DocFreq     int64
	IDF         float64
	AvgDocLen   float64
}

// LexiconRow mirrors a spellcheck_dictionary row.
type LexiconRow struct {
	Word              string
	DocFrequency      int64
	TotalFrequency    int64
	ExternalFrequency int64
	PopularityScore   float64
}

// ResolvedEdge mirrors a links_resolved row.
type ResolvedEdge struct {
	SourceDocID int64
	TargetDocID int64
}
