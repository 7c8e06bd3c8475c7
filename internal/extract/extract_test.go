package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/websearch-engine/internal/extract"
)

const samplePage = `
<html>
<head>
	<title>Example Page</title>
	<meta name="description" content="An example page about Go testing.">
	<link rel="alternate" type="application/rss+xml" href="/feed.xml">
</head>
<body>
	<article>
		<p>This is a long enough piece of body content to pass the minimum
		content length validation check so that the document is accepted
		by the crawl worker's validation policy during a test run.</p>
	</article>
	<a href="/other-page">Other page</a>
	<a href="https://external.example/path?utm_source=x">External</a>
</body>
</html>`

func TestExtractTitleAndDescription(t *testing.T) {
	t.Parallel()

	page, err := extract.Extract([]byte(samplePage), "https://example.com/article")
	require.NoError(t, err)

	assert.Equal(t, "Example Page", page.Title)
	assert.Equal(t, "An example page about Go testing.", page.Description)
}

func TestExtractOutlinksNormalizedAndDeduped(t *testing.T) {
	t.Parallel()

	page, err := extract.Extract([]byte(samplePage), "https://example.com/article")
	require.NoError(t, err)

	assert.Contains(t, page.Outlinks, "https://example.com/other-page")
	assert.Contains(t, page.Outlinks, "https://external.example/path")
}

func TestExtractFeedLinks(t *testing.T) {
	t.Parallel()

	page, err := extract.Extract([]byte(samplePage), "https://example.com/article")
	require.NoError(t, err)

	assert.Contains(t, page.FeedLinks, "https://example.com/feed.xml")
}

func TestPageValidRequiresAllFields(t *testing.T) {
	t.Parallel()

	p := &extract.Page{Title: "T", Description: "D", Content: ""}
	assert.False(t, p.Valid())
}
