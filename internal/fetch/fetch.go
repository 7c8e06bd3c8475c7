// Package fetch performs the raw HTTP GET for the crawl worker,
// grounded on the teacher's core/links WebFetcher but stripped of its
// own rate limiting — that responsibility moves to internal/ratelimit
// so C8 can admit/reject without blocking the fetch itself.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxBodySizeBytes = 10 * 1024 * 1024

// Result is the raw response of a single fetch, handed to the
// extractor and classifier.
type Result struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher performs GET requests with a shared timeout and User-Agent,
// following redirects via the standard library default policy.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// New returns a Fetcher with the given per-request timeout and
// User-Agent string.
func New(timeout time.Duration, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch performs a GET against rawURL. Any transport-level error
// (timeout, DNS failure, connection refused) is returned as-is;
// callers classify it as a processing error per §4.8.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/rss+xml,application/atom+xml,application/xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
