// Package searchapi exposes the query engine and spell checker over
// HTTP: the "thin request/response framing" SPEC_FULL.md's Out of
// scope clause calls out as an external collaborator of the core, kept
// here as a direct consumer of internal/query and internal/spellcheck.
package searchapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/websearch-engine/internal/platform/observability"
	"github.com/lueurxax/websearch-engine/internal/query"
	"github.com/lueurxax/websearch-engine/internal/spellcheck"
)

const (
	defaultLimit      = 20
	maxLimit          = 100
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server serves the /search and /spellcheck endpoints.
type Server struct {
	engine  *query.Engine
	checker *spellcheck.Checker
	port    int
	logger  *zerolog.Logger
}

// NewServer returns a Server backed by engine and checker.
func NewServer(engine *query.Engine, checker *spellcheck.Checker, port int, logger *zerolog.Logger) *Server {
	return &Server{engine: engine, checker: checker, port: port, logger: logger}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/spellcheck", s.handleSpellcheck)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("search api server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// searchResult mirrors query.Result in the wire format.
type searchResult struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// feedRef mirrors query.FeedRef in the wire format.
type feedRef struct {
	Name    string `json:"name"`
	HomeURL string `json:"home_url"`
	Link    string `json:"link"`
}

// newsResult mirrors query.NewsResult in the wire format: §6 requires
// news hits to carry feed, author, and published_at beyond searchResult's
// shape.
type newsResult struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Score       float64    `json:"score"`
	Feed        feedRef    `json:"feed"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// searchResponse implements SPEC_FULL.md's segregated response-shape
// decision: {results:{web,news},count}, not a merged list.
type searchResponse struct {
	Results struct {
		Web  []searchResult `json:"web"`
		News []newsResult   `json:"news"`
	} `json:"results"`
	Count    int  `json:"count"`
	Degraded bool `json:"degraded,omitempty"`
}

func toWireResults(rs []query.Result) []searchResult {
	out := make([]searchResult, 0, len(rs))
	for _, r := range rs {
		out = append(out, searchResult{URL: r.URL, Title: r.Title, Description: r.Description, Score: r.Score})
	}

	return out
}

func toWireNewsResults(rs []query.NewsResult) []newsResult {
	out := make([]newsResult, 0, len(rs))
	for _, r := range rs {
		out = append(out, newsResult{
			URL: r.URL, Title: r.Title, Description: r.Description, Score: r.Score,
			Feed:        feedRef{Name: r.Feed.Name, HomeURL: r.Feed.HomeURL, Link: r.Feed.Link},
			Author:      r.Author,
			PublishedAt: r.PublishedAt,
		})
	}

	return out
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := r.URL.Query().Get("q")
	limit := parseIntDefault(r.URL.Query().Get("limit"), defaultLimit, 1, maxLimit)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0, 0, 0)

	resp, err := s.engine.Search(r.Context(), q, limit, offset)

	observability.SearchRequestDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())

	if err != nil {
		observability.SearchRequestsTotal.WithLabelValues("search", "error").Inc()
		writeError(w, http.StatusInternalServerError, err)

		return
	}

	observability.SearchRequestsTotal.WithLabelValues("search", "ok").Inc()

	out := searchResponse{Degraded: resp.Degraded}
	out.Results.Web = toWireResults(resp.Web)
	out.Results.News = toWireNewsResults(resp.News)
	out.Count = resp.ApproxTotal

	writeJSON(w, http.StatusOK, out)
}

// spellcheckResponse implements §6's exact shape: a single corrected
// string, or null when the checker declines to suggest one.
type spellcheckResponse struct {
	Suggestion *string `json:"suggestion"`
}

func (s *Server) handleSpellcheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := r.URL.Query().Get("q")

	corrected, _, ok := s.checker.Check(r.Context(), q)

	observability.SearchRequestDuration.WithLabelValues("spellcheck").Observe(time.Since(start).Seconds())
	observability.SearchRequestsTotal.WithLabelValues("spellcheck", "ok").Inc()

	out := spellcheckResponse{}
	if ok {
		observability.SpellcheckSuggestions.Inc()
		out.Suggestion = &corrected
	}

	writeJSON(w, http.StatusOK, out)
}

func parseIntDefault(raw string, def, min, max int) int {
	if raw == "" {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}

	if v < min {
		return min
	}

	if max > 0 && v > max {
		return max
	}

	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
