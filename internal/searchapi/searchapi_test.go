package searchapi

import (
	"encoding/json"
	"testing"

	"github.com/lueurxax/websearch-engine/internal/query"
)

func TestParseIntDefaultEmptyUsesDefault(t *testing.T) {
	if got := parseIntDefault("", 20, 1, 100); got != 20 {
		t.Fatalf("got %d, want 20", got)
	}
}

func TestParseIntDefaultClampsToMax(t *testing.T) {
	if got := parseIntDefault("500", 20, 1, 100); got != 100 {
		t.Fatalf("got %d, want 100", got)
	}
}

func TestParseIntDefaultClampsToMin(t *testing.T) {
	if got := parseIntDefault("-5", 20, 1, 100); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestParseIntDefaultInvalidUsesDefault(t *testing.T) {
	if got := parseIntDefault("not-a-number", 20, 1, 100); got != 20 {
		t.Fatalf("got %d, want 20", got)
	}
}

func TestParseIntDefaultNoMaxUncapped(t *testing.T) {
	if got := parseIntDefault("50000", 0, 0, 0); got != 50000 {
		t.Fatalf("got %d, want 50000", got)
	}
}

func TestSpellcheckResponseNullSuggestionWhenDeclined(t *testing.T) {
	out := spellcheckResponse{}

	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if got, want := string(raw), `{"suggestion":null}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestSpellcheckResponseCarriesSuggestion(t *testing.T) {
	corrected := "golang"
	out := spellcheckResponse{Suggestion: &corrected}

	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if got, want := string(raw), `{"suggestion":"golang"}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestToWireNewsResultsCarriesFeedAuthorPublished(t *testing.T) {
	in := []query.NewsResult{{
		URL:         "https://example.com/a",
		Title:       "Title",
		Description: "Desc",
		Score:       1.5,
		Feed:        query.FeedRef{Name: "BBC", HomeURL: "https://bbc.com", Link: "https://bbc.com/rss"},
		Author:      "Jane Doe",
	}}

	out := toWireNewsResults(in)
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1", len(out))
	}

	if out[0].Feed.Name != "BBC" || out[0].Author != "Jane Doe" {
		t.Fatalf("got %+v, want feed/author carried through", out[0])
	}
}
