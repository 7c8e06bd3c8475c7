// Package tokenize implements the shared term-extraction procedure used
// for both documents and queries, so stems line up on both sides of a
// search.
package tokenize

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]{2,}`)

// stopwords is a fixed, extensible English stopword list.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "against": {},
	"all": {}, "am": {}, "an": {}, "and": {}, "any": {}, "are": {}, "as": {},
	"at": {}, "be": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"below": {}, "between": {}, "both": {}, "but": {}, "by": {}, "can": {},
	"did": {}, "do": {}, "does": {}, "doing": {}, "down": {}, "during": {},
	"each": {}, "few": {}, "for": {}, "from": {}, "further": {}, "had": {},
	"has": {}, "have": {}, "having": {}, "he": {}, "her": {}, "here": {},
	"hers": {}, "herself": {}, "him": {}, "himself": {}, "his": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"itself": {}, "just": {}, "me": {}, "more": {}, "most": {}, "my": {},
	"myself": {}, "no": {}, "nor": {}, "not": {}, "of": {}, "off": {}, "on": {},
	"once": {}, "only": {}, "or": {}, "other": {}, "our": {}, "ours": {},
	"ourselves": {}, "out": {}, "over": {}, "own": {}, "same": {}, "she": {},
	"should": {}, "so": {}, "some": {}, "such": {}, "than": {}, "that": {},
	"the": {}, "their": {}, "theirs": {}, "them": {}, "themselves": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"to": {}, "too": {}, "under": {}, "until": {}, "up": {}, "very": {}, "was": {},
	"we": {}, "were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "who": {}, "whom": {}, "why": {}, "will": {}, "with": {},
	"you": {}, "your": {}, "yours": {}, "yourself": {}, "yourselves": {},
}

// AddStopword extends the stopword set. Exposed so a caller can tune the
// list without forking the package.
func AddStopword(word string) {
	stopwords[strings.ToLower(word)] = struct{}{}
}

// IsStopword reports whether word is in the stopword list.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// Tokenize lowercases text, extracts word-regex tokens, drops
// stopwords, stems with the Porter algorithm, and returns term
// frequencies.
func Tokenize(text string) map[string]int {
	lower := strings.ToLower(text)
	freqs := make(map[string]int)

	for _, raw := range tokenPattern.FindAllString(lower, -1) {
		if IsStopword(raw) {
			continue
		}

		term, err := snowball.Stem(raw, "english", false)
		if err != nil || term == "" {
			term = raw
		}

		freqs[term]++
	}

	return freqs
}

// Words returns the distinct non-stopword word-regex tokens of text, in
// order of first appearance, without stemming. Used by the query engine
// for phrase and coverage bonuses that operate on surface forms.
func Words(text string) []string {
	lower := strings.ToLower(text)

	seen := make(map[string]struct{})

	var out []string

	for _, raw := range tokenPattern.FindAllString(lower, -1) {
		if IsStopword(raw) {
			continue
		}

		if _, ok := seen[raw]; ok {
			continue
		}

		seen[raw] = struct{}{}

		out = append(out, raw)
	}

	return out
}

var nonAlnumRun = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// NormalizeText lowercases s, replaces runs of non-alphanumerics with a
// single space and trims the result, for phrase-match comparisons.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(nonAlnumRun.ReplaceAllString(s, " ")))
}
