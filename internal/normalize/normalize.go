// Package normalize canonicalizes URLs and derives their registrable
// domain, the way every other component identifies a page or a rate
// limit bucket.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

// trackingParams is the fixed denylist of query parameters stripped
// during normalization.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"gclid":        {},
	"fbclid":       {},
}

// multiPartSuffixes are public suffixes that occupy two labels; the
// registrable domain for a host ending in one of these keeps three
// labels instead of two. The list is intentionally small — swapping in
// a full public-suffix dataset behind the same interface is a drop-in
// replacement.
var multiPartSuffixes = map[string]struct{}{
	"co.uk":  {},
	"org.uk": {},
	"ac.uk":  {},
	"gov.uk": {},
	"com.au": {},
	"net.au": {},
	"org.au": {},
	"co.jp":  {},
}

var collapseSlashes = regexp.MustCompile(`/+`)

// Normalize canonicalizes a raw URL per the fixed rules: lowercase
// scheme/host, default scheme https, collapsed path slashes, tracking
// parameters stripped, fragment dropped. It is idempotent:
// Normalize(Normalize(u)) == Normalize(u).
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}

	if u.Host == "" && u.Path != "" {
		u = reinterpretHostFromPath(u)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme == "" {
		u.Scheme = "https"
	}

	u.Host = strings.ToLower(u.Host)

	u.Path = collapseSlashes.ReplaceAllString(u.Path, "/")
	if u.Path == "" {
		u.Path = "/"
	}

	u.RawQuery = normalizeQuery(u.RawQuery)
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// reinterpretHostFromPath handles inputs like "example.com/path" where
// url.Parse treats the whole thing as an opaque path because no scheme
// was given.
func reinterpretHostFromPath(u *url.URL) *url.URL {
	path := strings.TrimPrefix(u.Path, "//")

	segments := strings.SplitN(path, "/", 2)
	if segments[0] == "" {
		return u
	}

	u.Host = segments[0]
	if len(segments) > 1 {
		u.Path = "/" + segments[1]
	} else {
		u.Path = "/"
	}

	return u
}

func normalizeQuery(raw string) string {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ""
	}

	out := url.Values{}

	for key, vals := range values {
		if _, denied := trackingParams[strings.ToLower(key)]; denied {
			continue
		}

		for _, v := range vals {
			if v == "" {
				continue
			}

			out.Add(key, v)
		}
	}

	return out.Encode()
}

// RegistrableDomain derives the shortest public-suffix-plus-one label
// set from a raw URL or bare host.
func RegistrableDomain(raw string) string {
	host := raw

	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		host = u.Host
	}

	host = strings.ToLower(host)
	if idx := strings.IndexByte(host, ':'); idx != -1 {
		host = host[:idx]
	}

	labels := splitNonEmpty(host, '.')
	if len(labels) <= 2 {
		return strings.Join(labels, ".")
	}

	lastTwo := strings.Join(labels[len(labels)-2:], ".")
	if _, ok := multiPartSuffixes[lastTwo]; ok {
		return strings.Join(labels[len(labels)-3:], ".")
	}

	return lastTwo
}

func splitNonEmpty(s string, sep byte) []string {
	parts := strings.Split(s, string(sep))

	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
