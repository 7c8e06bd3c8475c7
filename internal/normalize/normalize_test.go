package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/websearch-engine/internal/normalize"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "scheme host case and tracking params",
			in:   "HTTPS://Example.com/path///to?p=1&utm_source=x#section",
			want: "https://example.com/path/to?p=1",
		},
		{
			name: "missing scheme defaults to https",
			in:   "example.com/a/b",
			want: "https://example.com/a/b",
		},
		{
			name: "empty path becomes root",
			in:   "https://example.com",
			want: "https://example.com/",
		},
		{
			name: "blank query values dropped",
			in:   "https://example.com/?a=&b=1",
			want: "https://example.com/?b=1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := normalize.Normalize(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"HTTPS://Example.com/path///to?p=1&utm_source=x#section",
		"http://a.b.c/foo?gclid=1&keep=2",
		"example.org//bar//baz",
	}

	for _, in := range inputs {
		once, err := normalize.Normalize(in)
		require.NoError(t, err)

		twice, err := normalize.Normalize(once)
		require.NoError(t, err)

		assert.Equal(t, once, twice)
	}
}

func TestNormalizeStripsAllTrackingParams(t *testing.T) {
	t.Parallel()

	in := "https://example.com/?utm_source=a&utm_medium=b&utm_campaign=c&utm_term=d&utm_content=e&gclid=f&fbclid=g&keep=1"

	got, err := normalize.Normalize(in)
	require.NoError(t, err)

	for _, denied := range []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "gclid", "fbclid"} {
		assert.NotContains(t, got, denied+"=")
	}

	assert.Contains(t, got, "keep=1")
}

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"https://staff.blog.tumblr.com/post/123", "tumblr.com"},
		{"https://a.bbc.co.uk/news", "bbc.co.uk"},
		{"https://example.com", "example.com"},
		{"example.com", "example.com"},
		{"https://sub.example.com.au/x", "example.com.au"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, normalize.RegistrableDomain(tc.in), tc.in)
	}
}
