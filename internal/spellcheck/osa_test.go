package spellcheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/websearch-engine/internal/spellcheck"
)

func TestOSADistanceIdentical(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, spellcheck.OSADistance("kitten", "kitten"))
}

func TestOSADistanceSubstitution(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, spellcheck.OSADistance("cat", "cot"))
}

func TestOSADistanceTransposition(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, spellcheck.OSADistance("ab", "ba"))
}

func TestOSADistanceInsertionDeletion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, spellcheck.OSADistance("cat", "cats"))
	assert.Equal(t, 1, spellcheck.OSADistance("cats", "cat"))
}

func TestOSADistanceClassicKittenSitting(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, spellcheck.OSADistance("kitten", "sitting"))
}
