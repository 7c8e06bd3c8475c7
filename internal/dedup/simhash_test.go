package dedup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/websearch-engine/internal/dedup"
)

func TestFingerprintIsDeterministic(t *testing.T) {
	t.Parallel()

	content := "the quick brown fox jumps over the lazy dog"
	assert.Equal(t, dedup.Fingerprint(content), dedup.Fingerprint(content))
}

func TestFingerprintDiffersForDifferentContent(t *testing.T) {
	t.Parallel()

	a := dedup.Fingerprint("the quick brown fox")
	b := dedup.Fingerprint("a slow green turtle")

	assert.NotEqual(t, a, b)
}

func TestSignedFingerprintRemapsHighBitRange(t *testing.T) {
	t.Parallel()

	content := "some sample content with repeated words words words"
	signed := dedup.SignedFingerprint(content)
	// No assertion on sign itself (content-dependent); just confirm the
	// signed form carries exactly the bit pattern of its unsigned form.
	assert.Equal(t, dedup.Fingerprint(content), uint64(signed))
}

func TestHammingDistanceZeroForIdenticalFingerprints(t *testing.T) {
	t.Parallel()

	fp := dedup.SignedFingerprint("identical content here")
	assert.Equal(t, 0, dedup.HammingDistance(fp, fp))
}

func TestEmptyContentFingerprintIsZero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(0), dedup.Fingerprint(""))
}
