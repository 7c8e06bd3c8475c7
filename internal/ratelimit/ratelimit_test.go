package ratelimit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/websearch-engine/internal/ratelimit"
)

func TestTryReserveAllowsFirstThenBlocks(t *testing.T) {
	t.Parallel()

	l := ratelimit.New(1) // 1 req/s

	assert.True(t, l.TryReserve("example.com"))
	assert.False(t, l.TryReserve("example.com"))
}

func TestTryReserveIsPerDomain(t *testing.T) {
	t.Parallel()

	l := ratelimit.New(1)

	assert.True(t, l.TryReserve("a.example"))
	assert.True(t, l.TryReserve("b.example"))
}

func TestQueueReserveSpacesCalls(t *testing.T) {
	t.Parallel()

	l := ratelimit.New(20) // 50ms interval

	start := time.Now()
	l.QueueReserve("example.com")
	l.QueueReserve("example.com")
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}
