package batch_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/websearch-engine/internal/batch"
)

func newRunner(t *testing.T, cfg batch.Config) *batch.Runner {
	t.Helper()

	logger := zerolog.Nop()

	return batch.New(nil, nil, cfg, &logger)
}

func TestIsCoordinatorAutoNodeZero(t *testing.T) {
	t.Parallel()

	r := newRunner(t, batch.Config{Role: batch.RoleAuto, NodeIndex: 0, TotalNodes: 4})
	assert.True(t, r.IsCoordinator())
}

func TestIsCoordinatorAutoNonZeroNode(t *testing.T) {
	t.Parallel()

	r := newRunner(t, batch.Config{Role: batch.RoleAuto, NodeIndex: 1, TotalNodes: 4})
	assert.False(t, r.IsCoordinator())
}

func TestIsCoordinatorAutoSingleNode(t *testing.T) {
	t.Parallel()

	r := newRunner(t, batch.Config{Role: batch.RoleAuto, NodeIndex: 3, TotalNodes: 1})
	assert.True(t, r.IsCoordinator())
}

func TestIsCoordinatorExplicitRoleOverridesIndex(t *testing.T) {
	t.Parallel()

	r := newRunner(t, batch.Config{Role: batch.RoleCoordinator, NodeIndex: 2, TotalNodes: 4})
	assert.True(t, r.IsCoordinator())

	r2 := newRunner(t, batch.Config{Role: batch.RoleWorker, NodeIndex: 0, TotalNodes: 1})
	assert.False(t, r2.IsCoordinator())
}
