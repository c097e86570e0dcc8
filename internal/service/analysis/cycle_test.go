package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
)

func TestDetectCycles_TriangleFlagsOnlyParticipants(t *testing.T) {
	g := mkGraph(t, [][2]string{
		{"a", "b"}, {"b", "c"}, {"c", "a"},
		{"d", "a"}, // feeds the cycle but is not on it
	})

	ev, err := detectCycles(context.Background(), g, DefaultConfig())
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		assert.True(t, ev.onCycle[nodeIdx(t, g, id)], "expected %s on cycle", id)
	}
	assert.False(t, ev.onCycle[nodeIdx(t, g, "d")])
	require.Len(t, ev.cycles, 1)
	assert.Len(t, ev.cycles[0], 3)
}

func TestDetectCycles_MinLengthExcludesShortLoops(t *testing.T) {
	g := mkGraph(t, [][2]string{{"a", "b"}, {"b", "a"}})

	cfg := DefaultConfig()
	cfg.MinCycleLength = 3
	ev, err := detectCycles(context.Background(), g, cfg)
	require.NoError(t, err)
	assert.False(t, ev.onCycle[nodeIdx(t, g, "a")])
	assert.False(t, ev.onCycle[nodeIdx(t, g, "b")])
	assert.Empty(t, ev.cycles)

	// The default minimum admits two-node loops.
	ev, err = detectCycles(context.Background(), g, DefaultConfig())
	require.NoError(t, err)
	assert.True(t, ev.onCycle[nodeIdx(t, g, "a")])
	assert.True(t, ev.onCycle[nodeIdx(t, g, "b")])
}

func TestDetectCycles_AcyclicGraphIsClean(t *testing.T) {
	g := mkGraph(t, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}})

	ev, err := detectCycles(context.Background(), g, DefaultConfig())
	require.NoError(t, err)
	for i := 0; i < g.NodeCount(); i++ {
		assert.False(t, ev.onCycle[i])
	}
	assert.Empty(t, ev.cycles)
}

func TestDetectCycles_SharedNodeAcrossTwoLoops(t *testing.T) {
	// b sits on both loops; every participant must be marked even though
	// DFS blackens nodes after the first traversal.
	g := mkGraph(t, [][2]string{
		{"a", "b"}, {"b", "a"},
		{"b", "c"}, {"c", "b"},
	})

	ev, err := detectCycles(context.Background(), g, DefaultConfig())
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		assert.True(t, ev.onCycle[nodeIdx(t, g, id)], "expected %s on cycle", id)
	}
	assert.Len(t, ev.cycles, 2)
}

func TestDetectCycles_InstanceCapDoesNotGateParticipation(t *testing.T) {
	// Enough two-node loops to exhaust the instance budget, then a loop
	// whose third member is only reachable by closing through a node the
	// marking pass already finished.
	cfg := DefaultConfig()
	pairs := make([][2]string, 0, 2*cfg.MaxCycleInstances+4)
	for i := 0; i < cfg.MaxCycleInstances; i++ {
		a, b := fmt.Sprintf("p%03d", i), fmt.Sprintf("q%03d", i)
		pairs = append(pairs, [2]string{a, b}, [2]string{b, a})
	}
	pairs = append(pairs,
		[2]string{"r", "x"}, [2]string{"x", "r"},
		[2]string{"r", "y"}, [2]string{"y", "x"},
	)
	g := mkGraph(t, pairs)

	ev, err := detectCycles(context.Background(), g, cfg)
	require.NoError(t, err)

	assert.Len(t, ev.cycles, cfg.MaxCycleInstances)
	for _, id := range []string{"r", "x", "y"} {
		assert.True(t, ev.onCycle[nodeIdx(t, g, id)], "expected %s on cycle", id)
	}
}

func TestDetectCycles_CancelledContext(t *testing.T) {
	g := mkGraph(t, [][2]string{{"a", "b"}, {"b", "a"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := detectCycles(ctx, g, DefaultConfig())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCancelled))
}
