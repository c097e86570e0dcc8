package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainPairs(n int) [][2]string {
	pairs := make([][2]string, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, [2]string{chainID(i), chainID(i + 1)})
	}
	return pairs
}

func chainID(i int) string {
	return string(rune('a' + i))
}

func TestDetectLayering_ChainAtMinimumHops(t *testing.T) {
	// a -> b -> c -> d: three hops, the default minimum. Every node on the
	// chain sees the full span.
	g := mkGraph(t, chainPairs(3))

	ev, err := detectLayering(context.Background(), g, DefaultConfig())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		idx := nodeIdx(t, g, chainID(i))
		assert.True(t, ev.onChain[idx], "expected %s on chain", chainID(i))
		assert.Equal(t, 3, ev.chainSpan[idx])
	}
}

func TestDetectLayering_ChainBelowMinimumHops(t *testing.T) {
	g := mkGraph(t, chainPairs(2))

	ev, err := detectLayering(context.Background(), g, DefaultConfig())
	require.NoError(t, err)
	for i := 0; i < g.NodeCount(); i++ {
		assert.False(t, ev.onChain[i])
	}
}

func TestDetectLayering_DepthCapBoundsSpan(t *testing.T) {
	// 20 hops but each direction is capped at 8, so no node can see a span
	// beyond 16.
	g := mkGraph(t, chainPairs(20))

	cfg := DefaultConfig()
	cfg.LayeringDepthCap = 8
	cfg.MinLayeringHops = 17
	ev, err := detectLayering(context.Background(), g, cfg)
	require.NoError(t, err)
	for i := 0; i < g.NodeCount(); i++ {
		assert.False(t, ev.onChain[i])
		assert.LessOrEqual(t, ev.chainSpan[i], 16)
	}

	cfg.MinLayeringHops = 16
	ev, err = detectLayering(context.Background(), g, cfg)
	require.NoError(t, err)
	mid := nodeIdx(t, g, chainID(10))
	assert.True(t, ev.onChain[mid])
}

func TestDetectLayering_BranchingTakesLongestPath(t *testing.T) {
	// a -> b -> c -> d plus a short a -> d shortcut. The long branch
	// dominates the span.
	g := mkGraph(t, [][2]string{
		{"a", "b"}, {"b", "c"}, {"c", "d"}, {"a", "d"},
	})

	ev, err := detectLayering(context.Background(), g, DefaultConfig())
	require.NoError(t, err)
	assert.True(t, ev.onChain[nodeIdx(t, g, "a")])
	assert.Equal(t, 3, ev.chainSpan[nodeIdx(t, g, "a")])
	assert.True(t, ev.onChain[nodeIdx(t, g, "d")])
}

func TestDetectLayering_CycleReentryTerminatesChain(t *testing.T) {
	// Pure 3-cycle: a successor still on the traversal stack contributes a
	// single terminating hop, so spans stay finite.
	g := mkGraph(t, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})

	ev, err := detectLayering(context.Background(), g, DefaultConfig())
	require.NoError(t, err)
	for i := 0; i < g.NodeCount(); i++ {
		assert.LessOrEqual(t, ev.chainSpan[i], 2*DefaultConfig().LayeringDepthCap)
	}
}
