package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fanInPairs(senders int, collector string) [][2]string {
	pairs := make([][2]string, 0, senders)
	for i := 0; i < senders; i++ {
		pairs = append(pairs, [2]string{fmt.Sprintf("s%02d", i), collector})
	}
	return pairs
}

func TestDetectSmurfing_AbsoluteThresholdBoundary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SmurfingThreshold = 10

	t.Run("at threshold flags", func(t *testing.T) {
		g := mkGraph(t, fanInPairs(10, "hub"))
		ev, err := detectSmurfing(context.Background(), g, cfg)
		require.NoError(t, err)
		assert.True(t, ev.fanIn[nodeIdx(t, g, "hub")])
		assert.False(t, ev.fanOut[nodeIdx(t, g, "hub")])
		assert.False(t, ev.fanIn[nodeIdx(t, g, "s00")])
	})

	t.Run("below threshold does not", func(t *testing.T) {
		g := mkGraph(t, fanInPairs(9, "hub"))
		ev, err := detectSmurfing(context.Background(), g, cfg)
		require.NoError(t, err)
		assert.False(t, ev.fanIn[nodeIdx(t, g, "hub")])
	})
}

func TestDetectSmurfing_FanOut(t *testing.T) {
	pairs := make([][2]string, 0, 12)
	for i := 0; i < 12; i++ {
		pairs = append(pairs, [2]string{"hub", fmt.Sprintf("r%02d", i)})
	}
	g := mkGraph(t, pairs)

	ev, err := detectSmurfing(context.Background(), g, DefaultConfig())
	require.NoError(t, err)
	assert.True(t, ev.fanOut[nodeIdx(t, g, "hub")])
	assert.False(t, ev.fanIn[nodeIdx(t, g, "hub")])
}

func TestDetectSmurfing_StdDevRule(t *testing.T) {
	// 20 ordinary senders with in-degree 0 or 1 and one collector fed by
	// all of them. The collector is the outlier.
	g := mkGraph(t, fanInPairs(20, "hub"))

	cfg := DefaultConfig()
	cfg.SmurfingRule = SmurfingRuleStdDev
	cfg.SmurfingStdDevK = 3
	ev, err := detectSmurfing(context.Background(), g, cfg)
	require.NoError(t, err)

	assert.True(t, ev.fanIn[nodeIdx(t, g, "hub")])
	for i := 0; i < 20; i++ {
		assert.False(t, ev.fanIn[nodeIdx(t, g, fmt.Sprintf("s%02d", i))])
	}
	assert.Greater(t, ev.inThreshold, 1.0)
}

func TestDetectSmurfing_DegreeGuardOnUniformGraphs(t *testing.T) {
	// On a near-uniform degree distribution the stddev threshold collapses
	// toward the mean; the minimum-degree guard keeps ordinary accounts
	// unflagged.
	g := mkGraph(t, [][2]string{{"a", "b"}, {"c", "d"}, {"e", "f"}})

	cfg := DefaultConfig()
	cfg.SmurfingRule = SmurfingRuleStdDev
	ev, err := detectSmurfing(context.Background(), g, cfg)
	require.NoError(t, err)
	for i := 0; i < g.NodeCount(); i++ {
		assert.False(t, ev.fanIn[i])
		assert.False(t, ev.fanOut[i])
	}
}
