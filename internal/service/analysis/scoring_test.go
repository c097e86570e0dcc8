package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForScore_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  RiskTier
	}{
		{0, TierLow},
		{30, TierLow},
		{31, TierMedium},
		{60, TierMedium},
		{61, TierHigh},
		{80, TierHigh},
		{81, TierCritical},
		{100, TierCritical},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %d", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, TierForScore(tt.score))
		})
	}
}

func TestComputeScores_WeightsPerFactor(t *testing.T) {
	g := mkGraph(t, [][2]string{{"a", "b"}, {"c", "d"}})
	n := g.NodeCount()

	fire := func(mutate func(cyc *cycleEvidence, lay *layeringEvidence, smurf *smurfingEvidence)) int {
		cyc, lay, smurf := emptyEvidence(n)
		mutate(cyc, lay, smurf)
		scores, _ := computeScores(g, cyc, lay, smurf, DefaultConfig())
		// All nodes have identical counts and volumes, so frequency and
		// amount fire for every account. Subtract that baseline.
		return scores[0].score - WeightFrequency - WeightAmount
	}

	assert.Equal(t, WeightCycle, fire(func(cyc *cycleEvidence, _ *layeringEvidence, _ *smurfingEvidence) {
		cyc.onCycle[0] = true
	}))
	assert.Equal(t, WeightLayering, fire(func(_ *cycleEvidence, lay *layeringEvidence, _ *smurfingEvidence) {
		lay.onChain[0] = true
	}))
	assert.Equal(t, WeightSmurfing, fire(func(_ *cycleEvidence, _ *layeringEvidence, smurf *smurfingEvidence) {
		smurf.fanIn[0] = true
	}))

	// Fan-in plus fan-out still contributes the smurfing weight once.
	assert.Equal(t, WeightSmurfing, fire(func(_ *cycleEvidence, _ *layeringEvidence, smurf *smurfingEvidence) {
		smurf.fanIn[0] = true
		smurf.fanOut[0] = true
	}))

	// Everything at once reaches exactly the scale ceiling.
	assert.Equal(t, 100-WeightFrequency-WeightAmount, fire(func(cyc *cycleEvidence, lay *layeringEvidence, smurf *smurfingEvidence) {
		cyc.onCycle[0] = true
		lay.onChain[0] = true
		smurf.fanIn[0] = true
	}))
}

func TestComputeScores_PercentileFactorsAreRelative(t *testing.T) {
	// One busy hub against quiet accounts: only the hub reaches the
	// default 95th percentile of counts and volumes.
	pairs := make([][2]string, 0, 15)
	for i := 0; i < 15; i++ {
		pairs = append(pairs, [2]string{"hub", fmt.Sprintf("r%02d", i)})
	}
	g := mkGraph(t, pairs)

	cyc, lay, smurf := emptyEvidence(g.NodeCount())
	scores, th := computeScores(g, cyc, lay, smurf, DefaultConfig())

	hub := scores[nodeIdx(t, g, "hub")]
	assert.True(t, hub.frequency)
	assert.True(t, hub.amount)
	assert.Equal(t, WeightFrequency+WeightAmount, hub.score)

	quiet := scores[nodeIdx(t, g, "r00")]
	assert.False(t, quiet.frequency)
	assert.False(t, quiet.amount)
	assert.Zero(t, quiet.score)

	assert.Greater(t, th.frequency, 1.0)
}

func TestAccountScore_Patterns(t *testing.T) {
	s := accountScore{cycle: true, fanOut: true}
	assert.Equal(t, []string{PatternCycle, PatternFanOut}, s.patterns())
	assert.True(t, s.smurfing())

	assert.Empty(t, accountScore{}.patterns())
}

func TestNearestRank(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}
	assert.Equal(t, 50.0, nearestRank(values, 95))
	assert.Equal(t, 30.0, nearestRank(values, 50))
	assert.Equal(t, 10.0, nearestRank(values, 1))
	assert.Zero(t, nearestRank(nil, 95))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-5))
	assert.Equal(t, 42, clampScore(42))
	assert.Equal(t, 100, clampScore(120))
}
