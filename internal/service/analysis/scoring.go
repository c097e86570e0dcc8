package analysis

import (
	"math"
	"sort"

	"github.com/mullbar/fraudgraph/internal/domain/graph"
)

// Scoring weights. Each factor contributes either zero or its full weight;
// the sum is clamped to [0, 100].
const (
	WeightCycle     = 30
	WeightLayering  = 20
	WeightSmurfing  = 15
	WeightFrequency = 15
	WeightAmount    = 20
)

// Factor names as they appear in explanation breakdowns.
const (
	FactorCycle     = "cycle"
	FactorLayering  = "layering"
	FactorSmurfing  = "smurfing"
	FactorFrequency = "frequency"
	FactorAmount    = "amount"
)

// accountScore carries one account's score and which factors fired.
type accountScore struct {
	score     int
	cycle     bool
	layering  bool
	fanIn     bool
	fanOut    bool
	frequency bool
	amount    bool
}

func (a accountScore) smurfing() bool { return a.fanIn || a.fanOut }

// patterns lists the fired pattern labels in a fixed order.
func (a accountScore) patterns() []string {
	out := make([]string, 0, 4)
	if a.cycle {
		out = append(out, PatternCycle)
	}
	if a.layering {
		out = append(out, PatternLayering)
	}
	if a.fanIn {
		out = append(out, PatternFanIn)
	}
	if a.fanOut {
		out = append(out, PatternFanOut)
	}
	return out
}

// scoreThresholds records the dataset-relative cutoffs actually applied, so
// explanations can cite them.
type scoreThresholds struct {
	frequency float64 // transaction count at the configured percentile
	amount    float64 // total volume at the configured percentile
}

// computeScores aggregates detector evidence into a 0-100 score per
// account. Frequency and amount factors are dataset-relative: an account
// earns them when its transaction count or total volume reaches the
// configured nearest-rank percentile, which keeps the model scale-invariant
// across datasets. O(A log A) for the percentile sort, O(A) otherwise.
func computeScores(g *graph.Graph, cyc *cycleEvidence, lay *layeringEvidence, smurf *smurfingEvidence, cfg Config) ([]accountScore, scoreThresholds) {
	n := g.NodeCount()

	counts := make([]float64, n)
	volumes := make([]float64, n)
	for i := 0; i < n; i++ {
		counts[i] = float64(g.Node(i).TxnCount())
		volumes[i] = g.Node(i).TotalVolume().InexactFloat64()
	}
	th := scoreThresholds{
		frequency: nearestRank(counts, cfg.VolumePercentile),
		amount:    nearestRank(volumes, cfg.VolumePercentile),
	}

	scores := make([]accountScore, n)
	for i := 0; i < n; i++ {
		s := accountScore{
			cycle:     cyc.onCycle[i],
			layering:  lay.onChain[i],
			fanIn:     smurf.fanIn[i],
			fanOut:    smurf.fanOut[i],
			frequency: counts[i] >= th.frequency,
			amount:    volumes[i] >= th.amount,
		}
		raw := 0
		if s.cycle {
			raw += WeightCycle
		}
		if s.layering {
			raw += WeightLayering
		}
		if s.smurfing() {
			raw += WeightSmurfing
		}
		if s.frequency {
			raw += WeightFrequency
		}
		if s.amount {
			raw += WeightAmount
		}
		s.score = clampScore(raw)
		scores[i] = s
	}
	return scores, th
}

func clampScore(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return raw
}

// nearestRank returns the value at the given percentile (0-100] using the
// nearest-rank method over a copy of the input.
func nearestRank(values []float64, percentile float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	rank := int(math.Ceil(percentile / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
