package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/mullbar/fraudgraph/internal/domain/graph"
)

// accountBehavior carries the advisory temporal and behavioral metrics
// surfaced in an explanation's transaction summary. None of them feed the
// suspicion score, so the breakdown invariant is untouched.
type accountBehavior struct {
	burstScore            float64
	avgIntervalHours      float64
	volumeAnomaly         float64
	counterpartyDiversity float64
	circularFlowRatio     float64
}

// behaviorStats holds the dataset-wide inputs shared by every account.
type behaviorStats struct {
	medianVolume float64
}

func computeBehaviorStats(g *graph.Graph) behaviorStats {
	n := g.NodeCount()
	if n == 0 {
		return behaviorStats{medianVolume: 1}
	}
	volumes := make([]float64, n)
	for i, node := range g.Nodes() {
		volumes[i] = node.TotalVolume().InexactFloat64()
	}
	sort.Float64s(volumes)
	med := volumes[n/2]
	if n%2 == 0 {
		med = (volumes[n/2-1] + volumes[n/2]) / 2
	}
	return behaviorStats{medianVolume: med}
}

// behaviorFor computes one account's advisory metrics.
//
// Burst score is the largest number of transfers inside any one-hour window
// relative to the account's average hourly rate; average interval is the
// mean gap between consecutive timestamped transfers. Both are zero for
// accounts with fewer than two timestamped transfers. Volume anomaly is the
// account's volume against the dataset median, capped at 10. Counterparty
// diversity is distinct counterparties over transfer count. Circular flow is
// the fraction of outgoing volume that returns within two hops, capped at 1.
func behaviorFor(g *graph.Graph, i int, stats behaviorStats) accountBehavior {
	node := g.Node(i)
	b := accountBehavior{
		volumeAnomaly:         round3(math.Min(node.TotalVolume().InexactFloat64()/math.Max(stats.medianVolume, 0.01), 10)),
		counterpartyDiversity: round3(float64(node.UniqueCounterparties()) / math.Max(float64(node.TxnCount()), 1)),
		circularFlowRatio:     round3(circularFlow(g, i)),
	}

	stamps := node.Timestamps()
	if len(stamps) < 2 {
		return b
	}
	spanSeconds := stamps[len(stamps)-1].Sub(stamps[0]).Seconds()

	maxBurst := 0
	for k := range stamps {
		end := stamps[k].Add(time.Hour)
		hi := sort.Search(len(stamps), func(m int) bool { return stamps[m].After(end) })
		if hi-k > maxBurst {
			maxBurst = hi - k
		}
	}
	avgHourly := float64(len(stamps)) / math.Max(spanSeconds/3600, 1)
	b.burstScore = round2(float64(maxBurst) / math.Max(avgHourly, 0.01))
	b.avgIntervalHours = round2(spanSeconds / 3600 / float64(len(stamps)-1))
	return b
}

// circularFlow sums volume returning to node i over paths i->b->i and
// i->b->c->i. Two-hop returns are bounded by the smaller leg so a thin
// outgoing edge cannot claim a fat return.
func circularFlow(g *graph.Graph, i int) float64 {
	totalOut := g.Node(i).TotalSent.InexactFloat64()
	if totalOut == 0 {
		return 0
	}

	returned := 0.0
	for _, ei := range g.OutEdges(i) {
		out := g.Edge(ei)
		if back, ok := g.EdgeBetween(out.To, i); ok {
			returned += back.Amount.InexactFloat64()
		}
		for _, ej := range g.OutEdges(out.To) {
			hop2 := g.Edge(ej).To
			if hop2 == i {
				continue
			}
			if back, ok := g.EdgeBetween(hop2, i); ok {
				returned += math.Min(out.Amount.InexactFloat64(), back.Amount.InexactFloat64())
			}
		}
	}
	return math.Min(returned/totalOut, 1)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
