package analysis

import (
	"context"
	"math"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
	"github.com/mullbar/fraudgraph/internal/domain/graph"
)

// smurfingEvidence is the smurfing detector's per-account output. Degrees
// count distinct counterparties, not transactions.
type smurfingEvidence struct {
	fanIn  []bool
	fanOut []bool
	// Effective thresholds actually applied, after resolving the rule.
	inThreshold  float64
	outThreshold float64
}

// detectSmurfing flags abnormal fan-in (many distinct payers) and fan-out
// (many distinct payees). Under the absolute rule the threshold is a fixed
// degree; under the stddev rule it is mean + k*stddev of the dataset's
// in- or out-degree distribution. An account at the threshold is flagged;
// one below is not. Degrees below 2 never flag, which keeps the stddev rule
// sane on near-uniform distributions where the threshold collapses to the
// mean. O(V) given the graph's degree indexes.
func detectSmurfing(ctx context.Context, g *graph.Graph, cfg Config) (*smurfingEvidence, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelledError("smurfing detection aborted")
	}

	n := g.NodeCount()
	ev := &smurfingEvidence{
		fanIn:  make([]bool, n),
		fanOut: make([]bool, n),
	}

	switch cfg.SmurfingRule {
	case SmurfingRuleStdDev:
		ins := make([]float64, n)
		outs := make([]float64, n)
		for i := 0; i < n; i++ {
			ins[i] = float64(g.InDegree(i))
			outs[i] = float64(g.OutDegree(i))
		}
		ev.inThreshold = meanPlusK(ins, cfg.SmurfingStdDevK)
		ev.outThreshold = meanPlusK(outs, cfg.SmurfingStdDevK)
	default:
		ev.inThreshold = float64(cfg.SmurfingThreshold)
		ev.outThreshold = float64(cfg.SmurfingThreshold)
	}

	for i := 0; i < n; i++ {
		ev.fanIn[i] = float64(g.InDegree(i)) >= ev.inThreshold && g.InDegree(i) >= 2
		ev.fanOut[i] = float64(g.OutDegree(i)) >= ev.outThreshold && g.OutDegree(i) >= 2
	}
	return ev, nil
}

func meanPlusK(values []float64, k float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean + k*math.Sqrt(ss/float64(len(values)))
}
