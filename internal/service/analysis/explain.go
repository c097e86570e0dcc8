package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/mullbar/fraudgraph/internal/domain/graph"
)

// Factor descriptions used in breakdowns. Narratives are pure template
// composition: identical evidence always yields identical text.
var factorDescriptions = map[string]string{
	FactorCycle:     "involved in circular fund routing (money flows in a loop)",
	FactorLayering:  "part of a multi-hop forwarding chain through intermediate accounts",
	FactorSmurfing:  "abnormal number of distinct counterparties (fan-in/fan-out)",
	FactorFrequency: "transaction count in the top percentile of the dataset",
	FactorAmount:    "total transaction volume in the top percentile of the dataset",
}

// buildExplanation produces the structured justification for one flagged
// account. The breakdown covers exactly the factors that contributed
// non-zero points, in fixed factor order, and sums to the account's score
// unless clamping reduced the raw sum, in which case the narrative says so.
func buildExplanation(node *graph.Node, s accountScore, ringID string, b accountBehavior) *Explanation {
	type firing struct {
		factor string
		weight int
		fired  bool
	}
	firings := []firing{
		{FactorCycle, WeightCycle, s.cycle},
		{FactorLayering, WeightLayering, s.layering},
		{FactorSmurfing, WeightSmurfing, s.smurfing()},
		{FactorFrequency, WeightFrequency, s.frequency},
		{FactorAmount, WeightAmount, s.amount},
	}

	raw := 0
	var breakdown []BreakdownEntry
	for _, f := range firings {
		if !f.fired {
			continue
		}
		raw += f.weight
		breakdown = append(breakdown, BreakdownEntry{
			Factor:      f.factor,
			Score:       f.weight,
			Description: factorDescriptions[f.factor],
		})
	}

	// The displayed breakdown must sum to the reported score. When the raw
	// sum exceeds 100 the clamp is absorbed by the last entry.
	if raw > 100 && len(breakdown) > 0 {
		breakdown[len(breakdown)-1].Score -= raw - 100
	}

	var parts []string
	for _, entry := range breakdown {
		parts = append(parts, entry.Description)
	}
	why := fmt.Sprintf("Account %s received a suspicion score of %d/100: %s.",
		node.ID, s.score, strings.Join(parts, "; "))
	if ringID != "" {
		why += fmt.Sprintf(" Member of fraud ring %s.", ringID)
	}

	return &Explanation{
		AccountID:        node.ID,
		SuspicionScore:   s.score,
		RiskBreakdown:    breakdown,
		DetectedPatterns: s.patterns(),
		TransactionSummary: TransactionSummary{
			TotalSent:             round2(node.TotalSent.InexactFloat64()),
			TotalReceived:         round2(node.TotalReceived.InexactFloat64()),
			TransactionCount:      node.TxnCount(),
			UniqueCounterparties:  node.UniqueCounterparties(),
			VelocityPerDay:        round2(node.Velocity()),
			BurstScore:            b.burstScore,
			AvgIntervalHours:      b.avgIntervalHours,
			VolumeAnomaly:         b.volumeAnomaly,
			CounterpartyDiversity: b.counterpartyDiversity,
			CircularFlowRatio:     b.circularFlowRatio,
		},
		WhyFlagged: why,
		RingID:     ringID,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
