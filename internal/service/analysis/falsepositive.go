package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/mullbar/fraudgraph/internal/domain/graph"
)

// Heuristic cutoffs for legitimate high-volume accounts.
const (
	merchantMinSenders  = 10
	merchantMinTxns     = 15
	merchantMinSpanDays = 5.0

	payrollMinRecipients = 8
	payrollUniformity    = 0.6
)

// suppressFalsePositives marks accounts that look like ordinary merchants
// or payroll disbursers. Only accounts without structural evidence (no
// cycle, no layering chain) are eligible: a merchant profile never excuses
// circular routing. Purely a function of the graph and evidence, so the
// outcome is deterministic.
func suppressFalsePositives(g *graph.Graph, scores []accountScore) []bool {
	suppressed := make([]bool, g.NodeCount())
	for i := range suppressed {
		s := scores[i]
		if s.score == 0 || s.cycle || s.layering {
			continue
		}
		if isLikelyMerchant(g, i) || isLikelyPayroll(g, i) {
			suppressed[i] = true
		}
	}
	return suppressed
}

// isLikelyMerchant: many distinct senders over a sustained span.
func isLikelyMerchant(g *graph.Graph, i int) bool {
	node := g.Node(i)
	if g.InDegree(i) < merchantMinSenders || node.InTxnCount < merchantMinTxns {
		return false
	}
	if node.FirstActivity == nil || node.LastActivity == nil {
		return false
	}
	span := node.LastActivity.Sub(*node.FirstActivity).Hours() / 24
	return span >= merchantMinSpanDays
}

// isLikelyPayroll: repeated uniform outgoing amounts to many recipients.
// Uniformity is judged on per-edge mean amounts since parallel transfers
// are aggregated.
func isLikelyPayroll(g *graph.Graph, i int) bool {
	node := g.Node(i)
	if g.OutDegree(i) < payrollMinRecipients || node.OutTxnCount < payrollMinRecipients {
		return false
	}

	means := make(map[string]int)
	mode := 0
	for _, ei := range g.OutEdges(i) {
		e := g.Edge(ei)
		mean := e.Amount.Div(decimal.NewFromInt(int64(e.Count))).StringFixed(2)
		means[mean]++
		if means[mean] > mode {
			mode = means[mean]
		}
	}
	if float64(mode)/float64(g.OutDegree(i)) >= payrollUniformity {
		return true
	}
	return len(means) <= 3 && node.OutTxnCount >= 10
}
