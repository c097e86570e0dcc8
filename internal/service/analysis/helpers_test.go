package analysis

import (
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mullbar/fraudgraph/internal/domain/graph"
	"github.com/mullbar/fraudgraph/internal/domain/transaction"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func transfersFrom(pairs [][2]string) []transaction.Transfer {
	out := make([]transaction.Transfer, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, transaction.Transfer{
			Payer:  p[0],
			Payee:  p[1],
			Amount: decimal.NewFromInt(100),
		})
	}
	return out
}

func mkGraph(t *testing.T, pairs [][2]string) *graph.Graph {
	t.Helper()
	g, _, err := graph.Build(transfersFrom(pairs), graph.BuildOptions{})
	require.NoError(t, err)
	return g
}

func nodeIdx(t *testing.T, g *graph.Graph, id string) int {
	t.Helper()
	i, ok := g.NodeIndex(id)
	require.True(t, ok, "node %s not in graph", id)
	return i
}

func emptyEvidence(n int) (*cycleEvidence, *layeringEvidence, *smurfingEvidence) {
	return &cycleEvidence{onCycle: make([]bool, n)},
		&layeringEvidence{onChain: make([]bool, n), chainSpan: make([]int, n)},
		&smurfingEvidence{fanIn: make([]bool, n), fanOut: make([]bool, n)}
}
