// Package graph holds the directed transaction graph every detector reads.
// Construction is the only mutation point; afterwards the graph is an
// immutable snapshot. Node and edge ordering is insertion order so that all
// traversals are reproducible on identical input.
package graph

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Node is one account plus the attributes accumulated during construction.
type Node struct {
	ID            string
	TotalSent     decimal.Decimal
	TotalReceived decimal.Decimal
	OutTxnCount   int
	InTxnCount    int

	// Activity window for velocity summaries; nil when the input carried
	// no timestamps for this account.
	FirstActivity *time.Time
	LastActivity  *time.Time

	counterparties map[string]struct{}
	stamps         []time.Time
}

// Timestamps returns the node's transfer timestamps in ascending order,
// one per timestamped transfer touching the account. Callers must not
// mutate the returned slice.
func (n *Node) Timestamps() []time.Time { return n.stamps }

// TxnCount is the total number of transfers touching this account.
func (n *Node) TxnCount() int {
	return n.OutTxnCount + n.InTxnCount
}

// TotalVolume is sent plus received.
func (n *Node) TotalVolume() decimal.Decimal {
	return n.TotalSent.Add(n.TotalReceived)
}

// UniqueCounterparties is the number of distinct accounts this node has
// transacted with, in either direction.
func (n *Node) UniqueCounterparties() int {
	return len(n.counterparties)
}

// Velocity is transfers per day over the node's active span. Zero when the
// node has fewer than two timestamped transfers.
func (n *Node) Velocity() float64 {
	if n.FirstActivity == nil || n.LastActivity == nil || n.TxnCount() < 2 {
		return 0
	}
	days := n.LastActivity.Sub(*n.FirstActivity).Hours() / 24
	if days < 0.01 {
		days = 0.01
	}
	return float64(n.TxnCount()) / days
}

// Edge is the aggregate of every transfer for one ordered (payer, payee)
// pair. Amount equals the exact sum of the underlying transfer amounts.
type Edge struct {
	From   int // node index
	To     int
	Amount decimal.Decimal
	Count  int
}

// Graph is a directed multigraph collapsed to one edge per ordered pair.
type Graph struct {
	nodes   []*Node
	nodeIdx map[string]int

	edges   []*Edge
	edgeIdx map[int64]int // packed (from, to) -> edge index

	out [][]int // per node: edge indices in insertion order
	in  [][]int
}

func newGraph() *Graph {
	return &Graph{
		nodeIdx: make(map[string]int),
		edgeIdx: make(map[int64]int),
	}
}

func packPair(from, to int) int64 {
	return int64(from)<<32 | int64(uint32(to))
}

func (g *Graph) addNode(id string) int {
	if i, ok := g.nodeIdx[id]; ok {
		return i
	}
	i := len(g.nodes)
	g.nodes = append(g.nodes, &Node{
		ID:             id,
		TotalSent:      decimal.Zero,
		TotalReceived:  decimal.Zero,
		counterparties: make(map[string]struct{}),
	})
	g.nodeIdx[id] = i
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return i
}

func (g *Graph) addTransfer(from, to int, amount decimal.Decimal, ts *time.Time) {
	key := packPair(from, to)
	ei, ok := g.edgeIdx[key]
	if !ok {
		ei = len(g.edges)
		g.edges = append(g.edges, &Edge{From: from, To: to, Amount: decimal.Zero})
		g.edgeIdx[key] = ei
		g.out[from] = append(g.out[from], ei)
		g.in[to] = append(g.in[to], ei)
	}
	e := g.edges[ei]
	e.Amount = e.Amount.Add(amount)
	e.Count++

	payer, payee := g.nodes[from], g.nodes[to]
	payer.TotalSent = payer.TotalSent.Add(amount)
	payer.OutTxnCount++
	payer.counterparties[payee.ID] = struct{}{}
	payee.TotalReceived = payee.TotalReceived.Add(amount)
	payee.InTxnCount++
	payee.counterparties[payer.ID] = struct{}{}

	if ts != nil {
		touchActivity(payer, *ts)
		touchActivity(payee, *ts)
		payer.stamps = append(payer.stamps, *ts)
		payee.stamps = append(payee.stamps, *ts)
	}
}

// sortActivity orders every node's timestamps once construction is done so
// temporal summaries can scan them without re-sorting.
func (g *Graph) sortActivity() {
	for _, n := range g.nodes {
		sort.Slice(n.stamps, func(a, b int) bool { return n.stamps[a].Before(n.stamps[b]) })
	}
}

func touchActivity(n *Node, ts time.Time) {
	if n.FirstActivity == nil || ts.Before(*n.FirstActivity) {
		t := ts
		n.FirstActivity = &t
	}
	if n.LastActivity == nil || ts.After(*n.LastActivity) {
		t := ts
		n.LastActivity = &t
	}
}

// NodeCount returns the number of distinct accounts.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct ordered (payer, payee) pairs.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node at index i.
func (g *Graph) Node(i int) *Node { return g.nodes[i] }

// Nodes returns all nodes in insertion order. Callers must not mutate.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edge returns the edge at index i.
func (g *Graph) Edge(i int) *Edge { return g.edges[i] }

// Edges returns all edges in insertion order. Callers must not mutate.
func (g *Graph) Edges() []*Edge { return g.edges }

// NodeIndex resolves an account ID to its node index.
func (g *Graph) NodeIndex(id string) (int, bool) {
	i, ok := g.nodeIdx[id]
	return i, ok
}

// OutEdges returns the indices of edges leaving node i, in insertion order.
func (g *Graph) OutEdges(i int) []int { return g.out[i] }

// InEdges returns the indices of edges entering node i, in insertion order.
func (g *Graph) InEdges(i int) []int { return g.in[i] }

// OutDegree is the number of distinct payees of node i.
func (g *Graph) OutDegree(i int) int { return len(g.out[i]) }

// InDegree is the number of distinct payers of node i.
func (g *Graph) InDegree(i int) int { return len(g.in[i]) }

// Successors returns the node indices reachable over one edge from i, in
// edge insertion order.
func (g *Graph) Successors(i int) []int {
	succ := make([]int, len(g.out[i]))
	for k, ei := range g.out[i] {
		succ[k] = g.edges[ei].To
	}
	return succ
}

// EdgeBetween returns the aggregated edge from one node to another, if any.
func (g *Graph) EdgeBetween(from, to int) (*Edge, bool) {
	if ei, ok := g.edgeIdx[packPair(from, to)]; ok {
		return g.edges[ei], true
	}
	return nil, false
}
