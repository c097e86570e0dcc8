package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
	"github.com/mullbar/fraudgraph/internal/domain/graph"
)

// ring is one strongly-connected cluster before result assembly.
type ring struct {
	id      string
	members []int // node indices, ascending
	pattern string
}

// ringEvidence maps accounts to their ring, if any. memberRing holds -1 for
// accounts outside every ring; SCCs partition the graph, so an account can
// belong to at most one ring.
type ringEvidence struct {
	rings      []ring
	memberRing []int
}

// detectRings partitions the graph into strongly-connected components with
// an iterative Tarjan and turns every SCC of two or more members into a
// candidate fraud ring. Ring IDs follow Tarjan's component completion
// order, which is fixed for a given input, so re-running yields identical
// IDs. Pattern typing consumes the other detectors' evidence over the
// members.
func detectRings(ctx context.Context, g *graph.Graph, cyc *cycleEvidence, smurf *smurfingEvidence) (*ringEvidence, error) {
	n := g.NodeCount()
	ev := &ringEvidence{memberRing: make([]int, n)}
	for i := range ev.memberRing {
		ev.memberRing[i] = -1
	}

	sccs, err := tarjanSCC(ctx, g)
	if err != nil {
		return nil, err
	}

	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		members := append([]int(nil), scc...)
		sort.Ints(members)
		r := ring{
			id:      fmt.Sprintf("RING_%03d", len(ev.rings)+1),
			members: members,
			pattern: classifyRing(members, cyc, smurf),
		}
		for _, m := range members {
			if m < 0 || m >= n {
				return nil, errors.NewAnalysisError(
					fmt.Sprintf("ring %s references node index %d outside the graph", r.id, m))
			}
			ev.memberRing[m] = len(ev.rings)
		}
		ev.rings = append(ev.rings, r)
	}
	return ev, nil
}

// classifyRing picks the dominant pattern: a cycle-participant majority
// wins; otherwise a lone fan-out (or fan-in) hub among the members labels
// the ring fan_out (fan_in); shell_network is the fallback when no single
// detector dominates.
func classifyRing(members []int, cyc *cycleEvidence, smurf *smurfingEvidence) string {
	var onCycle, fanIn, fanOut int
	for _, m := range members {
		if cyc.onCycle[m] {
			onCycle++
		}
		if smurf.fanIn[m] {
			fanIn++
		}
		if smurf.fanOut[m] {
			fanOut++
		}
	}
	switch {
	case onCycle*2 > len(members):
		return PatternCycle
	case fanOut == 1 && fanIn == 0:
		return PatternFanOut
	case fanIn == 1 && fanOut == 0:
		return PatternFanIn
	default:
		return PatternShellNetwork
	}
}

// tarjanSCC returns the strongly-connected components in completion order.
func tarjanSCC(ctx context.Context, g *graph.Graph) ([][]int, error) {
	n := g.NodeCount()
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}

	var (
		counter int
		tstack  []int
		sccs    [][]int
	)

	type frame struct {
		node int
		next int
	}

	for root := 0; root < n; root++ {
		if index[root] != -1 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelledError("ring detection aborted")
		}

		stack := []frame{{node: root}}
		index[root] = counter
		lowlink[root] = counter
		counter++
		tstack = append(tstack, root)
		onStack[root] = true

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			succ := g.Successors(f.node)
			advanced := false
			for f.next < len(succ) {
				w := succ[f.next]
				f.next++
				if index[w] == -1 {
					index[w] = counter
					lowlink[w] = counter
					counter++
					tstack = append(tstack, w)
					onStack[w] = true
					stack = append(stack, frame{node: w})
					advanced = true
					break
				}
				if onStack[w] && index[w] < lowlink[f.node] {
					lowlink[f.node] = index[w]
				}
			}
			if advanced {
				continue
			}

			v := f.node
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				parent := &stack[len(stack)-1]
				if lowlink[v] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[v]
				}
			}
			if lowlink[v] == index[v] {
				var scc []int
				for {
					w := tstack[len(tstack)-1]
					tstack = tstack[:len(tstack)-1]
					onStack[w] = false
					scc = append(scc, w)
					if w == v {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}
	return sccs, nil
}
