package analysis

import (
	"context"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
	"github.com/mullbar/fraudgraph/internal/domain/graph"
)

// layeringEvidence is the layering detector's per-account output.
type layeringEvidence struct {
	onChain []bool
	// chainSpan is the longest forwarding chain (in edges) known to pass
	// through each node, capped by the depth cap on either side.
	chainSpan []int
}

// detectLayering flags accounts on multi-hop forwarding chains. For every
// node it memoizes the longest downstream path and, over the reversed
// adjacency, the longest upstream path, each capped at LayeringDepthCap.
// A node participates when upstream+downstream reaches MinLayeringHops.
// Cycle re-entry terminates a path: a successor still on the traversal
// stack contributes zero depth. Memoization keeps the pass linear-ish on
// sparse graphs.
func detectLayering(ctx context.Context, g *graph.Graph, cfg Config) (*layeringEvidence, error) {
	fwd, err := longestPaths(ctx, g, cfg.LayeringDepthCap, g.Successors)
	if err != nil {
		return nil, err
	}
	pred := func(i int) []int {
		in := g.InEdges(i)
		nodes := make([]int, len(in))
		for k, ei := range in {
			nodes[k] = g.Edge(ei).From
		}
		return nodes
	}
	bwd, err := longestPaths(ctx, g, cfg.LayeringDepthCap, pred)
	if err != nil {
		return nil, err
	}

	n := g.NodeCount()
	ev := &layeringEvidence{
		onChain:   make([]bool, n),
		chainSpan: make([]int, n),
	}
	for i := 0; i < n; i++ {
		span := fwd[i] + bwd[i]
		ev.chainSpan[i] = span
		ev.onChain[i] = span >= cfg.MinLayeringHops
	}
	return ev, nil
}

// longestPaths computes, per node, the longest path length (in edges)
// following the given neighbor function, capped at depthCap. Iterative DFS
// with memoization; neighbors are visited in the deterministic order the
// neighbor function yields.
func longestPaths(ctx context.Context, g *graph.Graph, depthCap int, neighbors func(int) []int) ([]int, error) {
	n := g.NodeCount()
	depth := make([]int, n)
	state := make([]int, n) // 0 unvisited, 1 on stack, 2 done

	type frame struct {
		node int
		next int
		best int
	}

	for root := 0; root < n; root++ {
		if state[root] != 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelledError("layering detection aborted")
		}

		stack := []frame{{node: root}}
		state[root] = 1
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			ns := neighbors(f.node)
			advanced := false
			for f.next < len(ns) {
				nb := ns[f.next]
				f.next++
				switch state[nb] {
				case 0:
					state[nb] = 1
					stack = append(stack, frame{node: nb})
					advanced = true
				case 2:
					if d := depth[nb] + 1; d > f.best {
						f.best = d
					}
				case 1:
					// Cycle re-entry: the chain terminates here.
					if f.best < 1 {
						f.best = 1
					}
				}
				if advanced {
					break
				}
			}
			if advanced {
				continue
			}
			if f.next >= len(ns) {
				d := f.best
				if d > depthCap {
					d = depthCap
				}
				depth[f.node] = d
				state[f.node] = 2
				stack = stack[:len(stack)-1]
				if len(stack) > 0 {
					parent := &stack[len(stack)-1]
					if pd := d + 1; pd > parent.best {
						parent.best = pd
					}
				}
			}
		}
	}
	return depth, nil
}
