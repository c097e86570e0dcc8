package analysis

import (
	"context"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
	"github.com/mullbar/fraudgraph/internal/domain/graph"
)

// cycleEvidence is the cycle detector's per-account output.
type cycleEvidence struct {
	onCycle []bool
	cycles  [][]int // concrete instances, node indices, canonical start
}

// detectCycles runs two passes over the immutable graph snapshot.
//
// Pass 1 marks cycle participants in O(V+E): an iterative DFS keeps the
// recursion stack explicit, and a back edge into a node still on the stack
// marks every node between the target and the top as a participant,
// provided the loop meets the configured minimum length.
//
// Pass 2 exhaustively walks simple cycles bounded by MaxCycleLength. It
// marks participants the first pass misses when a cycle closes through an
// already-finished node, and materializes up to MaxCycleInstances concrete
// instances for ring pattern-typing. Each simple cycle is found exactly once
// by only starting from its smallest node index. Both passes follow
// insertion order so results are reproducible.
func detectCycles(ctx context.Context, g *graph.Graph, cfg Config) (*cycleEvidence, error) {
	n := g.NodeCount()
	ev := &cycleEvidence{onCycle: make([]bool, n)}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, n)
	stackPos := make([]int, n) // position on the path stack while gray
	var path []int

	type frame struct {
		node int
		next int // next successor offset to explore
	}

	for root := 0; root < n; root++ {
		if color[root] != white {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelledError("cycle detection aborted")
		}

		stack := []frame{{node: root}}
		color[root] = gray
		stackPos[root] = 0
		path = append(path[:0], root)

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			succ := g.Successors(f.node)
			if f.next < len(succ) {
				next := succ[f.next]
				f.next++
				switch color[next] {
				case white:
					color[next] = gray
					stackPos[next] = len(path)
					path = append(path, next)
					stack = append(stack, frame{node: next})
				case gray:
					// Back edge: everything from next to the top of the
					// path is on a cycle.
					segLen := len(path) - stackPos[next]
					if segLen >= cfg.MinCycleLength {
						for _, v := range path[stackPos[next]:] {
							ev.onCycle[v] = true
						}
					}
				}
			} else {
				color[f.node] = black
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
			}
		}
	}

	if err := enumerateCycles(ctx, g, cfg, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// enumerateCycles walks simple cycles with length in
// [MinCycleLength, MaxCycleLength]. Paths only visit node indices greater
// than the start, so the start is always the smallest member and every
// cycle is found once. The walk always runs to completion so participation
// marking stays exact; MaxCycleInstances only caps how many instances are
// kept for ring pattern-typing.
func enumerateCycles(ctx context.Context, g *graph.Graph, cfg Config, ev *cycleEvidence) error {
	n := g.NodeCount()
	onPath := make([]bool, n)

	var walk func(start, node int, path []int)
	walk = func(start, node int, path []int) {
		for _, next := range g.Successors(node) {
			if next == start && len(path) >= cfg.MinCycleLength {
				for _, v := range path {
					ev.onCycle[v] = true
				}
				if len(ev.cycles) < cfg.MaxCycleInstances {
					cycle := make([]int, len(path))
					copy(cycle, path)
					ev.cycles = append(ev.cycles, cycle)
				}
				continue
			}
			if next <= start || onPath[next] || len(path) >= cfg.MaxCycleLength {
				continue
			}
			onPath[next] = true
			walk(start, next, append(path, next))
			onPath[next] = false
		}
	}

	for start := 0; start < n; start++ {
		if err := ctx.Err(); err != nil {
			return errors.NewCancelledError("cycle enumeration aborted")
		}
		onPath[start] = true
		walk(start, start, []int{start})
		onPath[start] = false
	}
	return nil
}
