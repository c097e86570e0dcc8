// Package analysis implements the graph-based fraud pattern detection and
// scoring engine: graph construction, the four structural detectors,
// weighted score aggregation, and explanation synthesis.
package analysis

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mullbar/fraudgraph/internal/domain/graph"
	"github.com/mullbar/fraudgraph/internal/domain/transaction"
)

// Service runs one analysis pipeline per submitted batch. It holds no
// cross-run state; every run's graph and evidence are independent.
type Service struct {
	cfg    Config
	logger *slog.Logger
	tracer trace.Tracer
}

// NewService creates the analysis service with the given configuration.
func NewService(cfg Config, logger *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
		tracer: otel.Tracer("fraudgraph/analysis"),
	}
}

// Config returns the active analysis configuration.
func (s *Service) Config() Config { return s.cfg }

// Analyze is the single operation exposed to collaborators: it builds the
// transaction graph, runs the detectors, scores every account, and
// assembles the aggregate result. The caller blocks until the full result
// is available. The cycle, layering, and smurfing detectors read the same
// immutable snapshot and run as parallel tasks joined before ring
// detection; cancellation is honored at traversal-root boundaries.
func (s *Service) Analyze(ctx context.Context, parsed *transaction.ParseResult) (*Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "analysis.run")
	defer span.End()

	g, report, err := graph.Build(parsed.Transfers, graph.BuildOptions{
		MalformedTolerance: s.cfg.MalformedRowTolerance,
		PreRejected:        len(parsed.RowErrors),
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("graph.nodes", g.NodeCount()),
		attribute.Int("graph.edges", g.EdgeCount()),
		attribute.Int("rows.dropped", report.RowsDropped()),
	)

	var (
		wg      sync.WaitGroup
		cyc     *cycleEvidence
		lay     *layeringEvidence
		smurf   *smurfingEvidence
		detErrs [3]error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		cyc, detErrs[0] = detectCycles(ctx, g, s.cfg)
	}()
	go func() {
		defer wg.Done()
		lay, detErrs[1] = detectLayering(ctx, g, s.cfg)
	}()
	go func() {
		defer wg.Done()
		smurf, detErrs[2] = detectSmurfing(ctx, g, s.cfg)
	}()
	wg.Wait()
	for _, derr := range detErrs {
		if derr != nil {
			return nil, derr
		}
	}

	rings, err := detectRings(ctx, g, cyc, smurf)
	if err != nil {
		return nil, err
	}

	scores, thresholds := computeScores(g, cyc, lay, smurf, s.cfg)

	var suppressed []bool
	if s.cfg.FilterFalsePositives {
		suppressed = suppressFalsePositives(g, scores)
	} else {
		suppressed = make([]bool, g.NodeCount())
	}

	result := s.assemble(g, scores, rings, suppressed, report)
	result.Summary.ProcessingTimeSeconds = math.Round(time.Since(start).Seconds()*100) / 100

	s.logger.InfoContext(ctx, "analysis run complete",
		"accounts", result.Summary.TotalAccountsAnalyzed,
		"flagged", result.Summary.SuspiciousAccountsFlagged,
		"rings", result.Summary.FraudRingsDetected,
		"rows_dropped", result.Summary.RowsDropped,
		"frequency_cutoff", thresholds.frequency,
		"amount_cutoff", thresholds.amount,
		"duration", time.Since(start),
	)
	return result, nil
}

// assemble builds the immutable result object: ranked suspicious accounts,
// surviving rings, explanations, and the full graph projection.
func (s *Service) assemble(g *graph.Graph, scores []accountScore, rings *ringEvidence, suppressed []bool, report *graph.BuildReport) *Result {
	n := g.NodeCount()

	reportable := func(i int) bool {
		return !suppressed[i] && scores[i].score >= s.cfg.MinReportScore
	}

	// Rings survive false-positive suppression only while they keep at
	// least two members. Ring IDs are never renumbered, so surviving IDs
	// stay stable across configurations.
	ringIDFor := make([]string, n)
	var fraudRings []FraudRing
	for _, r := range rings.rings {
		var memberIDs []string
		var total, count float64
		for _, m := range r.members {
			if suppressed[m] {
				continue
			}
			memberIDs = append(memberIDs, g.Node(m).ID)
			total += float64(scores[m].score)
			count++
		}
		if len(memberIDs) < 2 {
			continue
		}
		for _, m := range r.members {
			if !suppressed[m] {
				ringIDFor[m] = r.id
			}
		}
		fraudRings = append(fraudRings, FraudRing{
			RingID:         r.id,
			MemberAccounts: memberIDs,
			PatternType:    r.pattern,
			RiskScore:      math.Round(total/count*10) / 10,
		})
	}

	var suspicious []SuspiciousAccount
	explanations := make(map[string]*Explanation)
	stats := computeBehaviorStats(g)
	for i := 0; i < n; i++ {
		if !reportable(i) {
			continue
		}
		node := g.Node(i)
		suspicious = append(suspicious, SuspiciousAccount{
			AccountID:        node.ID,
			SuspicionScore:   scores[i].score,
			RiskTier:         TierForScore(scores[i].score),
			DetectedPatterns: scores[i].patterns(),
			RingID:           ringIDFor[i],
		})
		explanations[node.ID] = buildExplanation(node, scores[i], ringIDFor[i], behaviorFor(g, i, stats))
	}
	sort.SliceStable(suspicious, func(a, b int) bool {
		if suspicious[a].SuspicionScore != suspicious[b].SuspicionScore {
			return suspicious[a].SuspicionScore > suspicious[b].SuspicionScore
		}
		return suspicious[a].AccountID < suspicious[b].AccountID
	})

	projection := GraphProjection{
		Nodes: make([]GraphNode, 0, n),
		Edges: make([]GraphEdge, 0, g.EdgeCount()),
	}
	for i := 0; i < n; i++ {
		node := g.Node(i)
		projection.Nodes = append(projection.Nodes, GraphNode{
			ID:               node.ID,
			Suspicious:       reportable(i),
			Score:            scores[i].score,
			TotalSent:        round2(node.TotalSent.InexactFloat64()),
			TotalReceived:    round2(node.TotalReceived.InexactFloat64()),
			TransactionCount: node.TxnCount(),
			Patterns:         scores[i].patterns(),
		})
	}
	for _, e := range g.Edges() {
		projection.Edges = append(projection.Edges, GraphEdge{
			Source: g.Node(e.From).ID,
			Target: g.Node(e.To).ID,
			Amount: round2(e.Amount.InexactFloat64()),
			Count:  e.Count,
		})
	}

	return &Result{
		Summary: Summary{
			TotalAccountsAnalyzed:     n,
			SuspiciousAccountsFlagged: len(suspicious),
			FraudRingsDetected:        len(fraudRings),
			RowsDropped:               report.RowsDropped(),
		},
		SuspiciousAccounts: suspicious,
		FraudRings:         fraudRings,
		Explanations:       explanations,
		Graph:              projection,
	}
}
