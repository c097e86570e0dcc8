package graph

import (
	"fmt"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
	"github.com/mullbar/fraudgraph/internal/domain/transaction"
)

// BuildOptions controls row rejection during construction.
type BuildOptions struct {
	// MalformedTolerance is the maximum allowed ratio of malformed rows to
	// submitted rows before the whole run fails.
	MalformedTolerance float64

	// PreRejected counts rows already rejected upstream (CSV parsing).
	// They participate in the tolerance ratio and the dropped-row count.
	PreRejected int
}

// BuildReport summarizes what construction accepted and dropped.
type BuildReport struct {
	RowsSubmitted int
	RowsAccepted  int
	// RowsMalformed counts structurally invalid rows: missing IDs, bad or
	// negative amounts, upstream parse rejections.
	RowsMalformed int
	// SelfTransfersDropped counts payer==payee rows. These are dropped by
	// policy, not malformed, so they do not count toward tolerance.
	SelfTransfersDropped int
}

// RowsDropped is everything that did not make it into the graph.
func (r *BuildReport) RowsDropped() int {
	return r.RowsMalformed + r.SelfTransfersDropped
}

// Build constructs the transaction graph from an ordered batch of transfers.
// Malformed rows are dropped individually; if their ratio over all submitted
// rows exceeds opts.MalformedTolerance the run fails with a DataFormatError
// and no graph is returned. Construction is O(T) over transfers.
func Build(transfers []transaction.Transfer, opts BuildOptions) (*Graph, *BuildReport, error) {
	g := newGraph()
	report := &BuildReport{
		RowsSubmitted: len(transfers) + opts.PreRejected,
		RowsMalformed: opts.PreRejected,
	}

	for _, t := range transfers {
		if err := t.Validate(); err != nil {
			report.RowsMalformed++
			continue
		}
		if t.IsSelfTransfer() {
			report.SelfTransfersDropped++
			continue
		}
		from := g.addNode(t.Payer)
		to := g.addNode(t.Payee)
		g.addTransfer(from, to, t.Amount, t.Timestamp)
		report.RowsAccepted++
	}

	g.sortActivity()

	if report.RowsSubmitted > 0 {
		ratio := float64(report.RowsMalformed) / float64(report.RowsSubmitted)
		if ratio > opts.MalformedTolerance {
			return nil, nil, errors.NewDataFormatError(fmt.Sprintf(
				"malformed-row ratio %.4f exceeds tolerance %.4f (%d of %d rows)",
				ratio, opts.MalformedTolerance, report.RowsMalformed, report.RowsSubmitted))
		}
	}

	return g, report, nil
}
