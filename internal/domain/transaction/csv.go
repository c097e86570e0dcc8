package transaction

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
)

// Required CSV columns. transaction_id and timestamp are optional; extra
// columns are ignored.
var requiredColumns = []string{"sender_id", "receiver_id", "amount"}

// Accepted timestamp layouts, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseResult holds the outcome of parsing a batch: the rows that passed
// structural validation plus per-row rejections. Tolerance enforcement is
// the pipeline's job, not the parser's.
type ParseResult struct {
	Transfers []Transfer
	RowErrors []RowError
}

// RowsSubmitted is the total number of data rows seen, valid or not.
func (p *ParseResult) RowsSubmitted() int {
	return len(p.Transfers) + len(p.RowErrors)
}

// ParseCSV reads a transaction batch from CSV. File-level problems (empty
// input, missing required columns, unbalanced records) fail with a
// DataFormatError; per-row problems are collected into RowErrors and the
// batch continues.
func ParseCSV(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewDataFormatError("uploaded file is empty")
	}
	if err != nil {
		return nil, errors.NewDataFormatError("unreadable CSV header").WithCause(err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewDataFormatError(
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	txnIDCol, hasTxnID := cols["transaction_id"]
	tsCol, hasTS := cols["timestamp"]

	result := &ParseResult{}
	seenTxnIDs := make(map[string]struct{})
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Ragged records are structural: fail the run rather than guess.
			return nil, errors.NewDataFormatError(
				fmt.Sprintf("malformed CSV record at row %d", row)).WithCause(err)
		}

		t, rowErr := parseRecord(record, cols, txnIDCol, hasTxnID, tsCol, hasTS, row)
		if rowErr != nil {
			result.RowErrors = append(result.RowErrors, *rowErr)
			row++
			continue
		}

		if t.TransactionID != "" {
			if _, dup := seenTxnIDs[t.TransactionID]; dup {
				result.RowErrors = append(result.RowErrors, RowError{
					Row:    row,
					Code:   CodeDuplicateTxnID,
					Reason: fmt.Sprintf("duplicate transaction_id %q", t.TransactionID),
				})
				row++
				continue
			}
			seenTxnIDs[t.TransactionID] = struct{}{}
		}

		result.Transfers = append(result.Transfers, t)
		row++
	}

	return result, nil
}

func parseRecord(record []string, cols map[string]int, txnIDCol int, hasTxnID bool, tsCol int, hasTS bool, row int) (Transfer, *RowError) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	t := Transfer{
		Payer: field("sender_id"),
		Payee: field("receiver_id"),
	}
	if hasTxnID && txnIDCol < len(record) {
		t.TransactionID = strings.TrimSpace(record[txnIDCol])
	}

	if t.Payer == "" || t.Payee == "" {
		return t, &RowError{Row: row, Code: CodeMissingAccountID, Reason: "empty sender_id or receiver_id"}
	}

	amount, err := decimal.NewFromString(field("amount"))
	if err != nil {
		return t, &RowError{Row: row, Code: CodeInvalidAmount, Reason: fmt.Sprintf("non-numeric amount %q", field("amount"))}
	}
	if amount.IsNegative() {
		return t, &RowError{Row: row, Code: CodeNegativeAmount, Reason: "negative amount"}
	}
	t.Amount = amount

	if hasTS && tsCol < len(record) {
		raw := strings.TrimSpace(record[tsCol])
		if raw != "" {
			ts, ok := parseTimestamp(raw)
			if !ok {
				return t, &RowError{Row: row, Code: CodeBadTimestamp, Reason: fmt.Sprintf("unparseable timestamp %q", raw)}
			}
			t.Timestamp = &ts
		}
	}

	return t, nil
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
