package transaction

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
)

// jsonBatch is the JSON request shape. Amounts come in as json.Number so
// both numeric and string-quoted values parse exactly.
type jsonBatch struct {
	Transactions []jsonRow `json:"transactions"`
}

type jsonRow struct {
	TransactionID string      `json:"transaction_id"`
	SenderID      string      `json:"sender_id"`
	ReceiverID    string      `json:"receiver_id"`
	Amount        json.Number `json:"amount"`
	Timestamp     string      `json:"timestamp"`
}

// ParseJSON reads a transaction batch from a JSON document with a
// top-level "transactions" array. Row-level validation matches ParseCSV:
// structural problems fail the run, bad rows are collected and skipped.
func ParseJSON(r io.Reader) (*ParseResult, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var batch jsonBatch
	if err := dec.Decode(&batch); err != nil {
		return nil, errors.NewDataFormatError("invalid JSON body").WithCause(err)
	}
	if len(batch.Transactions) == 0 {
		return nil, errors.NewDataFormatError("transactions array is empty or missing")
	}

	result := &ParseResult{}
	seenTxnIDs := make(map[string]struct{})
	for row, jr := range batch.Transactions {
		t := Transfer{
			TransactionID: strings.TrimSpace(jr.TransactionID),
			Payer:         strings.TrimSpace(jr.SenderID),
			Payee:         strings.TrimSpace(jr.ReceiverID),
		}

		if t.Payer == "" || t.Payee == "" {
			result.RowErrors = append(result.RowErrors, RowError{
				Row: row, Code: CodeMissingAccountID, Reason: "empty sender_id or receiver_id"})
			continue
		}

		amount, err := decimal.NewFromString(jr.Amount.String())
		if err != nil {
			result.RowErrors = append(result.RowErrors, RowError{
				Row: row, Code: CodeInvalidAmount, Reason: fmt.Sprintf("non-numeric amount %q", jr.Amount.String())})
			continue
		}
		if amount.IsNegative() {
			result.RowErrors = append(result.RowErrors, RowError{
				Row: row, Code: CodeNegativeAmount, Reason: "negative amount"})
			continue
		}
		t.Amount = amount

		if raw := strings.TrimSpace(jr.Timestamp); raw != "" {
			ts, ok := parseTimestamp(raw)
			if !ok {
				result.RowErrors = append(result.RowErrors, RowError{
					Row: row, Code: CodeBadTimestamp, Reason: fmt.Sprintf("unparseable timestamp %q", raw)})
				continue
			}
			t.Timestamp = &ts
		}

		if t.TransactionID != "" {
			if _, dup := seenTxnIDs[t.TransactionID]; dup {
				result.RowErrors = append(result.RowErrors, RowError{
					Row: row, Code: CodeDuplicateTxnID, Reason: fmt.Sprintf("duplicate transaction_id %q", t.TransactionID)})
				continue
			}
			seenTxnIDs[t.TransactionID] = struct{}{}
		}

		result.Transfers = append(result.Transfers, t)
	}

	return result, nil
}
