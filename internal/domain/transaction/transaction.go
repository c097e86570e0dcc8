package transaction

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
)

// Transfer is a single directed payment between two accounts. Timestamp is
// optional; detectors do not depend on it, but velocity summaries use it
// when present.
type Transfer struct {
	TransactionID string          `json:"transaction_id,omitempty"`
	Payer         string          `json:"payer"`
	Payee         string          `json:"payee"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     *time.Time      `json:"timestamp,omitempty"`
}

// RowError records why a single input row was rejected. Row indices are
// zero-based over the submitted batch.
type RowError struct {
	Row    int    `json:"row"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Validation codes for rejected rows
const (
	CodeMissingAccountID = "MISSING_ACCOUNT_ID"
	CodeInvalidAmount    = "INVALID_AMOUNT"
	CodeNegativeAmount   = "NEGATIVE_AMOUNT"
	CodeSelfTransfer     = "SELF_TRANSFER"
	CodeDuplicateTxnID   = "DUPLICATE_TRANSACTION_ID"
	CodeBadTimestamp     = "BAD_TIMESTAMP"
)

// Validate checks the structural constraints on a single transfer. It does
// not consider self-transfers; the graph builder handles those as an
// explicit drop policy rather than a malformed row.
func (t Transfer) Validate() *errors.AppError {
	if strings.TrimSpace(t.Payer) == "" {
		return errors.NewValidationError(CodeMissingAccountID, "payer account ID is empty")
	}
	if strings.TrimSpace(t.Payee) == "" {
		return errors.NewValidationError(CodeMissingAccountID, "payee account ID is empty")
	}
	if t.Amount.IsNegative() {
		return errors.NewValidationError(CodeNegativeAmount, "amount must be >= 0")
	}
	return nil
}

// IsSelfTransfer reports whether payer and payee are the same account.
func (t Transfer) IsSelfTransfer() bool {
	return t.Payer == t.Payee
}
