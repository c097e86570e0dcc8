package transaction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
)

func TestParseCSV_ValidBatch(t *testing.T) {
	input := strings.Join([]string{
		"transaction_id,sender_id,receiver_id,amount,timestamp",
		"TXN_1,alice,bob,100.50,2025-01-01T10:00:00Z",
		"TXN_2,bob,carol,99.25,2025-01-01 11:30:00",
		"TXN_3,carol,alice,0,",
	}, "\n")

	result, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Transfers, 3)
	assert.Empty(t, result.RowErrors)
	assert.Equal(t, 3, result.RowsSubmitted())

	first := result.Transfers[0]
	assert.Equal(t, "TXN_1", first.TransactionID)
	assert.Equal(t, "alice", first.Payer)
	assert.Equal(t, "bob", first.Payee)
	assert.Equal(t, "100.5", first.Amount.String())
	require.NotNil(t, first.Timestamp)

	// Zero amounts are valid; empty timestamps stay nil.
	assert.True(t, result.Transfers[2].Amount.IsZero())
	assert.Nil(t, result.Transfers[2].Timestamp)
}

func TestParseCSV_OptionalColumnsAbsent(t *testing.T) {
	input := "sender_id,receiver_id,amount\nalice,bob,50\n"

	result, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Transfers, 1)
	assert.Empty(t, result.Transfers[0].TransactionID)
	assert.Nil(t, result.Transfers[0].Timestamp)
}

func TestParseCSV_FileLevelFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"missing required columns", "sender_id,amount\nalice,50\n"},
		{"ragged record", "sender_id,receiver_id,amount\nalice,bob\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseCSV(strings.NewReader(tt.input))
			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeDataFormat))
		})
	}
}

func TestParseCSV_RowLevelRejections(t *testing.T) {
	input := strings.Join([]string{
		"transaction_id,sender_id,receiver_id,amount,timestamp",
		"TXN_1,alice,bob,100,",
		"TXN_2,,bob,100,",
		"TXN_3,alice,bob,abc,",
		"TXN_4,alice,bob,-5,",
		"TXN_1,alice,carol,100,",
		"TXN_5,alice,bob,100,not-a-date",
	}, "\n")

	result, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Transfers, 1)
	require.Len(t, result.RowErrors, 5)
	assert.Equal(t, 6, result.RowsSubmitted())

	codes := make([]string, len(result.RowErrors))
	for i, re := range result.RowErrors {
		codes[i] = re.Code
	}
	assert.Equal(t, []string{
		CodeMissingAccountID,
		CodeInvalidAmount,
		CodeNegativeAmount,
		CodeDuplicateTxnID,
		CodeBadTimestamp,
	}, codes)
}

func TestParseCSV_SelfTransfersPassThrough(t *testing.T) {
	// Self-transfers are a graph construction policy, not a parse error.
	input := "sender_id,receiver_id,amount\nalice,alice,100\n"

	result, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Transfers, 1)
	assert.True(t, result.Transfers[0].IsSelfTransfer())
}
