package transaction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mullbar/fraudgraph/internal/domain/errors"
)

func TestParseJSON_ValidBatch(t *testing.T) {
	input := `{"transactions":[
		{"transaction_id":"TXN_1","sender_id":"alice","receiver_id":"bob","amount":100.5,"timestamp":"2025-01-01T10:00:00Z"},
		{"sender_id":"bob","receiver_id":"carol","amount":"42.01"}
	]}`

	result, err := ParseJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Transfers, 2)
	assert.Empty(t, result.RowErrors)

	assert.Equal(t, "100.5", result.Transfers[0].Amount.String())
	require.NotNil(t, result.Transfers[0].Timestamp)

	// String-quoted amounts parse exactly.
	assert.Equal(t, "42.01", result.Transfers[1].Amount.String())
	assert.Nil(t, result.Transfers[1].Timestamp)
}

func TestParseJSON_StructuralFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "sender_id,receiver_id\n"},
		{"empty array", `{"transactions":[]}`},
		{"missing key", `{"rows":[{"sender_id":"a"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeDataFormat))
		})
	}
}

func TestParseJSON_RowLevelRejections(t *testing.T) {
	input := `{"transactions":[
		{"transaction_id":"TXN_1","sender_id":"alice","receiver_id":"bob","amount":10},
		{"sender_id":"","receiver_id":"bob","amount":10},
		{"sender_id":"alice","receiver_id":"bob","amount":-1},
		{"transaction_id":"TXN_1","sender_id":"alice","receiver_id":"carol","amount":10},
		{"sender_id":"alice","receiver_id":"bob","amount":10,"timestamp":"yesterday"}
	]}`

	result, err := ParseJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Transfers, 1)
	require.Len(t, result.RowErrors, 4)

	codes := make([]string, len(result.RowErrors))
	for i, re := range result.RowErrors {
		codes[i] = re.Code
	}
	assert.Equal(t, []string{
		CodeMissingAccountID,
		CodeNegativeAmount,
		CodeDuplicateTxnID,
		CodeBadTimestamp,
	}, codes)
}
