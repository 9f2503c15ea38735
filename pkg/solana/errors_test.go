package solana

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionError(t *testing.T) {
	var raw interface{}
	d := json.NewDecoder(bytes.NewBufferString(`{"InstructionError":[2,{"Custom":6001}]}`))
	d.UseNumber()
	require.NoError(t, d.Decode(&raw))

	e, err := ParseTransactionError(raw)
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	require.NotNil(t, e.InstructionError())
	assert.Equal(t, 2, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorCustom, e.InstructionError().ErrorKey())
	require.NotNil(t, e.CustomError())
	assert.Equal(t, CustomError(6001), *e.CustomError())

	e, err = ParseTransactionErrorJSON(`{"InstructionError":[0,"AccountAlreadyInitialized"]}`)
	require.NoError(t, err)
	assert.Equal(t, InstructionErrorAccountAlreadyInitialized, e.InstructionError().ErrorKey())
	assert.Nil(t, e.CustomError())

	e, err = ParseTransactionErrorJSON(`"AccountInUse"`)
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorAccountInUse, e.ErrorKey())
	assert.Nil(t, e.InstructionError())

	e, err = ParseTransactionErrorJSON(`null`)
	require.NoError(t, err)
	assert.Nil(t, e)

	for _, invalid := range []string{
		`{"InstructionError":[0]}`,
		`{"InstructionError":[0,{"Custom":"x"}]}`,
		`{"a":1,"b":2}`,
		`12`,
	} {
		_, err = ParseTransactionErrorJSON(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestTransactionError_JSONString(t *testing.T) {
	for _, tc := range []struct {
		err      *TransactionError
		expected string
	}{
		{NewTransactionError(TransactionErrorSignatureFailure), `"SignatureFailure"`},
		{TransactionErrorFromInstructionError(NewInstructionError(0, InstructionErrorInvalidArgument)), `{"InstructionError":[0,"InvalidArgument"]}`},
		{TransactionErrorFromInstructionError(NewCustomInstructionError(1, 6012)), `{"InstructionError":[1,{"Custom":6012}]}`},
	} {
		actual, err := tc.err.JSONString()
		require.NoError(t, err)
		assert.JSONEq(t, tc.expected, actual)

		parsed, err := ParseTransactionErrorJSON(actual)
		require.NoError(t, err)
		assert.Equal(t, tc.err.ErrorKey(), parsed.ErrorKey())
		assert.Equal(t, tc.err.Error(), parsed.Error())
	}
}

func TestParseJSONNumber(t *testing.T) {
	for i, c := range []interface{}{"1", 1.0, json.Number("1")} {
		v, err := parseJSONNumber(c)
		assert.NoError(t, err)
		assert.Equal(t, 1, v, i)
	}
}
