package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionType(t *testing.T) {
	typ, err := ParseTransactionType("")
	require.NoError(t, err)
	assert.Equal(t, TransactionType(""), typ)

	for _, want := range TransactionTypes {
		got, err := ParseTransactionType(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = ParseTransactionType("deposit")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Invalid transaction type. Valid types: DEPOSIT, WITHDRAWAL, TRANSFER_IN, TRANSFER_OUT", err.Error())
}

func TestTransactionTypeCredits(t *testing.T) {
	assert.True(t, TypeDeposit.Credits())
	assert.True(t, TypeTransferIn.Credits())
	assert.False(t, TypeWithdrawal.Credits())
	assert.False(t, TypeTransferOut.Credits())
}

func TestTransactionFilterOffset(t *testing.T) {
	assert.Equal(t, 0, TransactionFilter{}.Offset())
	assert.Equal(t, 0, TransactionFilter{Page: 1, PerPage: 20}.Offset())
	assert.Equal(t, 40, TransactionFilter{Page: 3, PerPage: 20}.Offset())
	assert.Equal(t, math.MaxInt, TransactionFilter{Page: math.MaxInt, PerPage: 100}.Offset())
}
