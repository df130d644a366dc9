package ledger

import (
	"context"
	"testing"

	"paylite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage string
		want          PageRequest
		wantErr       string
	}{
		{name: "defaults", want: PageRequest{Page: 1, PerPage: 20}},
		{name: "explicit", page: "3", perPage: "100", want: PageRequest{Page: 3, PerPage: 100}},
		{name: "page zero", page: "0", wantErr: "Page must be >= 1"},
		{name: "largest page", page: "2147483647", perPage: "100", want: PageRequest{Page: MaxPage, PerPage: 100}},
		{name: "page too large", page: "9223372036854775807", perPage: "100", wantErr: "Page must be <= 2147483647"},
		{name: "page beyond int", page: "99999999999999999999", wantErr: "Page must be an integer"},
		{name: "per_page too large", perPage: "101", wantErr: "per_page must be between 1 and 100"},
		{name: "per_page zero", perPage: "0", wantErr: "per_page must be between 1 and 100"},
		{name: "page not a number", page: "two", wantErr: "Page must be an integer"},
		{name: "per_page not a number", perPage: "1.5", wantErr: "per_page must be an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageRequest(tt.page, tt.perPage)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, domain.ErrValidation)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHistoryForUser(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "100.00")
	bob := f.addUser(t, "bob", "0")
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := f.engine.Withdraw(ctx, alice, money("1.00"))
		require.NoError(t, err)
	}
	_, err := f.engine.Transfer(ctx, alice, bob, money("5.00"))
	require.NoError(t, err)

	h := NewHistory(f.store)

	t.Run("paginated", func(t *testing.T) {
		got, err := h.ForUser(ctx, alice, "", &PageRequest{Page: 2, PerPage: 4})
		require.NoError(t, err)
		assert.Equal(t, "91.00", got.Wallet.Balance.StringFixed(2))
		require.NotNil(t, got.Pagination)
		assert.Equal(t, Pagination{Page: 2, PerPage: 4, Total: 6, TotalPages: 2}, *got.Pagination)
		require.Len(t, got.Transactions, 2)
		assert.Equal(t, domain.TypeDeposit, got.Transactions[1].Type, "oldest entry is last")
	})

	t.Run("filtered by type", func(t *testing.T) {
		got, err := h.ForUser(ctx, alice, domain.TypeWithdrawal, nil)
		require.NoError(t, err)
		assert.Nil(t, got.Pagination)
		assert.Len(t, got.Transactions, 4)
	})

	t.Run("page past the end", func(t *testing.T) {
		got, err := h.ForUser(ctx, bob, "", &PageRequest{Page: 9, PerPage: 20})
		require.NoError(t, err)
		assert.Empty(t, got.Transactions)
		assert.EqualValues(t, 1, got.Pagination.Total)
		assert.Equal(t, 1, got.Pagination.TotalPages)
	})

	t.Run("no wallet", func(t *testing.T) {
		_, err := h.ForUser(ctx, 777, "", nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("all wallets", func(t *testing.T) {
		all, err := h.All(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 7)
		ins, err := h.All(ctx, domain.TypeTransferIn)
		require.NoError(t, err)
		require.Len(t, ins, 1)
		assert.Equal(t, "5.00", ins[0].Amount.StringFixed(2))
	})
}

func TestPaginationTotalPages(t *testing.T) {
	assert.Equal(t, 0, newPagination(PageRequest{Page: 1, PerPage: 20}, 0).TotalPages)
	assert.Equal(t, 1, newPagination(PageRequest{Page: 1, PerPage: 20}, 20).TotalPages)
	assert.Equal(t, 2, newPagination(PageRequest{Page: 1, PerPage: 20}, 21).TotalPages)
}
