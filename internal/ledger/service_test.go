package ledger

import (
	"context"
	"testing"

	"paylite/internal/domain"
	"paylite/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceDepositTargets(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "0")
	bob := f.addUser(t, "bob", "0")
	svc := NewService(f.store, f.engine)
	ctx := context.Background()
	user := policy.Principal{ID: alice, IsActive: true}
	admin := policy.Principal{ID: 99, IsAdmin: true, IsActive: true}

	t.Run("own wallet", func(t *testing.T) {
		r, err := svc.Deposit(ctx, user, DepositRequest{Amount: money("10.00")})
		require.NoError(t, err)
		assert.Equal(t, "10.00", r.Balance.StringFixed(2))
	})

	t.Run("explicit target denied for users even when it is themselves", func(t *testing.T) {
		_, err := svc.Deposit(ctx, user, DepositRequest{Amount: money("10.00"), Target: Target{Present: true, UserID: alice}})
		require.ErrorIs(t, err, domain.ErrAuthorization)
		assert.Equal(t, "Cannot deposit to other users", err.Error())

		_, err = svc.Withdraw(ctx, user, WithdrawRequest{Amount: money("1.00"), Target: Target{Present: true, UserID: bob}})
		require.ErrorIs(t, err, domain.ErrAuthorization)
		assert.Equal(t, "Cannot withdraw from other users", err.Error())
		assert.Equal(t, "10.00", f.balance(t, alice))
	})

	t.Run("admin targets any wallet", func(t *testing.T) {
		_, err := svc.Deposit(ctx, admin, DepositRequest{Amount: money("7.00"), Target: Target{Present: true, UserID: bob}})
		require.NoError(t, err)
		assert.Equal(t, "7.00", f.balance(t, bob))
	})

	t.Run("admin with null target", func(t *testing.T) {
		_, err := svc.Deposit(ctx, admin, DepositRequest{Amount: money("7.00"), Target: Target{Present: true}})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("admin target without wallet", func(t *testing.T) {
		_, err := svc.Withdraw(ctx, admin, WithdrawRequest{Amount: money("1.00"), Target: Target{Present: true, UserID: 555}})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServiceTransfer(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "50.00")
	bob := f.addUser(t, "bob", "0")
	svc := NewService(f.store, f.engine)
	ctx := context.Background()
	user := policy.Principal{ID: alice, IsActive: true}

	_, err := svc.Transfer(ctx, user, TransferRequest{Amount: money("5.00")})
	require.ErrorIs(t, err, domain.ErrValidation)

	r, err := svc.Transfer(ctx, user, TransferRequest{ToUserID: bob, Amount: money("5.00")})
	require.NoError(t, err)
	assert.Equal(t, "45.00", r.FromBalance.StringFixed(2))
}

func TestServiceDenialDoesNotLeakExistence(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "1.00")
	bob := f.addUser(t, "bob", "1.00")
	svc := NewService(f.store, f.engine)
	ctx := context.Background()
	user := policy.Principal{ID: alice, IsActive: true}

	for _, target := range []uint{bob, 4242} {
		_, err := svc.Wallet(ctx, user, target)
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		_, err = svc.History(ctx, user, target, HistoryQuery{})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
		_, err = svc.FullHistory(ctx, user, target, HistoryQuery{})
		assert.ErrorIs(t, err, domain.ErrAuthorization)
	}

	// Authorization comes before parameter validation
	_, err := svc.History(ctx, user, bob, HistoryQuery{PerPage: "101"})
	assert.ErrorIs(t, err, domain.ErrAuthorization)
}

func TestServiceHistoryValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "1.00")
	svc := NewService(f.store, f.engine)
	ctx := context.Background()
	user := policy.Principal{ID: alice, IsActive: true}

	_, err := svc.History(ctx, user, alice, HistoryQuery{PerPage: "101"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.History(ctx, user, alice, HistoryQuery{Page: "0"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.History(ctx, user, alice, HistoryQuery{Type: "REFUND"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	h, err := svc.History(ctx, user, alice, HistoryQuery{Type: "DEPOSIT"})
	require.NoError(t, err)
	assert.Len(t, h.Transactions, 1)
	assert.Equal(t, DefaultPerPage, h.Pagination.PerPage)
}

func TestServiceAdminListings(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "1.00")
	f.addUser(t, "bob", "2.00")
	svc := NewService(f.store, f.engine)
	ctx := context.Background()
	user := policy.Principal{ID: alice, IsActive: true}
	admin := policy.Principal{ID: 99, IsAdmin: true, IsActive: true}

	_, err := svc.Wallets(ctx, user)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
	_, err = svc.AllTransactions(ctx, user, HistoryQuery{})
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	wallets, err := svc.Wallets(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, wallets, 2)
	txs, err := svc.AllTransactions(ctx, admin, HistoryQuery{Type: "DEPOSIT"})
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}
