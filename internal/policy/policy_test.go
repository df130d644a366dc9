package policy

import (
	"testing"

	"paylite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	alice := Principal{ID: 1, IsActive: true}
	admin := Principal{ID: 9, IsAdmin: true, IsActive: true}

	tests := []struct {
		name string
		req  Request
		want Decision
	}{
		{"admin may do anything", Request{Principal: admin, OwnerID: 1, Operation: Withdraw, ExplicitTarget: true}, Allow},
		{"admin may list users", Request{Principal: admin, Operation: ListUsers}, Allow},
		{"owner views own wallet", Request{Principal: alice, OwnerID: 1, Operation: ViewWallet}, Allow},
		{"owner deposits without target", Request{Principal: alice, OwnerID: 1, Operation: Deposit}, Allow},
		{"other wallet denied", Request{Principal: alice, OwnerID: 2, Operation: ViewWallet}, Deny},
		{"other log denied", Request{Principal: alice, OwnerID: 2, Operation: ViewTransactions}, Deny},
		{"explicit target denied even when self", Request{Principal: alice, OwnerID: 1, Operation: Deposit, ExplicitTarget: true}, Deny},
		{"explicit withdraw target denied", Request{Principal: alice, OwnerID: 1, Operation: Withdraw, ExplicitTarget: true}, Deny},
		{"admin only operation denied", Request{Principal: alice, OwnerID: 1, Operation: ListWallets}, Deny},
		{"global operation without owner denied", Request{Principal: alice, Operation: ViewUser}, Deny},
		{"transfer from own wallet", Request{Principal: alice, OwnerID: 1, Operation: Transfer}, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.req))
		})
	}
}

func TestAuthorizeMessages(t *testing.T) {
	alice := Principal{ID: 1, IsActive: true}

	tests := []struct {
		req  Request
		want string
	}{
		{Request{Principal: alice, Operation: ListAllTransactions}, "Admin access required"},
		{Request{Principal: alice, OwnerID: 2, Operation: Deposit, ExplicitTarget: true}, "Cannot deposit to other users"},
		{Request{Principal: alice, OwnerID: 2, Operation: Withdraw, ExplicitTarget: true}, "Cannot withdraw from other users"},
		{Request{Principal: alice, OwnerID: 2, Operation: ViewWallet}, "Unauthorized"},
	}
	for _, tt := range tests {
		err := Authorize(tt.req)
		require.ErrorIs(t, err, domain.ErrAuthorization)
		assert.Equal(t, tt.want, err.Error())
	}
	assert.NoError(t, Authorize(Request{Principal: alice, OwnerID: 1, Operation: ViewWallet}))
}

func TestCanAct(t *testing.T) {
	p := Principal{ID: 3, IsActive: true}
	assert.Equal(t, Allow, CanAct(p, 3, ViewTransactions))
	assert.Equal(t, Deny, CanAct(p, 4, ViewTransactions))
}
