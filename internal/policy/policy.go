// Package policy decides whether an authenticated principal may perform an
// operation on a resource owned by some user. It holds no state and performs no
// lookups, so services evaluate it before touching the store.
package policy

import "paylite/internal/domain"

// Principal is the authenticated actor making a request
type Principal struct {
	ID       uint
	IsAdmin  bool
	IsActive bool
}

// Operation names an action gated by the policy
type Operation string

const (
	ViewUser         Operation = "user:view"
	UpdateUser       Operation = "user:update"
	ViewWallet       Operation = "wallet:view"
	ViewTransactions Operation = "transactions:view"
	Deposit          Operation = "ledger:deposit"
	Withdraw         Operation = "ledger:withdraw"
	Transfer         Operation = "ledger:transfer"

	// Admin only
	CreateUser          Operation = "user:create"
	DeleteUser          Operation = "user:delete"
	ListUsers           Operation = "user:list"
	ManageAccountFlags  Operation = "user:flags"
	ListWallets         Operation = "wallet:list"
	ListAllTransactions Operation = "transactions:list_all"
)

var adminOnly = map[Operation]bool{
	CreateUser:          true,
	DeleteUser:          true,
	ListUsers:           true,
	ManageAccountFlags:  true,
	ListWallets:         true,
	ListAllTransactions: true,
}

// Decision is the outcome of an evaluation
type Decision bool

const (
	Allow Decision = true
	Deny  Decision = false
)

// Request describes one access attempt
type Request struct {
	Principal Principal
	OwnerID   uint      // Owner of the target resource, 0 for global operations
	Operation Operation // What is being attempted
	// ExplicitTarget is set when the caller named a target user in a deposit
	// or withdrawal payload, whatever its value.
	ExplicitTarget bool
}

// Evaluate applies the rules in priority order
func Evaluate(r Request) Decision {
	if r.Principal.IsAdmin {
		return Allow
	}
	if adminOnly[r.Operation] {
		return Deny
	}
	if r.ExplicitTarget && (r.Operation == Deposit || r.Operation == Withdraw) {
		return Deny
	}
	if r.OwnerID != 0 && r.Principal.ID == r.OwnerID {
		return Allow
	}
	return Deny
}

// Authorize evaluates r and returns an authorization error on denial
func Authorize(r Request) error {
	if Evaluate(r) == Allow {
		return nil
	}
	return domain.Forbidden(denialMessage(r))
}

// CanAct is the three-argument form used when no explicit target is involved
func CanAct(p Principal, ownerID uint, op Operation) Decision {
	return Evaluate(Request{Principal: p, OwnerID: ownerID, Operation: op})
}

func denialMessage(r Request) string {
	switch {
	case adminOnly[r.Operation]:
		return "Admin access required"
	case r.ExplicitTarget && r.Operation == Deposit:
		return "Cannot deposit to other users"
	case r.ExplicitTarget && r.Operation == Withdraw:
		return "Cannot withdraw from other users"
	default:
		return "Unauthorized"
	}
}
