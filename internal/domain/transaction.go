package domain

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of balance-affecting event
type TransactionType string

const (
	TypeDeposit     TransactionType = "DEPOSIT"
	TypeWithdrawal  TransactionType = "WITHDRAWAL"
	TypeTransferOut TransactionType = "TRANSFER_OUT"
	TypeTransferIn  TransactionType = "TRANSFER_IN"
)

// TransactionTypes lists every valid type in display order
var TransactionTypes = []TransactionType{TypeDeposit, TypeWithdrawal, TypeTransferIn, TypeTransferOut}

// Credits reports whether the type increases the wallet balance
func (t TransactionType) Credits() bool {
	return t == TypeDeposit || t == TypeTransferIn
}

// ParseTransactionType validates a type filter. An empty string means no filter.
func ParseTransactionType(raw string) (TransactionType, error) {
	if raw == "" {
		return "", nil
	}
	for _, t := range TransactionTypes {
		if string(t) == raw {
			return t, nil
		}
	}
	names := make([]string, len(TransactionTypes))
	for i, t := range TransactionTypes {
		names[i] = string(t)
	}
	return "", Validation("Invalid transaction type. Valid types: " + strings.Join(names, ", "))
}

// Transaction Model. Rows are append-only.
type Transaction struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"` // Also the insertion order
	WalletID  uint            `gorm:"index;not null"`           // Owning wallet
	Wallet    *Wallet         `gorm:"constraint:OnDelete:RESTRICT;"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null"` // Always positive
	Type      TransactionType `gorm:"column:transaction_type;size:15;index;not null"`
	Reference string          `gorm:"size:36;index;not null"` // Shared by both legs of a transfer
	CreatedAt time.Time       `gorm:"index"`                  // Set by the engine
}

// TransactionView is the public representation of a transaction
type TransactionView struct {
	ID        uint64          `json:"id"`
	WalletID  uint            `json:"wallet_id,omitempty"`
	Amount    Money           `json:"amount"`
	Type      TransactionType `json:"type"`
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"created_at"`
}

// View returns the representation used inside a wallet listing
func (t *Transaction) View() TransactionView {
	return TransactionView{
		ID:        t.ID,
		Amount:    Money(t.Amount),
		Type:      t.Type,
		Reference: t.Reference,
		CreatedAt: t.CreatedAt.UTC(),
	}
}

// GlobalView includes the wallet id for cross-wallet listings
func (t *Transaction) GlobalView() TransactionView {
	v := t.View()
	v.WalletID = t.WalletID
	return v
}

// TransactionFilter narrows a transaction log query
type TransactionFilter struct {
	WalletID *uint           // nil lists every wallet
	Type     TransactionType // "" lists every type
	Page     int             // 1-based, ignored when PerPage is 0
	PerPage  int             // 0 returns every match
}

// Offset of the first row of the requested page. Pages too far out to address
// saturate at math.MaxInt, which is past any stored row.
func (f TransactionFilter) Offset() int {
	if f.PerPage <= 0 || f.Page < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PerPage {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PerPage
}
