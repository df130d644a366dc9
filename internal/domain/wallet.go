package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is configured
const DefaultCurrency = "XAF"

// Wallet Model
type Wallet struct {
	ID        uint            `gorm:"primaryKey"`           // Primary key
	UserID    uint            `gorm:"uniqueIndex;not null"` // Owner, one wallet per user
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0;check:chk_wallets_balance,balance >= 0"`
	Currency  string          `gorm:"size:3;not null;default:XAF"` // ISO 4217 code
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WalletView is the public representation of a wallet
type WalletView struct {
	ID       uint   `json:"id"`
	UserID   uint   `json:"user_id,omitempty"`
	Balance  Money  `json:"balance"`
	Currency string `json:"currency"`
}

// View returns the wallet without its owner id
func (w *Wallet) View() WalletView {
	return WalletView{ID: w.ID, Balance: Money(w.Balance), Currency: w.Currency}
}

// AdminView includes the owner id for cross-user listings
func (w *Wallet) AdminView() WalletView {
	v := w.View()
	v.UserID = w.UserID
	return v
}
