// Package store defines the persistence contract shared by the MySQL store in
// internal/db and the in-memory store in internal/store/memstore.
//
// Every method returns *domain.Error values: NotFound for absent rows, Conflict
// for uniqueness violations and Storage for anything else.
package store

import (
	"context"

	"paylite/internal/domain"

	"github.com/shopspring/decimal"
)

// Users persists credentials and account flags
type Users interface {
	CreateUser(ctx context.Context, user *domain.User) error
	UserByID(ctx context.Context, id uint) (*domain.User, error) // Wallet preloaded
	UserByEmail(ctx context.Context, email string) (*domain.User, error)
	UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id uint) error
	ListUsers(ctx context.Context) ([]domain.User, error) // Wallets preloaded, ordered by id
}

// Wallets persists balances
type Wallets interface {
	CreateWallet(ctx context.Context, wallet *domain.Wallet) error
	WalletByUserID(ctx context.Context, userID uint) (*domain.Wallet, error)
	// LockWallet reads the wallet row and holds it exclusively until the
	// surrounding transaction ends.
	LockWallet(ctx context.Context, walletID uint) (*domain.Wallet, error)
	UpdateWalletBalance(ctx context.Context, walletID uint, balance decimal.Decimal) error
	DeleteWallet(ctx context.Context, walletID uint) error
	ListWallets(ctx context.Context) ([]domain.Wallet, error)
}

// Transactions persists the append-only log
type Transactions interface {
	AppendTransactions(ctx context.Context, txs ...*domain.Transaction) error
	// ListTransactions returns the requested page ordered newest first, ties
	// by insertion order, plus the number of rows matching the filter.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error)
	DeleteTransactionsByWallet(ctx context.Context, walletID uint) error
}

// Store is a handle on the backing store. Methods called on the handle passed
// to Transaction run inside that transaction.
type Store interface {
	Users
	Wallets
	Transactions

	// Transaction runs fn atomically. A non-nil error from fn rolls back every
	// write made through tx and is returned unchanged.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
