// Package memstore is an in-memory transactional implementation of store.Store.
//
// Transactions are serializable: one transaction holds the store at a time and
// works on a private copy of the data that replaces the committed copy only
// when the transaction function returns nil. Calls made outside a transaction
// behave like auto-committed statements.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"paylite/internal/domain"
	"paylite/internal/store"

	"github.com/shopspring/decimal"
)

type dataset struct {
	users        map[uint]domain.User
	wallets      map[uint]domain.Wallet
	txs          []domain.Transaction // Insertion order
	nextUserID   uint
	nextWalletID uint
	nextTxID     uint64
}

func newDataset() *dataset {
	return &dataset{
		users:   make(map[uint]domain.User),
		wallets: make(map[uint]domain.Wallet),
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		users:        make(map[uint]domain.User, len(d.users)),
		wallets:      make(map[uint]domain.Wallet, len(d.wallets)),
		txs:          d.txs[:len(d.txs):len(d.txs)], // Appends reallocate, the committed slice is never written
		nextUserID:   d.nextUserID,
		nextWalletID: d.nextWalletID,
		nextTxID:     d.nextTxID,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.wallets {
		c.wallets[k] = v
	}
	return c
}

type root struct {
	mu     sync.Mutex
	data   *dataset
	faults map[string]error
	onLock func(walletID uint)
}

// Store is safe for concurrent use
type Store struct {
	root *root
	data *dataset // Non-nil only on a transaction handle
}

var _ store.Store = (*Store)(nil)

// New returns an empty store
func New() *Store {
	return &Store{root: &root{data: newDataset(), faults: make(map[string]error)}}
}

// FailOn makes the next call of the named method fail with err. The failure is
// consumed once. Used by tests to simulate storage outages mid-transaction.
func (s *Store) FailOn(method string, err error) {
	s.root.mu.Lock()
	defer s.root.mu.Unlock()
	s.root.faults[method] = err
}

// ObserveLocks registers fn to be called with each wallet id passed to LockWallet
func (s *Store) ObserveLocks(fn func(walletID uint)) {
	s.root.mu.Lock()
	defer s.root.mu.Unlock()
	s.root.onLock = fn
}

// Transaction implements store.Store. Nested calls join the outer transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	if s.data != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return domain.Storage(err)
	}
	s.root.mu.Lock()
	defer s.root.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.Storage(err) // Deadline passed while waiting for the lock
	}

	work := s.root.data.clone()
	if err := fn(&Store{root: s.root, data: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.Storage(err) // Deadline passed before commit
	}
	s.root.data = work
	return nil
}

// read runs fn against the visible data
func (s *Store) read(ctx context.Context, method string, fn func(d *dataset) error) error {
	if s.data != nil {
		if err := s.check(ctx, method); err != nil {
			return err
		}
		return fn(s.data)
	}
	s.root.mu.Lock()
	defer s.root.mu.Unlock()
	if err := s.check(ctx, method); err != nil {
		return err
	}
	return fn(s.root.data)
}

// write runs fn in the current transaction or as its own auto-committed one
func (s *Store) write(ctx context.Context, method string, fn func(d *dataset) error) error {
	return s.Transaction(ctx, func(tx store.Store) error {
		t := tx.(*Store)
		if err := t.check(ctx, method); err != nil {
			return err
		}
		return fn(t.data)
	})
}

// check must be called with the root lock held
func (s *Store) check(ctx context.Context, method string) error {
	if err := ctx.Err(); err != nil {
		return domain.Storage(err)
	}
	if err, ok := s.root.faults[method]; ok {
		delete(s.root.faults, method)
		return domain.Storage(err)
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return s.write(ctx, "CreateUser", func(d *dataset) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
				return domain.Conflict("Username or email already exists")
			}
		}
		d.nextUserID++
		user.ID = d.nextUserID
		row := *user
		row.Wallet = nil
		d.users[row.ID] = row
		return nil
	})
}

func (s *Store) UserByID(ctx context.Context, id uint) (*domain.User, error) {
	var out *domain.User
	err := s.read(ctx, "UserByID", func(d *dataset) error {
		u, ok := d.users[id]
		if !ok {
			return domain.NotFound("User not found")
		}
		out = d.withWallet(u)
		return nil
	})
	return out, err
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := s.read(ctx, "UserByEmail", func(d *dataset) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, email) {
				out = d.withWallet(u)
				return nil
			}
		}
		return domain.NotFound("User not found")
	})
	return out, err
}

func (s *Store) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	taken := false
	err := s.read(ctx, "UsernameTaken", func(d *dataset) error {
		for _, u := range d.users {
			if u.ID != exceptID && strings.EqualFold(u.Username, username) {
				taken = true
			}
		}
		return nil
	})
	return taken, err
}

func (s *Store) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	taken := false
	err := s.read(ctx, "EmailTaken", func(d *dataset) error {
		for _, u := range d.users {
			if u.ID != exceptID && strings.EqualFold(u.Email, email) {
				taken = true
			}
		}
		return nil
	})
	return taken, err
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	return s.write(ctx, "UpdateUser", func(d *dataset) error {
		if _, ok := d.users[user.ID]; !ok {
			return domain.NotFound("User not found")
		}
		for _, u := range d.users {
			if u.ID == user.ID {
				continue
			}
			if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
				return domain.Conflict("Username or email already exists")
			}
		}
		row := *user
		row.Wallet = nil
		d.users[row.ID] = row
		return nil
	})
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.write(ctx, "DeleteUser", func(d *dataset) error {
		if _, ok := d.users[id]; !ok {
			return domain.NotFound("User not found")
		}
		for _, w := range d.wallets {
			if w.UserID == id {
				return domain.Storage(errors.New("foreign key violation: wallet still references user"))
			}
		}
		delete(d.users, id)
		return nil
	})
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := s.read(ctx, "ListUsers", func(d *dataset) error {
		out = make([]domain.User, 0, len(d.users))
		for _, u := range d.users {
			out = append(out, *d.withWallet(u))
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (s *Store) CreateWallet(ctx context.Context, wallet *domain.Wallet) error {
	return s.write(ctx, "CreateWallet", func(d *dataset) error {
		if _, ok := d.users[wallet.UserID]; !ok {
			return domain.Storage(errors.New("foreign key violation: unknown user"))
		}
		for _, w := range d.wallets {
			if w.UserID == wallet.UserID {
				return domain.Conflict("Wallet already exists")
			}
		}
		if wallet.Balance.IsNegative() {
			return domain.Storage(errors.New("check constraint chk_wallets_balance violated"))
		}
		d.nextWalletID++
		wallet.ID = d.nextWalletID
		if wallet.Currency == "" {
			wallet.Currency = domain.DefaultCurrency
		}
		d.wallets[wallet.ID] = *wallet
		return nil
	})
}

func (s *Store) WalletByUserID(ctx context.Context, userID uint) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := s.read(ctx, "WalletByUserID", func(d *dataset) error {
		for _, w := range d.wallets {
			if w.UserID == userID {
				out = &w
				return nil
			}
		}
		return domain.NotFound("Wallet not found")
	})
	return out, err
}

func (s *Store) LockWallet(ctx context.Context, walletID uint) (*domain.Wallet, error) {
	var out *domain.Wallet
	err := s.read(ctx, "LockWallet", func(d *dataset) error {
		if s.root.onLock != nil {
			s.root.onLock(walletID)
		}
		w, ok := d.wallets[walletID]
		if !ok {
			return domain.NotFound("Wallet not found")
		}
		out = &w
		return nil
	})
	return out, err
}

func (s *Store) UpdateWalletBalance(ctx context.Context, walletID uint, balance decimal.Decimal) error {
	return s.write(ctx, "UpdateWalletBalance", func(d *dataset) error {
		w, ok := d.wallets[walletID]
		if !ok {
			return domain.NotFound("Wallet not found")
		}
		if balance.IsNegative() {
			return domain.Storage(errors.New("check constraint chk_wallets_balance violated"))
		}
		w.Balance = balance
		d.wallets[walletID] = w
		return nil
	})
}

func (s *Store) DeleteWallet(ctx context.Context, walletID uint) error {
	return s.write(ctx, "DeleteWallet", func(d *dataset) error {
		if _, ok := d.wallets[walletID]; !ok {
			return domain.NotFound("Wallet not found")
		}
		for _, t := range d.txs {
			if t.WalletID == walletID {
				return domain.Storage(errors.New("foreign key violation: transactions still reference wallet"))
			}
		}
		delete(d.wallets, walletID)
		return nil
	})
}

func (s *Store) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	var out []domain.Wallet
	err := s.read(ctx, "ListWallets", func(d *dataset) error {
		out = make([]domain.Wallet, 0, len(d.wallets))
		for _, w := range d.wallets {
			out = append(out, w)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (s *Store) AppendTransactions(ctx context.Context, txs ...*domain.Transaction) error {
	return s.write(ctx, "AppendTransactions", func(d *dataset) error {
		for _, t := range txs {
			if _, ok := d.wallets[t.WalletID]; !ok {
				return domain.Storage(errors.New("foreign key violation: unknown wallet"))
			}
			d.nextTxID++
			t.ID = d.nextTxID
			d.txs = append(d.txs, *t)
		}
		return nil
	})
}

func (s *Store) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	var (
		out   []domain.Transaction
		total int64
	)
	err := s.read(ctx, "ListTransactions", func(d *dataset) error {
		matches := make([]domain.Transaction, 0)
		for _, t := range d.txs {
			if filter.WalletID != nil && t.WalletID != *filter.WalletID {
				continue
			}
			if filter.Type != "" && t.Type != filter.Type {
				continue
			}
			matches = append(matches, t)
		}
		sort.SliceStable(matches, func(i, j int) bool {
			if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
				return matches[i].CreatedAt.After(matches[j].CreatedAt)
			}
			return matches[i].ID > matches[j].ID
		})
		total = int64(len(matches))
		if filter.PerPage > 0 {
			start := min(filter.Offset(), len(matches))
			end := min(start+filter.PerPage, len(matches))
			matches = matches[start:end]
		}
		out = matches
		return nil
	})
	return out, total, err
}

func (s *Store) DeleteTransactionsByWallet(ctx context.Context, walletID uint) error {
	return s.write(ctx, "DeleteTransactionsByWallet", func(d *dataset) error {
		kept := make([]domain.Transaction, 0, len(d.txs))
		for _, t := range d.txs {
			if t.WalletID != walletID {
				kept = append(kept, t)
			}
		}
		d.txs = kept
		return nil
	})
}

func (d *dataset) withWallet(u domain.User) *domain.User {
	for _, w := range d.wallets {
		if w.UserID == u.ID {
			u.Wallet = &w
			break
		}
	}
	return &u
}
