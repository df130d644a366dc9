// Package ledger moves money between wallets and reads the transaction log.
//
// Engine is the only code that writes wallet balances. Every operation runs in
// a single store transaction that locks the wallet rows it touches, checks the
// balance, writes the new balance and appends the log entries, so the balance
// of a wallet always equals the signed sum of its transactions.
package ledger

import (
	"context"
	"errors"
	"slices"
	"time"

	"paylite/internal/domain"
	"paylite/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Receipt is the outcome of a deposit or withdrawal
type Receipt struct {
	TransactionID uint64
	WalletID      uint
	Amount        decimal.Decimal
	Balance       decimal.Decimal // Balance after the operation
	Reference     string
}

// TransferReceipt is the outcome of a transfer
type TransferReceipt struct {
	TransferOutID uint64
	TransferInID  uint64
	Amount        decimal.Decimal
	FromBalance   decimal.Decimal
	ToBalance     decimal.Decimal
	Reference     string
}

// Engine applies deposits, withdrawals and transfers
type Engine struct {
	store   store.Store
	now     func() time.Time
	timeout time.Duration
	log     logrus.FieldLogger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces the time source used for transaction timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTimeout bounds each operation, including time spent waiting for row locks
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithLogger sets the logger used for operation outcomes
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine builds an engine on top of s
func NewEngine(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		now:     func() time.Time { return time.Now().UTC() },
		timeout: 10 * time.Second,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Deposit credits the wallet owned by userID
func (e *Engine) Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (*Receipt, error) {
	return e.post(ctx, userID, amount, domain.TypeDeposit)
}

// Withdraw debits the wallet owned by userID. The balance never goes below zero.
func (e *Engine) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal) (*Receipt, error) {
	return e.post(ctx, userID, amount, domain.TypeWithdrawal)
}

func (e *Engine) post(ctx context.Context, userID uint, amount decimal.Decimal, typ domain.TransactionType) (*Receipt, error) {
	fields := logrus.Fields{"operation": typ, "user_id": userID, "amount": amount.StringFixed(domain.MoneyScale)}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, e.fail(fields, err)
	}
	ctx, cancel := e.bound(ctx)
	defer cancel()

	var receipt *Receipt
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		owned, err := tx.WalletByUserID(ctx, userID)
		if err != nil {
			return err
		}
		wallet, err := tx.LockWallet(ctx, owned.ID)
		if err != nil {
			return err
		}

		var balance decimal.Decimal
		if typ.Credits() {
			balance = wallet.Balance.Add(amount)
			if !domain.WithinLimit(balance) {
				return domain.Validation("Deposit would exceed the maximum wallet balance")
			}
		} else {
			if wallet.Balance.LessThan(amount) {
				return domain.InsufficientBalance()
			}
			balance = wallet.Balance.Sub(amount)
		}

		if err := tx.UpdateWalletBalance(ctx, wallet.ID, balance); err != nil {
			return err
		}
		entry := &domain.Transaction{
			WalletID:  wallet.ID,
			Amount:    amount,
			Type:      typ,
			Reference: uuid.NewString(),
			CreatedAt: e.now(),
		}
		if err := tx.AppendTransactions(ctx, entry); err != nil {
			return err
		}
		receipt = &Receipt{
			TransactionID: entry.ID,
			WalletID:      wallet.ID,
			Amount:        amount,
			Balance:       balance,
			Reference:     entry.Reference,
		}
		return nil
	})
	if err != nil {
		return nil, e.fail(fields, err)
	}

	fields["wallet_id"] = receipt.WalletID
	fields["transaction_id"] = receipt.TransactionID
	fields["balance"] = receipt.Balance.StringFixed(domain.MoneyScale)
	e.log.WithFields(fields).Info("Ledger operation applied")
	return receipt, nil
}

// Transfer moves amount from the wallet of fromUserID to the wallet of
// toUserID and records a TRANSFER_OUT and a TRANSFER_IN sharing one reference
// and timestamp.
func (e *Engine) Transfer(ctx context.Context, fromUserID, toUserID uint, amount decimal.Decimal) (*TransferReceipt, error) {
	fields := logrus.Fields{
		"operation":    "TRANSFER",
		"from_user_id": fromUserID,
		"to_user_id":   toUserID,
		"amount":       amount.StringFixed(domain.MoneyScale),
	}
	if fromUserID == toUserID {
		return nil, e.fail(fields, domain.Validation("Cannot transfer to same wallet"))
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, e.fail(fields, err)
	}
	ctx, cancel := e.bound(ctx)
	defer cancel()

	var receipt *TransferReceipt
	err := e.store.Transaction(ctx, func(tx store.Store) error {
		src, err := tx.WalletByUserID(ctx, fromUserID)
		if err != nil {
			return err
		}
		dst, err := tx.WalletByUserID(ctx, toUserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NotFound("Recipient wallet not found")
			}
			return err
		}
		if src.ID == dst.ID {
			return domain.Validation("Cannot transfer to same wallet")
		}

		locked, err := lockInOrder(ctx, tx, src.ID, dst.ID)
		if err != nil {
			return err
		}
		from, to := locked[src.ID], locked[dst.ID]
		if from.Balance.LessThan(amount) {
			return domain.InsufficientBalance()
		}
		fromBalance := from.Balance.Sub(amount)
		toBalance := to.Balance.Add(amount)
		if !domain.WithinLimit(toBalance) {
			return domain.Validation("Transfer would exceed the recipient's maximum wallet balance")
		}

		if err := tx.UpdateWalletBalance(ctx, from.ID, fromBalance); err != nil {
			return err
		}
		if err := tx.UpdateWalletBalance(ctx, to.ID, toBalance); err != nil {
			return err
		}
		now, ref := e.now(), uuid.NewString()
		out := &domain.Transaction{WalletID: from.ID, Amount: amount, Type: domain.TypeTransferOut, Reference: ref, CreatedAt: now}
		in := &domain.Transaction{WalletID: to.ID, Amount: amount, Type: domain.TypeTransferIn, Reference: ref, CreatedAt: now}
		if err := tx.AppendTransactions(ctx, out, in); err != nil {
			return err
		}
		receipt = &TransferReceipt{
			TransferOutID: out.ID,
			TransferInID:  in.ID,
			Amount:        amount,
			FromBalance:   fromBalance,
			ToBalance:     toBalance,
			Reference:     ref,
		}
		return nil
	})
	if err != nil {
		return nil, e.fail(fields, err)
	}

	fields["reference"] = receipt.Reference
	fields["from_balance"] = receipt.FromBalance.StringFixed(domain.MoneyScale)
	fields["to_balance"] = receipt.ToBalance.StringFixed(domain.MoneyScale)
	e.log.WithFields(fields).Info("Transfer applied")
	return receipt, nil
}

// lockInOrder locks wallets in ascending id order. Every transaction that
// holds more than one wallet row acquires them this way, so two transfers
// between the same pair of wallets cannot wait on each other.
func lockInOrder(ctx context.Context, tx store.Store, ids ...uint) (map[uint]*domain.Wallet, error) {
	ordered := slices.Clone(ids)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	locked := make(map[uint]*domain.Wallet, len(ordered))
	for _, id := range ordered {
		w, err := tx.LockWallet(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = w
	}
	return locked, nil
}

func (e *Engine) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

// fail logs a rejected or failed operation and returns err as a domain error
func (e *Engine) fail(fields logrus.Fields, err error) error {
	err = domain.Storage(err)
	entry := e.log.WithFields(fields).WithField("error", err.Error())
	if errors.Is(err, domain.ErrStorage) {
		entry.WithField("cause", errors.Unwrap(err)).Error("Ledger operation failed")
	} else {
		entry.Info("Ledger operation rejected")
	}
	return err
}
