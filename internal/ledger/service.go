package ledger

import (
	"context"

	"paylite/internal/domain"
	"paylite/internal/policy"
	"paylite/internal/store"

	"github.com/shopspring/decimal"
)

// Target is the optional user_id of a deposit or withdrawal payload
type Target struct {
	Present bool // The payload carried the field, whatever its value
	UserID  uint
}

// DepositRequest credits the caller's wallet, or Target's wallet for admins
type DepositRequest struct {
	Amount decimal.Decimal
	Target Target
}

// WithdrawRequest debits the caller's wallet, or Target's wallet for admins
type WithdrawRequest struct {
	Amount decimal.Decimal
	Target Target
}

// TransferRequest moves money from the caller's wallet to ToUserID's wallet
type TransferRequest struct {
	ToUserID uint
	Amount   decimal.Decimal
}

// HistoryQuery carries raw listing parameters, validated after authorization
type HistoryQuery struct {
	Type    string
	Page    string
	PerPage string
}

// Service evaluates the authorization policy before delegating to the
// engine or the log reader. Denials happen before any lookup, so a caller
// that may not see a wallet cannot learn whether it exists.
type Service struct {
	engine  *Engine
	history *History
	store   store.Store
}

// NewService wires the engine and log reader over one store
func NewService(s store.Store, engine *Engine) *Service {
	return &Service{engine: engine, history: NewHistory(s), store: s}
}

// Deposit implements POST /transactions/deposit
func (s *Service) Deposit(ctx context.Context, p policy.Principal, req DepositRequest) (*Receipt, error) {
	owner, err := s.resolveTarget(p, req.Target, policy.Deposit)
	if err != nil {
		return nil, err
	}
	return s.engine.Deposit(ctx, owner, req.Amount)
}

// Withdraw implements POST /transactions/withdraw
func (s *Service) Withdraw(ctx context.Context, p policy.Principal, req WithdrawRequest) (*Receipt, error) {
	owner, err := s.resolveTarget(p, req.Target, policy.Withdraw)
	if err != nil {
		return nil, err
	}
	return s.engine.Withdraw(ctx, owner, req.Amount)
}

func (s *Service) resolveTarget(p policy.Principal, t Target, op policy.Operation) (uint, error) {
	owner := p.ID
	if t.Present {
		owner = t.UserID
	}
	if err := policy.Authorize(policy.Request{Principal: p, OwnerID: owner, Operation: op, ExplicitTarget: t.Present}); err != nil {
		return 0, err
	}
	if owner == 0 {
		return 0, domain.Validation("user_id must be a positive integer")
	}
	return owner, nil
}

// Transfer implements POST /transactions/transfer. The source is always the caller's wallet.
func (s *Service) Transfer(ctx context.Context, p policy.Principal, req TransferRequest) (*TransferReceipt, error) {
	if err := policy.Authorize(policy.Request{Principal: p, OwnerID: p.ID, Operation: policy.Transfer}); err != nil {
		return nil, err
	}
	if req.ToUserID == 0 {
		return nil, domain.Validation("to_user_id must be a positive integer")
	}
	return s.engine.Transfer(ctx, p.ID, req.ToUserID, req.Amount)
}

// Wallet returns the wallet owned by userID
func (s *Service) Wallet(ctx context.Context, p policy.Principal, userID uint) (*domain.Wallet, error) {
	if err := policy.Authorize(policy.Request{Principal: p, OwnerID: userID, Operation: policy.ViewWallet}); err != nil {
		return nil, err
	}
	w, err := s.store.WalletByUserID(ctx, userID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	return w, nil
}

// Wallets lists every wallet
func (s *Service) Wallets(ctx context.Context, p policy.Principal) ([]domain.Wallet, error) {
	if err := policy.Authorize(policy.Request{Principal: p, Operation: policy.ListWallets}); err != nil {
		return nil, err
	}
	ws, err := s.store.ListWallets(ctx)
	if err != nil {
		return nil, domain.Storage(err)
	}
	return ws, nil
}

// History lists the log of userID's wallet, paginated
func (s *Service) History(ctx context.Context, p policy.Principal, userID uint, q HistoryQuery) (*WalletHistory, error) {
	if err := policy.Authorize(policy.Request{Principal: p, OwnerID: userID, Operation: policy.ViewTransactions}); err != nil {
		return nil, err
	}
	page, err := ParsePageRequest(q.Page, q.PerPage)
	if err != nil {
		return nil, err
	}
	typ, err := domain.ParseTransactionType(q.Type)
	if err != nil {
		return nil, err
	}
	return s.history.ForUser(ctx, userID, typ, &page)
}

// FullHistory lists the whole log of userID's wallet
func (s *Service) FullHistory(ctx context.Context, p policy.Principal, userID uint, q HistoryQuery) (*WalletHistory, error) {
	if err := policy.Authorize(policy.Request{Principal: p, OwnerID: userID, Operation: policy.ViewTransactions}); err != nil {
		return nil, err
	}
	typ, err := domain.ParseTransactionType(q.Type)
	if err != nil {
		return nil, err
	}
	return s.history.ForUser(ctx, userID, typ, nil)
}

// AllTransactions lists every wallet's log
func (s *Service) AllTransactions(ctx context.Context, p policy.Principal, q HistoryQuery) ([]domain.Transaction, error) {
	if err := policy.Authorize(policy.Request{Principal: p, Operation: policy.ListAllTransactions}); err != nil {
		return nil, err
	}
	typ, err := domain.ParseTransactionType(q.Type)
	if err != nil {
		return nil, err
	}
	return s.history.All(ctx, typ)
}
