package api

import (
	"net/http" // HTTP status codes

	"paylite/internal/api/response" // Response envelope
	"paylite/internal/domain"       // Domain models
	"paylite/internal/ledger"       // Ledger engine and log reader
	"paylite/internal/policy"       // Principal type

	"github.com/gin-gonic/gin" // Gin web framework
)

// AmountRequest is the deposit and withdrawal payload. UserID is only
// accepted from admins.
type AmountRequest struct {
	Amount domain.RawAmount `json:"amount"`
	UserID OptionalUserID   `json:"user_id"`
}

// TransferRequest represents a transfer request
type TransferRequest struct {
	ToUserID OptionalUserID   `json:"to_user_id"` // Recipient user ID
	Amount   domain.RawAmount `json:"amount"`     // Transfer amount
}

// ReceiptResponse is returned by deposits and withdrawals
type ReceiptResponse struct {
	TransactionID uint64       `json:"transaction_id"`
	WalletID      uint         `json:"wallet_id"`
	Reference     string       `json:"reference"`
	Amount        domain.Money `json:"amount"`
	NewBalance    domain.Money `json:"new_balance"`
}

// TransferResponse is returned by transfers
type TransferResponse struct {
	TransferOutID     uint64       `json:"transfer_out_id"`
	TransferInID      uint64       `json:"transfer_in_id"`
	Reference         string       `json:"reference"`
	AmountTransferred domain.Money `json:"amount_transferred"`
	FromWalletBalance domain.Money `json:"from_wallet_balance"`
	ToWalletBalance   domain.Money `json:"to_wallet_balance"`
}

// HistoryResponse is a wallet's current balance with a slice of its log
type HistoryResponse struct {
	WalletID       uint                     `json:"wallet_id"`
	CurrentBalance domain.Money             `json:"current_balance"`
	Currency       string                   `json:"currency"`
	Transactions   []domain.TransactionView `json:"transactions"`
}

func newReceiptResponse(r *ledger.Receipt) ReceiptResponse {
	return ReceiptResponse{
		TransactionID: r.TransactionID,
		WalletID:      r.WalletID,
		Reference:     r.Reference,
		Amount:        domain.Money(r.Amount),
		NewBalance:    domain.Money(r.Balance),
	}
}

func newHistoryResponse(h *ledger.WalletHistory) HistoryResponse {
	views := make([]domain.TransactionView, len(h.Transactions))
	for i := range h.Transactions {
		views[i] = h.Transactions[i].View()
	}
	return HistoryResponse{
		WalletID:       h.Wallet.ID,
		CurrentBalance: domain.Money(h.Wallet.Balance),
		Currency:       h.Wallet.Currency,
		Transactions:   views,
	}
}

// GetMyWalletHandler returns the caller's wallet
func GetMyWalletHandler(ledgers *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		writeWallet(c, ledgers, p, p.ID)
	}
}

// GetWalletHandler returns the wallet of :user_id (self or admin)
func GetWalletHandler(ledgers *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		userID, err := pathUserID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		writeWallet(c, ledgers, p, userID)
	}
}

func writeWallet(c *gin.Context, ledgers *ledger.Service, p policy.Principal, userID uint) {
	wallet, err := ledgers.Wallet(c.Request.Context(), p, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, wallet.View())
}

// DepositHandler credits the caller's wallet, or any wallet for admins
func DepositHandler(ledgers *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		var req AmountRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		amount, err := domain.ParseAmount(string(req.Amount))
		if err != nil {
			response.Error(c, err)
			return
		}
		receipt, err := ledgers.Deposit(c.Request.Context(), p, ledger.DepositRequest{
			Amount: amount,
			Target: ledger.Target{Present: req.UserID.Present, UserID: req.UserID.ID},
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusCreated, newReceiptResponse(receipt))
	}
}

// WithdrawHandler debits the caller's wallet, or any wallet for admins
func WithdrawHandler(ledgers *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		var req AmountRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		amount, err := domain.ParseAmount(string(req.Amount))
		if err != nil {
			response.Error(c, err)
			return
		}
		receipt, err := ledgers.Withdraw(c.Request.Context(), p, ledger.WithdrawRequest{
			Amount: amount,
			Target: ledger.Target{Present: req.UserID.Present, UserID: req.UserID.ID},
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusCreated, newReceiptResponse(receipt))
	}
}

// TransferHandler moves funds from the caller's wallet to another user's wallet
func TransferHandler(ledgers *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		var req TransferRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		if !req.ToUserID.Present {
			response.Error(c, domain.Validation("Missing required fields: to_user_id, amount"))
			return
		}
		amount, err := domain.ParseAmount(string(req.Amount))
		if err != nil {
			response.Error(c, err)
			return
		}
		receipt, err := ledgers.Transfer(c.Request.Context(), p, ledger.TransferRequest{
			ToUserID: req.ToUserID.ID,
			Amount:   amount,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusOK, TransferResponse{
			TransferOutID:     receipt.TransferOutID,
			TransferInID:      receipt.TransferInID,
			Reference:         receipt.Reference,
			AmountTransferred: domain.Money(receipt.Amount),
			FromWalletBalance: domain.Money(receipt.FromBalance),
			ToWalletBalance:   domain.Money(receipt.ToBalance),
		})
	}
}

// MyTransactionsHandler returns one page of the caller's log
func MyTransactionsHandler(ledgers *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		writeHistory(c, ledgers, p, p.ID)
	}
}

// UserTransactionsHandler returns one page of :user_id's log (self or admin)
func UserTransactionsHandler(ledgers *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		userID, err := pathUserID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		writeHistory(c, ledgers, p, userID)
	}
}

// UserAllTransactionsHandler returns the whole log of :user_id (self or admin)
func UserAllTransactionsHandler(ledgers *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		userID, err := pathUserID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		h, err := ledgers.FullHistory(c.Request.Context(), p, userID, historyQuery(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Page(c, newHistoryResponse(h), len(h.Transactions), nil)
	}
}

func writeHistory(c *gin.Context, ledgers *ledger.Service, p policy.Principal, userID uint) {
	h, err := ledgers.History(c.Request.Context(), p, userID, historyQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, newHistoryResponse(h), len(h.Transactions), h.Pagination)
}

func historyQuery(c *gin.Context) ledger.HistoryQuery {
	return ledger.HistoryQuery{
		Type:    c.Query("type"),
		Page:    c.Query("page"),
		PerPage: c.Query("per_page"),
	}
}
