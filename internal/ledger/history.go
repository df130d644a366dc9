package ledger

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"paylite/internal/domain"
	"paylite/internal/store"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
	MaxPage        = math.MaxInt32 // Keeps (page-1)*per_page within an int offset
)

// PageRequest selects one page of a listing
type PageRequest struct {
	Page    int
	PerPage int
}

// ParsePageRequest reads page and per_page query values. Empty values take the defaults.
func ParsePageRequest(page, perPage string) (PageRequest, error) {
	req := PageRequest{Page: DefaultPage, PerPage: DefaultPerPage}
	if v := strings.TrimSpace(page); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return PageRequest{}, domain.Validation("Page must be an integer")
		}
		req.Page = n
	}
	if v := strings.TrimSpace(perPage); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return PageRequest{}, domain.Validation("per_page must be an integer")
		}
		req.PerPage = n
	}
	return req, req.Validate()
}

// Validate enforces 1 <= page <= MaxPage and 1 <= per_page <= 100
func (p PageRequest) Validate() error {
	if p.Page < 1 {
		return domain.Validation("Page must be >= 1")
	}
	if p.Page > MaxPage {
		return domain.Validation(fmt.Sprintf("Page must be <= %d", MaxPage))
	}
	if p.PerPage < 1 || p.PerPage > MaxPerPage {
		return domain.Validation("per_page must be between 1 and 100")
	}
	return nil
}

// Pagination describes the page returned with a paginated listing
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func newPagination(req PageRequest, total int64) *Pagination {
	pages := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	return &Pagination{Page: req.Page, PerPage: req.PerPage, Total: total, TotalPages: pages}
}

// WalletHistory is a wallet's current state together with its log
type WalletHistory struct {
	Wallet       domain.Wallet
	Transactions []domain.Transaction
	Pagination   *Pagination // nil for unbounded listings
}

// History is the read side of the transaction log
type History struct {
	store store.Store
}

// NewHistory builds a log reader on top of s
func NewHistory(s store.Store) *History {
	return &History{store: s}
}

// ForUser lists the transactions of the wallet owned by userID, newest first.
// A nil page returns every match. Wallet and log are read in one transaction
// so the returned balance agrees with the returned entries.
func (h *History) ForUser(ctx context.Context, userID uint, typ domain.TransactionType, page *PageRequest) (*WalletHistory, error) {
	filter := domain.TransactionFilter{Type: typ}
	if page != nil {
		if err := page.Validate(); err != nil {
			return nil, err
		}
		filter.Page, filter.PerPage = page.Page, page.PerPage
	}

	var out *WalletHistory
	err := h.store.Transaction(ctx, func(tx store.Store) error {
		wallet, err := tx.WalletByUserID(ctx, userID)
		if err != nil {
			return err
		}
		filter.WalletID = &wallet.ID
		txs, total, err := tx.ListTransactions(ctx, filter)
		if err != nil {
			return err
		}
		out = &WalletHistory{Wallet: *wallet, Transactions: txs}
		if page != nil {
			out.Pagination = newPagination(*page, total)
		}
		return nil
	})
	if err != nil {
		return nil, domain.Storage(err)
	}
	return out, nil
}

// All lists every transaction of every wallet, newest first
func (h *History) All(ctx context.Context, typ domain.TransactionType) ([]domain.Transaction, error) {
	txs, _, err := h.store.ListTransactions(ctx, domain.TransactionFilter{Type: typ})
	if err != nil {
		return nil, domain.Storage(err)
	}
	return txs, nil
}
