package db

import (
	"context"
	"errors"

	"paylite/internal/domain" // Importing domain models
	"paylite/internal/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements store.Store on top of GORM
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// NewStore wraps an open GORM connection
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn inside a database transaction. Nested calls use savepoints.
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
	return translate(err, "")
}

// translate maps driver errors onto the domain taxonomy
func translate(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Conflict("Username or email already exists")
	default:
		return domain.Storage(err) // Passes domain errors through, wraps the rest
	}
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return translate(s.db.WithContext(ctx).Omit("Wallet").Create(user).Error, "")
}

func (s *Store) UserByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Preload("Wallet").First(&user, id).Error; err != nil {
		return nil, translate(err, "User not found")
	}
	return &user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Preload("Wallet").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "User not found")
	}
	return &user, nil
}

func (s *Store) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	return count > 0, translate(err, "")
}

func (s *Store) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error
	return count > 0, translate(err, "")
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	// Map form so false flags are written instead of skipped as zero values
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", user.ID).Updates(map[string]any{
		"firstname": user.Firstname,
		"lastname":  user.Lastname,
		"username":  user.Username,
		"email":     user.Email,
		"is_admin":  user.IsAdmin,
		"is_active": user.IsActive,
	})
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 affected rows when nothing changed, so confirm the row exists
		if _, err := s.UserByID(ctx, user.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.User{}, id)
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("User not found")
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.db.WithContext(ctx).Preload("Wallet").Order("id").Find(&users).Error
	return users, translate(err, "")
}

func (s *Store) CreateWallet(ctx context.Context, wallet *domain.Wallet) error {
	return translate(s.db.WithContext(ctx).Create(wallet).Error, "")
}

func (s *Store) WalletByUserID(ctx context.Context, userID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, translate(err, "Wallet not found")
	}
	return &wallet, nil
}

// LockWallet issues SELECT ... FOR UPDATE on the primary key
func (s *Store) LockWallet(ctx context.Context, walletID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", walletID).
		First(&wallet).Error
	if err != nil {
		return nil, translate(err, "Wallet not found")
	}
	return &wallet, nil
}

func (s *Store) UpdateWalletBalance(ctx context.Context, walletID uint, balance decimal.Decimal) error {
	res := s.db.WithContext(ctx).Model(&domain.Wallet{}).Where("id = ?", walletID).Update("balance", balance)
	if res.Error != nil {
		return translate(res.Error, "")
	}
	return nil
}

func (s *Store) DeleteWallet(ctx context.Context, walletID uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.Wallet{}, walletID)
	if res.Error != nil {
		return translate(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("Wallet not found")
	}
	return nil
}

func (s *Store) ListWallets(ctx context.Context) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	err := s.db.WithContext(ctx).Order("id").Find(&wallets).Error
	return wallets, translate(err, "")
}

func (s *Store) AppendTransactions(ctx context.Context, txs ...*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	// Inserted one by one so auto-increment ids follow the slice order
	for _, t := range txs {
		if err := s.db.WithContext(ctx).Omit("Wallet").Create(t).Error; err != nil {
			return translate(err, "")
		}
	}
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.Transaction{}) // Start building the query
	if filter.WalletID != nil {
		query = query.Where("wallet_id = ?", *filter.WalletID)
	}
	if filter.Type != "" {
		query = query.Where("transaction_type = ?", filter.Type)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "")
	}
	query = query.Order("created_at DESC").Order("id DESC")
	if filter.PerPage > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PerPage)
	}
	var txs []domain.Transaction
	if err := query.Find(&txs).Error; err != nil {
		return nil, 0, translate(err, "")
	}
	return txs, total, nil
}

func (s *Store) DeleteTransactionsByWallet(ctx context.Context, walletID uint) error {
	return translate(s.db.WithContext(ctx).Where("wallet_id = ?", walletID).Delete(&domain.Transaction{}).Error, "")
}
