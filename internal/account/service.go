// Package account is the credential store: it creates users together with
// their wallet, verifies credentials and resolves token subjects into
// principals.
package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"paylite/internal/domain"
	"paylite/internal/policy"
	"paylite/internal/store"
	"paylite/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	MinPasswordLength = 8  // Shortest accepted password, in characters
	MaxPasswordBytes  = 72 // bcrypt rejects longer input
)

// Every credential failure returns this error so callers cannot tell an
// unknown email from a wrong password or a disabled account.
var errInvalidCredentials = domain.Unauthenticated("Invalid email or password")

// RegisterRequest is the self-service sign-up payload
type RegisterRequest struct {
	Firstname string
	Lastname  string
	Username  string
	Email     string
	Password  string
}

// CreateRequest is the admin user creation payload
type CreateRequest struct {
	RegisterRequest
	IsAdmin bool
}

// UpdateRequest changes the fields that are set
type UpdateRequest struct {
	Firstname *string
	Lastname  *string
	Username  *string
	Email     *string
	IsActive  *bool // Admin only
	IsAdmin   *bool // Admin only
}

// Service implements the credential store
type Service struct {
	store    store.Store
	hasher   utils.PasswordHasher
	currency string
	dummy    string // Digest verified when the email is unknown
}

// NewService builds the credential store. New wallets are opened in currency.
func NewService(s store.Store, hasher utils.PasswordHasher, currency string) (*Service, error) {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	dummy, err := hasher.Hash("paylite-timing-equalizer")
	if err != nil {
		return nil, err
	}
	return &Service{store: s, hasher: hasher, currency: strings.ToUpper(currency), dummy: dummy}, nil
}

// Register creates a regular user and its empty wallet
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return s.create(ctx, req, false)
}

// Create lets an admin create a user, optionally another admin
func (s *Service) Create(ctx context.Context, p policy.Principal, req CreateRequest) (*domain.User, error) {
	if err := policy.Authorize(policy.Request{Principal: p, Operation: policy.CreateUser}); err != nil {
		return nil, err
	}
	return s.create(ctx, req.RegisterRequest, req.IsAdmin)
}

// Bootstrap creates an admin without an acting principal. It is meant for
// operator tooling that runs with direct database access.
func (s *Service) Bootstrap(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return s.create(ctx, req, true)
}

func (s *Service) create(ctx context.Context, req RegisterRequest, isAdmin bool) (*domain.User, error) {
	req = normalize(req)
	if req.Firstname == "" || req.Lastname == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, domain.Validation("Missing required fields: firstname, lastname, username, email, password")
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return nil, domain.Validation("Password must be at least 8 characters long")
	}
	if len(req.Password) > MaxPasswordBytes {
		return nil, domain.Validation("Password must be at most 72 bytes")
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, req.Username, req.Email, 0); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Username:  req.Username,
		Email:     req.Email,
		Password:  digest,
		IsAdmin:   isAdmin,
		IsActive:  true,
	}
	// User and wallet are created in one unit; the unique indexes turn a
	// concurrent duplicate into a conflict here.
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		wallet := &domain.Wallet{UserID: user.ID, Balance: decimal.Zero, Currency: s.currency}
		if err := tx.CreateWallet(ctx, wallet); err != nil {
			return err
		}
		user.Wallet = wallet
		return nil
	})
	if err != nil {
		return nil, domain.Storage(err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"wallet_id": user.Wallet.ID,
		"is_admin":  user.IsAdmin,
	}).Info("User created")
	return user, nil
}

// Authenticate resolves the user owning email and verifies password
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.Validation("Missing required fields: email, password")
	}
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.Verify(password, s.dummy) // Same cost as a real check
			return nil, errInvalidCredentials
		}
		return nil, domain.Storage(err)
	}
	if !s.hasher.Verify(password, user.Password) || !user.IsActive {
		return nil, errInvalidCredentials
	}
	return user, nil
}

// Principal resolves a verified token subject. Deleted and inactive users
// are rejected here, before any authorization decision.
func (s *Service) Principal(ctx context.Context, userID uint) (policy.Principal, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return policy.Principal{}, domain.Unauthenticated("Invalid or expired token")
		}
		return policy.Principal{}, domain.Storage(err)
	}
	if !user.IsActive {
		return policy.Principal{}, domain.Unauthenticated("Account is inactive")
	}
	return policy.Principal{ID: user.ID, IsAdmin: user.IsAdmin, IsActive: user.IsActive}, nil
}

// Get returns one user with its wallet
func (s *Service) Get(ctx context.Context, p policy.Principal, userID uint) (*domain.User, error) {
	if err := policy.Authorize(policy.Request{Principal: p, OwnerID: userID, Operation: policy.ViewUser}); err != nil {
		return nil, err
	}
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, domain.Storage(err)
	}
	return user, nil
}

// List returns every user with its wallet
func (s *Service) List(ctx context.Context, p policy.Principal) ([]domain.User, error) {
	if err := policy.Authorize(policy.Request{Principal: p, Operation: policy.ListUsers}); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, domain.Storage(err)
	}
	return users, nil
}

// Update changes profile fields; account flags need an admin
func (s *Service) Update(ctx context.Context, p policy.Principal, userID uint, req UpdateRequest) (*domain.User, error) {
	if err := policy.Authorize(policy.Request{Principal: p, OwnerID: userID, Operation: policy.UpdateUser}); err != nil {
		return nil, err
	}
	if req.IsActive != nil || req.IsAdmin != nil {
		if err := policy.Authorize(policy.Request{Principal: p, OwnerID: userID, Operation: policy.ManageAccountFlags}); err != nil {
			return nil, err
		}
	}

	var user *domain.User
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		if user, err = tx.UserByID(ctx, userID); err != nil {
			return err
		}
		if err := applyUpdate(user, req); err != nil {
			return err
		}
		if err := checkUnique(ctx, tx, user.Username, user.Email, user.ID); err != nil {
			return err
		}
		return tx.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, domain.Storage(err)
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "by": p.ID}).Info("User updated")
	return user, nil
}

func applyUpdate(user *domain.User, req UpdateRequest) error {
	set := func(dst *string, v *string, field string) error {
		if v == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			return domain.Validation(field + " cannot be empty")
		}
		*dst = trimmed
		return nil
	}
	if err := set(&user.Firstname, req.Firstname, "firstname"); err != nil {
		return err
	}
	if err := set(&user.Lastname, req.Lastname, "lastname"); err != nil {
		return err
	}
	if err := set(&user.Username, req.Username, "username"); err != nil {
		return err
	}
	if err := set(&user.Email, req.Email, "email"); err != nil {
		return err
	}
	user.Email = strings.ToLower(user.Email)
	if err := validateEmail(user.Email); err != nil {
		return err
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	return nil
}

// Delete removes the user, its wallet and the wallet's transactions in one
// transaction. The wallet row is locked first so no ledger operation on it
// can interleave with the delete.
func (s *Service) Delete(ctx context.Context, p policy.Principal, userID uint) error {
	if err := policy.Authorize(policy.Request{Principal: p, Operation: policy.DeleteUser}); err != nil {
		return err
	}
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		user, err := tx.UserByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.Wallet != nil {
			if _, err := tx.LockWallet(ctx, user.Wallet.ID); err != nil {
				return err
			}
			if err := tx.DeleteTransactionsByWallet(ctx, user.Wallet.ID); err != nil {
				return err
			}
			if err := tx.DeleteWallet(ctx, user.Wallet.ID); err != nil {
				return err
			}
		}
		return tx.DeleteUser(ctx, userID)
	})
	if err != nil {
		return domain.Storage(err)
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "by": p.ID}).Warn("User deleted")
	return nil
}

func (s *Service) checkUnique(ctx context.Context, username, email string, exceptID uint) error {
	return checkUnique(ctx, s.store, username, email, exceptID)
}

func checkUnique(ctx context.Context, users store.Users, username, email string, exceptID uint) error {
	taken, err := users.UsernameTaken(ctx, username, exceptID)
	if err != nil {
		return domain.Storage(err)
	}
	if taken {
		return domain.Conflict("Username already exists")
	}
	taken, err = users.EmailTaken(ctx, email, exceptID)
	if err != nil {
		return domain.Storage(err)
	}
	if taken {
		return domain.Conflict("Email already exists")
	}
	return nil
}

func normalize(req RegisterRequest) RegisterRequest {
	req.Firstname = strings.TrimSpace(req.Firstname)
	req.Lastname = strings.TrimSpace(req.Lastname)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return req
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return domain.Validation("Invalid email address")
	}
	return nil
}
