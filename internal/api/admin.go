package api

import (
	"net/http" // HTTP status codes

	"paylite/internal/account"      // Credential store
	"paylite/internal/api/response" // Response envelope
	"paylite/internal/domain"       // Domain models
	"paylite/internal/ledger"       // Wallets and transaction log

	"github.com/gin-gonic/gin" // Gin web framework
)

// CreateUserRequest lets an admin create a user, possibly another admin
type CreateUserRequest struct {
	RegisterRequest
	IsAdmin bool `json:"is_admin"`
}

// UpdateUserRequest changes only the fields present in the payload
type UpdateUserRequest struct {
	Firstname *string `json:"firstname" binding:"omitempty,max=80"`
	Lastname  *string `json:"lastname" binding:"omitempty,max=80"`
	Username  *string `json:"username" binding:"omitempty,max=80"`
	Email     *string `json:"email" binding:"omitempty,max=120"`
	IsActive  *bool   `json:"is_active"` // Admin only
	IsAdmin   *bool   `json:"is_admin"`  // Admin only
}

// DeleteUserResponse confirms a cascade delete
type DeleteUserResponse struct {
	Message string `json:"message"`
	UserID  uint   `json:"user_id"`
}

// CreateUserHandler creates a user and its wallet (admin only)
func CreateUserHandler(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		var req CreateUserRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		user, err := accounts.Create(c.Request.Context(), p, account.CreateRequest{
			RegisterRequest: req.toAccount(),
			IsAdmin:         req.IsAdmin,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusCreated, user.View())
	}
}

// ListUsersHandler returns all users with their wallet info (admin only)
func ListUsersHandler(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		users, err := accounts.List(c.Request.Context(), p)
		if err != nil {
			response.Error(c, err)
			return
		}
		views := make([]domain.UserView, len(users))
		for i := range users {
			views[i] = users[i].View()
		}
		response.List(c, views)
	}
}

// GetUserHandler returns one user (self or admin)
func GetUserHandler(accounts *account.Service) gin.HandlerFunc {
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
		user, err := accounts.Get(c.Request.Context(), p, userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusOK, user.View())
	}
}

// UpdateUserHandler updates profile fields (self or admin) and account flags (admin)
func UpdateUserHandler(accounts *account.Service) gin.HandlerFunc {
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
		var req UpdateUserRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		user, err := accounts.Update(c.Request.Context(), p, userID, account.UpdateRequest{
			Firstname: req.Firstname,
			Lastname:  req.Lastname,
			Username:  req.Username,
			Email:     req.Email,
			IsActive:  req.IsActive,
			IsAdmin:   req.IsAdmin,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusOK, user.View())
	}
}

// DeleteUserHandler removes a user with its wallet and transactions (admin only)
func DeleteUserHandler(accounts *account.Service) gin.HandlerFunc {
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
		if err := accounts.Delete(c.Request.Context(), p, userID); err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusOK, DeleteUserResponse{Message: "User deleted", UserID: userID})
	}
}

// ListWalletsHandler returns every wallet with its owner (admin only)
func ListWalletsHandler(ledgers *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		wallets, err := ledgers.Wallets(c.Request.Context(), p)
		if err != nil {
			response.Error(c, err)
			return
		}
		views := make([]domain.WalletView, len(wallets))
		for i := range wallets {
			views[i] = wallets[i].AdminView()
		}
		response.List(c, views)
	}
}

// ListAllTransactionsHandler returns every transaction of every wallet (admin only)
func ListAllTransactionsHandler(ledgers *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			return
		}
		txs, err := ledgers.AllTransactions(c.Request.Context(), p, ledger.HistoryQuery{Type: c.Query("type")})
		if err != nil {
			response.Error(c, err)
			return
		}
		views := make([]domain.TransactionView, len(txs))
		for i := range txs {
			views[i] = txs[i].GlobalView()
		}
		response.List(c, views)
	}
}
