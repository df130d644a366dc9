package api

import (
	"net/http" // HTTP status codes

	"paylite/internal/account"      // Credential store
	"paylite/internal/api/response" // Response envelope
	"paylite/internal/domain"       // Domain models
	"paylite/internal/utils"        // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// RegisterRequest is the sign-up payload. Required fields are checked by the
// credential store so the error lists them all.
type RegisterRequest struct {
	Firstname string `json:"firstname" binding:"max=80"`
	Lastname  string `json:"lastname" binding:"max=80"`
	Username  string `json:"username" binding:"max=80"`
	Email     string `json:"email" binding:"max=120"`
	Password  string `json:"password" binding:"max=72"` // Characters; the byte limit is checked by the credential store
}

func (r RegisterRequest) toAccount() account.RegisterRequest {
	return account.RegisterRequest{
		Firstname: r.Firstname,
		Lastname:  r.Lastname,
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
	}
}

// LoginRequest is the credential payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the authenticated user
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	User        domain.UserView `json:"user"`
}

// RegisterHandler creates a user and its empty wallet
func RegisterHandler(accounts *account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		user, err := accounts.Register(c.Request.Context(), req.toAccount())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, http.StatusCreated, user.View())
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(accounts *account.Service, tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		user, err := accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			response.Error(c, err)
			return
		}
		token, err := tokens.GenerateJWT(user.ID)
		if err != nil {
			response.Error(c, err) // Not a domain error, logged as a 500
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID,
			"client_ip": c.ClientIP(),
		}).Info("User logged in")
		response.OK(c, http.StatusOK, LoginResponse{AccessToken: token, TokenType: "Bearer", User: user.View()})
	}
}
