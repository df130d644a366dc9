package middleware

import (
	"context"
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"paylite/internal/api/response" // Response envelope
	"paylite/internal/policy"       // Principal type
	"paylite/internal/utils"        // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by JWTAuthMiddleware
const (
	PrincipalKey = "principal"
	UserIDKey    = "userID"
)

// PrincipalResolver turns a verified token subject into the current principal
type PrincipalResolver interface {
	Principal(ctx context.Context, userID uint) (policy.Principal, error)
}

// JWTAuthMiddleware validates JWT tokens and loads the principal they name.
// Tokens of deleted or deactivated users are rejected.
func JWTAuthMiddleware(tokens *utils.TokenIssuer, users PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.Fail(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}
		claims, err := tokens.ParseJWT(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		principal, err := users.Principal(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err) // 401 for unknown or inactive users, 503 when the store is down
			return
		}
		c.Set(PrincipalKey, principal)
		c.Set(UserIDKey, principal.ID)
		c.Next()
	}
}

// CurrentPrincipal returns the principal stored by JWTAuthMiddleware
func CurrentPrincipal(c *gin.Context) (policy.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return policy.Principal{}, false
	}
	p, ok := v.(policy.Principal)
	return p, ok
}
