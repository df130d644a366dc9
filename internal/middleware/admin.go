package middleware

import (
	"net/http" // HTTP status codes

	"paylite/internal/api/response" // Response envelope
	"paylite/internal/policy"       // Authorization policy

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware rejects non-admin principals before the handler runs.
// It must be installed after JWTAuthMiddleware. Services still evaluate the
// policy themselves, this only short-circuits admin-only route groups.
func AdminOnlyMiddleware(op policy.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if err := policy.Authorize(policy.Request{Principal: principal, Operation: op}); err != nil {
			response.Error(c, err) // 403 Admin access required
			return
		}
		c.Next()
	}
}
