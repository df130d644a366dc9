package middleware

import (
	"net/http"

	"paylite/internal/api/response"
	"paylite/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LoginRateLimit limits login attempts per client IP. A nil limiter disables
// it, and Redis errors let the request through. A successful login clears
// the counter.
func LoginRateLimit(limiter *utils.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next() // no-op without Redis
			return
		}
		key := c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logrus.WithError(err).WithField("client_ip", key).Warn("Login rate limiter unavailable")
			c.Next() // fail open
			return
		}
		if !allowed {
			response.Fail(c, http.StatusTooManyRequests, "Too many login attempts, try again later")
			return
		}
		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if err := limiter.Reset(c.Request.Context(), key); err != nil {
				logrus.WithError(err).WithField("client_ip", key).Warn("Failed to reset login attempts")
			}
		}
	}
}
