package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paylite/internal/domain"
	"paylite/internal/policy"
	"paylite/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type resolverFunc func(ctx context.Context, id uint) (policy.Principal, error)

func (f resolverFunc) Principal(ctx context.Context, id uint) (policy.Principal, error) {
	return f(ctx, id)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	resolver := resolverFunc(func(_ context.Context, id uint) (policy.Principal, error) {
		switch id {
		case 1:
			return policy.Principal{ID: 1, IsActive: true}, nil
		case 2:
			return policy.Principal{}, domain.Unauthenticated("Account is inactive")
		default:
			return policy.Principal{}, domain.Storage(errors.New("db down"))
		}
	})
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(tokens, resolver), func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "user_id": c.GetUint(UserIDKey)})
	})

	bearer := func(id uint) string {
		token, err := tokens.GenerateJWT(id)
		require.NoError(t, err)
		return "Bearer " + token
	}
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", bearer(1), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
		{"inactive user", bearer(2), http.StatusUnauthorized},
		{"store down", bearer(3), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	route := func(p *policy.Principal) *gin.Engine {
		r := gin.New()
		r.GET("/admin", func(c *gin.Context) {
			if p != nil {
				c.Set(PrincipalKey, *p)
			}
		}, AdminOnlyMiddleware(policy.ListUsers), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return r
	}
	req := func() *http.Request { return httptest.NewRequest(http.MethodGet, "/admin", nil) }

	assert.Equal(t, http.StatusUnauthorized, serve(route(nil), req()).Code)
	w := serve(route(&policy.Principal{ID: 1, IsActive: true}), req())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admin access required")
	assert.Equal(t, http.StatusNoContent, serve(route(&policy.Principal{ID: 1, IsAdmin: true}), req()).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	w = serve(r, req)
	assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"data":null,"count":0,"error":"Internal server error"}`, w.Body.String())
}

func TestLoginRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	limiter := utils.NewRateLimiter(rdb, "rl:login:", 2, time.Minute)

	status := http.StatusUnauthorized
	r := gin.New()
	r.POST("/login", LoginRateLimit(limiter), func(c *gin.Context) { c.Status(status) })
	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusUnauthorized, login())
	assert.Equal(t, http.StatusUnauthorized, login())
	assert.Equal(t, http.StatusTooManyRequests, login())

	mr.FastForward(time.Minute)
	status = http.StatusOK
	assert.Equal(t, http.StatusOK, login())
	assert.False(t, mr.Exists("rl:login:192.0.2.1"), "successful login clears the counter")

	t.Run("fails open when redis is down", func(t *testing.T) {
		mr.Close()
		status = http.StatusOK
		assert.Equal(t, http.StatusOK, login())
	})

	t.Run("disabled without limiter", func(t *testing.T) {
		r := gin.New()
		r.POST("/login", LoginRateLimit(nil), func(c *gin.Context) { c.Status(http.StatusOK) })
		for i := 0; i < 10; i++ {
			assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/login", nil)).Code)
		}
	})
}
