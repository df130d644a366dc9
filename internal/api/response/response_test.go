package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"paylite/internal/domain"
	"paylite/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusFor(t *testing.T) {
	tests := map[domain.Code]int{
		domain.CodeValidation:          http.StatusBadRequest,
		domain.CodeInsufficientBalance: http.StatusBadRequest,
		domain.CodeAuthentication:      http.StatusUnauthorized,
		domain.CodeAuthorization:       http.StatusForbidden,
		domain.CodeNotFound:            http.StatusNotFound,
		domain.CodeConflict:            http.StatusConflict,
		domain.CodeStorage:             http.StatusServiceUnavailable,
		domain.Code("mystery"):         http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusFor(code), code)
	}
}

func TestError(t *testing.T) {
	t.Run("domain error", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Error(c, domain.NotFound("Wallet not found"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"success":false,"data":null,"count":0,"error":"Wallet not found"}`, w.Body.String())
		assert.True(t, c.IsAborted())
	})

	t.Run("storage error hides the cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Error(c, domain.Storage(errors.New("dial tcp 10.0.0.5:3306: connection refused")))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, RetryAfterSeconds, w.Header().Get("Retry-After"))
		assert.NotContains(t, w.Body.String(), "10.0.0.5")
	})

	t.Run("unexpected error", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		Error(c, errors.New("nil pointer somewhere"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"data":null,"count":0,"error":"Internal server error"}`, w.Body.String())
	})
}

func TestListAndPage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	List[string](c, nil)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0,"error":null}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Page(c, []int{1, 2}, 2, &ledger.Pagination{Page: 1, PerPage: 2, Total: 5, TotalPages: 3})
	assert.JSONEq(t, `{"success":true,"data":[1,2],"count":2,"error":null,"pagination":{"page":1,"per_page":2,"total":5,"total_pages":3}}`, w.Body.String())
}
