// Package response writes the JSON envelope shared by every endpoint and maps
// domain error codes to HTTP statuses.
package response

import (
	"errors"
	"net/http" // HTTP status codes

	"paylite/internal/domain"
	"paylite/internal/ledger"

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "requestID"

// RetryAfterSeconds is advertised on transient storage failures
const RetryAfterSeconds = "1"

// Envelope wraps every response body
type Envelope struct {
	Success    bool               `json:"success"`
	Data       any                `json:"data"`
	Count      int                `json:"count"`
	Error      *string            `json:"error"`
	Pagination *ledger.Pagination `json:"pagination,omitempty"`
}

var statuses = map[domain.Code]int{
	domain.CodeValidation:          http.StatusBadRequest,
	domain.CodeInsufficientBalance: http.StatusBadRequest,
	domain.CodeAuthentication:      http.StatusUnauthorized,
	domain.CodeAuthorization:       http.StatusForbidden,
	domain.CodeNotFound:            http.StatusNotFound,
	domain.CodeConflict:            http.StatusConflict,
	domain.CodeStorage:             http.StatusServiceUnavailable,
}

// StatusFor returns the HTTP status of a domain error code
func StatusFor(code domain.Code) int {
	if status, ok := statuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// OK writes a single value
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// List writes a collection with its count
func List[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Count: len(items)})
}

// Page writes one page of a listing. Count is the number of items on the page.
func Page(c *gin.Context, data any, count int, p *ledger.Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Count: count, Pagination: p})
}

// Fail aborts the request with an explicit status and message
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Error: &message})
}

// Error aborts the request with the status mapped from err. Errors that are
// not domain errors are logged and hidden behind a generic 500.
func Error(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"path":       c.FullPath(),
		}).WithError(err).Error("Unhandled error")
		Fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := StatusFor(de.Code)
	if de.Code == domain.CodeStorage {
		c.Header("Retry-After", RetryAfterSeconds)
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"path":       c.FullPath(),
		}).WithError(de.Cause).Error("Storage failure")
	}
	_ = c.Error(err) // Kept for the request logger
	Fail(c, status, de.Message)
}
