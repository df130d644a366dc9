// Package api holds the gin handlers. Handlers decode the request, call one
// service operation with the current principal and write the envelope.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"paylite/internal/api/response"
	"paylite/internal/domain"
	"paylite/internal/middleware"
	"paylite/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// OptionalUserID records whether a user id key was present in a payload.
// A present key with a null or malformed value keeps Present set and ID zero.
type OptionalUserID struct {
	Present bool
	ID      uint
}

// UnmarshalJSON accepts a positive integer as a number or a string
func (o *OptionalUserID) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.ID = 0
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	if id, err := strconv.ParseUint(raw, 10, 0); err == nil {
		o.ID = uint(id)
	}
	return nil
}

// bindJSON decodes the body into dst. An empty body leaves dst zeroed so the
// services report the missing fields.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := strings.ToLower(verrs[0].Field())
		if verrs[0].Tag() == "max" {
			return domain.Validation(fmt.Sprintf("%s must be at most %s characters", field, verrs[0].Param()))
		}
		return domain.Validation("Invalid field: " + field)
	}
	return domain.Validation("Invalid JSON body")
}

// currentPrincipal aborts with 401 when the route is not behind JWTAuthMiddleware
func currentPrincipal(c *gin.Context) (policy.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Unauthorized")
	}
	return p, ok
}

// pathUserID reads the :user_id route parameter
func pathUserID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 0)
	if err != nil || id == 0 {
		return 0, domain.Validation("user_id must be a positive integer")
	}
	return uint(id), nil
}
