// internal/common/errors/http.go
package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ==========================
// HTTP Response Mapping
// ==========================

// ErrorResponse is the JSON envelope returned for every failed request.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// Respond writes the error as a JSON response. Unknown error types are
// masked as a generic 500 so internals never leak to clients.
func Respond(c *gin.Context, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = NewStoreError(err)
		apiErr.Details = "" // do not expose internal error text
	}

	status := apiErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: apiErr})
}
