package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rcliao/recoengine/internal/core"
)

// errorResponse is the JSON shape every failed request returns, matching
// the {error, code, details} envelope the controllers in the pack's gin
// services use.
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// writeError maps a domain error to an HTTP status and writes the envelope.
// A SafetyViolationError always fails closed with 200+flag rather than an
// error status at the recommendations handler, so it never reaches here;
// everywhere else, this is the one place request errors become responses.
func writeError(c *gin.Context, err error) {
	var inputErr *core.InputError
	var notFoundErr *core.NotFoundError
	var storeErr *core.StoreError
	var optErr *core.OptimizationError

	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found", Details: err.Error()})
	case errors.As(err, &storeErr) && storeErr.Transient:
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "temporarily unavailable", Details: err.Error()})
	case errors.As(err, &optErr):
		c.JSON(http.StatusConflict, errorResponse{Error: "optimization cycle failed", Details: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Details: err.Error()})
	}
}
