// README: Base handler utilities (JSON helpers, query parsing, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"carwash/internal/modules/catalog"
	"carwash/internal/modules/order"
	"carwash/internal/modules/report"
	"carwash/internal/modules/shift"
	"carwash/internal/modules/user"
	"carwash/internal/types"
)

// Money goes on the wire as JSON numbers, matching types.Amount.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module errors to status codes. Unknown vehicle
// types and services are reported verbatim as 422.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrUnknownVehicleType), errors.Is(err, catalog.ErrUnknownService):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, catalog.ErrBadRequest),
		errors.Is(err, order.ErrBadRequest),
		errors.Is(err, shift.ErrBadRequest),
		errors.Is(err, report.ErrBadRequest),
		errors.Is(err, user.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, order.ErrNotFound), errors.Is(err, user.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, user.ErrDuplicate):
		writeError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// dateParam parses a YYYY-MM-DD value; empty falls back to def.
func dateParam(v string, def time.Time) (time.Time, error) {
	if v == "" {
		return def, nil
	}
	return types.ParseDate(v)
}
