// README: Calendar sales report handlers.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carwash/internal/clock"
	"carwash/internal/modules/report"
)

type ReportService interface {
	Monthly(ctx context.Context, year, month int) (report.Monthly, error)
	Yearly(ctx context.Context, year int) (report.Yearly, error)
}

type ReportHandler struct {
	report ReportService
	clock  clock.Clock
}

func NewReportHandler(svc ReportService, clk clock.Clock) *ReportHandler {
	return &ReportHandler{report: svc, clock: clk}
}

// intQuery reads an integer query value, def when absent.
func intQuery(c *gin.Context, key string, def int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func (h *ReportHandler) Monthly(c *gin.Context) {
	now := h.clock.Now()
	month, ok := intQuery(c, "month", int(now.Month()))
	if !ok {
		writeError(c, http.StatusBadRequest, "month must be a number")
		return
	}
	year, ok := intQuery(c, "year", now.Year())
	if !ok {
		writeError(c, http.StatusBadRequest, "year must be a number")
		return
	}
	out, err := h.report.Monthly(c.Request.Context(), year, month)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}

func (h *ReportHandler) Yearly(c *gin.Context) {
	year, ok := intQuery(c, "year", h.clock.Now().Year())
	if !ok {
		writeError(c, http.StatusBadRequest, "year must be a number")
		return
	}
	out, err := h.report.Yearly(c.Request.Context(), year)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, out)
}
