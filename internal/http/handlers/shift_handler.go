// README: Shift handlers: summary, settlement update and window checks.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carwash/internal/modules/shift"
	"carwash/internal/types"
)

type ShiftService interface {
	Summary(ctx context.Context, date time.Time, s types.Shift) (shift.View, error)
	SaveRecord(ctx context.Context, cmd shift.SaveCommand) (shift.View, error)
	Window(s types.Shift) (shift.Window, error)
}

type ShiftHandler struct {
	shift ShiftService
}

func NewShiftHandler(svc ShiftService) *ShiftHandler {
	return &ShiftHandler{shift: svc}
}

type shiftViewResp struct {
	Date        string           `json:"date"`
	Shift       types.Shift      `json:"shift"`
	Orders      []orderResp      `json:"orders"`
	OtherIncome []shift.LineItem `json:"other_income"`
	Expenses    []shift.LineItem `json:"expenses"`
	GCash       types.Amount     `json:"gcash"`
	Summary     shift.Summary    `json:"summary"`
}

func newShiftViewResp(v shift.View) shiftViewResp {
	return shiftViewResp{
		Date:        v.Date.Format(types.DateLayout),
		Shift:       v.Shift,
		Orders:      newOrderResps(v.Orders),
		OtherIncome: v.Record.OtherIncome,
		Expenses:    v.Record.Expenses,
		GCash:       v.Record.CashTransfer,
		Summary:     v.Summary,
	}
}

func (h *ShiftHandler) Summary(c *gin.Context) {
	date, err := types.ParseDate(c.Param("date"))
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	s, err := types.ParseShift(c.Param("shift"))
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.shift.Summary(c.Request.Context(), date, s)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newShiftViewResp(v))
}

type updateSummaryReq struct {
	Date        string           `json:"date"`
	Shift       string           `json:"shift"`
	OtherIncome []shift.LineItem `json:"other_income"`
	Expenses    []shift.LineItem `json:"expenses"`
	GCash       types.Amount     `json:"gcash"`
}

func (h *ShiftHandler) UpdateSummary(c *gin.Context) {
	var req updateSummaryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	date, err := types.ParseDate(req.Date)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	s, err := types.ParseShift(req.Shift)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.shift.SaveRecord(c.Request.Context(), shift.SaveCommand{
		Date:         date,
		Shift:        s,
		OtherIncome:  req.OtherIncome,
		Expenses:     req.Expenses,
		CashTransfer: req.GCash,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newShiftViewResp(v))
}

func (h *ShiftHandler) Window(c *gin.Context) {
	var s types.Shift
	if v := c.Query("shift"); v != "" {
		parsed, err := types.ParseShift(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		s = parsed
	}
	w, err := h.shift.Window(s)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, w)
}
