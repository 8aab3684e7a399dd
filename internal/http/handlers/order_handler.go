// README: Order handlers for record/list/get.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carwash/internal/clock"
	"carwash/internal/modules/order"
	"carwash/internal/modules/pricing"
	"carwash/internal/types"
)

type OrderService interface {
	Create(ctx context.Context, cmd order.CreateCommand) (order.Priced, error)
	Get(ctx context.Context, id types.ID) (order.Priced, error)
	ListByShift(ctx context.Context, date time.Time, shift types.Shift) ([]order.Priced, error)
}

type OrderHandler struct {
	svc   OrderService
	clock clock.Clock
}

func NewOrderHandler(svc OrderService, clk clock.Clock) *OrderHandler {
	return &OrderHandler{svc: svc, clock: clk}
}

type createOrderReq struct {
	VehicleType  string   `json:"vehicle_type"`
	BaseService  string   `json:"base_service"`
	Addons       []string `json:"addons"`
	Vacuum       *bool    `json:"w_vac"`
	PlateNumber  string   `json:"plate_number"`
	WasherName   string   `json:"washer_name"`
	InchargeName string   `json:"incharge_name"`
	Shift        string   `json:"shift"`
	Date         string   `json:"date"`
}

type orderResp struct {
	ID           types.ID       `json:"id"`
	VehicleType  string         `json:"vehicle_type"`
	BaseService  string         `json:"base_service"`
	Addons       []string       `json:"addons"`
	Vacuum       *bool          `json:"w_vac"`
	PlateNumber  string         `json:"plate_number"`
	WasherName   string         `json:"washer_name"`
	InchargeName string         `json:"incharge_name"`
	Shift        types.Shift    `json:"shift"`
	Date         string         `json:"date"`
	Timestamp    time.Time      `json:"timestamp"`
	Pricing      pricing.Result `json:"pricing"`
}

func newOrderResp(p order.Priced) orderResp {
	out := orderResp{
		ID:           p.ID,
		VehicleType:  p.VehicleType,
		BaseService:  p.BaseService,
		Addons:       p.Addons,
		Vacuum:       p.Vacuum,
		PlateNumber:  p.PlateNumber,
		WasherName:   p.WasherName,
		InchargeName: p.InchargeName,
		Shift:        p.Shift,
		Date:         p.Date.Format(types.DateLayout),
		Timestamp:    p.CreatedAt,
		Pricing:      p.Pricing,
	}
	if out.Addons == nil {
		out.Addons = []string{}
	}
	return out
}

func newOrderResps(in []order.Priced) []orderResp {
	out := make([]orderResp, 0, len(in))
	for _, p := range in {
		out = append(out, newOrderResp(p))
	}
	return out
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := order.CreateCommand{
		VehicleType:  req.VehicleType,
		BaseService:  req.BaseService,
		Addons:       req.Addons,
		Vacuum:       req.Vacuum,
		PlateNumber:  req.PlateNumber,
		WasherName:   req.WasherName,
		InchargeName: req.InchargeName,
	}
	if req.Shift != "" {
		s, err := types.ParseShift(req.Shift)
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		cmd.Shift = s
	}
	if req.Date != "" {
		d, err := types.ParseDate(req.Date)
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		cmd.Date = &d
	}
	p, err := h.svc.Create(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, newOrderResp(p))
}

func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !types.IsValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid order id")
		return
	}
	p, err := h.svc.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newOrderResp(p))
}

// List returns a shift's orders. Date and shift default to the shift
// running now.
func (h *OrderHandler) List(c *gin.Context) {
	now := h.clock.Now()
	date, err := dateParam(c.Query("date"), types.BusinessDate(now))
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	s := types.ShiftAt(now)
	if v := c.Query("shift"); v != "" {
		if s, err = types.ParseShift(v); err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	orders, err := h.svc.ListByShift(c.Request.Context(), date, s)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newOrderResps(orders))
}
