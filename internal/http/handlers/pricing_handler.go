// README: Pricing handlers: quote an order draft before it is recorded.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash/internal/modules/pricing"
)

type PricingService interface {
	Quote(ctx context.Context, in pricing.Input) (pricing.Result, error)
	Rules() pricing.RuleSet
}

type PricingHandler struct {
	pricing PricingService
}

func NewPricingHandler(svc PricingService) *PricingHandler {
	return &PricingHandler{pricing: svc}
}

type quoteReq struct {
	VehicleType string   `json:"vehicle_type"`
	BaseService string   `json:"base_service"`
	Addons      []string `json:"addons"`
	Vacuum      *bool    `json:"w_vac"`
}

func (h *PricingHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.pricing.Quote(c.Request.Context(), pricing.Input{
		VehicleType: req.VehicleType,
		BaseService: req.BaseService,
		Addons:      req.Addons,
		Vacuum:      req.Vacuum,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (h *PricingHandler) Rules(c *gin.Context) {
	rs := h.pricing.Rules()
	writeJSON(c, http.StatusOK, map[string]any{
		"base_default": rs.BaseDefault,
		"fallback":     rs.Fallback,
		"services":     rs.Services,
	})
}
