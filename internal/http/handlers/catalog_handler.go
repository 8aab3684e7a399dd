// README: Vehicle catalog handlers (list/upsert/delete).
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash/internal/modules/catalog"
)

type CatalogService interface {
	Catalog(ctx context.Context) (catalog.Catalog, error)
	Save(ctx context.Context, p catalog.VehicleProfile) error
	Delete(ctx context.Context, name string) error
}

type CatalogHandler struct {
	catalog CatalogService
}

func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

func (h *CatalogHandler) List(c *gin.Context) {
	cat, err := h.catalog.Catalog(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, cat.Profiles())
}

func (h *CatalogHandler) Upsert(c *gin.Context) {
	var req catalog.VehicleProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.catalog.Save(c.Request.Context(), req); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, req)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("name")); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"status": "ok"})
}
