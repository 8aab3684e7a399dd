// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"carwash/internal/clock"
	"carwash/internal/http/handlers"
	"carwash/internal/http/middleware"
)

type RouterDeps struct {
	Catalog     handlers.CatalogService
	Pricing     handlers.PricingService
	Order       handlers.OrderService
	Shift       handlers.ShiftService
	Report      handlers.ReportService
	User        handlers.UserService
	Clock       clock.Clock
	Log         logrus.FieldLogger
	CORSOrigins []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(deps.CORSOrigins)))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
	api.GET("/vehicles", catalogHandler.List)
	api.POST("/vehicles", catalogHandler.Upsert)
	api.DELETE("/vehicles/:name", catalogHandler.Delete)

	pricingHandler := handlers.NewPricingHandler(deps.Pricing)
	api.POST("/pricing/quote", pricingHandler.Quote)
	api.GET("/pricing/rules", pricingHandler.Rules)

	orderHandler := handlers.NewOrderHandler(deps.Order, deps.Clock)
	api.POST("/orders", orderHandler.Create)
	api.GET("/orders", orderHandler.List)
	api.GET("/orders/:id", orderHandler.Get)

	shiftHandler := handlers.NewShiftHandler(deps.Shift)
	api.GET("/shift_summary/:date/:shift", shiftHandler.Summary)
	api.POST("/update_summary", shiftHandler.UpdateSummary)
	api.GET("/shift_window", shiftHandler.Window)

	reportHandler := handlers.NewReportHandler(deps.Report, deps.Clock)
	api.GET("/monthly_sales", reportHandler.Monthly)
	api.GET("/yearly_sales", reportHandler.Yearly)

	userHandler := handlers.NewUserHandler(deps.User)
	api.GET("/users", userHandler.List)
	api.POST("/users", userHandler.Create)
	api.PUT("/users/:id", userHandler.Update)
	api.DELETE("/users/:id", userHandler.Delete)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
