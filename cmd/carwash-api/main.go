// README: Entry point; loads config, wires services and serves the POS API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"carwash/internal/clock"
	"carwash/internal/config"
	httptransport "carwash/internal/http"
	"carwash/internal/infra"
	"carwash/internal/modules/catalog"
	"carwash/internal/modules/order"
	"carwash/internal/modules/pricing"
	"carwash/internal/modules/report"
	"carwash/internal/modules/shift"
	"carwash/internal/modules/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := infra.NewLogger(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.WithError(err).Fatal("postgres init")
	}
	defer dbPool.Close()

	var catalogCache catalog.Cache
	if cfg.CacheEnabled() {
		redisClient := infra.NewRedis(cfg.Redis.Addr)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unavailable; catalog reads go to postgres")
		}
		catalogCache = catalog.NewRedisCache(redisClient, cfg.Catalog.CacheTTL)
	}

	clk := clock.System(cfg.Location)

	catalogSvc := catalog.NewService(catalog.NewStore(dbPool), catalogCache, logger)
	if err := prepareDatabase(ctx, cfg, dbPool, catalogSvc, logger); err != nil {
		logger.WithError(err).Fatal("prepare database")
	}
	pricingSvc := pricing.NewService(catalogSvc)
	orderSvc := order.NewService(order.NewStore(dbPool), catalogSvc, clk, logger)
	shiftStore := shift.NewStore(dbPool)
	shiftSvc := shift.NewService(shiftStore, orderSvc, clk, logger)
	reportSvc := report.NewService(orderSvc, shiftStore, logger)
	userSvc := user.NewService(user.NewStore(dbPool), clk, logger)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Catalog:     catalogSvc,
		Pricing:     pricingSvc,
		Order:       orderSvc,
		Shift:       shiftSvc,
		Report:      reportSvc,
		User:        userSvc,
		Clock:       clk,
		Log:         logger,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, router, logger)
	if err := server.Run(ctx); err != nil {
		logger.WithError(err).Fatal("http server")
	}
	logger.Info("bye")
}

// prepareDatabase applies the schema migrations and seeds the default
// catalog, each when enabled in cfg.
func prepareDatabase(ctx context.Context, cfg config.Config, db *pgxpool.Pool, catalogSvc *catalog.Service, logger log.FieldLogger) error {
	if cfg.DB.Migrate {
		if err := infra.Migrate(ctx, db, cfg.DB.MigrationDir); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.WithField("dir", cfg.DB.MigrationDir).Info("migrations applied")
	}
	if cfg.Catalog.Seed {
		if err := catalogSvc.Seed(ctx); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}
	return nil
}
