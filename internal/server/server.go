package server

import (
	"context"
	"net/http"
	"time"

	"github.com/brickops/backend/internal/config"
	"github.com/brickops/backend/internal/handler"
	"github.com/brickops/backend/internal/lease"
	"github.com/brickops/backend/internal/marketplace"
	"github.com/brickops/backend/internal/repository"
	"github.com/brickops/backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

func New(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	client, err := marketplace.NewRESTClient(ctx, marketplace.RESTConfig{
		BaseURL:      cfg.MarketplaceBaseURL,
		TokenURL:     cfg.MarketplaceTokenURL,
		ClientID:     cfg.MarketplaceClientID,
		ClientSecret: cfg.MarketplaceClientSecret,
	})
	if err != nil {
		return nil, err
	}

	orderRepo := repository.NewOrderRepository(db)
	lineItemRepo := repository.NewLineItemRepository(db)
	fulfillmentRepo := repository.NewFulfillmentRepository(db)
	invRepo := repository.NewInventoryRepository(db)
	queueRepo := repository.NewQueueRepository(db)
	syncRepo := repository.NewSyncStatusRepository(db)
	txnRepo := repository.NewTransactionRepository(db)

	var syncLease lease.Lease = lease.NewStatusLease(syncRepo)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		syncLease = lease.NewRedisLease(rdb, lease.DefaultTTL)
	}

	reconcileSvc := service.NewReconcileService(orderRepo, lineItemRepo, invRepo, queueRepo)
	financeSvc := service.NewFinanceService(orderRepo, txnRepo, client)
	queueSvc := service.NewQueueService(queueRepo, lineItemRepo, invRepo, fulfillmentRepo, financeSvc)
	syncSvc := service.NewSyncService(
		orderRepo, lineItemRepo, fulfillmentRepo, syncRepo,
		client, syncLease, reconcileSvc, financeSvc,
		cfg.SyncPageSize, time.Duration(cfg.SyncWindowDays)*24*time.Hour,
	)

	syncHandler := handler.NewSyncHandler(syncSvc, reconcileSvc)
	queueHandler := handler.NewQueueHandler(queueSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")
	api.POST("/sync/orders", syncHandler.SyncOrders)
	api.GET("/sync/status", syncHandler.GetSyncStatus)
	api.POST("/sync/historical", syncHandler.ProcessHistorical)
	api.GET("/stats", syncHandler.GetStats)
	api.GET("/queue", queueHandler.ListPending)
	api.POST("/queue/:id/resolve", queueHandler.Resolve)
	api.POST("/queue/:id/skip", queueHandler.Skip)

	return &Server{e: e}, nil
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}
