package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	fulfillmentapp "github.com/lakshya-byte/krishinetra-backend/internal/application/fulfillment"
	marketplaceapp "github.com/lakshya-byte/krishinetra-backend/internal/application/marketplace"
	"github.com/lakshya-byte/krishinetra-backend/internal/application/notification"
	tradeapp "github.com/lakshya-byte/krishinetra-backend/internal/application/trade"
	"github.com/lakshya-byte/krishinetra-backend/internal/domain/shared"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/auth"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/cache"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/config"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/event"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/logger"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/persistence"
	"github.com/lakshya-byte/krishinetra-backend/internal/infrastructure/scheduler"
	"github.com/lakshya-byte/krishinetra-backend/internal/interfaces/http/handler"
	"github.com/lakshya-byte/krishinetra-backend/internal/interfaces/http/middleware"
	"github.com/lakshya-byte/krishinetra-backend/internal/interfaces/http/router"
)

//	@title			KrishiNetra Marketplace API
//	@version		1.0
//	@description	Agricultural supply chain marketplace: batch lifecycle, bidding, trade and fulfillment

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting KrishiNetra backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with a zap-backed gorm logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	ownershipRepo := persistence.NewGormOwnershipHistoryRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	logisticsRepo := persistence.NewGormLogisticsRepository(db.DB)
	disputeRepo := persistence.NewGormDisputeRepository(db.DB)
	inspectionRepo := persistence.NewGormQualityInspectionRepository(db.DB)
	ratingRepo := persistence.NewGormRatingRepository(db.DB)
	verificationRepo := persistence.NewGormVerificationRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Event serializer and transactional outbox publisher
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Repositories that persist domain events inside their transactions
	batchRepo.SetOutboxEventSaver(outboxPublisher)
	saleRepo.SetOutboxEventSaver(outboxPublisher)
	ownershipRepo.SetOutboxEventSaver(outboxPublisher)
	invoiceRepo.SetOutboxEventSaver(outboxPublisher)

	// Application services
	batchService := marketplaceapp.NewBatchService(batchRepo, ownershipRepo)
	biddingService := marketplaceapp.NewBiddingServiceWithConfig(batchRepo, marketplaceapp.BiddingWindowConfig{
		MinWindow:     cfg.Bidding.MinWindow,
		DefaultWindow: cfg.Bidding.DefaultWindow,
	})
	closeoutService := marketplaceapp.NewBiddingCloseoutService(batchRepo, log)
	saleService := tradeapp.NewSaleService(saleRepo, batchRepo, ownershipRepo, log)
	invoiceService := tradeapp.NewInvoiceService(invoiceRepo, saleRepo, batchRepo, log)
	logisticsService := fulfillmentapp.NewLogisticsService(logisticsRepo, saleRepo, log)
	disputeService := fulfillmentapp.NewDisputeService(disputeRepo, saleRepo, log)
	qualityService := fulfillmentapp.NewQualityService(inspectionRepo, ratingRepo, batchRepo, saleRepo, log)
	verificationService := fulfillmentapp.NewVerificationService(verificationRepo, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Idempotency store for event handlers: redis when configured,
	// in-memory otherwise
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		idempotencyStore = redisStore
		log.Info("Redis idempotency store connected",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Info("Using in-memory idempotency store")
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Event bus and subscribers
	eventBus := event.NewInMemoryEventBus(log)

	notifier := notification.NewLogNotifier(log)
	tradeEventHandler := notification.NewTradeEventHandler(notifier, log)
	eventBus.Subscribe(event.NewIdempotentHandler(tradeEventHandler, idempotencyStore, log))

	log.Info("Event handlers registered",
		zap.Strings("trade_events", tradeEventHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor drains persisted events to the bus
	processorConfig := event.DefaultOutboxProcessorConfig()
	if cfg.Event.BatchSize > 0 {
		processorConfig.BatchSize = cfg.Event.BatchSize
	}
	if cfg.Event.PollInterval > 0 {
		processorConfig.PollInterval = cfg.Event.PollInterval
	}
	processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
	if cfg.Event.CleanupRetention > 0 {
		processorConfig.CleanupRetention = cfg.Event.CleanupRetention
	}

	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Bidding closeout sweeper
	if cfg.Scheduler.Enabled {
		triggerConfig := scheduler.DefaultBiddingCloseoutTriggerConfig()
		if cfg.Scheduler.CheckInterval > 0 {
			triggerConfig.CheckInterval = cfg.Scheduler.CheckInterval
		}
		closeoutTrigger := scheduler.NewBiddingCloseoutTrigger(triggerConfig, closeoutService, log)
		if err := closeoutTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start bidding closeout trigger", zap.Error(err))
		}
		defer func() {
			if err := closeoutTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping bidding closeout trigger", zap.Error(err))
			}
		}()
		log.Info("Bidding closeout trigger started",
			zap.Duration("check_interval", triggerConfig.CheckInterval),
		)
	}

	// HTTP handlers
	batchHandler := handler.NewBatchHandler(batchService)
	biddingHandler := handler.NewBiddingHandler(biddingService)
	saleHandler := handler.NewSaleHandler(saleService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	logisticsHandler := handler.NewLogisticsHandler(logisticsService)
	disputeHandler := handler.NewDisputeHandler(disputeService)
	qualityHandler := handler.NewQualityHandler(qualityService)
	verificationHandler := handler.NewVerificationHandler(verificationService)
	adminHandler := handler.NewAdminHandler(outboxRepo, closeoutService)
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Liveness and readiness endpoints outside API versioning
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	}))

	// Marketplace domain (batches, bidding)
	marketplaceRoutes := router.NewDomainGroup("marketplace", "/marketplace")
	marketplaceRoutes.POST("/batches", middleware.RequireRoles(shared.RoleFarmer), batchHandler.Create)
	marketplaceRoutes.GET("/batches", batchHandler.List)
	marketplaceRoutes.GET("/batches/mine", batchHandler.ListMine)
	marketplaceRoutes.GET("/batches/number/:number", batchHandler.GetByBatchNumber)
	marketplaceRoutes.GET("/batches/:id", batchHandler.GetByID)
	marketplaceRoutes.POST("/batches/:id/list", batchHandler.ListForSale)
	marketplaceRoutes.PUT("/batches/:id/price", batchHandler.UpdatePrice)
	marketplaceRoutes.POST("/batches/:id/relist", batchHandler.Relist)
	marketplaceRoutes.POST("/batches/:id/finish", batchHandler.Finish)
	marketplaceRoutes.POST("/batches/:id/override", middleware.RequireRoles(shared.RoleAdmin), batchHandler.OverrideStatus)
	marketplaceRoutes.POST("/batches/:id/bidding/open", biddingHandler.Open)
	marketplaceRoutes.POST("/batches/:id/bidding/close", biddingHandler.Close)
	marketplaceRoutes.POST("/batches/:id/bids", middleware.RequireRoles(shared.RoleDistributor), biddingHandler.PlaceBid)
	marketplaceRoutes.GET("/batches/:id/bids", biddingHandler.ListBids)
	marketplaceRoutes.DELETE("/batches/:id/bids/:bidId", biddingHandler.CancelBid)

	// Trade domain (sales, lineage, invoices)
	tradeRoutes := router.NewDomainGroup("trade", "/trade")
	tradeRoutes.POST("/sales", saleHandler.Complete)
	tradeRoutes.GET("/sales/sold", saleHandler.ListSold)
	tradeRoutes.GET("/sales/bought", saleHandler.ListBought)
	tradeRoutes.GET("/sales/:id", saleHandler.GetByID)
	tradeRoutes.GET("/batches/:batchId/sales", saleHandler.ListByBatch)
	tradeRoutes.GET("/batches/:batchId/lineage", saleHandler.GetLineage)
	tradeRoutes.POST("/invoices", invoiceHandler.Create)
	tradeRoutes.GET("/invoices", invoiceHandler.ListMine)
	tradeRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	tradeRoutes.POST("/invoices/:id/issue", invoiceHandler.Issue)
	tradeRoutes.POST("/invoices/:id/payments", middleware.IdempotencyKey(idempotencyStore, shared.DefaultIdempotencyConfig().TTL), invoiceHandler.RecordPayment)
	tradeRoutes.POST("/invoices/:id/settle", invoiceHandler.Settle)
	tradeRoutes.POST("/invoices/:id/cancel", invoiceHandler.Cancel)

	// Fulfillment domain (logistics, disputes, quality, verification)
	fulfillmentRoutes := router.NewDomainGroup("fulfillment", "/fulfillment")
	fulfillmentRoutes.POST("/shipments", logisticsHandler.Schedule)
	fulfillmentRoutes.GET("/shipments/:id", logisticsHandler.GetByID)
	fulfillmentRoutes.POST("/shipments/:id/dispatch", logisticsHandler.Dispatch)
	fulfillmentRoutes.POST("/shipments/:id/delivered", logisticsHandler.MarkDelivered)
	fulfillmentRoutes.POST("/shipments/:id/failed", logisticsHandler.MarkFailed)
	fulfillmentRoutes.GET("/sales/:saleId/shipment", logisticsHandler.GetBySale)
	fulfillmentRoutes.GET("/sales/:saleId/disputes", disputeHandler.ListBySale)
	fulfillmentRoutes.POST("/disputes", disputeHandler.Raise)
	fulfillmentRoutes.GET("/disputes", middleware.RequireRoles(shared.RoleAdmin), disputeHandler.ListOpen)
	fulfillmentRoutes.GET("/disputes/:id", disputeHandler.GetByID)
	fulfillmentRoutes.POST("/disputes/:id/review", middleware.RequireRoles(shared.RoleAdmin), disputeHandler.StartReview)
	fulfillmentRoutes.POST("/disputes/:id/resolve", middleware.RequireRoles(shared.RoleAdmin), disputeHandler.Resolve)
	fulfillmentRoutes.POST("/disputes/:id/evidence", disputeHandler.AddEvidence)
	fulfillmentRoutes.POST("/inspections", qualityHandler.RecordInspection)
	fulfillmentRoutes.GET("/batches/:batchId/inspections", qualityHandler.ListInspections)
	fulfillmentRoutes.POST("/ratings", qualityHandler.SubmitRating)
	fulfillmentRoutes.GET("/users/:userId/rating", qualityHandler.RatingSummary)
	fulfillmentRoutes.POST("/verifications", verificationHandler.Request)
	fulfillmentRoutes.GET("/verifications", middleware.RequireRoles(shared.RoleAdmin), verificationHandler.ListPending)
	fulfillmentRoutes.GET("/verifications/mine", verificationHandler.GetMine)
	fulfillmentRoutes.POST("/verifications/:id/review", middleware.RequireRoles(shared.RoleAdmin), verificationHandler.Review)

	// Admin domain (outbox operations, manual closeout)
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(middleware.RequireRoles(shared.RoleAdmin))
	adminRoutes.GET("/outbox/stats", adminHandler.OutboxStats)
	adminRoutes.GET("/outbox/dead-letters", adminHandler.ListDeadLetters)
	adminRoutes.POST("/outbox/dead-letters/:id/requeue", adminHandler.RequeueDeadLetter)
	adminRoutes.POST("/bidding/closeout", adminHandler.RunBiddingCloseout)

	r.Register(marketplaceRoutes).
		Register(tradeRoutes).
		Register(fulfillmentRoutes).
		Register(adminRoutes)

	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
