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

	billingapp "github.com/proxima/backend/internal/application/billing"
	catalogapp "github.com/proxima/backend/internal/application/catalog"
	ledgerapp "github.com/proxima/backend/internal/application/ledger"
	partnerapp "github.com/proxima/backend/internal/application/partner"
	"github.com/proxima/backend/internal/infrastructure/auth"
	"github.com/proxima/backend/internal/infrastructure/config"
	"github.com/proxima/backend/internal/infrastructure/event"
	"github.com/proxima/backend/internal/infrastructure/logger"
	"github.com/proxima/backend/internal/infrastructure/persistence"
	"github.com/proxima/backend/internal/interfaces/http/handler"
	"github.com/proxima/backend/internal/interfaces/http/middleware"
	"github.com/proxima/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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
		_ = log.Sync()
	}()

	log.Info("Starting Proxima Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	stockEntryRepo := persistence.NewGormStockEntryRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus for cross-context notifications
	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	productService := catalogapp.NewProductService(productRepo, stockEntryRepo, invoiceRepo)
	productService.SetEventPublisher(eventBus)
	clientService := partnerapp.NewClientService(clientRepo, invoiceRepo, paymentRepo)
	clientService.SetEventPublisher(eventBus)
	invoiceService := billingapp.NewInvoiceService(txScope, clientRepo)
	invoiceService.SetEventPublisher(eventBus)
	returnService := billingapp.NewReturnService(txScope)
	returnService.SetEventPublisher(eventBus)
	paymentService := ledgerapp.NewPaymentService(txScope)
	paymentService.SetEventPublisher(eventBus)

	jwtService := auth.NewJWTService(cfg.JWT, cfg.Auth)

	// HTTP handlers
	productHandler := handler.NewProductHandler(productService)
	clientHandler := handler.NewClientHandler(clientService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	creditNoteHandler := handler.NewCreditNoteHandler(returnService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	authHandler := handler.NewAuthHandler(jwtService)
	systemHandler := handler.NewSystemHandler()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

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

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))

	// Catalog domain (products, stock)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.GET("/products/ref/:ref", productHandler.GetByRef)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.DELETE("/products/:id", productHandler.Delete)
	catalogRoutes.POST("/products/:id/receive", productHandler.ReceiveStock)
	catalogRoutes.POST("/products/:id/adjust", productHandler.AdjustStock)
	catalogRoutes.GET("/products/:id/entries", productHandler.ListStockEntries)
	catalogRoutes.GET("/inventory/report", productHandler.InventoryReport)

	// Partner domain (clients)
	partnerRoutes := router.NewDomainGroup("partner", "/partner")
	partnerRoutes.POST("/clients", clientHandler.Create)
	partnerRoutes.GET("/clients", clientHandler.List)
	partnerRoutes.GET("/clients/:id", clientHandler.GetByID)
	partnerRoutes.PUT("/clients/:id", clientHandler.Update)
	partnerRoutes.DELETE("/clients/:id", clientHandler.Delete)
	partnerRoutes.GET("/clients/:id/statement", clientHandler.Statement)

	// Billing domain (invoices, returns, credit notes)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.POST("/invoices", invoiceHandler.Create)
	billingRoutes.GET("/invoices", invoiceHandler.List)
	billingRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	billingRoutes.GET("/invoices/:id/balance", invoiceHandler.GetBalance)
	billingRoutes.POST("/invoices/:id/lines", invoiceHandler.AddLine)
	billingRoutes.PUT("/invoices/:id/lines/:line_id", invoiceHandler.UpdateLine)
	billingRoutes.DELETE("/invoices/:id/lines/:line_id", invoiceHandler.RemoveLine)
	billingRoutes.PUT("/invoices/:id/parcels", invoiceHandler.SetParcelCount)
	billingRoutes.POST("/invoices/:id/finalize", invoiceHandler.Finalize)
	billingRoutes.DELETE("/invoices/:id", invoiceHandler.Delete)
	billingRoutes.POST("/invoices/:id/returns", creditNoteHandler.AcceptReturn)
	billingRoutes.GET("/invoices/:id/returns", creditNoteHandler.ListByInvoice)
	billingRoutes.GET("/credit-notes/:id", creditNoteHandler.GetByID)

	// Ledger domain (payments, allocations)
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.POST("/payments", paymentHandler.Record)
	ledgerRoutes.GET("/payments", paymentHandler.List)
	ledgerRoutes.GET("/payments/:id", paymentHandler.GetByID)
	ledgerRoutes.POST("/payments/:id/allocations", paymentHandler.Allocate)
	ledgerRoutes.DELETE("/payments/:id/allocations/:invoice_id", paymentHandler.Deallocate)
	ledgerRoutes.POST("/payments/:id/reallocate", paymentHandler.Reallocate)
	ledgerRoutes.DELETE("/payments/:id", paymentHandler.Delete)

	// Authentication (public)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)

	// System
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(catalogRoutes).
		Register(partnerRoutes).
		Register(billingRoutes).
		Register(ledgerRoutes).
		Register(authRoutes).
		Register(systemRoutes)

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

// healthHandler reports liveness of the process and its database connection
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
