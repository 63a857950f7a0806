package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ggegelya/expensetracker/internal/config"
	"github.com/ggegelya/expensetracker/internal/database"
	"github.com/ggegelya/expensetracker/internal/handlers"
	custommw "github.com/ggegelya/expensetracker/internal/middleware"
	"github.com/ggegelya/expensetracker/internal/repositories"
	"github.com/ggegelya/expensetracker/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	accountRepo := repositories.NewAccountRepository(db.DB)
	categoryRepo := repositories.NewCategoryRepository(db.DB)
	transactionRepo := repositories.NewTransactionRepository(db.DB)
	pendingRepo := repositories.NewPendingTransactionRepository(db.DB)
	merchantRuleRepo := repositories.NewMerchantRuleRepository(db.DB)

	// Change notifier
	notifier := services.NewChangeNotifier(cfg.Ledger.NotifierDebounce, logger)
	notifier.Start()
	defer notifier.Stop()

	// Services
	metrics := services.NewLedgerMetrics()

	ledgerService := services.NewLedgerService(
		db, transactionRepo, accountRepo, categoryRepo, pendingRepo,
		notifier, metrics, logger,
	)
	accountService := services.NewAccountService(db, accountRepo, notifier, logger)
	categoryService := services.NewCategoryService(db, categoryRepo, notifier, logger)
	suggestionService := services.NewSuggestionService(merchantRuleRepo, categoryRepo, metrics, logger)
	pendingService := services.NewPendingService(pendingRepo, suggestionService, ledgerService, metrics, logger)

	tokenService, err := services.NewTokenService(&cfg.Sync)
	if err != nil {
		logger.Error("Failed to initialize token service", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := categoryService.EnsureSystemCategories(ctx); err != nil {
		logger.Error("Failed to ensure system categories", "error", err)
		os.Exit(1)
	}

	if cfg.Ledger.SeedOnStart {
		seeder := services.NewSeedService(accountService, categoryService, ledgerService, pendingService, logger)
		if err := seeder.Run(ctx); err != nil {
			logger.Warn("Seeding failed", "error", err)
		}
	}

	// Handlers
	accountHandler := handlers.NewAccountHandler(accountService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	pendingHandler := handlers.NewPendingHandler(pendingService)
	syncHandler := handlers.NewSyncHandler(tokenService)
	changesHandler := handlers.NewChangesHandler(notifier)
	healthHandler := handlers.NewHealthCheckHandler(db.DB)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = custommw.CustomHTTPErrorHandler

	e.Use(custommw.RequestID())
	e.Use(custommw.PanicRecovery())
	e.Use(custommw.SecurityHeaders())
	e.Use(custommw.RateLimiterWithConfig(cfg.Ledger.RateLimitPerSec, cfg.Ledger.RateLimitBurst))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, custommw.TraceIDHeader},
	}))

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.POST("/sync/pair", syncHandler.PairDevice)
	api.GET("/changes", changesHandler.StreamChanges)

	// Reads are open, the mutation surface requires a paired device token
	deviceAuth := custommw.RequireDeviceToken(tokenService)

	api.GET("/accounts", accountHandler.GetAccounts)
	api.GET("/accounts/:accountId", accountHandler.GetAccount)
	api.POST("/accounts", accountHandler.CreateAccount, deviceAuth)
	api.PUT("/accounts/:accountId", accountHandler.UpdateAccount, deviceAuth)
	api.DELETE("/accounts/:accountId", accountHandler.DeleteAccount, deviceAuth)

	api.GET("/categories", categoryHandler.GetCategories)
	api.GET("/categories/:categoryId", categoryHandler.GetCategory)
	api.POST("/categories", categoryHandler.CreateCategory, deviceAuth)
	api.PUT("/categories/:categoryId", categoryHandler.UpdateCategory, deviceAuth)
	api.DELETE("/categories/:categoryId", categoryHandler.DeleteCategory, deviceAuth)

	api.GET("/transactions", transactionHandler.QueryTransactions)
	api.GET("/transactions/:transactionId", transactionHandler.GetTransaction)
	api.POST("/transactions", transactionHandler.CreateTransaction, deviceAuth)
	api.PUT("/transactions/:transactionId", transactionHandler.UpdateTransaction, deviceAuth)
	api.DELETE("/transactions/:transactionId", transactionHandler.DeleteTransaction, deviceAuth)
	api.POST("/transactions/:transactionId/split", transactionHandler.SplitTransaction, deviceAuth)
	api.DELETE("/transactions/:transactionId/split", transactionHandler.UnsplitTransaction, deviceAuth)
	api.POST("/transactions/transfer", transactionHandler.CreateTransfer, deviceAuth)
	api.POST("/transactions/bulk-delete", transactionHandler.BulkDeleteTransactions, deviceAuth)

	api.GET("/analytics/categories", transactionHandler.CategoryBreakdown)
	api.POST("/ledger/rebuild", transactionHandler.RebuildBalances, deviceAuth)

	api.GET("/pending", pendingHandler.ListPending)
	api.POST("/pending", pendingHandler.ImportPending, deviceAuth)
	api.POST("/pending/:pendingId/process", pendingHandler.ProcessPending, deviceAuth)
	api.POST("/pending/:pendingId/dismiss", pendingHandler.DismissPending, deviceAuth)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Starting server", "addr", server.Addr, "environment", cfg.Server.Environment)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			logger.Error("Server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
