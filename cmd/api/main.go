package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/merkur-erp/erp-api/docs"
	"github.com/merkur-erp/erp-api/internal/auth"
	"github.com/merkur-erp/erp-api/internal/config"
	"github.com/merkur-erp/erp-api/internal/database"
	"github.com/merkur-erp/erp-api/internal/datawarehouse"
	"github.com/merkur-erp/erp-api/internal/http/handler"
	"github.com/merkur-erp/erp-api/internal/http/middleware"
	"github.com/merkur-erp/erp-api/internal/http/router"
	"github.com/merkur-erp/erp-api/internal/jobs"
	"github.com/merkur-erp/erp-api/internal/logger"
	"github.com/merkur-erp/erp-api/internal/ocr"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/service"
	"github.com/merkur-erp/erp-api/internal/storage"
	"go.uber.org/zap"
)

// @title Merkur ERP API
// @version 1.0
// @description Modular ERP backend for goods returns, INTRASTAT declarations, documents, stock, and price lists
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@merkur-erp.hu

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "erp-api-staging.merkur-erp.hu"
	case "production":
		docs.SwaggerInfo.Host = "api.merkur-erp.hu"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize OCR client (submission is disabled when no base URL is set,
	// uploads still work)
	ocrClient := ocr.NewClient(&cfg.Ocr, log)

	// Initialize data warehouse connection (optional, read-only). The stock
	// reconciliation job needs it; everything else works without it.
	var dwClient *datawarehouse.Client
	if cfg.DataWarehouse.Enabled {
		dwClient, err = datawarehouse.NewClient(&cfg.DataWarehouse, log)
		if err != nil {
			log.Warn("Data warehouse connection failed, continuing without it",
				zap.Error(err),
			)
		} else {
			log.Info("Data warehouse connected",
				zap.Int("max_open_conns", cfg.DataWarehouse.MaxOpenConns),
				zap.Int("query_timeout_seconds", cfg.DataWarehouse.QueryTimeout),
			)
		}
	} else {
		log.Info("Data warehouse not configured, skipping")
	}

	// Initialize repositories
	partnerRepo := repository.NewPartnerRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	intrastatRepo := repository.NewIntrastatRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	stockLevelRepo := repository.NewStockLevelRepository(db)
	reservationRepo := repository.NewStockReservationRepository(db)
	receiptRepo := repository.NewExpectedReceiptRepository(db)
	priceListRepo := repository.NewPriceListRepository(db)
	workflowLogRepo := repository.NewWorkflowLogRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	partnerService := service.NewPartnerService(partnerRepo, log)
	opportunityService := service.NewOpportunityService(opportunityRepo, partnerRepo, log)
	returnService := service.NewReturnService(db, returnRepo, stockLevelRepo, workflowLogRepo, partnerRepo, log)
	intrastatService := service.NewIntrastatService(db, intrastatRepo, workflowLogRepo, log)
	intrastatExportService := service.NewIntrastatExportService(intrastatRepo, log)
	documentService := service.NewDocumentService(db, documentRepo, workflowLogRepo, partnerRepo, fileStorage, ocrClient, cfg.Ocr.MaxAttempts, log)
	stockService := service.NewStockService(db, stockLevelRepo, reservationRepo, workflowLogRepo, log)
	receiptService := service.NewReceiptService(db, receiptRepo, stockLevelRepo, workflowLogRepo, partnerRepo, log)
	priceListService := service.NewPriceListService(priceListRepo, partnerRepo, log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(log)
	partnerHandler := handler.NewPartnerHandler(partnerService, log)
	opportunityHandler := handler.NewOpportunityHandler(opportunityService, log)
	returnHandler := handler.NewReturnHandler(returnService, log)
	intrastatHandler := handler.NewIntrastatHandler(intrastatService, intrastatExportService, log)
	documentHandler := handler.NewDocumentHandler(documentService, cfg.Storage.MaxUploadSizeMB, log)
	stockHandler := handler.NewStockHandler(stockService, log)
	receiptHandler := handler.NewReceiptHandler(receiptService, log)
	priceListHandler := handler.NewPriceListHandler(priceListService, log)
	auditHandler := handler.NewAuditHandler(auditLogService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		dwClient,
		authMiddleware,
		rateLimiter,
		auditMiddleware,
		authHandler,
		partnerHandler,
		opportunityHandler,
		returnHandler,
		intrastatHandler,
		documentHandler,
		stockHandler,
		receiptHandler,
		priceListHandler,
		auditHandler,
	)

	// Initialize and start scheduler for background jobs
	scheduler := jobs.NewScheduler(log)

	if cfg.Ocr.BaseURL != "" {
		if err := jobs.RegisterOcrPollJob(
			scheduler,
			documentService,
			log,
			cfg.Ocr.PollInterval(),
			cfg.Ocr.RequestTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register OCR poll job", zap.Error(err))
		}
	} else {
		log.Info("OCR provider not configured, poll job disabled")
	}

	if dwClient.IsEnabled() {
		if err := jobs.RegisterStockReconcileJob(
			scheduler,
			dwClient,
			stockLevelRepo,
			log,
			cfg.Jobs.StockReconcileCron,
			cfg.DataWarehouse.QueryTimeoutDuration(),
		); err != nil {
			log.Error("Failed to register stock reconcile job", zap.Error(err))
		}
	}

	if err := jobs.RegisterAuditCleanupJob(
		scheduler,
		auditLogService,
		cfg.Jobs.AuditRetention(),
		log,
		cfg.Jobs.AuditCleanupCron,
		time.Minute,
	); err != nil {
		log.Error("Failed to register audit cleanup job", zap.Error(err))
	}

	scheduler.Start()
	log.Info("Scheduler started", zap.Strings("jobs", scheduler.GetJobNames()))

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler and wait for running jobs
		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close data warehouse connection if initialized
		if err := dwClient.Close(); err != nil {
			log.Warn("Error closing data warehouse connection", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
