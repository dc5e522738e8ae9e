package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/merkur-erp/erp-api/internal/auth"
	"github.com/merkur-erp/erp-api/internal/config"
	"github.com/merkur-erp/erp-api/internal/database"
	"github.com/merkur-erp/erp-api/internal/datawarehouse"
	"github.com/merkur-erp/erp-api/internal/http/handler"
	"github.com/merkur-erp/erp-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/merkur-erp/erp-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	db                 *gorm.DB
	dwClient           *datawarehouse.Client
	authMiddleware     *auth.Middleware
	rateLimiter        *middleware.RateLimiter
	auditMiddleware    *middleware.AuditMiddleware
	authHandler        *handler.AuthHandler
	partnerHandler     *handler.PartnerHandler
	opportunityHandler *handler.OpportunityHandler
	returnHandler      *handler.ReturnHandler
	intrastatHandler   *handler.IntrastatHandler
	documentHandler    *handler.DocumentHandler
	stockHandler       *handler.StockHandler
	receiptHandler     *handler.ReceiptHandler
	priceListHandler   *handler.PriceListHandler
	auditHandler       *handler.AuditHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	dwClient *datawarehouse.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	authHandler *handler.AuthHandler,
	partnerHandler *handler.PartnerHandler,
	opportunityHandler *handler.OpportunityHandler,
	returnHandler *handler.ReturnHandler,
	intrastatHandler *handler.IntrastatHandler,
	documentHandler *handler.DocumentHandler,
	stockHandler *handler.StockHandler,
	receiptHandler *handler.ReceiptHandler,
	priceListHandler *handler.PriceListHandler,
	auditHandler *handler.AuditHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		db:                 db,
		dwClient:           dwClient,
		authMiddleware:     authMiddleware,
		rateLimiter:        rateLimiter,
		auditMiddleware:    auditMiddleware,
		authHandler:        authHandler,
		partnerHandler:     partnerHandler,
		opportunityHandler: opportunityHandler,
		returnHandler:      returnHandler,
		intrastatHandler:   intrastatHandler,
		documentHandler:    documentHandler,
		stockHandler:       stockHandler,
		receiptHandler:     receiptHandler,
		priceListHandler:   priceListHandler,
		auditHandler:       auditHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// Check data warehouse when configured. A failing warehouse only
		// degrades reconciliation, so it never flips readiness.
		if rt.dwClient.IsEnabled() {
			dwStatus := rt.dwClient.HealthCheck(r.Context())
			checks["datawarehouse"] = map[string]interface{}{
				"status":     dwStatus.Status,
				"latency_ms": dwStatus.Latency.Milliseconds(),
				"error":      dwStatus.Error,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.auditMiddleware.Audit) // Audit all modifications

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Audit logs
			r.Route("/audit", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/", rt.auditHandler.List)
				r.Get("/entity/{entityType}/{entityId}", rt.auditHandler.GetByEntity)
				r.Get("/{id}", rt.auditHandler.GetByID)
			})

			// Partners
			r.Route("/partners", func(r chi.Router) {
				r.Get("/", rt.partnerHandler.List)
				r.Post("/", rt.partnerHandler.Create)
				r.Get("/{id}", rt.partnerHandler.GetByID)
				r.Put("/{id}", rt.partnerHandler.Update)
				r.Delete("/{id}", rt.partnerHandler.Delete)
				r.Get("/{partnerId}/price-lists", rt.priceListHandler.ListBySupplier)
			})

			// Opportunities
			r.Route("/opportunities", func(r chi.Router) {
				r.Get("/", rt.opportunityHandler.List)
				r.Post("/", rt.opportunityHandler.Create)
				r.Get("/pipeline-summary", rt.opportunityHandler.GetPipelineSummary)
				r.Get("/{id}", rt.opportunityHandler.GetByID)
				r.Put("/{id}", rt.opportunityHandler.Update)
				r.Delete("/{id}", rt.opportunityHandler.Delete)
			})

			// Goods returns
			r.Route("/returns", func(r chi.Router) {
				r.Get("/", rt.returnHandler.List)
				r.Post("/", rt.returnHandler.Create)
				r.Get("/{id}", rt.returnHandler.GetByID)
				r.Put("/{id}", rt.returnHandler.Update)
				r.Delete("/{id}", rt.returnHandler.Delete)

				// Lifecycle endpoints
				r.Post("/{id}/approve", rt.returnHandler.Approve)
				r.Post("/{id}/reject", rt.returnHandler.Reject)
				r.Post("/{id}/complete", rt.returnHandler.Complete)
				r.Get("/{id}/workflow-log", rt.returnHandler.GetWorkflowLog)
			})

			// INTRASTAT declarations
			r.Route("/intrastat/declarations", func(r chi.Router) {
				r.Get("/", rt.intrastatHandler.List)
				r.Post("/", rt.intrastatHandler.Create)
				r.Get("/{id}", rt.intrastatHandler.GetByID)
				r.Delete("/{id}", rt.intrastatHandler.Delete)

				// Item lines
				r.Get("/{id}/items", rt.intrastatHandler.ListItems)
				r.Post("/{id}/items", rt.intrastatHandler.AddItem)
				r.Put("/{id}/items/{itemId}", rt.intrastatHandler.UpdateItem)
				r.Delete("/{id}/items/{itemId}", rt.intrastatHandler.DeleteItem)

				// Lifecycle endpoints
				r.Post("/{id}/mark-ready", rt.intrastatHandler.MarkReady)
				r.Post("/{id}/mark-sent", rt.intrastatHandler.MarkSent)
				r.Post("/{id}/confirm", rt.intrastatHandler.Confirm)

				// Reporting and export
				r.Get("/{id}/summary", rt.intrastatHandler.GetSummary)
				r.Get("/{id}/export/nav", rt.intrastatHandler.ExportNAV)
				r.Get("/{id}/export/xml", rt.intrastatHandler.ExportXML)
			})

			// Documents
			r.Route("/documents", func(r chi.Router) {
				r.Get("/", rt.documentHandler.List)
				r.Post("/", rt.documentHandler.Upload)
				r.Get("/{id}", rt.documentHandler.GetByID)
				r.Delete("/{id}", rt.documentHandler.Delete)
				r.Get("/{id}/download", rt.documentHandler.Download)
				r.Post("/{id}/ocr", rt.documentHandler.SubmitOcr)
			})

			// Stock levels and reservations
			r.Route("/stock", func(r chi.Router) {
				r.Get("/levels", rt.stockHandler.ListLevels)
				r.Get("/available", rt.stockHandler.GetAvailable)
				r.Get("/reservations", rt.stockHandler.ListReservations)
				r.Post("/reservations", rt.stockHandler.CreateReservation)
				r.Get("/reservations/{id}", rt.stockHandler.GetReservation)
				r.Post("/reservations/{id}/fulfill", rt.stockHandler.FulfillReservation)
				r.Post("/reservations/{id}/release", rt.stockHandler.ReleaseReservation)
			})

			// Expected receipts
			r.Route("/receipts", func(r chi.Router) {
				r.Get("/", rt.receiptHandler.List)
				r.Post("/", rt.receiptHandler.Create)
				r.Get("/{id}", rt.receiptHandler.GetByID)

				// Item lines
				r.Post("/{id}/items", rt.receiptHandler.AddItem)
				r.Put("/{id}/items/{itemId}", rt.receiptHandler.UpdateItem)
				r.Delete("/{id}/items/{itemId}", rt.receiptHandler.DeleteItem)

				// Lifecycle endpoints
				r.Post("/{id}/receive", rt.receiptHandler.Receive)
				r.Post("/{id}/cancel", rt.receiptHandler.Cancel)
			})

			// Price lists
			r.Route("/price-lists", func(r chi.Router) {
				r.Get("/", rt.priceListHandler.List)
				r.Post("/", rt.priceListHandler.Create)
				r.Get("/{id}", rt.priceListHandler.GetByID)
				r.Put("/{id}", rt.priceListHandler.Update)
				r.Delete("/{id}", rt.priceListHandler.Delete)

				// Items and CSV exchange
				r.Post("/{id}/items", rt.priceListHandler.AddItem)
				r.Put("/{id}/items/{itemId}", rt.priceListHandler.UpdateItem)
				r.Delete("/{id}/items/{itemId}", rt.priceListHandler.DeleteItem)
				r.Post("/{id}/items/import", rt.priceListHandler.ImportItems)
				r.Get("/{id}/export", rt.priceListHandler.ExportItems)

				// Supplier links
				r.Post("/{id}/suppliers/{partnerId}", rt.priceListHandler.LinkSupplier)
				r.Delete("/{id}/suppliers/{partnerId}", rt.priceListHandler.UnlinkSupplier)
			})
		})
	})

	return r
}
