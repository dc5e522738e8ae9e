package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/merkur-erp/erp-api/internal/auth"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/service"
	"go.uber.org/zap"
)

// AuditConfig holds configuration for the audit middleware
type AuditConfig struct {
	// SkipPaths contains path prefixes that should not be audited
	SkipPaths []string
	// SkipMethods contains HTTP methods that should not be audited
	SkipMethods []string
	// AuditReads enables auditing of GET requests (defaults to false)
	AuditReads bool
}

// DefaultAuditConfig returns the default audit configuration
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		SkipPaths: []string{
			"/health",
			"/swagger",
		},
		SkipMethods: []string{
			http.MethodOptions,
			http.MethodHead,
		},
		AuditReads: false,
	}
}

// AuditMiddleware records every successful mutating API call in the audit log
type AuditMiddleware struct {
	auditService *service.AuditLogService
	config       *AuditConfig
	logger       *zap.Logger
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(auditService *service.AuditLogService, config *AuditConfig, logger *zap.Logger) *AuditMiddleware {
	if config == nil {
		config = DefaultAuditConfig()
	}
	return &AuditMiddleware{
		auditService: auditService,
		config:       config,
		logger:       logger,
	}
}

// Audit returns middleware that writes an audit log entry after each
// successful modification.
func (m *AuditMiddleware) Audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.shouldAudit(r) {
			next.ServeHTTP(w, r)
			return
		}

		rw := &statusCapture{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		m.record(r, rw.statusCode)
	})
}

// shouldAudit determines if a request should be audited
func (m *AuditMiddleware) shouldAudit(r *http.Request) bool {
	for _, method := range m.config.SkipMethods {
		if r.Method == method {
			return false
		}
	}

	if r.Method == http.MethodGet && !m.config.AuditReads {
		return false
	}

	for _, skipPath := range m.config.SkipPaths {
		if strings.HasPrefix(r.URL.Path, skipPath) {
			return false
		}
	}

	return true
}

// record writes one audit entry for a finished request
func (m *AuditMiddleware) record(r *http.Request, statusCode int) {
	if m.auditService == nil {
		return
	}

	// Only successful modifications end up in the trail
	if statusCode < 200 || statusCode >= 300 {
		return
	}

	action := methodToAction(r.Method)
	if action == "" {
		return
	}

	entityType, entityID := extractEntityInfo(r)

	entry := &domain.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Method:     r.Method,
		Path:       r.URL.Path,
		StatusCode: statusCode,
		IPAddress:  clientIP(r),
		RequestID:  r.Header.Get("X-Request-ID"),
	}
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		entry.UserID = userCtx.UserID.String()
		entry.UserName = userCtx.DisplayName
	}

	m.auditService.Record(r.Context(), entry)
}

// methodToAction converts an HTTP method to the audit action
func methodToAction(method string) domain.AuditAction {
	switch method {
	case http.MethodPost:
		return domain.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return domain.AuditActionUpdate
	case http.MethodDelete:
		return domain.AuditActionDelete
	default:
		return ""
	}
}

// extractEntityInfo derives the entity type and ID from the matched route
func extractEntityInfo(r *http.Request) (string, string) {
	routeCtx := chi.RouteContext(r.Context())
	if routeCtx == nil {
		return parseEntityFromPath(r.URL.Path), ""
	}

	entityID := routeCtx.URLParam("id")
	entityType := parseEntityFromPath(routeCtx.RoutePattern())
	return entityType, entityID
}

// parseEntityFromPath maps a URL path segment to an entity type name
func parseEntityFromPath(path string) string {
	entityMap := map[string]string{
		"partners":      "Partner",
		"opportunities": "Opportunity",
		"returns":       "Return",
		"declarations":  "IntrastatDeclaration",
		"documents":     "Document",
		"reservations":  "StockReservation",
		"receipts":      "ExpectedReceipt",
		"price-lists":   "PriceList",
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	// Deeper segments win so item routes resolve to the sub-resource
	entityType := "Unknown"
	for _, part := range parts {
		if t, ok := entityMap[part]; ok {
			entityType = t
		}
	}
	return entityType
}

// statusCapture wraps ResponseWriter to capture the status code
type statusCapture struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusCapture) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
