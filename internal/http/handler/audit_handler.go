package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/service"
	"go.uber.org/zap"
)

type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// List godoc
// @Summary List audit log entries
// @Description Get paginated audit log entries with optional filters, newest first
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param userId query string false "Filter by user ID"
// @Param action query string false "Filter by action" Enums(CREATE, UPDATE, DELETE)
// @Param entityType query string false "Filter by entity type"
// @Param entityId query string false "Filter by entity ID"
// @Param requestId query string false "Filter by request ID"
// @Param from query string false "Filter from timestamp (RFC 3339)"
// @Param to query string false "Filter to timestamp (RFC 3339)"
// @Success 200 {object} domain.ListResponse[domain.AuditLogDTO]
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, take := parsePagination(r)

	filter := &repository.AuditLogFilter{
		UserID:     r.URL.Query().Get("userId"),
		EntityType: r.URL.Query().Get("entityType"),
		EntityID:   r.URL.Query().Get("entityId"),
		RequestID:  r.URL.Query().Get("requestId"),
	}
	if v := r.URL.Query().Get("action"); v != "" {
		a := domain.AuditAction(v)
		filter.Action = &a
	}
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'from' timestamp: must be RFC 3339")
			return
		}
		filter.StartTime = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'to' timestamp: must be RFC 3339")
			return
		}
		filter.EndTime = &t
	}

	result, err := h.auditService.ListEntries(r.Context(), filter, skip, take)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list audit log entries")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByEntity godoc
// @Summary Get audit trail of one entity
// @Tags Audit
// @Produce json
// @Param entityType path string true "Entity type"
// @Param entityId path string true "Entity ID"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} domain.AuditLogDTO
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit/entity/{entityType}/{entityId} [get]
func (h *AuditHandler) GetByEntity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityId")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	entries, err := h.auditService.ListByEntity(r.Context(), entityType, entityID, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list audit log entries")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetByID godoc
// @Summary Get audit log entry by ID
// @Tags Audit
// @Produce json
// @Param id path string true "Entry ID" format(uuid)
// @Success 200 {object} domain.AuditLogDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /audit/{id} [get]
func (h *AuditHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entry ID format")
		return
	}

	entry, err := h.auditService.GetEntry(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get audit log entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}
