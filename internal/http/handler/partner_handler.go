package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/service"
	"go.uber.org/zap"
)

type PartnerHandler struct {
	partnerService *service.PartnerService
	logger         *zap.Logger
}

func NewPartnerHandler(partnerService *service.PartnerService, logger *zap.Logger) *PartnerHandler {
	return &PartnerHandler{
		partnerService: partnerService,
		logger:         logger,
	}
}

// List godoc
// @Summary List partners
// @Description Get paginated list of business partners with optional filters
// @Tags Partners
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or tax number"
// @Param isSupplier query bool false "Filter by supplier flag"
// @Param isCustomer query bool false "Filter by customer flag"
// @Param isActive query bool false "Filter by active flag"
// @Success 200 {object} domain.ListResponse[domain.PartnerDTO]
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /partners [get]
func (h *PartnerHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, take := parsePagination(r)

	filter := &repository.PartnerFilter{
		Search: r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("isSupplier"); v != "" {
		b, _ := strconv.ParseBool(v)
		filter.IsSupplier = &b
	}
	if v := r.URL.Query().Get("isCustomer"); v != "" {
		b, _ := strconv.ParseBool(v)
		filter.IsCustomer = &b
	}
	if v := r.URL.Query().Get("isActive"); v != "" {
		b, _ := strconv.ParseBool(v)
		filter.IsActive = &b
	}

	result, err := h.partnerService.ListPartners(r.Context(), filter, skip, take)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list partners")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get partner by ID
// @Tags Partners
// @Produce json
// @Param id path string true "Partner ID" format(uuid)
// @Success 200 {object} domain.PartnerDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /partners/{id} [get]
func (h *PartnerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid partner ID format")
		return
	}

	partner, err := h.partnerService.GetPartner(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get partner")
		return
	}

	respondJSON(w, http.StatusOK, partner)
}

// Create godoc
// @Summary Create partner
// @Tags Partners
// @Accept json
// @Produce json
// @Param request body domain.CreatePartnerRequest true "Partner data"
// @Success 201 {object} domain.PartnerDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /partners [post]
func (h *PartnerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	partner, err := h.partnerService.CreatePartner(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create partner")
		return
	}

	w.Header().Set("Location", "/api/v1/partners/"+partner.ID.String())
	respondJSON(w, http.StatusCreated, partner)
}

// Update godoc
// @Summary Update partner
// @Tags Partners
// @Accept json
// @Produce json
// @Param id path string true "Partner ID" format(uuid)
// @Param request body domain.UpdatePartnerRequest true "Partner data"
// @Success 200 {object} domain.PartnerDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /partners/{id} [put]
func (h *PartnerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid partner ID format")
		return
	}

	var req domain.UpdatePartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	partner, err := h.partnerService.UpdatePartner(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update partner")
		return
	}

	respondJSON(w, http.StatusOK, partner)
}

// Delete godoc
// @Summary Delete partner
// @Tags Partners
// @Param id path string true "Partner ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /partners/{id} [delete]
func (h *PartnerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid partner ID format")
		return
	}

	if err := h.partnerService.DeletePartner(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete partner")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
