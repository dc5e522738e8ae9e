package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/mapper"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/service"
	"go.uber.org/zap"
)

type OpportunityHandler struct {
	opportunityService *service.OpportunityService
	logger             *zap.Logger
}

func NewOpportunityHandler(opportunityService *service.OpportunityService, logger *zap.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		opportunityService: opportunityService,
		logger:             logger,
	}
}

// List godoc
// @Summary List sales opportunities
// @Description Get paginated list of opportunities with optional filters
// @Tags Opportunities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param stage query string false "Filter by stage" Enums(open, won, lost)
// @Param partnerId query string false "Filter by partner ID" format(uuid)
// @Param search query string false "Search by name"
// @Success 200 {object} domain.ListResponse[domain.OpportunityDTO]
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /opportunities [get]
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, take := parsePagination(r)

	filter := &repository.OpportunityFilter{
		Search: r.URL.Query().Get("search"),
	}
	if stage := r.URL.Query().Get("stage"); stage != "" {
		s := domain.OpportunityStage(stage)
		filter.Stage = &s
	}
	if pid := r.URL.Query().Get("partnerId"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid partnerId: must be a valid UUID")
			return
		}
		filter.PartnerID = &id
	}

	result, err := h.opportunityService.ListOpportunities(r.Context(), filter, skip, take)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list opportunities")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetPipelineSummary godoc
// @Summary Get opportunity pipeline summary
// @Description Aggregates open opportunities weighted by their probability
// @Tags Opportunities
// @Produce json
// @Success 200 {object} domain.PipelineSummaryDTO
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /opportunities/pipeline-summary [get]
func (h *OpportunityHandler) GetPipelineSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.opportunityService.GetPipelineSummary(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to compute pipeline summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetByID godoc
// @Summary Get opportunity by ID
// @Tags Opportunities
// @Produce json
// @Param id path string true "Opportunity ID" format(uuid)
// @Success 200 {object} domain.OpportunityDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /opportunities/{id} [get]
func (h *OpportunityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity ID format")
		return
	}

	opp, err := h.opportunityService.GetOpportunity(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get opportunity")
		return
	}

	respondJSON(w, http.StatusOK, opp)
}

// Create godoc
// @Summary Create opportunity
// @Description Create a new sales opportunity. The creating user becomes the owner.
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param request body mapper.OpportunityForm true "Opportunity form data"
// @Success 201 {object} domain.OpportunityDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /opportunities [post]
func (h *OpportunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form mapper.OpportunityForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, errs := mapper.MapOpportunityForm(form)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	opp, err := h.opportunityService.CreateOpportunity(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create opportunity")
		return
	}

	w.Header().Set("Location", "/api/v1/opportunities/"+opp.ID.String())
	respondJSON(w, http.StatusCreated, opp)
}

// Update godoc
// @Summary Update opportunity
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID" format(uuid)
// @Param request body mapper.OpportunityForm true "Opportunity form data"
// @Success 200 {object} domain.OpportunityDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /opportunities/{id} [put]
func (h *OpportunityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity ID format")
		return
	}

	var form mapper.OpportunityForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mapped, errs := mapper.MapOpportunityForm(form)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	req := domain.UpdateOpportunityRequest(*mapped)
	opp, err := h.opportunityService.UpdateOpportunity(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update opportunity")
		return
	}

	respondJSON(w, http.StatusOK, opp)
}

// Delete godoc
// @Summary Delete opportunity
// @Tags Opportunities
// @Param id path string true "Opportunity ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /opportunities/{id} [delete]
func (h *OpportunityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid opportunity ID format")
		return
	}

	if err := h.opportunityService.DeleteOpportunity(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete opportunity")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
