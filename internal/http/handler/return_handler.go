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

type ReturnHandler struct {
	returnService *service.ReturnService
	logger        *zap.Logger
}

func NewReturnHandler(returnService *service.ReturnService, logger *zap.Logger) *ReturnHandler {
	return &ReturnHandler{
		returnService: returnService,
		logger:        logger,
	}
}

// List godoc
// @Summary List goods returns
// @Description Get paginated list of goods returns with optional filters
// @Tags Returns
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(PENDING, APPROVED, COMPLETED, REJECTED)
// @Param partnerId query string false "Filter by partner ID" format(uuid)
// @Param warehouseCode query string false "Filter by warehouse code"
// @Param productCode query string false "Filter by product code"
// @Success 200 {object} domain.ListResponse[domain.ReturnDTO]
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /returns [get]
func (h *ReturnHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, take := parsePagination(r)

	filter := &repository.ReturnFilter{
		WarehouseCode: r.URL.Query().Get("warehouseCode"),
		ProductCode:   r.URL.Query().Get("productCode"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.ReturnStatus(status)
		filter.Status = &s
	}
	if pid := r.URL.Query().Get("partnerId"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid partnerId: must be a valid UUID")
			return
		}
		filter.PartnerID = &id
	}

	result, err := h.returnService.ListReturns(r.Context(), filter, skip, take)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list returns")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get goods return by ID
// @Description Get a goods return with its full status transition history
// @Tags Returns
// @Produce json
// @Param id path string true "Return ID" format(uuid)
// @Success 200 {object} domain.ReturnDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /returns/{id} [get]
func (h *ReturnHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid return ID format")
		return
	}

	ret, err := h.returnService.GetReturn(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get return")
		return
	}

	respondJSON(w, http.StatusOK, ret)
}

// Create godoc
// @Summary Create goods return
// @Description Register a new goods return in PENDING status
// @Tags Returns
// @Accept json
// @Produce json
// @Param request body mapper.ReturnForm true "Return form data"
// @Success 201 {object} domain.ReturnDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /returns [post]
func (h *ReturnHandler) Create(w http.ResponseWriter, r *http.Request) {
	var form mapper.ReturnForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, errs := mapper.MapReturnForm(form)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	ret, err := h.returnService.CreateReturn(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create return")
		return
	}

	w.Header().Set("Location", "/api/v1/returns/"+ret.ID.String())
	respondJSON(w, http.StatusCreated, ret)
}

// Update godoc
// @Summary Update goods return
// @Description Update the editable fields of a return. Only PENDING returns may be modified.
// @Tags Returns
// @Accept json
// @Produce json
// @Param id path string true "Return ID" format(uuid)
// @Param request body mapper.ReturnForm true "Return form data"
// @Success 200 {object} domain.ReturnDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Return is no longer editable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /returns/{id} [put]
func (h *ReturnHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid return ID format")
		return
	}

	var form mapper.ReturnForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mapped, errs := mapper.MapReturnForm(form)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	req := domain.UpdateReturnRequest(*mapped)
	ret, err := h.returnService.UpdateReturn(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update return")
		return
	}

	respondJSON(w, http.StatusOK, ret)
}

// Delete godoc
// @Summary Delete goods return
// @Description Delete a return. Only PENDING returns may be deleted.
// @Tags Returns
// @Param id path string true "Return ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Return is no longer deletable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /returns/{id} [delete]
func (h *ReturnHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid return ID format")
		return
	}

	if err := h.returnService.DeleteReturn(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete return")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Approve godoc
// @Summary Approve goods return
// @Description Transition a PENDING return to APPROVED
// @Tags Returns
// @Produce json
// @Param id path string true "Return ID" format(uuid)
// @Success 200 {object} domain.ReturnDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /returns/{id}/approve [post]
func (h *ReturnHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid return ID format")
		return
	}

	ret, err := h.returnService.ApproveReturn(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to approve return")
		return
	}

	respondJSON(w, http.StatusOK, ret)
}

// Reject godoc
// @Summary Reject goods return
// @Description Transition a PENDING return to REJECTED. The rejection reason is mandatory.
// @Tags Returns
// @Accept json
// @Produce json
// @Param id path string true "Return ID" format(uuid)
// @Param request body domain.RejectReturnRequest true "Rejection reason"
// @Success 200 {object} domain.ReturnDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /returns/{id}/reject [post]
func (h *ReturnHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid return ID format")
		return
	}

	var req domain.RejectReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	ret, err := h.returnService.RejectReturn(r.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to reject return")
		return
	}

	respondJSON(w, http.StatusOK, ret)
}

// Complete godoc
// @Summary Complete goods return
// @Description Transition an APPROVED return to COMPLETED and write the quantity back to stock
// @Tags Returns
// @Produce json
// @Param id path string true "Return ID" format(uuid)
// @Success 200 {object} domain.ReturnDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /returns/{id}/complete [post]
func (h *ReturnHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid return ID format")
		return
	}

	ret, err := h.returnService.CompleteReturn(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to complete return")
		return
	}

	respondJSON(w, http.StatusOK, ret)
}

// GetWorkflowLog godoc
// @Summary Get return workflow log
// @Description Get the status transition history of a return, oldest first
// @Tags Returns
// @Produce json
// @Param id path string true "Return ID" format(uuid)
// @Success 200 {array} domain.WorkflowLogDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /returns/{id}/workflow-log [get]
func (h *ReturnHandler) GetWorkflowLog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid return ID format")
		return
	}

	logs, err := h.returnService.GetWorkflowLog(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get workflow log")
		return
	}

	respondJSON(w, http.StatusOK, logs)
}
