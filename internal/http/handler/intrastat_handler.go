package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/mapper"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/service"
	"go.uber.org/zap"
)

type IntrastatHandler struct {
	intrastatService *service.IntrastatService
	exportService    *service.IntrastatExportService
	logger           *zap.Logger
}

func NewIntrastatHandler(
	intrastatService *service.IntrastatService,
	exportService *service.IntrastatExportService,
	logger *zap.Logger,
) *IntrastatHandler {
	return &IntrastatHandler{
		intrastatService: intrastatService,
		exportService:    exportService,
		logger:           logger,
	}
}

// List godoc
// @Summary List INTRASTAT declarations
// @Description Get paginated list of declarations with optional filters
// @Tags Intrastat
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param ev query int false "Filter by year"
// @Param honap query int false "Filter by month (1-12)"
// @Param direction query string false "Filter by direction" Enums(kiszallitas, beerkezes)
// @Param status query string false "Filter by status" Enums(NYITOTT, KULDESRE_KESZ, KULDOTT, VISSZAIGAZOLT)
// @Success 200 {object} domain.ListResponse[domain.IntrastatDeclarationDTO]
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations [get]
func (h *IntrastatHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, take := parsePagination(r)

	filter := &repository.IntrastatFilter{}
	if v := r.URL.Query().Get("ev"); v != "" {
		ev, err := strconv.Atoi(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid ev: must be an integer")
			return
		}
		filter.Ev = &ev
	}
	if v := r.URL.Query().Get("honap"); v != "" {
		honap, err := strconv.Atoi(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid honap: must be an integer")
			return
		}
		filter.Honap = &honap
	}
	if v := r.URL.Query().Get("direction"); v != "" {
		d := domain.IntrastatDirection(v)
		filter.Direction = &d
	}
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.IntrastatStatus(v)
		filter.Status = &s
	}

	result, err := h.intrastatService.ListDeclarations(r.Context(), filter, skip, take)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list declarations")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get INTRASTAT declaration by ID
// @Description Get a declaration with its items and status transition history
// @Tags Intrastat
// @Produce json
// @Param id path string true "Declaration ID" format(uuid)
// @Success 200 {object} domain.IntrastatDeclarationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id} [get]
func (h *IntrastatHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid declaration ID format")
		return
	}

	decl, err := h.intrastatService.GetDeclaration(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get declaration")
		return
	}

	respondJSON(w, http.StatusOK, decl)
}

// Create godoc
// @Summary Create INTRASTAT declaration
// @Description Open a new declaration for one year/month/direction period. At most one declaration exists per period.
// @Tags Intrastat
// @Accept json
// @Produce json
// @Param request body domain.CreateIntrastatDeclarationRequest true "Declaration data"
// @Success 201 {object} domain.IntrastatDeclarationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Declaration already exists for the period"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations [post]
func (h *IntrastatHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateIntrastatDeclarationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	decl, err := h.intrastatService.CreateDeclaration(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create declaration")
		return
	}

	w.Header().Set("Location", "/api/v1/intrastat/declarations/"+decl.ID.String())
	respondJSON(w, http.StatusCreated, decl)
}

// Delete godoc
// @Summary Delete INTRASTAT declaration
// @Description Delete a declaration and its items. Only NYITOTT declarations may be deleted.
// @Tags Intrastat
// @Param id path string true "Declaration ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Declaration is no longer deletable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id} [delete]
func (h *IntrastatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid declaration ID format")
		return
	}

	if err := h.intrastatService.DeleteDeclaration(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete declaration")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListItems godoc
// @Summary List declaration items
// @Tags Intrastat
// @Produce json
// @Param id path string true "Declaration ID" format(uuid)
// @Success 200 {array} domain.IntrastatItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id}/items [get]
func (h *IntrastatHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid declaration ID format")
		return
	}

	items, err := h.intrastatService.ListItems(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list declaration items")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// AddItem godoc
// @Summary Add declaration item
// @Description Add a commodity line to a NYITOTT declaration
// @Tags Intrastat
// @Accept json
// @Produce json
// @Param id path string true "Declaration ID" format(uuid)
// @Param request body mapper.IntrastatItemForm true "Item form data"
// @Success 201 {object} domain.IntrastatItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Declaration is no longer editable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id}/items [post]
func (h *IntrastatHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid declaration ID format")
		return
	}

	var form mapper.IntrastatItemForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, errs := mapper.MapIntrastatItemForm(form)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	item, err := h.intrastatService.AddItem(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add declaration item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// UpdateItem godoc
// @Summary Update declaration item
// @Tags Intrastat
// @Accept json
// @Produce json
// @Param id path string true "Declaration ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Param request body mapper.IntrastatItemForm true "Item form data"
// @Success 200 {object} domain.IntrastatItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Declaration is no longer editable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id}/items/{itemId} [put]
func (h *IntrastatHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid declaration ID format")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var form mapper.IntrastatItemForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, errs := mapper.MapIntrastatItemForm(form)
	if len(errs) > 0 {
		respondFieldErrors(w, errs)
		return
	}

	item, err := h.intrastatService.UpdateItem(r.Context(), id, itemID, req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update declaration item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete declaration item
// @Tags Intrastat
// @Param id path string true "Declaration ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Declaration is no longer editable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id}/items/{itemId} [delete]
func (h *IntrastatHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid declaration ID format")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	if err := h.intrastatService.DeleteItem(r.Context(), id, itemID); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete declaration item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkReady godoc
// @Summary Mark declaration ready
// @Description Close the declaration for editing. A declaration without items cannot be marked ready.
// @Tags Intrastat
// @Produce json
// @Param id path string true "Declaration ID" format(uuid)
// @Success 200 {object} domain.IntrastatDeclarationDTO
// @Failure 400 {object} domain.ErrorResponse "Declaration has no items"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id}/mark-ready [post]
func (h *IntrastatHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid declaration ID format")
		return
	}

	decl, err := h.intrastatService.MarkReady(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to mark declaration ready")
		return
	}

	respondJSON(w, http.StatusOK, decl)
}

// MarkSent godoc
// @Summary Mark declaration sent
// @Description Record that the declaration was submitted to the statistical authority
// @Tags Intrastat
// @Produce json
// @Param id path string true "Declaration ID" format(uuid)
// @Success 200 {object} domain.IntrastatDeclarationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id}/mark-sent [post]
func (h *IntrastatHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid declaration ID format")
		return
	}

	decl, err := h.intrastatService.MarkSent(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to mark declaration sent")
		return
	}

	respondJSON(w, http.StatusOK, decl)
}

// Confirm godoc
// @Summary Confirm declaration
// @Description Record the authority's acknowledgement of the declaration
// @Tags Intrastat
// @Produce json
// @Param id path string true "Declaration ID" format(uuid)
// @Success 200 {object} domain.IntrastatDeclarationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id}/confirm [post]
func (h *IntrastatHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid declaration ID format")
		return
	}

	decl, err := h.intrastatService.Confirm(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to confirm declaration")
		return
	}

	respondJSON(w, http.StatusOK, decl)
}

// GetSummary godoc
// @Summary Get declaration summary
// @Description Aggregate the item lines of one declaration
// @Tags Intrastat
// @Produce json
// @Param id path string true "Declaration ID" format(uuid)
// @Success 200 {object} domain.IntrastatSummaryDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id}/summary [get]
func (h *IntrastatHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid declaration ID format")
		return
	}

	summary, err := h.intrastatService.GetSummary(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to compute declaration summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// ExportNAV godoc
// @Summary Export declaration in NAV fixed-width format
// @Description Download the declaration as the fixed-width text file the tax authority accepts. The declaration must be KULDESRE_KESZ or KULDOTT.
// @Tags Intrastat
// @Produce text/plain
// @Param id path string true "Declaration ID" format(uuid)
// @Success 200
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Declaration is not ready for export"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id}/export/nav [get]
func (h *IntrastatHandler) ExportNAV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.exportService.ExportNAV)
}

// ExportXML godoc
// @Summary Export declaration as XML
// @Description Download the declaration as an XML document. The declaration must be KULDESRE_KESZ or KULDOTT.
// @Tags Intrastat
// @Produce application/xml
// @Param id path string true "Declaration ID" format(uuid)
// @Success 200
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Declaration is not ready for export"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /intrastat/declarations/{id}/export/xml [get]
func (h *IntrastatHandler) ExportXML(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.exportService.ExportXML)
}

func (h *IntrastatHandler) export(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) (*service.ExportFile, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid declaration ID format")
		return
	}

	file, err := fn(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to export declaration")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\""+file.FileName+"\"")
	w.Header().Set("Content-Type", file.ContentType)
	_, _ = w.Write(file.Data)
}
