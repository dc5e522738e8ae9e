package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/service"
	"go.uber.org/zap"
)

type PriceListHandler struct {
	priceListService *service.PriceListService
	logger           *zap.Logger
}

func NewPriceListHandler(priceListService *service.PriceListService, logger *zap.Logger) *PriceListHandler {
	return &PriceListHandler{
		priceListService: priceListService,
		logger:           logger,
	}
}

// List godoc
// @Summary List price lists
// @Tags PriceLists
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(ACTIVE, ARCHIVED)
// @Success 200 {object} domain.ListResponse[domain.PriceListDTO]
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists [get]
func (h *PriceListHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, take := parsePagination(r)

	var status *domain.PriceListStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.PriceListStatus(v)
		status = &s
	}

	result, err := h.priceListService.ListPriceLists(r.Context(), status, skip, take)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list price lists")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get price list by ID
// @Description Get a price list with its items and linked suppliers
// @Tags PriceLists
// @Produce json
// @Param id path string true "Price list ID" format(uuid)
// @Success 200 {object} domain.PriceListDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists/{id} [get]
func (h *PriceListHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid price list ID format")
		return
	}

	list, err := h.priceListService.GetPriceList(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get price list")
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// Create godoc
// @Summary Create price list
// @Tags PriceLists
// @Accept json
// @Produce json
// @Param request body domain.CreatePriceListRequest true "Price list data"
// @Success 201 {object} domain.PriceListDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists [post]
func (h *PriceListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePriceListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	list, err := h.priceListService.CreatePriceList(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create price list")
		return
	}

	w.Header().Set("Location", "/api/v1/price-lists/"+list.ID.String())
	respondJSON(w, http.StatusCreated, list)
}

// Update godoc
// @Summary Update price list
// @Tags PriceLists
// @Accept json
// @Produce json
// @Param id path string true "Price list ID" format(uuid)
// @Param request body domain.UpdatePriceListRequest true "Price list data"
// @Success 200 {object} domain.PriceListDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists/{id} [put]
func (h *PriceListHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid price list ID format")
		return
	}

	var req domain.UpdatePriceListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	list, err := h.priceListService.UpdatePriceList(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update price list")
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// Delete godoc
// @Summary Delete price list
// @Tags PriceLists
// @Param id path string true "Price list ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists/{id} [delete]
func (h *PriceListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid price list ID format")
		return
	}

	if err := h.priceListService.DeletePriceList(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete price list")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddItem godoc
// @Summary Add price list item
// @Tags PriceLists
// @Accept json
// @Produce json
// @Param id path string true "Price list ID" format(uuid)
// @Param request body domain.CreatePriceListItemRequest true "Item data"
// @Success 201 {object} domain.PriceListItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists/{id}/items [post]
func (h *PriceListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid price list ID format")
		return
	}

	var req domain.CreatePriceListItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.priceListService.AddItem(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add price list item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// UpdateItem godoc
// @Summary Update price list item
// @Tags PriceLists
// @Accept json
// @Produce json
// @Param id path string true "Price list ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Param request body domain.CreatePriceListItemRequest true "Item data"
// @Success 200 {object} domain.PriceListItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists/{id}/items/{itemId} [put]
func (h *PriceListHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid price list ID format")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var req domain.CreatePriceListItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.priceListService.UpdateItem(r.Context(), id, itemID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update price list item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete price list item
// @Tags PriceLists
// @Param id path string true "Price list ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists/{id}/items/{itemId} [delete]
func (h *PriceListHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid price list ID format")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	if err := h.priceListService.DeleteItem(r.Context(), id, itemID); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete price list item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportItems godoc
// @Summary Import price list items from CSV
// @Description Import product rows from an uploaded CSV file. The first row must be the header (productCode,productName,unitPrice,unit). Valid rows are inserted; invalid rows are reported per row number without failing the whole import.
// @Tags PriceLists
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Price list ID" format(uuid)
// @Param file formData file true "CSV file"
// @Success 200 {object} domain.PriceListImportResultDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists/{id}/items/import [post]
func (h *PriceListHandler) ImportItems(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid price list ID format")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	result, err := h.priceListService.ImportItemsCSV(r.Context(), id, file)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to import price list items")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ExportItems godoc
// @Summary Export price list items as CSV
// @Tags PriceLists
// @Produce text/csv
// @Param id path string true "Price list ID" format(uuid)
// @Success 200
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists/{id}/export [get]
func (h *PriceListHandler) ExportItems(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid price list ID format")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\"price-list-"+id.String()+".csv\"")
	w.Header().Set("Content-Type", "text/csv")

	if err := h.priceListService.ExportItemsCSV(r.Context(), id, w); err != nil {
		h.logger.Error("failed to export price list items",
			zap.String("price_list_id", id.String()),
			zap.Error(err))
	}
}

// ListBySupplier godoc
// @Summary List price lists of a supplier
// @Tags PriceLists
// @Produce json
// @Param partnerId path string true "Partner ID" format(uuid)
// @Success 200 {array} domain.PriceListDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /partners/{partnerId}/price-lists [get]
func (h *PriceListHandler) ListBySupplier(w http.ResponseWriter, r *http.Request) {
	partnerID, err := uuid.Parse(chi.URLParam(r, "partnerId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid partner ID format")
		return
	}

	lists, err := h.priceListService.ListBySupplier(r.Context(), partnerID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list price lists")
		return
	}

	respondJSON(w, http.StatusOK, lists)
}

// LinkSupplier godoc
// @Summary Link supplier to price list
// @Description Associate a supplier partner with a price list. The partner must be flagged as a supplier.
// @Tags PriceLists
// @Param id path string true "Price list ID" format(uuid)
// @Param partnerId path string true "Partner ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse "Partner is not a supplier"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists/{id}/suppliers/{partnerId} [post]
func (h *PriceListHandler) LinkSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid price list ID format")
		return
	}
	partnerID, err := uuid.Parse(chi.URLParam(r, "partnerId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid partner ID format")
		return
	}

	if err := h.priceListService.LinkSupplier(r.Context(), id, partnerID); err != nil {
		respondServiceError(w, h.logger, err, "Failed to link supplier")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnlinkSupplier godoc
// @Summary Unlink supplier from price list
// @Tags PriceLists
// @Param id path string true "Price list ID" format(uuid)
// @Param partnerId path string true "Partner ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /price-lists/{id}/suppliers/{partnerId} [delete]
func (h *PriceListHandler) UnlinkSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid price list ID format")
		return
	}
	partnerID, err := uuid.Parse(chi.URLParam(r, "partnerId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid partner ID format")
		return
	}

	if err := h.priceListService.UnlinkSupplier(r.Context(), id, partnerID); err != nil {
		respondServiceError(w, h.logger, err, "Failed to unlink supplier")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
