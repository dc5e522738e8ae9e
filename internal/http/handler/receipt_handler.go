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

type ReceiptHandler struct {
	receiptService *service.ReceiptService
	logger         *zap.Logger
}

func NewReceiptHandler(receiptService *service.ReceiptService, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		logger:         logger,
	}
}

// List godoc
// @Summary List expected receipts
// @Description Get paginated list of announced inbound deliveries
// @Tags Receipts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(VARHATO, BEERKEZETT, TOROLT)
// @Success 200 {object} domain.ListResponse[domain.ExpectedReceiptDTO]
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /receipts [get]
func (h *ReceiptHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, take := parsePagination(r)

	var status *domain.ExpectedReceiptStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.ExpectedReceiptStatus(v)
		status = &s
	}

	result, err := h.receiptService.ListReceipts(r.Context(), status, skip, take)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list receipts")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get expected receipt by ID
// @Description Get a receipt with its items and status transition history
// @Tags Receipts
// @Produce json
// @Param id path string true "Receipt ID" format(uuid)
// @Success 200 {object} domain.ExpectedReceiptDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid receipt ID format")
		return
	}

	receipt, err := h.receiptService.GetReceipt(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get receipt")
		return
	}

	respondJSON(w, http.StatusOK, receipt)
}

// Create godoc
// @Summary Create expected receipt
// @Description Register an announced inbound delivery in VARHATO status, optionally with its initial item lines
// @Tags Receipts
// @Accept json
// @Produce json
// @Param request body domain.CreateExpectedReceiptRequest true "Receipt data"
// @Success 201 {object} domain.ExpectedReceiptDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /receipts [post]
func (h *ReceiptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateExpectedReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	receipt, err := h.receiptService.CreateReceipt(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create receipt")
		return
	}

	w.Header().Set("Location", "/api/v1/receipts/"+receipt.ID.String())
	respondJSON(w, http.StatusCreated, receipt)
}

// AddItem godoc
// @Summary Add receipt item
// @Description Add a product line to a receipt still in VARHATO status
// @Tags Receipts
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID" format(uuid)
// @Param request body domain.CreateExpectedReceiptItemRequest true "Item data"
// @Success 201 {object} domain.ExpectedReceiptItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Receipt is no longer editable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /receipts/{id}/items [post]
func (h *ReceiptHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid receipt ID format")
		return
	}

	var req domain.CreateExpectedReceiptItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.receiptService.AddItem(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add receipt item")
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// UpdateItem godoc
// @Summary Update receipt item
// @Tags Receipts
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Param request body domain.CreateExpectedReceiptItemRequest true "Item data"
// @Success 200 {object} domain.ExpectedReceiptItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Receipt is no longer editable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /receipts/{id}/items/{itemId} [put]
func (h *ReceiptHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid receipt ID format")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var req domain.CreateExpectedReceiptItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.receiptService.UpdateItem(r.Context(), id, itemID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update receipt item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete receipt item
// @Tags Receipts
// @Param id path string true "Receipt ID" format(uuid)
// @Param itemId path string true "Item ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Receipt is no longer editable"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /receipts/{id}/items/{itemId} [delete]
func (h *ReceiptHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid receipt ID format")
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	if err := h.receiptService.DeleteItem(r.Context(), id, itemID); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete receipt item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Receive godoc
// @Summary Receive expected receipt
// @Description Record the arrival of the delivery. Every item line increments its warehouse stock level; the status becomes BEERKEZETT.
// @Tags Receipts
// @Produce json
// @Param id path string true "Receipt ID" format(uuid)
// @Success 200 {object} domain.ExpectedReceiptDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /receipts/{id}/receive [post]
func (h *ReceiptHandler) Receive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid receipt ID format")
		return
	}

	receipt, err := h.receiptService.ReceiveReceipt(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to receive receipt")
		return
	}

	respondJSON(w, http.StatusOK, receipt)
}

// Cancel godoc
// @Summary Cancel expected receipt
// @Description Cancel an announced delivery without stock movement
// @Tags Receipts
// @Produce json
// @Param id path string true "Receipt ID" format(uuid)
// @Success 200 {object} domain.ExpectedReceiptDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /receipts/{id}/cancel [post]
func (h *ReceiptHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid receipt ID format")
		return
	}

	receipt, err := h.receiptService.CancelReceipt(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to cancel receipt")
		return
	}

	respondJSON(w, http.StatusOK, receipt)
}
