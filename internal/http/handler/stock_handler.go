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

type StockHandler struct {
	stockService *service.StockService
	logger       *zap.Logger
}

func NewStockHandler(stockService *service.StockService, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		logger:       logger,
	}
}

// ListLevels godoc
// @Summary List stock levels
// @Description Get paginated warehouse stock levels with optional filters
// @Tags Stock
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param warehouseCode query string false "Filter by warehouse code"
// @Param productCode query string false "Filter by product code"
// @Success 200 {object} domain.ListResponse[domain.StockLevelDTO]
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock/levels [get]
func (h *StockHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	skip, take := parsePagination(r)

	result, err := h.stockService.ListStockLevels(r.Context(),
		r.URL.Query().Get("warehouseCode"),
		r.URL.Query().Get("productCode"),
		skip, take)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list stock levels")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetAvailable godoc
// @Summary Get available quantity
// @Description Get the unreserved quantity for one warehouse/product pair. A missing stock level counts as zero.
// @Tags Stock
// @Produce json
// @Param warehouseCode query string true "Warehouse code"
// @Param productCode query string true "Product code"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock/available [get]
func (h *StockHandler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	warehouseCode := r.URL.Query().Get("warehouseCode")
	productCode := r.URL.Query().Get("productCode")
	if warehouseCode == "" || productCode == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameters 'warehouseCode' and 'productCode' are required")
		return
	}

	available, err := h.stockService.GetAvailableQuantity(r.Context(), warehouseCode, productCode)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to compute available quantity")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"warehouseCode": warehouseCode,
		"productCode":   productCode,
		"available":     available,
	})
}

// ListReservations godoc
// @Summary List stock reservations
// @Tags Stock
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param status query string false "Filter by status" Enums(FOGLALT, TELJESITETT, FELOLDOTT)
// @Success 200 {object} domain.ListResponse[domain.StockReservationDTO]
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock/reservations [get]
func (h *StockHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	skip, take := parsePagination(r)

	var status *domain.ReservationStatus
	if v := r.URL.Query().Get("status"); v != "" {
		s := domain.ReservationStatus(v)
		status = &s
	}

	result, err := h.stockService.ListReservations(r.Context(), status, skip, take)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list reservations")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetReservation godoc
// @Summary Get stock reservation by ID
// @Tags Stock
// @Produce json
// @Param id path string true "Reservation ID" format(uuid)
// @Success 200 {object} domain.StockReservationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock/reservations/{id} [get]
func (h *StockHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	res, err := h.stockService.GetReservation(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get reservation")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// CreateReservation godoc
// @Summary Create stock reservation
// @Description Reserve a quantity against the available (unreserved) stock of one warehouse/product pair
// @Tags Stock
// @Accept json
// @Produce json
// @Param request body domain.CreateStockReservationRequest true "Reservation data"
// @Success 201 {object} domain.StockReservationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Insufficient available stock"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock/reservations [post]
func (h *StockHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateStockReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	res, err := h.stockService.CreateReservation(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create reservation")
		return
	}

	w.Header().Set("Location", "/api/v1/stock/reservations/"+res.ID.String())
	respondJSON(w, http.StatusCreated, res)
}

// FulfillReservation godoc
// @Summary Fulfill stock reservation
// @Description Commit the reservation: the reserved quantity is deducted from the stock level and the reservation becomes TELJESITETT
// @Tags Stock
// @Produce json
// @Param id path string true "Reservation ID" format(uuid)
// @Success 200 {object} domain.StockReservationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed or stock below reserved quantity"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock/reservations/{id}/fulfill [post]
func (h *StockHandler) FulfillReservation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	res, err := h.stockService.FulfillReservation(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to fulfill reservation")
		return
	}

	respondJSON(w, http.StatusOK, res)
}

// ReleaseReservation godoc
// @Summary Release stock reservation
// @Description Free the reservation without touching the stock level
// @Tags Stock
// @Produce json
// @Param id path string true "Reservation ID" format(uuid)
// @Success 200 {object} domain.StockReservationDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /stock/reservations/{id}/release [post]
func (h *StockHandler) ReleaseReservation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	res, err := h.stockService.ReleaseReservation(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to release reservation")
		return
	}

	respondJSON(w, http.StatusOK, res)
}
