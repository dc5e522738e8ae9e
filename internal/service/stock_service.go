package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/mapper"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockService handles warehouse stock levels and reservations. A reservation
// never changes the on-hand quantity; the decrement happens when it is
// fulfilled.
type StockService struct {
	db              *gorm.DB
	stockLevelRepo  *repository.StockLevelRepository
	reservationRepo *repository.StockReservationRepository
	workflowLogRepo *repository.WorkflowLogRepository
	logger          *zap.Logger
}

// NewStockService creates a new stock service
func NewStockService(
	db *gorm.DB,
	stockLevelRepo *repository.StockLevelRepository,
	reservationRepo *repository.StockReservationRepository,
	workflowLogRepo *repository.WorkflowLogRepository,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		db:              db,
		stockLevelRepo:  stockLevelRepo,
		reservationRepo: reservationRepo,
		workflowLogRepo: workflowLogRepo,
		logger:          logger,
	}
}

// ListStockLevels retrieves stock levels with optional warehouse/product filters
func (s *StockService) ListStockLevels(ctx context.Context, warehouseCode, productCode string, skip, take int) (*domain.ListResponse[domain.StockLevelDTO], error) {
	levels, total, err := s.stockLevelRepo.List(ctx, warehouseCode, productCode, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}

	items := make([]domain.StockLevelDTO, len(levels))
	for i := range levels {
		items[i] = mapper.ToStockLevelDTO(&levels[i])
	}

	return &domain.ListResponse[domain.StockLevelDTO]{Items: items, Total: total}, nil
}

// GetAvailableQuantity returns the unreserved quantity for one
// warehouse/product pair. A missing stock level row counts as zero.
func (s *StockService) GetAvailableQuantity(ctx context.Context, warehouseCode, productCode string) (float64, error) {
	onHand := 0.0
	level, err := s.stockLevelRepo.Get(ctx, warehouseCode, productCode)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("failed to get stock level: %w", err)
		}
	} else {
		onHand = level.Quantity
	}

	reserved, err := s.reservationRepo.ActiveReservedQuantity(ctx, warehouseCode, productCode)
	if err != nil {
		return 0, fmt.Errorf("failed to sum reservations: %w", err)
	}

	return onHand - reserved, nil
}

// GetReservation retrieves a reservation with its transition history
func (s *StockService) GetReservation(ctx context.Context, id uuid.UUID) (*domain.StockReservationDTO, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	dto := mapper.ToStockReservationDTO(res)

	logs, err := s.workflowLogRepo.GetByEntity(ctx, workflow.EntityStockReservation, res.ID)
	if err != nil {
		s.logger.Warn("failed to load workflow log", zap.Error(err))
	} else {
		dto.WorkflowLog = mapper.ToWorkflowLogDTOs(logs)
	}

	return &dto, nil
}

// ListReservations retrieves reservations with an optional status filter
func (s *StockService) ListReservations(ctx context.Context, status *domain.ReservationStatus, skip, take int) (*domain.ListResponse[domain.StockReservationDTO], error) {
	reservations, total, err := s.reservationRepo.List(ctx, status, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	items := make([]domain.StockReservationDTO, len(reservations))
	for i := range reservations {
		items[i] = mapper.ToStockReservationDTO(&reservations[i])
	}

	return &domain.ListResponse[domain.StockReservationDTO]{Items: items, Total: total}, nil
}

// CreateReservation reserves a quantity against the available (unreserved)
// stock of one warehouse/product pair.
func (s *StockService) CreateReservation(ctx context.Context, req *domain.CreateStockReservationRequest) (*domain.StockReservationDTO, error) {
	available, err := s.GetAvailableQuantity(ctx, req.WarehouseCode, req.ProductCode)
	if err != nil {
		return nil, err
	}
	if req.Mennyiseg > available {
		return nil, fmt.Errorf("%w: requested %.3f, available %.3f", ErrInsufficientStock, req.Mennyiseg, available)
	}

	res := &domain.StockReservation{
		WarehouseCode: req.WarehouseCode,
		ProductCode:   req.ProductCode,
		Mennyiseg:     req.Mennyiseg,
		OrderNumber:   req.OrderNumber,
		Status:        domain.ReservationStatusReserved,
		Notes:         req.Notes,
	}

	userID, userName := changedBy(ctx)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.reservationRepo.WithTx(tx).Create(ctx, res); err != nil {
			return err
		}
		return s.workflowLogRepo.WithTx(tx).RecordTransition(ctx,
			workflow.EntityStockReservation, res.ID,
			"", string(domain.ReservationStatusReserved),
			"", userID, userName)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.logger.Info("stock reserved",
		zap.String("reservationId", res.ID.String()),
		zap.String("warehouseCode", res.WarehouseCode),
		zap.String("productCode", res.ProductCode),
		zap.Float64("mennyiseg", res.Mennyiseg),
	)

	return s.GetReservation(ctx, res.ID)
}

// FulfillReservation commits a reservation: the reserved quantity is deducted
// from the stock level and the reservation becomes TELJESITETT.
func (s *StockService) FulfillReservation(ctx context.Context, id uuid.UUID) (*domain.StockReservationDTO, error) {
	return s.transition(ctx, id, domain.ReservationStatusFulfilled, "")
}

// ReleaseReservation frees a reservation without touching the stock level
func (s *StockService) ReleaseReservation(ctx context.Context, id uuid.UUID) (*domain.StockReservationDTO, error) {
	return s.transition(ctx, id, domain.ReservationStatusReleased, "")
}

// transition applies one workflow edge to a reservation
func (s *StockService) transition(ctx context.Context, id uuid.UUID, target domain.ReservationStatus, note string) (*domain.StockReservationDTO, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	decision, err := workflow.Decide(workflow.EntityStockReservation, string(res.Status), string(target))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrTransitionDenied, decision.Reason)
	}

	oldStatus := res.Status
	userID, userName := changedBy(ctx)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, effect := range decision.SideEffects {
			switch effect {
			case workflow.SideEffectStockCommit:
				if _, err := s.stockLevelRepo.WithTx(tx).AdjustQuantity(ctx, res.WarehouseCode, res.ProductCode, -res.Mennyiseg); err != nil {
					if errors.Is(err, repository.ErrInsufficientStock) {
						return fmt.Errorf("%w: stock level below reserved quantity", ErrInsufficientStock)
					}
					return fmt.Errorf("failed to commit stock: %w", err)
				}
			case workflow.SideEffectStockRelease:
				// Releasing only frees the reservation; nothing to do here.
			}
		}

		res.Status = target
		if err := s.reservationRepo.WithTx(tx).Update(ctx, res); err != nil {
			return fmt.Errorf("failed to update reservation status: %w", err)
		}

		return s.workflowLogRepo.WithTx(tx).RecordTransition(ctx,
			workflow.EntityStockReservation, res.ID,
			string(oldStatus), string(target),
			note, userID, userName)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation status changed",
		zap.String("reservationId", res.ID.String()),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(target)),
	)

	return s.GetReservation(ctx, id)
}
