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

// ReturnService handles goods return (visszáru) operations. Status changes go
// through the workflow rules; side effects run in the same database
// transaction as the status update and the log record.
type ReturnService struct {
	db              *gorm.DB
	returnRepo      *repository.ReturnRepository
	stockLevelRepo  *repository.StockLevelRepository
	workflowLogRepo *repository.WorkflowLogRepository
	partnerRepo     *repository.PartnerRepository
	logger          *zap.Logger
}

// NewReturnService creates a new return service
func NewReturnService(
	db *gorm.DB,
	returnRepo *repository.ReturnRepository,
	stockLevelRepo *repository.StockLevelRepository,
	workflowLogRepo *repository.WorkflowLogRepository,
	partnerRepo *repository.PartnerRepository,
	logger *zap.Logger,
) *ReturnService {
	return &ReturnService{
		db:              db,
		returnRepo:      returnRepo,
		stockLevelRepo:  stockLevelRepo,
		workflowLogRepo: workflowLogRepo,
		partnerRepo:     partnerRepo,
		logger:          logger,
	}
}

// GetReturn retrieves a return by ID together with its transition history
func (s *ReturnService) GetReturn(ctx context.Context, id uuid.UUID) (*domain.ReturnDTO, error) {
	ret, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get return: %w", err)
	}

	return s.toDTOWithLog(ctx, ret), nil
}

// ListReturns retrieves returns matching the filter
func (s *ReturnService) ListReturns(ctx context.Context, filter *repository.ReturnFilter, skip, take int) (*domain.ListResponse[domain.ReturnDTO], error) {
	returns, total, err := s.returnRepo.List(ctx, filter, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list returns: %w", err)
	}

	items := make([]domain.ReturnDTO, len(returns))
	for i := range returns {
		items[i] = mapper.ToReturnDTO(&returns[i])
	}

	return &domain.ListResponse[domain.ReturnDTO]{Items: items, Total: total}, nil
}

// CreateReturn registers a new goods return in PENDING status
func (s *ReturnService) CreateReturn(ctx context.Context, req *domain.CreateReturnRequest) (*domain.ReturnDTO, error) {
	if req.PartnerID != nil {
		if _, err := s.partnerRepo.GetByID(ctx, *req.PartnerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: partner %s does not exist", ErrInvalidInput, req.PartnerID)
			}
			return nil, fmt.Errorf("failed to check partner: %w", err)
		}
	}

	ret := &domain.Return{
		OrderNumber:   req.OrderNumber,
		PartnerID:     req.PartnerID,
		WarehouseCode: req.WarehouseCode,
		ProductCode:   req.ProductCode,
		Mennyiseg:     req.Mennyiseg,
		Ok:            req.Ok,
		Notes:         req.Notes,
		Status:        domain.ReturnStatusPending,
	}

	userID, userName := changedBy(ctx)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.returnRepo.WithTx(tx).Create(ctx, ret); err != nil {
			return err
		}
		return s.workflowLogRepo.WithTx(tx).RecordTransition(ctx,
			workflow.EntityReturn, ret.ID,
			"", string(domain.ReturnStatusPending),
			"", userID, userName)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create return: %w", err)
	}

	s.logger.Info("return created",
		zap.String("returnId", ret.ID.String()),
		zap.String("productCode", ret.ProductCode),
		zap.Float64("mennyiseg", ret.Mennyiseg),
	)

	return s.GetReturn(ctx, ret.ID)
}

// UpdateReturn updates the editable fields of a return. Only PENDING returns
// may be modified.
func (s *ReturnService) UpdateReturn(ctx context.Context, id uuid.UUID, req *domain.UpdateReturnRequest) (*domain.ReturnDTO, error) {
	ret, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get return: %w", err)
	}

	if ret.Status != domain.ReturnStatusPending {
		return nil, fmt.Errorf("%w: return is %s", ErrStatusLocked, ret.Status)
	}

	ret.OrderNumber = req.OrderNumber
	ret.PartnerID = req.PartnerID
	ret.WarehouseCode = req.WarehouseCode
	ret.ProductCode = req.ProductCode
	ret.Mennyiseg = req.Mennyiseg
	ret.Ok = req.Ok
	ret.Notes = req.Notes

	if err := s.returnRepo.Update(ctx, ret); err != nil {
		return nil, fmt.Errorf("failed to update return: %w", err)
	}

	return s.GetReturn(ctx, id)
}

// DeleteReturn removes a return. Only PENDING returns may be deleted.
func (s *ReturnService) DeleteReturn(ctx context.Context, id uuid.UUID) error {
	ret, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get return: %w", err)
	}

	if ret.Status != domain.ReturnStatusPending {
		return fmt.Errorf("%w: return is %s", ErrStatusLocked, ret.Status)
	}

	if err := s.returnRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete return: %w", err)
	}

	s.logger.Info("return deleted", zap.String("returnId", id.String()))
	return nil
}

// ApproveReturn transitions a pending return to APPROVED
func (s *ReturnService) ApproveReturn(ctx context.Context, id uuid.UUID) (*domain.ReturnDTO, error) {
	return s.transition(ctx, id, domain.ReturnStatusApproved, "")
}

// RejectReturn transitions a pending return to REJECTED. The reason is
// mandatory and stored on the return.
func (s *ReturnService) RejectReturn(ctx context.Context, id uuid.UUID, reason string) (*domain.ReturnDTO, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrInvalidInput)
	}
	return s.transition(ctx, id, domain.ReturnStatusRejected, reason)
}

// CompleteReturn transitions an approved return to COMPLETED and writes the
// returned quantity back to the warehouse stock level.
func (s *ReturnService) CompleteReturn(ctx context.Context, id uuid.UUID) (*domain.ReturnDTO, error) {
	return s.transition(ctx, id, domain.ReturnStatusCompleted, "")
}

// GetWorkflowLog returns the transition history of a return, oldest first
func (s *ReturnService) GetWorkflowLog(ctx context.Context, id uuid.UUID) ([]domain.WorkflowLogDTO, error) {
	if _, err := s.returnRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get return: %w", err)
	}

	logs, err := s.workflowLogRepo.GetByEntity(ctx, workflow.EntityReturn, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow log: %w", err)
	}
	return mapper.ToWorkflowLogDTOs(logs), nil
}

// transition applies one workflow edge to a return. The status update, the
// side effects and the log record commit or roll back together.
func (s *ReturnService) transition(ctx context.Context, id uuid.UUID, target domain.ReturnStatus, note string) (*domain.ReturnDTO, error) {
	ret, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get return: %w", err)
	}

	decision, err := workflow.Decide(workflow.EntityReturn, string(ret.Status), string(target))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrTransitionDenied, decision.Reason)
	}

	oldStatus := ret.Status
	userID, userName := changedBy(ctx)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, effect := range decision.SideEffects {
			switch effect {
			case workflow.SideEffectStockWriteBack:
				if _, err := s.stockLevelRepo.WithTx(tx).AdjustQuantity(ctx, ret.WarehouseCode, ret.ProductCode, ret.Mennyiseg); err != nil {
					return fmt.Errorf("failed to write back stock: %w", err)
				}
			case workflow.SideEffectStoreRejectionReason:
				ret.RejectionReason = note
			}
		}

		ret.Status = target
		if err := s.returnRepo.WithTx(tx).Update(ctx, ret); err != nil {
			return fmt.Errorf("failed to update return status: %w", err)
		}

		return s.workflowLogRepo.WithTx(tx).RecordTransition(ctx,
			workflow.EntityReturn, ret.ID,
			string(oldStatus), string(target),
			note, userID, userName)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("return status changed",
		zap.String("returnId", ret.ID.String()),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(target)),
	)

	return s.GetReturn(ctx, id)
}

func (s *ReturnService) toDTOWithLog(ctx context.Context, ret *domain.Return) *domain.ReturnDTO {
	dto := mapper.ToReturnDTO(ret)

	logs, err := s.workflowLogRepo.GetByEntity(ctx, workflow.EntityReturn, ret.ID)
	if err != nil {
		s.logger.Warn("failed to load workflow log", zap.Error(err))
	} else {
		dto.WorkflowLog = mapper.ToWorkflowLogDTOs(logs)
	}

	return &dto
}
