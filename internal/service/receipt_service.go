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

// ReceiptService handles expected goods receipts. Receiving a delivery
// increments the warehouse stock level once per item line, in the same
// transaction as the status change.
type ReceiptService struct {
	db              *gorm.DB
	receiptRepo     *repository.ExpectedReceiptRepository
	stockLevelRepo  *repository.StockLevelRepository
	workflowLogRepo *repository.WorkflowLogRepository
	partnerRepo     *repository.PartnerRepository
	logger          *zap.Logger
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	db *gorm.DB,
	receiptRepo *repository.ExpectedReceiptRepository,
	stockLevelRepo *repository.StockLevelRepository,
	workflowLogRepo *repository.WorkflowLogRepository,
	partnerRepo *repository.PartnerRepository,
	logger *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		db:              db,
		receiptRepo:     receiptRepo,
		stockLevelRepo:  stockLevelRepo,
		workflowLogRepo: workflowLogRepo,
		partnerRepo:     partnerRepo,
		logger:          logger,
	}
}

// GetReceipt retrieves an expected receipt with items and transition history
func (s *ReceiptService) GetReceipt(ctx context.Context, id uuid.UUID) (*domain.ExpectedReceiptDTO, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	dto := mapper.ToExpectedReceiptDTO(receipt)

	logs, err := s.workflowLogRepo.GetByEntity(ctx, workflow.EntityExpectedReceipt, receipt.ID)
	if err != nil {
		s.logger.Warn("failed to load workflow log", zap.Error(err))
	} else {
		dto.WorkflowLog = mapper.ToWorkflowLogDTOs(logs)
	}

	return &dto, nil
}

// ListReceipts retrieves expected receipts with an optional status filter
func (s *ReceiptService) ListReceipts(ctx context.Context, status *domain.ExpectedReceiptStatus, skip, take int) (*domain.ListResponse[domain.ExpectedReceiptDTO], error) {
	receipts, total, err := s.receiptRepo.List(ctx, status, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}

	items := make([]domain.ExpectedReceiptDTO, len(receipts))
	for i := range receipts {
		items[i] = mapper.ToExpectedReceiptDTO(&receipts[i])
	}

	return &domain.ListResponse[domain.ExpectedReceiptDTO]{Items: items, Total: total}, nil
}

// CreateReceipt registers an announced inbound delivery in VARHATO status,
// optionally with its initial item lines.
func (s *ReceiptService) CreateReceipt(ctx context.Context, req *domain.CreateExpectedReceiptRequest) (*domain.ExpectedReceiptDTO, error) {
	if req.PartnerID != nil {
		if _, err := s.partnerRepo.GetByID(ctx, *req.PartnerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: partner %s does not exist", ErrInvalidInput, req.PartnerID)
			}
			return nil, fmt.Errorf("failed to check partner: %w", err)
		}
	}

	expectedDate, err := parseOptionalDate(req.ExpectedDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	receipt := &domain.ExpectedReceipt{
		PartnerID:     req.PartnerID,
		WarehouseCode: req.WarehouseCode,
		ExpectedDate:  expectedDate,
		Status:        domain.ExpectedReceiptStatusExpected,
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		receipt.Items = append(receipt.Items, domain.ExpectedReceiptItem{
			ProductCode: item.ProductCode,
			Mennyiseg:   item.Mennyiseg,
		})
	}

	userID, userName := changedBy(ctx)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.receiptRepo.WithTx(tx).Create(ctx, receipt); err != nil {
			return err
		}
		return s.workflowLogRepo.WithTx(tx).RecordTransition(ctx,
			workflow.EntityExpectedReceipt, receipt.ID,
			"", string(domain.ExpectedReceiptStatusExpected),
			"", userID, userName)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt: %w", err)
	}

	s.logger.Info("expected receipt created",
		zap.String("receiptId", receipt.ID.String()),
		zap.String("warehouseCode", receipt.WarehouseCode),
		zap.Int("items", len(receipt.Items)),
	)

	return s.GetReceipt(ctx, receipt.ID)
}

// AddItem adds a product line to a receipt still in VARHATO status
func (s *ReceiptService) AddItem(ctx context.Context, receiptID uuid.UUID, req *domain.CreateExpectedReceiptItemRequest) (*domain.ExpectedReceiptItemDTO, error) {
	if _, err := s.editableReceipt(ctx, receiptID); err != nil {
		return nil, err
	}

	item := &domain.ExpectedReceiptItem{
		ReceiptID:   receiptID,
		ProductCode: req.ProductCode,
		Mennyiseg:   req.Mennyiseg,
	}

	if err := s.receiptRepo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create receipt item: %w", err)
	}

	dto := mapper.ToExpectedReceiptItemDTO(item)
	return &dto, nil
}

// UpdateItem replaces the fields of one receipt line. The parent receipt must
// be VARHATO.
func (s *ReceiptService) UpdateItem(ctx context.Context, receiptID, itemID uuid.UUID, req *domain.CreateExpectedReceiptItemRequest) (*domain.ExpectedReceiptItemDTO, error) {
	if _, err := s.editableReceipt(ctx, receiptID); err != nil {
		return nil, err
	}

	item, err := s.getItemOfReceipt(ctx, receiptID, itemID)
	if err != nil {
		return nil, err
	}

	item.ProductCode = req.ProductCode
	item.Mennyiseg = req.Mennyiseg

	if err := s.receiptRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update receipt item: %w", err)
	}

	dto := mapper.ToExpectedReceiptItemDTO(item)
	return &dto, nil
}

// DeleteItem removes one line from a receipt still in VARHATO status
func (s *ReceiptService) DeleteItem(ctx context.Context, receiptID, itemID uuid.UUID) error {
	if _, err := s.editableReceipt(ctx, receiptID); err != nil {
		return err
	}

	if _, err := s.getItemOfReceipt(ctx, receiptID, itemID); err != nil {
		return err
	}

	if err := s.receiptRepo.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete receipt item: %w", err)
	}
	return nil
}

// ReceiveReceipt records the arrival of the delivery. Every item line
// increments its warehouse stock level; the status becomes BEERKEZETT.
func (s *ReceiptService) ReceiveReceipt(ctx context.Context, id uuid.UUID) (*domain.ExpectedReceiptDTO, error) {
	return s.transition(ctx, id, domain.ExpectedReceiptStatusReceived, "")
}

// CancelReceipt cancels an announced delivery without stock movement
func (s *ReceiptService) CancelReceipt(ctx context.Context, id uuid.UUID) (*domain.ExpectedReceiptDTO, error) {
	return s.transition(ctx, id, domain.ExpectedReceiptStatusCancelled, "")
}

// transition applies one workflow edge to a receipt
func (s *ReceiptService) transition(ctx context.Context, id uuid.UUID, target domain.ExpectedReceiptStatus, note string) (*domain.ExpectedReceiptDTO, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	decision, err := workflow.Decide(workflow.EntityExpectedReceipt, string(receipt.Status), string(target))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrTransitionDenied, decision.Reason)
	}

	oldStatus := receipt.Status
	userID, userName := changedBy(ctx)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, effect := range decision.SideEffects {
			if effect != workflow.SideEffectStockReceipt {
				continue
			}
			for _, item := range receipt.Items {
				if _, err := s.stockLevelRepo.WithTx(tx).AdjustQuantity(ctx, receipt.WarehouseCode, item.ProductCode, item.Mennyiseg); err != nil {
					return fmt.Errorf("failed to book received stock: %w", err)
				}
			}
		}

		receipt.Status = target
		if err := s.receiptRepo.WithTx(tx).Update(ctx, receipt); err != nil {
			return fmt.Errorf("failed to update receipt status: %w", err)
		}

		return s.workflowLogRepo.WithTx(tx).RecordTransition(ctx,
			workflow.EntityExpectedReceipt, receipt.ID,
			string(oldStatus), string(target),
			note, userID, userName)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("receipt status changed",
		zap.String("receiptId", receipt.ID.String()),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(target)),
	)

	return s.GetReceipt(ctx, id)
}

// editableReceipt loads a receipt and verifies its lines may still be edited
func (s *ReceiptService) editableReceipt(ctx context.Context, id uuid.UUID) (*domain.ExpectedReceipt, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	if receipt.Status != domain.ExpectedReceiptStatusExpected {
		return nil, fmt.Errorf("%w: receipt is %s", ErrStatusLocked, receipt.Status)
	}
	return receipt, nil
}

func (s *ReceiptService) getItemOfReceipt(ctx context.Context, receiptID, itemID uuid.UUID) (*domain.ExpectedReceiptItem, error) {
	item, err := s.receiptRepo.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get receipt item: %w", err)
	}
	if item.ReceiptID != receiptID {
		return nil, ErrNotFound
	}
	return item, nil
}
