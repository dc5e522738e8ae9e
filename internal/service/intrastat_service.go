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

// IntrastatService handles monthly INTRASTAT declarations. A declaration is
// editable only while NYITOTT; the status then moves strictly forward through
// KULDESRE_KESZ and KULDOTT to VISSZAIGAZOLT.
type IntrastatService struct {
	db              *gorm.DB
	intrastatRepo   *repository.IntrastatRepository
	workflowLogRepo *repository.WorkflowLogRepository
	logger          *zap.Logger
}

// NewIntrastatService creates a new INTRASTAT service
func NewIntrastatService(
	db *gorm.DB,
	intrastatRepo *repository.IntrastatRepository,
	workflowLogRepo *repository.WorkflowLogRepository,
	logger *zap.Logger,
) *IntrastatService {
	return &IntrastatService{
		db:              db,
		intrastatRepo:   intrastatRepo,
		workflowLogRepo: workflowLogRepo,
		logger:          logger,
	}
}

// GetDeclaration retrieves a declaration with its items and transition history
func (s *IntrastatService) GetDeclaration(ctx context.Context, id uuid.UUID) (*domain.IntrastatDeclarationDTO, error) {
	decl, err := s.intrastatRepo.GetByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get declaration: %w", err)
	}

	dto := mapper.ToIntrastatDeclarationDTO(decl)

	logs, err := s.workflowLogRepo.GetByEntity(ctx, workflow.EntityIntrastatDeclaration, decl.ID)
	if err != nil {
		s.logger.Warn("failed to load workflow log", zap.Error(err))
	} else {
		dto.WorkflowLog = mapper.ToWorkflowLogDTOs(logs)
	}

	return &dto, nil
}

// ListDeclarations retrieves declarations matching the filter
func (s *IntrastatService) ListDeclarations(ctx context.Context, filter *repository.IntrastatFilter, skip, take int) (*domain.ListResponse[domain.IntrastatDeclarationDTO], error) {
	decls, total, err := s.intrastatRepo.List(ctx, filter, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list declarations: %w", err)
	}

	items := make([]domain.IntrastatDeclarationDTO, len(decls))
	for i := range decls {
		items[i] = mapper.ToIntrastatDeclarationDTO(&decls[i])
	}

	return &domain.ListResponse[domain.IntrastatDeclarationDTO]{Items: items, Total: total}, nil
}

// CreateDeclaration opens a new declaration for one (ev, honap, direction)
// period. At most one declaration exists per period.
func (s *IntrastatService) CreateDeclaration(ctx context.Context, req *domain.CreateIntrastatDeclarationRequest) (*domain.IntrastatDeclarationDTO, error) {
	if !req.Direction.IsValid() {
		return nil, fmt.Errorf("%w: invalid direction %q", ErrInvalidInput, req.Direction)
	}

	if _, err := s.intrastatRepo.GetByPeriod(ctx, req.Ev, req.Honap, req.Direction); err == nil {
		return nil, fmt.Errorf("%w: %d/%d %s", ErrDuplicatePeriod, req.Ev, req.Honap, req.Direction)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check period: %w", err)
	}

	decl := &domain.IntrastatDeclaration{
		Ev:        req.Ev,
		Honap:     req.Honap,
		Direction: req.Direction,
		Status:    domain.IntrastatStatusOpen,
		Notes:     req.Notes,
	}

	userID, userName := changedBy(ctx)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.intrastatRepo.WithTx(tx).Create(ctx, decl); err != nil {
			return err
		}
		return s.workflowLogRepo.WithTx(tx).RecordTransition(ctx,
			workflow.EntityIntrastatDeclaration, decl.ID,
			"", string(domain.IntrastatStatusOpen),
			"", userID, userName)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create declaration: %w", err)
	}

	s.logger.Info("intrastat declaration created",
		zap.String("declarationId", decl.ID.String()),
		zap.Int("ev", decl.Ev),
		zap.Int("honap", decl.Honap),
		zap.String("direction", string(decl.Direction)),
	)

	return s.GetDeclaration(ctx, decl.ID)
}

// DeleteDeclaration removes a declaration and its items. Only NYITOTT
// declarations may be deleted.
func (s *IntrastatService) DeleteDeclaration(ctx context.Context, id uuid.UUID) error {
	decl, err := s.intrastatRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get declaration: %w", err)
	}

	if decl.Status != domain.IntrastatStatusOpen {
		return fmt.Errorf("%w: declaration is %s", ErrStatusLocked, decl.Status)
	}

	if err := s.intrastatRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete declaration: %w", err)
	}

	s.logger.Info("intrastat declaration deleted", zap.String("declarationId", id.String()))
	return nil
}

// AddItem adds a commodity line to an open declaration
func (s *IntrastatService) AddItem(ctx context.Context, declarationID uuid.UUID, req *domain.CreateIntrastatItemRequest) (*domain.IntrastatItemDTO, error) {
	if _, err := s.editableDeclaration(ctx, declarationID); err != nil {
		return nil, err
	}

	item := &domain.IntrastatItem{
		DeclarationID:     declarationID,
		PartnerOrszagKod:  req.PartnerOrszagKod,
		Tarifaszam:        req.Tarifaszam,
		StatisztikaiErtek: req.StatisztikaiErtek,
		SzamlazottOsszeg:  req.SzamlazottOsszeg,
		NettoSuly:         req.NettoSuly,
		Mennyiseg:         req.Mennyiseg,
		UgyletKod:         req.UgyletKod,
		SzallitasiMod:     req.SzallitasiMod,
	}

	if err := s.intrastatRepo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create declaration item: %w", err)
	}

	dto := mapper.ToIntrastatItemDTO(item)
	return &dto, nil
}

// UpdateItem replaces the fields of one commodity line. The parent
// declaration must be NYITOTT.
func (s *IntrastatService) UpdateItem(ctx context.Context, declarationID, itemID uuid.UUID, req *domain.CreateIntrastatItemRequest) (*domain.IntrastatItemDTO, error) {
	if _, err := s.editableDeclaration(ctx, declarationID); err != nil {
		return nil, err
	}

	item, err := s.getItemOfDeclaration(ctx, declarationID, itemID)
	if err != nil {
		return nil, err
	}

	item.PartnerOrszagKod = req.PartnerOrszagKod
	item.Tarifaszam = req.Tarifaszam
	item.StatisztikaiErtek = req.StatisztikaiErtek
	item.SzamlazottOsszeg = req.SzamlazottOsszeg
	item.NettoSuly = req.NettoSuly
	item.Mennyiseg = req.Mennyiseg
	item.UgyletKod = req.UgyletKod
	item.SzallitasiMod = req.SzallitasiMod

	if err := s.intrastatRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update declaration item: %w", err)
	}

	dto := mapper.ToIntrastatItemDTO(item)
	return &dto, nil
}

// DeleteItem removes one commodity line from an open declaration
func (s *IntrastatService) DeleteItem(ctx context.Context, declarationID, itemID uuid.UUID) error {
	if _, err := s.editableDeclaration(ctx, declarationID); err != nil {
		return err
	}

	if _, err := s.getItemOfDeclaration(ctx, declarationID, itemID); err != nil {
		return err
	}

	if err := s.intrastatRepo.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete declaration item: %w", err)
	}
	return nil
}

// ListItems returns the commodity lines of a declaration
func (s *IntrastatService) ListItems(ctx context.Context, declarationID uuid.UUID) ([]domain.IntrastatItemDTO, error) {
	if _, err := s.intrastatRepo.GetByID(ctx, declarationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get declaration: %w", err)
	}

	items, err := s.intrastatRepo.ListItems(ctx, declarationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list declaration items: %w", err)
	}

	dtos := make([]domain.IntrastatItemDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToIntrastatItemDTO(&items[i])
	}
	return dtos, nil
}

// MarkReady closes the declaration for editing. A declaration without items
// cannot be marked ready.
func (s *IntrastatService) MarkReady(ctx context.Context, id uuid.UUID) (*domain.IntrastatDeclarationDTO, error) {
	count, err := s.intrastatRepo.CountItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count declaration items: %w", err)
	}
	if count == 0 {
		return nil, ErrEmptyDeclaration
	}

	return s.transition(ctx, id, domain.IntrastatStatusReady, "")
}

// MarkSent records that the declaration was submitted to the authority
func (s *IntrastatService) MarkSent(ctx context.Context, id uuid.UUID) (*domain.IntrastatDeclarationDTO, error) {
	return s.transition(ctx, id, domain.IntrastatStatusSent, "")
}

// Confirm records the authority's acknowledgement
func (s *IntrastatService) Confirm(ctx context.Context, id uuid.UUID) (*domain.IntrastatDeclarationDTO, error) {
	return s.transition(ctx, id, domain.IntrastatStatusConfirmed, "")
}

// GetSummary aggregates the item lines of one declaration
func (s *IntrastatService) GetSummary(ctx context.Context, id uuid.UUID) (*domain.IntrastatSummaryDTO, error) {
	summary, err := s.intrastatRepo.Summary(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to compute declaration summary: %w", err)
	}
	return summary, nil
}

// transition applies one workflow edge to a declaration
func (s *IntrastatService) transition(ctx context.Context, id uuid.UUID, target domain.IntrastatStatus, note string) (*domain.IntrastatDeclarationDTO, error) {
	decl, err := s.intrastatRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get declaration: %w", err)
	}

	decision, err := workflow.Decide(workflow.EntityIntrastatDeclaration, string(decl.Status), string(target))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrTransitionDenied, decision.Reason)
	}

	oldStatus := decl.Status
	userID, userName := changedBy(ctx)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		decl.Status = target
		if err := s.intrastatRepo.WithTx(tx).Update(ctx, decl); err != nil {
			return fmt.Errorf("failed to update declaration status: %w", err)
		}
		return s.workflowLogRepo.WithTx(tx).RecordTransition(ctx,
			workflow.EntityIntrastatDeclaration, decl.ID,
			string(oldStatus), string(target),
			note, userID, userName)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("intrastat declaration status changed",
		zap.String("declarationId", decl.ID.String()),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(target)),
	)

	return s.GetDeclaration(ctx, id)
}

// editableDeclaration loads a declaration and verifies it is still open for
// item editing.
func (s *IntrastatService) editableDeclaration(ctx context.Context, id uuid.UUID) (*domain.IntrastatDeclaration, error) {
	decl, err := s.intrastatRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get declaration: %w", err)
	}

	if decl.Status != domain.IntrastatStatusOpen {
		return nil, fmt.Errorf("%w: declaration is %s", ErrStatusLocked, decl.Status)
	}
	return decl, nil
}

func (s *IntrastatService) getItemOfDeclaration(ctx context.Context, declarationID, itemID uuid.UUID) (*domain.IntrastatItem, error) {
	item, err := s.intrastatRepo.GetItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get declaration item: %w", err)
	}
	if item.DeclarationID != declarationID {
		return nil, ErrNotFound
	}
	return item, nil
}
