package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/mapper"
	"github.com/merkur-erp/erp-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// OpportunityService handles CRM sales opportunity operations
type OpportunityService struct {
	opportunityRepo *repository.OpportunityRepository
	partnerRepo     *repository.PartnerRepository
	logger          *zap.Logger
}

// NewOpportunityService creates a new opportunity service
func NewOpportunityService(
	opportunityRepo *repository.OpportunityRepository,
	partnerRepo *repository.PartnerRepository,
	logger *zap.Logger,
) *OpportunityService {
	return &OpportunityService{
		opportunityRepo: opportunityRepo,
		partnerRepo:     partnerRepo,
		logger:          logger,
	}
}

// GetOpportunity retrieves an opportunity by ID
func (s *OpportunityService) GetOpportunity(ctx context.Context, id uuid.UUID) (*domain.OpportunityDTO, error) {
	opp, err := s.opportunityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	dto := mapper.ToOpportunityDTO(opp)
	return &dto, nil
}

// ListOpportunities retrieves opportunities matching the filter
func (s *OpportunityService) ListOpportunities(ctx context.Context, filter *repository.OpportunityFilter, skip, take int) (*domain.ListResponse[domain.OpportunityDTO], error) {
	opps, total, err := s.opportunityRepo.List(ctx, filter, skip, take)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}

	items := make([]domain.OpportunityDTO, len(opps))
	for i := range opps {
		items[i] = mapper.ToOpportunityDTO(&opps[i])
	}

	return &domain.ListResponse[domain.OpportunityDTO]{Items: items, Total: total}, nil
}

// CreateOpportunity creates a new sales opportunity. The creating user becomes
// the owner.
func (s *OpportunityService) CreateOpportunity(ctx context.Context, req *domain.CreateOpportunityRequest) (*domain.OpportunityDTO, error) {
	stage := req.Stage
	if stage == "" {
		stage = domain.OpportunityStageOpen
	}
	if !stage.IsValid() {
		return nil, fmt.Errorf("%w: invalid stage %q", ErrInvalidInput, stage)
	}

	closeDate, err := parseOptionalDate(req.ExpectedCloseDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.checkPartner(ctx, req.PartnerID); err != nil {
		return nil, err
	}

	opp := &domain.Opportunity{
		Name:              req.Name,
		PartnerID:         req.PartnerID,
		Ertek:             req.Ertek,
		Valoszinuseg:      req.Valoszinuseg,
		Currency:          req.Currency,
		ExpectedCloseDate: closeDate,
		Stage:             stage,
		Notes:             req.Notes,
	}
	if opp.Currency == "" {
		opp.Currency = "HUF"
	}

	if userCtx, ok := authFromContext(ctx); ok {
		opp.OwnerID = userCtx.UserID.String()
		opp.OwnerName = userCtx.DisplayName
	}

	if err := s.opportunityRepo.Create(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}

	s.logger.Info("opportunity created",
		zap.String("opportunityId", opp.ID.String()),
		zap.String("name", opp.Name),
		zap.Float64("ertek", opp.Ertek),
	)

	created, err := s.opportunityRepo.GetByID(ctx, opp.ID)
	if err != nil {
		created = opp
	}

	dto := mapper.ToOpportunityDTO(created)
	return &dto, nil
}

// UpdateOpportunity updates an existing opportunity
func (s *OpportunityService) UpdateOpportunity(ctx context.Context, id uuid.UUID, req *domain.UpdateOpportunityRequest) (*domain.OpportunityDTO, error) {
	opp, err := s.opportunityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	if req.Stage != "" && !req.Stage.IsValid() {
		return nil, fmt.Errorf("%w: invalid stage %q", ErrInvalidInput, req.Stage)
	}

	closeDate, err := parseOptionalDate(req.ExpectedCloseDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.checkPartner(ctx, req.PartnerID); err != nil {
		return nil, err
	}

	opp.Name = req.Name
	opp.PartnerID = req.PartnerID
	opp.Ertek = req.Ertek
	opp.Valoszinuseg = req.Valoszinuseg
	if req.Currency != "" {
		opp.Currency = req.Currency
	}
	opp.ExpectedCloseDate = closeDate
	if req.Stage != "" {
		opp.Stage = req.Stage
	}
	opp.Notes = req.Notes

	if err := s.opportunityRepo.Update(ctx, opp); err != nil {
		return nil, fmt.Errorf("failed to update opportunity: %w", err)
	}

	updated, err := s.opportunityRepo.GetByID(ctx, id)
	if err != nil {
		updated = opp
	}

	dto := mapper.ToOpportunityDTO(updated)
	return &dto, nil
}

// DeleteOpportunity removes an opportunity
func (s *OpportunityService) DeleteOpportunity(ctx context.Context, id uuid.UUID) error {
	if _, err := s.opportunityRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get opportunity: %w", err)
	}

	if err := s.opportunityRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}

	s.logger.Info("opportunity deleted", zap.String("opportunityId", id.String()))
	return nil
}

// GetPipelineSummary aggregates the opportunity pipeline. Open opportunities
// are weighted by their probability.
func (s *OpportunityService) GetPipelineSummary(ctx context.Context) (*domain.PipelineSummaryDTO, error) {
	summary, err := s.opportunityRepo.PipelineSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute pipeline summary: %w", err)
	}
	return summary, nil
}

func (s *OpportunityService) checkPartner(ctx context.Context, partnerID *uuid.UUID) error {
	if partnerID == nil {
		return nil
	}
	if _, err := s.partnerRepo.GetByID(ctx, *partnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: partner %s does not exist", ErrInvalidInput, partnerID)
		}
		return fmt.Errorf("failed to check partner: %w", err)
	}
	return nil
}

// parseOptionalDate converts an optional ISO 8601 date string to a time value
func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", *raw)
	}
	return &t, nil
}
