package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"gorm.io/gorm"
)

// OpportunityFilter represents filter options for listing opportunities
type OpportunityFilter struct {
	Stage     *domain.OpportunityStage
	PartnerID *uuid.UUID
	Search    string
}

type OpportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) *OpportunityRepository {
	return &OpportunityRepository{db: db}
}

func (r *OpportunityRepository) Create(ctx context.Context, opp *domain.Opportunity) error {
	return r.db.WithContext(ctx).Create(opp).Error
}

func (r *OpportunityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	err := r.db.WithContext(ctx).
		Preload("Partner").
		Where("id = ?", id).
		First(&opp).Error
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

func (r *OpportunityRepository) Update(ctx context.Context, opp *domain.Opportunity) error {
	return r.db.WithContext(ctx).Save(opp).Error
}

func (r *OpportunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Opportunity{}).Error
}

// List returns opportunities matching the filter with the total match count
func (r *OpportunityRepository) List(ctx context.Context, filter *OpportunityFilter, skip, take int) ([]domain.Opportunity, int64, error) {
	var opps []domain.Opportunity
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Opportunity{})

	if filter != nil {
		if filter.Stage != nil {
			query = query.Where("stage = ?", *filter.Stage)
		}
		if filter.PartnerID != nil {
			query = query.Where("partner_id = ?", *filter.PartnerID)
		}
		if filter.Search != "" {
			query = query.Where("name LIKE ?", "%"+filter.Search+"%")
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Partner").
		Order("created_at DESC").
		Offset(skip).
		Limit(take).
		Find(&opps).Error

	return opps, total, err
}

// PipelineSummary aggregates the pipeline per stage. The weighted value of
// open opportunities is Σ ertek * valoszinuseg / 100.
func (r *OpportunityRepository) PipelineSummary(ctx context.Context) (*domain.PipelineSummaryDTO, error) {
	type row struct {
		Stage    domain.OpportunityStage
		Count    int64
		Total    float64
		Weighted float64
	}
	var rows []row

	err := r.db.WithContext(ctx).Model(&domain.Opportunity{}).
		Select("stage, COUNT(*) as count, COALESCE(SUM(ertek), 0) as total, COALESCE(SUM(ertek * valoszinuseg / 100.0), 0) as weighted").
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &domain.PipelineSummaryDTO{}
	for _, rr := range rows {
		switch rr.Stage {
		case domain.OpportunityStageOpen:
			summary.OpenCount = int(rr.Count)
			summary.TotalValue = rr.Total
			summary.WeightedValue = rr.Weighted
		case domain.OpportunityStageWon:
			summary.WonCount = int(rr.Count)
		case domain.OpportunityStageLost:
			summary.LostCount = int(rr.Count)
		}
	}
	return summary, nil
}
