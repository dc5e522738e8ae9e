package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"gorm.io/gorm"
)

// PartnerFilter represents filter options for listing partners
type PartnerFilter struct {
	Search     string
	IsSupplier *bool
	IsCustomer *bool
	IsActive   *bool
}

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(ctx context.Context, partner *domain.Partner) error {
	return r.db.WithContext(ctx).Create(partner).Error
}

func (r *PartnerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Partner, error) {
	var partner domain.Partner
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *PartnerRepository) Update(ctx context.Context, partner *domain.Partner) error {
	return r.db.WithContext(ctx).Save(partner).Error
}

func (r *PartnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Partner{}).Error
}

// List returns partners matching the filter with the total match count
func (r *PartnerRepository) List(ctx context.Context, filter *PartnerFilter, skip, take int) ([]domain.Partner, int64, error) {
	var partners []domain.Partner
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Partner{})

	if filter != nil {
		if filter.Search != "" {
			pattern := "%" + filter.Search + "%"
			query = query.Where("name LIKE ? OR tax_number LIKE ?", pattern, pattern)
		}
		if filter.IsSupplier != nil {
			query = query.Where("is_supplier = ?", *filter.IsSupplier)
		}
		if filter.IsCustomer != nil {
			query = query.Where("is_customer = ?", *filter.IsCustomer)
		}
		if filter.IsActive != nil {
			query = query.Where("is_active = ?", *filter.IsActive)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("name ASC").
		Offset(skip).
		Limit(take).
		Find(&partners).Error

	return partners, total, err
}
