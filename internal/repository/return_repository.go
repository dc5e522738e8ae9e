package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"gorm.io/gorm"
)

// ReturnFilter represents filter options for listing goods returns
type ReturnFilter struct {
	Status        *domain.ReturnStatus
	PartnerID     *uuid.UUID
	WarehouseCode string
	ProductCode   string
}

type ReturnRepository struct {
	db *gorm.DB
}

func NewReturnRepository(db *gorm.DB) *ReturnRepository {
	return &ReturnRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ReturnRepository) WithTx(tx *gorm.DB) *ReturnRepository {
	return &ReturnRepository{db: tx}
}

func (r *ReturnRepository) Create(ctx context.Context, ret *domain.Return) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *ReturnRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Return, error) {
	var ret domain.Return
	err := r.db.WithContext(ctx).
		Preload("Partner").
		Where("id = ?", id).
		First(&ret).Error
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *ReturnRepository) Update(ctx context.Context, ret *domain.Return) error {
	return r.db.WithContext(ctx).Save(ret).Error
}

func (r *ReturnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Return{}).Error
}

// List returns goods returns matching the filter with the total match count
func (r *ReturnRepository) List(ctx context.Context, filter *ReturnFilter, skip, take int) ([]domain.Return, int64, error) {
	var returns []domain.Return
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Return{})

	if filter != nil {
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.PartnerID != nil {
			query = query.Where("partner_id = ?", *filter.PartnerID)
		}
		if filter.WarehouseCode != "" {
			query = query.Where("warehouse_code = ?", filter.WarehouseCode)
		}
		if filter.ProductCode != "" {
			query = query.Where("product_code = ?", filter.ProductCode)
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
		Find(&returns).Error

	return returns, total, err
}
