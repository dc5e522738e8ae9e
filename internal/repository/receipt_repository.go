package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"gorm.io/gorm"
)

type ExpectedReceiptRepository struct {
	db *gorm.DB
}

func NewExpectedReceiptRepository(db *gorm.DB) *ExpectedReceiptRepository {
	return &ExpectedReceiptRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *ExpectedReceiptRepository) WithTx(tx *gorm.DB) *ExpectedReceiptRepository {
	return &ExpectedReceiptRepository{db: tx}
}

func (r *ExpectedReceiptRepository) Create(ctx context.Context, receipt *domain.ExpectedReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *ExpectedReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExpectedReceipt, error) {
	var receipt domain.ExpectedReceipt
	err := r.db.WithContext(ctx).
		Preload("Partner").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *ExpectedReceiptRepository) Update(ctx context.Context, receipt *domain.ExpectedReceipt) error {
	return r.db.WithContext(ctx).Omit("Items", "Partner").Save(receipt).Error
}

// List returns expected receipts with an optional status filter
func (r *ExpectedReceiptRepository) List(ctx context.Context, status *domain.ExpectedReceiptStatus, skip, take int) ([]domain.ExpectedReceipt, int64, error) {
	var receipts []domain.ExpectedReceipt
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ExpectedReceipt{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Partner").
		Preload("Items").
		Order("created_at DESC").
		Offset(skip).
		Limit(take).
		Find(&receipts).Error

	return receipts, total, err
}

// CreateItem adds a product line to a receipt
func (r *ExpectedReceiptRepository) CreateItem(ctx context.Context, item *domain.ExpectedReceiptItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetItemByID loads one receipt line
func (r *ExpectedReceiptRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*domain.ExpectedReceiptItem, error) {
	var item domain.ExpectedReceiptItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem saves a receipt line
func (r *ExpectedReceiptRepository) UpdateItem(ctx context.Context, item *domain.ExpectedReceiptItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes a receipt line; the parent receipt is never deleted
// through its items.
func (r *ExpectedReceiptRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ExpectedReceiptItem{}).Error
}
