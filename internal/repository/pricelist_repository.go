package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"gorm.io/gorm"
)

type PriceListRepository struct {
	db *gorm.DB
}

func NewPriceListRepository(db *gorm.DB) *PriceListRepository {
	return &PriceListRepository{db: db}
}

func (r *PriceListRepository) Create(ctx context.Context, list *domain.PriceList) error {
	return r.db.WithContext(ctx).Create(list).Error
}

// GetByID loads a price list without items
func (r *PriceListRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PriceList, error) {
	var list domain.PriceList
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// GetByIDWithDetails loads a price list with its items and linked suppliers
func (r *PriceListRepository) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*domain.PriceList, error) {
	var list domain.PriceList
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_code ASC")
		}).
		Preload("Suppliers").
		Where("id = ?", id).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *PriceListRepository) Update(ctx context.Context, list *domain.PriceList) error {
	return r.db.WithContext(ctx).Omit("Items", "Suppliers").Save(list).Error
}

// Delete removes a price list; items are cascade-deleted with it
func (r *PriceListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&domain.PriceList{BaseModel: domain.BaseModel{ID: id}}).Error
}

// List returns price lists with an optional status filter
func (r *PriceListRepository) List(ctx context.Context, status *domain.PriceListStatus, skip, take int) ([]domain.PriceList, int64, error) {
	var lists []domain.PriceList
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.PriceList{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("name ASC").
		Offset(skip).
		Limit(take).
		Find(&lists).Error

	return lists, total, err
}

// ListBySupplier returns the price lists linked to one supplier partner
func (r *PriceListRepository) ListBySupplier(ctx context.Context, partnerID uuid.UUID) ([]domain.PriceList, error) {
	var lists []domain.PriceList
	err := r.db.WithContext(ctx).
		Joins("JOIN price_list_suppliers pls ON pls.price_list_id = price_lists.id").
		Where("pls.partner_id = ?", partnerID).
		Order("price_lists.name ASC").
		Find(&lists).Error
	return lists, err
}

// LinkSupplier associates a supplier partner with a price list
func (r *PriceListRepository) LinkSupplier(ctx context.Context, list *domain.PriceList, partner *domain.Partner) error {
	return r.db.WithContext(ctx).Model(list).Association("Suppliers").Append(partner)
}

// UnlinkSupplier removes a supplier association
func (r *PriceListRepository) UnlinkSupplier(ctx context.Context, list *domain.PriceList, partner *domain.Partner) error {
	return r.db.WithContext(ctx).Model(list).Association("Suppliers").Delete(partner)
}

// CreateItem adds a priced product row
func (r *PriceListRepository) CreateItem(ctx context.Context, item *domain.PriceListItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// CreateItems inserts multiple rows at once (CSV import)
func (r *PriceListRepository) CreateItems(ctx context.Context, items []domain.PriceListItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// GetItemByID loads one price list row
func (r *PriceListRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*domain.PriceListItem, error) {
	var item domain.PriceListItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem saves a price list row
func (r *PriceListRepository) UpdateItem(ctx context.Context, item *domain.PriceListItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes a price list row
func (r *PriceListRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.PriceListItem{}).Error
}

// ListItems returns the rows of a price list ordered by product code
func (r *PriceListRepository) ListItems(ctx context.Context, priceListID uuid.UUID) ([]domain.PriceListItem, error) {
	var items []domain.PriceListItem
	err := r.db.WithContext(ctx).
		Where("price_list_id = ?", priceListID).
		Order("product_code ASC").
		Find(&items).Error
	return items, err
}
