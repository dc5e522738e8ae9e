package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"gorm.io/gorm"
)

// IntrastatFilter represents filter options for listing declarations
type IntrastatFilter struct {
	Ev        *int
	Honap     *int
	Direction *domain.IntrastatDirection
	Status    *domain.IntrastatStatus
}

type IntrastatRepository struct {
	db *gorm.DB
}

func NewIntrastatRepository(db *gorm.DB) *IntrastatRepository {
	return &IntrastatRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *IntrastatRepository) WithTx(tx *gorm.DB) *IntrastatRepository {
	return &IntrastatRepository{db: tx}
}

func (r *IntrastatRepository) Create(ctx context.Context, decl *domain.IntrastatDeclaration) error {
	return r.db.WithContext(ctx).Create(decl).Error
}

// GetByID loads a declaration without its items
func (r *IntrastatRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IntrastatDeclaration, error) {
	var decl domain.IntrastatDeclaration
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&decl).Error
	if err != nil {
		return nil, err
	}
	return &decl, nil
}

// GetByIDWithItems loads a declaration together with its item lines
func (r *IntrastatRepository) GetByIDWithItems(ctx context.Context, id uuid.UUID) (*domain.IntrastatDeclaration, error) {
	var decl domain.IntrastatDeclaration
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&decl).Error
	if err != nil {
		return nil, err
	}
	return &decl, nil
}

// GetByPeriod finds the declaration for one (ev, honap, direction) period
func (r *IntrastatRepository) GetByPeriod(ctx context.Context, ev, honap int, direction domain.IntrastatDirection) (*domain.IntrastatDeclaration, error) {
	var decl domain.IntrastatDeclaration
	err := r.db.WithContext(ctx).
		Where("ev = ? AND honap = ? AND direction = ?", ev, honap, direction).
		First(&decl).Error
	if err != nil {
		return nil, err
	}
	return &decl, nil
}

func (r *IntrastatRepository) Update(ctx context.Context, decl *domain.IntrastatDeclaration) error {
	return r.db.WithContext(ctx).Omit("Items").Save(decl).Error
}

// Delete removes a declaration; items are cascade-deleted with it
func (r *IntrastatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Items").Delete(&domain.IntrastatDeclaration{BaseModel: domain.BaseModel{ID: id}}).Error
}

// List returns declarations matching the filter with the total match count
func (r *IntrastatRepository) List(ctx context.Context, filter *IntrastatFilter, skip, take int) ([]domain.IntrastatDeclaration, int64, error) {
	var decls []domain.IntrastatDeclaration
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.IntrastatDeclaration{})

	if filter != nil {
		if filter.Ev != nil {
			query = query.Where("ev = ?", *filter.Ev)
		}
		if filter.Honap != nil {
			query = query.Where("honap = ?", *filter.Honap)
		}
		if filter.Direction != nil {
			query = query.Where("direction = ?", *filter.Direction)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("ev DESC, honap DESC").
		Offset(skip).
		Limit(take).
		Find(&decls).Error

	return decls, total, err
}

// CreateItem adds an item line to a declaration
func (r *IntrastatRepository) CreateItem(ctx context.Context, item *domain.IntrastatItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetItemByID loads one declaration item
func (r *IntrastatRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*domain.IntrastatItem, error) {
	var item domain.IntrastatItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem saves an item line
func (r *IntrastatRepository) UpdateItem(ctx context.Context, item *domain.IntrastatItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes an item line
func (r *IntrastatRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.IntrastatItem{}).Error
}

// ListItems returns the item lines of a declaration, oldest first
func (r *IntrastatRepository) ListItems(ctx context.Context, declarationID uuid.UUID) ([]domain.IntrastatItem, error) {
	var items []domain.IntrastatItem
	err := r.db.WithContext(ctx).
		Where("declaration_id = ?", declarationID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// CountItems returns the number of item lines of a declaration
func (r *IntrastatRepository) CountItems(ctx context.Context, declarationID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.IntrastatItem{}).
		Where("declaration_id = ?", declarationID).
		Count(&count).Error
	return count, err
}

// Summary aggregates the item lines of one declaration
func (r *IntrastatRepository) Summary(ctx context.Context, declarationID uuid.UUID) (*domain.IntrastatSummaryDTO, error) {
	decl, err := r.GetByID(ctx, declarationID)
	if err != nil {
		return nil, err
	}

	type row struct {
		Count          int64
		TotalStat      float64
		TotalSzamlazot float64
		TotalSuly      float64
	}
	var res row
	err = r.db.WithContext(ctx).Model(&domain.IntrastatItem{}).
		Select("COUNT(*) as count, COALESCE(SUM(statisztikai_ertek), 0) as total_stat, COALESCE(SUM(szamlazott_osszeg), 0) as total_szamlazot, COALESCE(SUM(netto_suly), 0) as total_suly").
		Where("declaration_id = ?", declarationID).
		Scan(&res).Error
	if err != nil {
		return nil, err
	}

	return &domain.IntrastatSummaryDTO{
		DeclarationID:          decl.ID,
		Ev:                     decl.Ev,
		Honap:                  decl.Honap,
		Status:                 decl.Status,
		ItemCount:              int(res.Count),
		TotalStatisztikaiErtek: res.TotalStat,
		TotalSzamlazottOsszeg:  res.TotalSzamlazot,
		TotalNettoSuly:         res.TotalSuly,
	}, nil
}
