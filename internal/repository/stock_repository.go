package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"gorm.io/gorm"
)

// StockLevelRepository manages warehouse stock levels. Quantities are only
// ever changed through AdjustQuantity so every movement goes through the
// same code path.
type StockLevelRepository struct {
	db *gorm.DB
}

func NewStockLevelRepository(db *gorm.DB) *StockLevelRepository {
	return &StockLevelRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *StockLevelRepository) WithTx(tx *gorm.DB) *StockLevelRepository {
	return &StockLevelRepository{db: tx}
}

// Get returns the stock level row for one warehouse/product pair
func (r *StockLevelRepository) Get(ctx context.Context, warehouseCode, productCode string) (*domain.StockLevel, error) {
	var level domain.StockLevel
	err := r.db.WithContext(ctx).
		Where("warehouse_code = ? AND product_code = ?", warehouseCode, productCode).
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// List returns stock levels with optional warehouse/product filters
func (r *StockLevelRepository) List(ctx context.Context, warehouseCode, productCode string, skip, take int) ([]domain.StockLevel, int64, error) {
	var levels []domain.StockLevel
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.StockLevel{})
	if warehouseCode != "" {
		query = query.Where("warehouse_code = ?", warehouseCode)
	}
	if productCode != "" {
		query = query.Where("product_code = ?", productCode)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("warehouse_code ASC, product_code ASC").
		Offset(skip).
		Limit(take).
		Find(&levels).Error

	return levels, total, err
}

// AdjustQuantity changes the on-hand quantity by delta, creating the row on
// first movement. A negative delta may not take the level below zero.
func (r *StockLevelRepository) AdjustQuantity(ctx context.Context, warehouseCode, productCode string, delta float64) (*domain.StockLevel, error) {
	level, err := r.Get(ctx, warehouseCode, productCode)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		level = &domain.StockLevel{
			WarehouseCode: warehouseCode,
			ProductCode:   productCode,
			Quantity:      0,
		}
		if err := r.db.WithContext(ctx).Create(level).Error; err != nil {
			return nil, err
		}
	}

	newQuantity := level.Quantity + delta
	if newQuantity < 0 {
		return nil, ErrInsufficientStock
	}

	level.Quantity = newQuantity
	if err := r.db.WithContext(ctx).Save(level).Error; err != nil {
		return nil, err
	}
	return level, nil
}

// ErrInsufficientStock is returned when a movement would drive a stock level
// below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// StockReservationRepository manages stock reservations
type StockReservationRepository struct {
	db *gorm.DB
}

func NewStockReservationRepository(db *gorm.DB) *StockReservationRepository {
	return &StockReservationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *StockReservationRepository) WithTx(tx *gorm.DB) *StockReservationRepository {
	return &StockReservationRepository{db: tx}
}

func (r *StockReservationRepository) Create(ctx context.Context, res *domain.StockReservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *StockReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.StockReservation, error) {
	var res domain.StockReservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *StockReservationRepository) Update(ctx context.Context, res *domain.StockReservation) error {
	return r.db.WithContext(ctx).Save(res).Error
}

// List returns reservations with an optional status filter
func (r *StockReservationRepository) List(ctx context.Context, status *domain.ReservationStatus, skip, take int) ([]domain.StockReservation, int64, error) {
	var reservations []domain.StockReservation
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.StockReservation{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(skip).
		Limit(take).
		Find(&reservations).Error

	return reservations, total, err
}

// ActiveReservedQuantity sums the open reservations for one warehouse/product
// pair. Used to compute available (unreserved) stock.
func (r *StockReservationRepository) ActiveReservedQuantity(ctx context.Context, warehouseCode, productCode string) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).Model(&domain.StockReservation{}).
		Select("COALESCE(SUM(mennyiseg), 0)").
		Where("warehouse_code = ? AND product_code = ? AND status = ?",
			warehouseCode, productCode, domain.ReservationStatusReserved).
		Scan(&sum).Error
	return sum, err
}
