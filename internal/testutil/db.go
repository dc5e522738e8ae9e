package testutil

import (
	"testing"

	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory SQLite database with the full
// schema migrated. Each call returns a fresh database, so tests never share
// state.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	err = db.AutoMigrate(
		&domain.Partner{},
		&domain.Opportunity{},
		&domain.Return{},
		&domain.IntrastatDeclaration{},
		&domain.IntrastatItem{},
		&domain.Document{},
		&domain.StockLevel{},
		&domain.StockReservation{},
		&domain.ExpectedReceipt{},
		&domain.ExpectedReceiptItem{},
		&domain.PriceList{},
		&domain.PriceListItem{},
		&domain.WorkflowLog{},
		&domain.AuditLog{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	return db
}

// CreatePartner inserts a partner for tests that need a foreign key target
func CreatePartner(t *testing.T, db *gorm.DB, name string) *domain.Partner {
	t.Helper()

	partner := &domain.Partner{
		Name:        name,
		CountryCode: "HU",
		TaxNumber:   "12345678-2-42",
		IsCustomer:  true,
		IsSupplier:  true,
		IsActive:    true,
	}
	require.NoError(t, db.Create(partner).Error)
	return partner
}

// CreateStockLevel inserts a stock level row with the given quantity
func CreateStockLevel(t *testing.T, db *gorm.DB, warehouseCode, productCode string, quantity float64) *domain.StockLevel {
	t.Helper()

	level := &domain.StockLevel{
		WarehouseCode: warehouseCode,
		ProductCode:   productCode,
		Quantity:      quantity,
	}
	require.NoError(t, db.Create(level).Error)
	return level
}
