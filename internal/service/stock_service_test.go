package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newStockService(t *testing.T) (*StockService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewStockService(
		db,
		repository.NewStockLevelRepository(db),
		repository.NewStockReservationRepository(db),
		repository.NewWorkflowLogRepository(db),
		zap.NewNop(),
	)
	return svc, db
}

func TestStockService_AvailableQuantity(t *testing.T) {
	svc, db := newStockService(t)
	ctx := userCtx("Tóth Gábor")

	testutil.CreateStockLevel(t, db, "BUD1", "CSAVAR-M8", 50)

	t.Run("missing stock level counts as zero", func(t *testing.T) {
		available, err := svc.GetAvailableQuantity(ctx, "BUD1", "NINCS-ILYEN")
		require.NoError(t, err)
		assert.Equal(t, 0.0, available)
	})

	t.Run("active reservations reduce the available quantity", func(t *testing.T) {
		_, err := svc.CreateReservation(ctx, &domain.CreateStockReservationRequest{
			WarehouseCode: "BUD1",
			ProductCode:   "CSAVAR-M8",
			Mennyiseg:     20,
		})
		require.NoError(t, err)

		available, err := svc.GetAvailableQuantity(ctx, "BUD1", "CSAVAR-M8")
		require.NoError(t, err)
		assert.Equal(t, 30.0, available)
	})

	t.Run("reservation over the available quantity is refused", func(t *testing.T) {
		_, err := svc.CreateReservation(ctx, &domain.CreateStockReservationRequest{
			WarehouseCode: "BUD1",
			ProductCode:   "CSAVAR-M8",
			Mennyiseg:     31,
		})
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})
}

func TestStockService_FulfillReservation(t *testing.T) {
	svc, db := newStockService(t)
	ctx := userCtx("Tóth Gábor")

	testutil.CreateStockLevel(t, db, "BUD1", "CSAVAR-M8", 50)

	res, err := svc.CreateReservation(ctx, &domain.CreateStockReservationRequest{
		WarehouseCode: "BUD1",
		ProductCode:   "CSAVAR-M8",
		Mennyiseg:     20,
		OrderNumber:   "SO-2025-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusReserved, res.Status)

	fulfilled, err := svc.FulfillReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusFulfilled, fulfilled.Status)

	// Fulfilment deducts the reserved quantity from the on-hand stock
	var level domain.StockLevel
	require.NoError(t, db.Where("warehouse_code = ? AND product_code = ?", "BUD1", "CSAVAR-M8").First(&level).Error)
	assert.Equal(t, 30.0, level.Quantity)

	// The fulfilled reservation no longer counts against availability
	available, err := svc.GetAvailableQuantity(ctx, "BUD1", "CSAVAR-M8")
	require.NoError(t, err)
	assert.Equal(t, 30.0, available)

	t.Run("fulfilled reservation cannot transition again", func(t *testing.T) {
		_, err := svc.ReleaseReservation(ctx, res.ID)
		assert.ErrorIs(t, err, ErrTransitionDenied)
	})
}

func TestStockService_ReleaseReservation(t *testing.T) {
	svc, db := newStockService(t)
	ctx := userCtx("Tóth Gábor")

	testutil.CreateStockLevel(t, db, "BUD1", "CSAVAR-M8", 50)

	res, err := svc.CreateReservation(ctx, &domain.CreateStockReservationRequest{
		WarehouseCode: "BUD1",
		ProductCode:   "CSAVAR-M8",
		Mennyiseg:     20,
	})
	require.NoError(t, err)

	released, err := svc.ReleaseReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusReleased, released.Status)

	// Releasing never touches the stock level, only frees the quantity
	var level domain.StockLevel
	require.NoError(t, db.Where("warehouse_code = ? AND product_code = ?", "BUD1", "CSAVAR-M8").First(&level).Error)
	assert.Equal(t, 50.0, level.Quantity)

	available, err := svc.GetAvailableQuantity(ctx, "BUD1", "CSAVAR-M8")
	require.NoError(t, err)
	assert.Equal(t, 50.0, available)

	t.Run("missing reservation reports not found", func(t *testing.T) {
		_, err := svc.GetReservation(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStockService_ListReservationsByStatus(t *testing.T) {
	svc, db := newStockService(t)
	ctx := userCtx("Tóth Gábor")

	testutil.CreateStockLevel(t, db, "BUD1", "CSAVAR-M8", 100)

	first, err := svc.CreateReservation(ctx, &domain.CreateStockReservationRequest{
		WarehouseCode: "BUD1",
		ProductCode:   "CSAVAR-M8",
		Mennyiseg:     10,
	})
	require.NoError(t, err)
	_, err = svc.CreateReservation(ctx, &domain.CreateStockReservationRequest{
		WarehouseCode: "BUD1",
		ProductCode:   "CSAVAR-M8",
		Mennyiseg:     5,
	})
	require.NoError(t, err)

	_, err = svc.ReleaseReservation(ctx, first.ID)
	require.NoError(t, err)

	status := domain.ReservationStatusReserved
	resp, err := svc.ListReservations(ctx, &status, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5.0, resp.Items[0].Mennyiseg)
}
