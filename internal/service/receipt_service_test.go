package service

import (
	"testing"

	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newReceiptService(t *testing.T) (*ReceiptService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewReceiptService(
		db,
		repository.NewExpectedReceiptRepository(db),
		repository.NewStockLevelRepository(db),
		repository.NewWorkflowLogRepository(db),
		repository.NewPartnerRepository(db),
		zap.NewNop(),
	)
	return svc, db
}

func TestReceiptService_ReceiveIncrementsStock(t *testing.T) {
	svc, db := newReceiptService(t)
	ctx := userCtx("Tóth Gábor")

	testutil.CreateStockLevel(t, db, "BUD1", "CSAVAR-M8", 10)

	created, err := svc.CreateReceipt(ctx, &domain.CreateExpectedReceiptRequest{
		WarehouseCode: "BUD1",
		Items: []domain.CreateExpectedReceiptItemRequest{
			{ProductCode: "CSAVAR-M8", Mennyiseg: 40},
			{ProductCode: "ANYA-M8", Mennyiseg: 15},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ExpectedReceiptStatusExpected, created.Status)
	require.Len(t, created.Items, 2)

	received, err := svc.ReceiveReceipt(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExpectedReceiptStatusReceived, received.Status)

	// Existing level is incremented, missing level is created
	var level domain.StockLevel
	require.NoError(t, db.Where("warehouse_code = ? AND product_code = ?", "BUD1", "CSAVAR-M8").First(&level).Error)
	assert.Equal(t, 50.0, level.Quantity)
	require.NoError(t, db.Where("warehouse_code = ? AND product_code = ?", "BUD1", "ANYA-M8").First(&level).Error)
	assert.Equal(t, 15.0, level.Quantity)

	t.Run("received receipt is terminal", func(t *testing.T) {
		_, err := svc.CancelReceipt(ctx, created.ID)
		assert.ErrorIs(t, err, ErrTransitionDenied)
	})

	t.Run("received receipt refuses item edits", func(t *testing.T) {
		_, err := svc.AddItem(ctx, created.ID, &domain.CreateExpectedReceiptItemRequest{
			ProductCode: "ALATET-M8",
			Mennyiseg:   5,
		})
		assert.ErrorIs(t, err, ErrStatusLocked)
	})
}

func TestReceiptService_CancelWithoutStockMovement(t *testing.T) {
	svc, db := newReceiptService(t)
	ctx := userCtx("Tóth Gábor")

	created, err := svc.CreateReceipt(ctx, &domain.CreateExpectedReceiptRequest{
		WarehouseCode: "BUD1",
		Items: []domain.CreateExpectedReceiptItemRequest{
			{ProductCode: "CSAVAR-M8", Mennyiseg: 40},
		},
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelReceipt(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ExpectedReceiptStatusCancelled, cancelled.Status)

	var count int64
	require.NoError(t, db.Model(&domain.StockLevel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	t.Run("cancelled receipt cannot be received", func(t *testing.T) {
		_, err := svc.ReceiveReceipt(ctx, created.ID)
		assert.ErrorIs(t, err, ErrTransitionDenied)
	})
}

func TestReceiptService_ItemEditing(t *testing.T) {
	svc, _ := newReceiptService(t)
	ctx := userCtx("Tóth Gábor")

	created, err := svc.CreateReceipt(ctx, &domain.CreateExpectedReceiptRequest{
		WarehouseCode: "BUD1",
	})
	require.NoError(t, err)

	item, err := svc.AddItem(ctx, created.ID, &domain.CreateExpectedReceiptItemRequest{
		ProductCode: "CSAVAR-M8",
		Mennyiseg:   10,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, created.ID, item.ID, &domain.CreateExpectedReceiptItemRequest{
		ProductCode: "CSAVAR-M8",
		Mennyiseg:   25,
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, updated.Mennyiseg)

	require.NoError(t, svc.DeleteItem(ctx, created.ID, item.ID))

	got, err := svc.GetReceipt(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}
