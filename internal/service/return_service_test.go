package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/auth"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newReturnService(t *testing.T) (*ReturnService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewReturnService(
		db,
		repository.NewReturnRepository(db),
		repository.NewStockLevelRepository(db),
		repository.NewWorkflowLogRepository(db),
		repository.NewPartnerRepository(db),
		zap.NewNop(),
	)
	return svc, db
}

func userCtx(name string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.New(),
		DisplayName: name,
		Roles:       []domain.UserRoleType{domain.RoleLogistics},
	})
}

func TestReturnService_Create(t *testing.T) {
	svc, db := newReturnService(t)
	ctx := userCtx("Kiss Anna")

	t.Run("creates return in pending status with initial log entry", func(t *testing.T) {
		dto, err := svc.CreateReturn(ctx, &domain.CreateReturnRequest{
			OrderNumber:   "SO-2025-0042",
			WarehouseCode: "BUD1",
			ProductCode:   "CSAVAR-M8",
			Mennyiseg:     12,
			Ok:            "serult",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ReturnStatusPending, dto.Status)
		require.Len(t, dto.WorkflowLog, 1)
		assert.Empty(t, dto.WorkflowLog[0].OldStatus)
		assert.Equal(t, string(domain.ReturnStatusPending), dto.WorkflowLog[0].NewStatus)
		assert.Equal(t, "Kiss Anna", dto.WorkflowLog[0].ChangedByName)
	})

	t.Run("rejects unknown partner reference", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.CreateReturn(ctx, &domain.CreateReturnRequest{
			PartnerID:     &missing,
			WarehouseCode: "BUD1",
			ProductCode:   "CSAVAR-M8",
			Mennyiseg:     1,
			Ok:            "serult",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("accepts existing partner", func(t *testing.T) {
		partner := testutil.CreatePartner(t, db, "Vevő Kft.")
		dto, err := svc.CreateReturn(ctx, &domain.CreateReturnRequest{
			PartnerID:     &partner.ID,
			WarehouseCode: "BUD1",
			ProductCode:   "CSAVAR-M8",
			Mennyiseg:     3,
			Ok:            "teves_szallitas",
		})
		require.NoError(t, err)
		require.NotNil(t, dto.PartnerID)
		assert.Equal(t, partner.ID, *dto.PartnerID)
	})
}

func TestReturnService_ApproveCompleteRoundTrip(t *testing.T) {
	svc, db := newReturnService(t)
	ctx := userCtx("Nagy Péter")

	testutil.CreateStockLevel(t, db, "BUD1", "CSAVAR-M8", 100)

	created, err := svc.CreateReturn(ctx, &domain.CreateReturnRequest{
		WarehouseCode: "BUD1",
		ProductCode:   "CSAVAR-M8",
		Mennyiseg:     25,
		Ok:            "serult",
	})
	require.NoError(t, err)

	approved, err := svc.ApproveReturn(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnStatusApproved, approved.Status)

	// Approval alone must not touch the stock level
	var level domain.StockLevel
	require.NoError(t, db.Where("warehouse_code = ? AND product_code = ?", "BUD1", "CSAVAR-M8").First(&level).Error)
	assert.Equal(t, 100.0, level.Quantity)

	completed, err := svc.CompleteReturn(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnStatusCompleted, completed.Status)

	// Completion writes the returned quantity back exactly once
	require.NoError(t, db.Where("warehouse_code = ? AND product_code = ?", "BUD1", "CSAVAR-M8").First(&level).Error)
	assert.Equal(t, 125.0, level.Quantity)

	// Log is ordered oldest first: PENDING, APPROVED, COMPLETED
	logs, err := svc.GetWorkflowLog(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, string(domain.ReturnStatusPending), logs[0].NewStatus)
	assert.Equal(t, string(domain.ReturnStatusApproved), logs[1].NewStatus)
	assert.Equal(t, string(domain.ReturnStatusCompleted), logs[2].NewStatus)
	assert.Equal(t, string(domain.ReturnStatusApproved), logs[2].OldStatus)

	t.Run("completed return cannot transition again", func(t *testing.T) {
		_, err := svc.ApproveReturn(ctx, created.ID)
		assert.ErrorIs(t, err, ErrTransitionDenied)
	})
}

func TestReturnService_CompleteCreatesMissingStockLevel(t *testing.T) {
	svc, db := newReturnService(t)
	ctx := userCtx("Nagy Péter")

	created, err := svc.CreateReturn(ctx, &domain.CreateReturnRequest{
		WarehouseCode: "SZEG1",
		ProductCode:   "ANYA-M8",
		Mennyiseg:     7,
		Ok:            "serult",
	})
	require.NoError(t, err)

	_, err = svc.ApproveReturn(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.CompleteReturn(ctx, created.ID)
	require.NoError(t, err)

	var level domain.StockLevel
	require.NoError(t, db.Where("warehouse_code = ? AND product_code = ?", "SZEG1", "ANYA-M8").First(&level).Error)
	assert.Equal(t, 7.0, level.Quantity)
}

func TestReturnService_Reject(t *testing.T) {
	svc, _ := newReturnService(t)
	ctx := userCtx("Nagy Péter")

	created, err := svc.CreateReturn(ctx, &domain.CreateReturnRequest{
		WarehouseCode: "BUD1",
		ProductCode:   "CSAVAR-M8",
		Mennyiseg:     5,
		Ok:            "serult",
	})
	require.NoError(t, err)

	t.Run("reason is mandatory", func(t *testing.T) {
		_, err := svc.RejectReturn(ctx, created.ID, "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejection stores the reason and is terminal", func(t *testing.T) {
		rejected, err := svc.RejectReturn(ctx, created.ID, "nem a mi termékünk")
		require.NoError(t, err)
		assert.Equal(t, domain.ReturnStatusRejected, rejected.Status)
		assert.Equal(t, "nem a mi termékünk", rejected.RejectionReason)

		_, err = svc.ApproveReturn(ctx, created.ID)
		assert.ErrorIs(t, err, ErrTransitionDenied)
	})
}

func TestReturnService_PendingOnlyEdits(t *testing.T) {
	svc, _ := newReturnService(t)
	ctx := userCtx("Nagy Péter")

	created, err := svc.CreateReturn(ctx, &domain.CreateReturnRequest{
		WarehouseCode: "BUD1",
		ProductCode:   "CSAVAR-M8",
		Mennyiseg:     5,
		Ok:            "serult",
	})
	require.NoError(t, err)

	_, err = svc.ApproveReturn(ctx, created.ID)
	require.NoError(t, err)

	t.Run("approved return cannot be updated", func(t *testing.T) {
		_, err := svc.UpdateReturn(ctx, created.ID, &domain.UpdateReturnRequest{
			WarehouseCode: "BUD1",
			ProductCode:   "CSAVAR-M8",
			Mennyiseg:     10,
			Ok:            "serult",
		})
		assert.ErrorIs(t, err, ErrStatusLocked)
	})

	t.Run("approved return cannot be deleted", func(t *testing.T) {
		err := svc.DeleteReturn(ctx, created.ID)
		assert.ErrorIs(t, err, ErrStatusLocked)
	})

	t.Run("missing return reports not found", func(t *testing.T) {
		_, err := svc.GetReturn(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReturnService_ListFilters(t *testing.T) {
	svc, _ := newReturnService(t)
	ctx := userCtx("Nagy Péter")

	for _, pc := range []string{"CSAVAR-M8", "CSAVAR-M8", "ANYA-M8"} {
		_, err := svc.CreateReturn(ctx, &domain.CreateReturnRequest{
			WarehouseCode: "BUD1",
			ProductCode:   pc,
			Mennyiseg:     1,
			Ok:            "serult",
		})
		require.NoError(t, err)
	}

	status := domain.ReturnStatusPending
	resp, err := svc.ListReturns(ctx, &repository.ReturnFilter{Status: &status, ProductCode: "CSAVAR-M8"}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Items, 2)
	for _, item := range resp.Items {
		assert.Equal(t, "CSAVAR-M8", item.ProductCode)
	}
}
