package service

import (
	"context"
	"testing"
	"time"

	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuditLogService(t *testing.T) (*AuditLogService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop()), db
}

func recordEntry(svc *AuditLogService, userID string, action domain.AuditAction, entityType, entityID string, age time.Duration) {
	svc.Record(context.Background(), &domain.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Method:     "POST",
		Path:       "/api/v1/test",
		StatusCode: 201,
		CreatedAt:  time.Now().UTC().Add(-age),
	})
}

func TestAuditLogService_RecordAndList(t *testing.T) {
	svc, _ := newAuditLogService(t)
	ctx := context.Background()

	recordEntry(svc, "user-1", domain.AuditActionCreate, "Return", "r-1", 0)
	recordEntry(svc, "user-1", domain.AuditActionUpdate, "Return", "r-1", 0)
	recordEntry(svc, "user-2", domain.AuditActionDelete, "Partner", "p-1", 0)

	t.Run("filter by user", func(t *testing.T) {
		resp, err := svc.ListEntries(ctx, &repository.AuditLogFilter{UserID: "user-1"}, 0, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Total)
	})

	t.Run("filter by action", func(t *testing.T) {
		action := domain.AuditActionDelete
		resp, err := svc.ListEntries(ctx, &repository.AuditLogFilter{Action: &action}, 0, 20)
		require.NoError(t, err)
		require.Equal(t, int64(1), resp.Total)
		assert.Equal(t, "Partner", resp.Items[0].EntityType)
	})

	t.Run("entity trail", func(t *testing.T) {
		entries, err := svc.ListByEntity(ctx, "Return", "r-1", 50)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("single entry lookup", func(t *testing.T) {
		resp, err := svc.ListEntries(ctx, nil, 0, 1)
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)

		entry, err := svc.GetEntry(ctx, resp.Items[0].ID)
		require.NoError(t, err)
		assert.Equal(t, resp.Items[0].ID, entry.ID)
	})
}

func TestAuditLogService_RetentionCleanup(t *testing.T) {
	svc, _ := newAuditLogService(t)
	ctx := context.Background()

	recordEntry(svc, "user-1", domain.AuditActionCreate, "Return", "r-1", 100*24*time.Hour)
	recordEntry(svc, "user-1", domain.AuditActionCreate, "Return", "r-2", 10*24*time.Hour)
	recordEntry(svc, "user-1", domain.AuditActionCreate, "Return", "r-3", 0)

	removed, err := svc.CleanupOlderThan(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	resp, err := svc.ListEntries(ctx, nil, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
}
