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
)

func newIntrastatService(t *testing.T) *IntrastatService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewIntrastatService(
		db,
		repository.NewIntrastatRepository(db),
		repository.NewWorkflowLogRepository(db),
		zap.NewNop(),
	)
}

func germanItem(value float64) *domain.CreateIntrastatItemRequest {
	return &domain.CreateIntrastatItemRequest{
		PartnerOrszagKod:  "DE",
		Tarifaszam:        "73181568",
		StatisztikaiErtek: value,
		SzamlazottOsszeg:  value,
		NettoSuly:         10,
		Mennyiseg:         100,
		UgyletKod:         "11",
		SzallitasiMod:     "3",
	}
}

func TestIntrastatService_CreateDeclaration(t *testing.T) {
	svc := newIntrastatService(t)
	ctx := userCtx("Szabó Márta")

	t.Run("opens a declaration for the period", func(t *testing.T) {
		dto, err := svc.CreateDeclaration(ctx, &domain.CreateIntrastatDeclarationRequest{
			Ev:        2025,
			Honap:     3,
			Direction: domain.IntrastatDirectionDispatch,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.IntrastatStatusOpen, dto.Status)
		assert.Equal(t, 2025, dto.Ev)
		assert.Equal(t, 3, dto.Honap)
		require.Len(t, dto.WorkflowLog, 1)
		assert.Equal(t, string(domain.IntrastatStatusOpen), dto.WorkflowLog[0].NewStatus)
	})

	t.Run("rejects a second declaration for the same period and direction", func(t *testing.T) {
		_, err := svc.CreateDeclaration(ctx, &domain.CreateIntrastatDeclarationRequest{
			Ev:        2025,
			Honap:     3,
			Direction: domain.IntrastatDirectionDispatch,
		})
		assert.ErrorIs(t, err, ErrDuplicatePeriod)
	})

	t.Run("same period opposite direction is a separate declaration", func(t *testing.T) {
		dto, err := svc.CreateDeclaration(ctx, &domain.CreateIntrastatDeclarationRequest{
			Ev:        2025,
			Honap:     3,
			Direction: domain.IntrastatDirectionArrival,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.IntrastatDirectionArrival, dto.Direction)
	})

	t.Run("rejects invalid direction", func(t *testing.T) {
		_, err := svc.CreateDeclaration(ctx, &domain.CreateIntrastatDeclarationRequest{
			Ev:        2025,
			Honap:     4,
			Direction: "import",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestIntrastatService_Lifecycle(t *testing.T) {
	svc := newIntrastatService(t)
	ctx := userCtx("Szabó Márta")

	decl, err := svc.CreateDeclaration(ctx, &domain.CreateIntrastatDeclarationRequest{
		Ev:        2025,
		Honap:     3,
		Direction: domain.IntrastatDirectionDispatch,
	})
	require.NoError(t, err)

	t.Run("empty declaration cannot be marked ready", func(t *testing.T) {
		_, err := svc.MarkReady(ctx, decl.ID)
		assert.ErrorIs(t, err, ErrEmptyDeclaration)
	})

	t.Run("declaration with items moves forward through the statuses", func(t *testing.T) {
		_, err := svc.AddItem(ctx, decl.ID, germanItem(1000))
		require.NoError(t, err)

		ready, err := svc.MarkReady(ctx, decl.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.IntrastatStatusReady, ready.Status)

		sent, err := svc.MarkSent(ctx, decl.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.IntrastatStatusSent, sent.Status)

		confirmed, err := svc.Confirm(ctx, decl.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.IntrastatStatusConfirmed, confirmed.Status)
		require.Len(t, confirmed.WorkflowLog, 4)
	})

	t.Run("no status can be skipped", func(t *testing.T) {
		other, err := svc.CreateDeclaration(ctx, &domain.CreateIntrastatDeclarationRequest{
			Ev:        2025,
			Honap:     4,
			Direction: domain.IntrastatDirectionDispatch,
		})
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, other.ID, germanItem(500))
		require.NoError(t, err)

		_, err = svc.MarkSent(ctx, other.ID)
		assert.ErrorIs(t, err, ErrTransitionDenied)
		_, err = svc.Confirm(ctx, other.ID)
		assert.ErrorIs(t, err, ErrTransitionDenied)
	})
}

func TestIntrastatService_ItemEditing(t *testing.T) {
	svc := newIntrastatService(t)
	ctx := userCtx("Szabó Márta")

	decl, err := svc.CreateDeclaration(ctx, &domain.CreateIntrastatDeclarationRequest{
		Ev:        2025,
		Honap:     5,
		Direction: domain.IntrastatDirectionArrival,
	})
	require.NoError(t, err)

	item, err := svc.AddItem(ctx, decl.ID, germanItem(1000))
	require.NoError(t, err)

	t.Run("update replaces the line fields", func(t *testing.T) {
		req := germanItem(2500)
		req.PartnerOrszagKod = "AT"
		updated, err := svc.UpdateItem(ctx, decl.ID, item.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "AT", updated.PartnerOrszagKod)
		assert.Equal(t, 2500.0, updated.StatisztikaiErtek)
	})

	t.Run("item of another declaration is not found", func(t *testing.T) {
		other, err := svc.CreateDeclaration(ctx, &domain.CreateIntrastatDeclarationRequest{
			Ev:        2025,
			Honap:     6,
			Direction: domain.IntrastatDirectionArrival,
		})
		require.NoError(t, err)

		_, err = svc.UpdateItem(ctx, other.ID, item.ID, germanItem(1))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("items are locked once the declaration is ready", func(t *testing.T) {
		_, err := svc.MarkReady(ctx, decl.ID)
		require.NoError(t, err)

		_, err = svc.AddItem(ctx, decl.ID, germanItem(1))
		assert.ErrorIs(t, err, ErrStatusLocked)
		err = svc.DeleteItem(ctx, decl.ID, item.ID)
		assert.ErrorIs(t, err, ErrStatusLocked)
	})

	t.Run("ready declaration cannot be deleted", func(t *testing.T) {
		err := svc.DeleteDeclaration(ctx, decl.ID)
		assert.ErrorIs(t, err, ErrStatusLocked)
	})
}

func TestIntrastatService_Summary(t *testing.T) {
	svc := newIntrastatService(t)
	ctx := userCtx("Szabó Márta")

	decl, err := svc.CreateDeclaration(ctx, &domain.CreateIntrastatDeclarationRequest{
		Ev:        2025,
		Honap:     7,
		Direction: domain.IntrastatDirectionDispatch,
	})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, decl.ID, germanItem(1000))
	require.NoError(t, err)
	second := germanItem(500)
	second.NettoSuly = 4.5
	_, err = svc.AddItem(ctx, decl.ID, second)
	require.NoError(t, err)

	summary, err := svc.GetSummary(ctx, decl.ID)
	require.NoError(t, err)
	assert.Equal(t, decl.ID, summary.DeclarationID)
	assert.Equal(t, 2, summary.ItemCount)
	assert.Equal(t, 1500.0, summary.TotalStatisztikaiErtek)
	assert.Equal(t, 1500.0, summary.TotalSzamlazottOsszeg)
	assert.Equal(t, 14.5, summary.TotalNettoSuly)

	t.Run("missing declaration reports not found", func(t *testing.T) {
		_, err := svc.GetSummary(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
