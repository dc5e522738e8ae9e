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

func newOpportunityService(t *testing.T) (*OpportunityService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewOpportunityService(
		repository.NewOpportunityRepository(db),
		repository.NewPartnerRepository(db),
		zap.NewNop(),
	)
	return svc, db
}

func TestOpportunityService_Create(t *testing.T) {
	svc, db := newOpportunityService(t)
	ctx := userCtx("Kovács Béla")

	t.Run("defaults to open stage and HUF and records the owner", func(t *testing.T) {
		dto, err := svc.CreateOpportunity(ctx, &domain.CreateOpportunityRequest{
			Name:         "Raktárbővítés",
			Ertek:        5_000_000,
			Valoszinuseg: 40,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.OpportunityStageOpen, dto.Stage)
		assert.Equal(t, "HUF", dto.Currency)
		assert.Equal(t, "Kovács Béla", dto.OwnerName)
	})

	t.Run("rejects invalid stage", func(t *testing.T) {
		_, err := svc.CreateOpportunity(ctx, &domain.CreateOpportunityRequest{
			Name:  "Rossz stage",
			Stage: "pending",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects unknown partner", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.CreateOpportunity(ctx, &domain.CreateOpportunityRequest{
			Name:      "Ismeretlen partner",
			PartnerID: &missing,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("resolves the partner name", func(t *testing.T) {
		partner := testutil.CreatePartner(t, db, "Vevő Zrt.")
		dto, err := svc.CreateOpportunity(ctx, &domain.CreateOpportunityRequest{
			Name:      "Keretszerződés",
			PartnerID: &partner.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Vevő Zrt.", dto.PartnerName)
	})
}

func TestOpportunityService_PipelineSummary(t *testing.T) {
	svc, _ := newOpportunityService(t)
	ctx := userCtx("Kovács Béla")

	seed := []struct {
		ertek        float64
		valoszinuseg int
		stage        domain.OpportunityStage
	}{
		{1_000_000, 50, domain.OpportunityStageOpen},
		{2_000_000, 25, domain.OpportunityStageOpen},
		{3_000_000, 90, domain.OpportunityStageWon},
		{4_000_000, 10, domain.OpportunityStageLost},
	}
	for _, s := range seed {
		_, err := svc.CreateOpportunity(ctx, &domain.CreateOpportunityRequest{
			Name:         "pipeline",
			Ertek:        s.ertek,
			Valoszinuseg: s.valoszinuseg,
			Stage:        s.stage,
		})
		require.NoError(t, err)
	}

	summary, err := svc.GetPipelineSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.OpenCount)
	assert.Equal(t, 1, summary.WonCount)
	assert.Equal(t, 1, summary.LostCount)
	// Open totals only: 1M + 2M, weighted 500k + 500k
	assert.Equal(t, 3_000_000.0, summary.TotalValue)
	assert.Equal(t, 1_000_000.0, summary.WeightedValue)
}

func TestOpportunityService_UpdateAndFilter(t *testing.T) {
	svc, _ := newOpportunityService(t)
	ctx := userCtx("Kovács Béla")

	created, err := svc.CreateOpportunity(ctx, &domain.CreateOpportunityRequest{
		Name:         "Gyártósor csere",
		Ertek:        10_000_000,
		Valoszinuseg: 30,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateOpportunity(ctx, created.ID, &domain.UpdateOpportunityRequest{
		Name:         "Gyártósor csere",
		Ertek:        12_000_000,
		Valoszinuseg: 60,
		Stage:        domain.OpportunityStageWon,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OpportunityStageWon, updated.Stage)
	assert.Equal(t, 12_000_000.0, updated.Ertek)

	stage := domain.OpportunityStageWon
	resp, err := svc.ListOpportunities(ctx, &repository.OpportunityFilter{Stage: &stage}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)

	require.NoError(t, svc.DeleteOpportunity(ctx, created.ID))
	_, err = svc.GetOpportunity(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
