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

func newPartnerService(t *testing.T) *PartnerService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewPartnerService(repository.NewPartnerRepository(db), zap.NewNop())
}

func TestPartnerService_CRUD(t *testing.T) {
	svc := newPartnerService(t)
	ctx := userCtx("Kiss Anna")

	created, err := svc.CreatePartner(ctx, &domain.CreatePartnerRequest{
		Name:       "Acélker Kft.",
		TaxNumber:  "12345678-2-42",
		City:       "Budapest",
		IsSupplier: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "HU", created.CountryCode)
	assert.True(t, created.IsActive)

	updated, err := svc.UpdatePartner(ctx, created.ID, &domain.UpdatePartnerRequest{
		Name:       "Acélker Zrt.",
		TaxNumber:  created.TaxNumber,
		City:       "Budapest",
		IsSupplier: true,
		IsCustomer: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acélker Zrt.", updated.Name)
	assert.True(t, updated.IsCustomer)

	require.NoError(t, svc.DeletePartner(ctx, created.ID))
	_, err = svc.GetPartner(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("operations on a missing partner report not found", func(t *testing.T) {
		_, err := svc.UpdatePartner(ctx, uuid.New(), &domain.UpdatePartnerRequest{Name: "x"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, svc.DeletePartner(ctx, uuid.New()), ErrNotFound)
	})
}

func TestPartnerService_ListFilters(t *testing.T) {
	svc := newPartnerService(t)
	ctx := userCtx("Kiss Anna")

	seed := []domain.CreatePartnerRequest{
		{Name: "Acélker Kft.", IsSupplier: true},
		{Name: "Budapesti Vevő Bt.", IsCustomer: true},
		{Name: "Acél és Vas Zrt.", IsSupplier: true, IsCustomer: true},
	}
	for i := range seed {
		_, err := svc.CreatePartner(ctx, &seed[i])
		require.NoError(t, err)
	}

	t.Run("search matches name substrings", func(t *testing.T) {
		resp, err := svc.ListPartners(ctx, &repository.PartnerFilter{Search: "Acél"}, 0, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Total)
	})

	t.Run("supplier flag filter", func(t *testing.T) {
		isSupplier := true
		resp, err := svc.ListPartners(ctx, &repository.PartnerFilter{IsSupplier: &isSupplier}, 0, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Total)
	})

	t.Run("pagination caps the page", func(t *testing.T) {
		resp, err := svc.ListPartners(ctx, &repository.PartnerFilter{}, 0, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Total)
		assert.Len(t, resp.Items, 2)
	})
}
