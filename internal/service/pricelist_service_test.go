package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newPriceListService(t *testing.T) (*PriceListService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewPriceListService(
		repository.NewPriceListRepository(db),
		repository.NewPartnerRepository(db),
		zap.NewNop(),
	)
	return svc, db
}

func TestPriceListService_CRUD(t *testing.T) {
	svc, _ := newPriceListService(t)
	ctx := userCtx("Varga Judit")

	created, err := svc.CreatePriceList(ctx, &domain.CreatePriceListRequest{
		Name: "2025 nagyker árlista",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriceListStatusActive, created.Status)
	assert.Equal(t, "HUF", created.Currency)

	item, err := svc.AddItem(ctx, created.ID, &domain.CreatePriceListItemRequest{
		ProductCode: "CSAVAR-M8",
		ProductName: "Hatlapfejű csavar M8",
		UnitPrice:   42.50,
	})
	require.NoError(t, err)
	assert.Equal(t, "db", item.Unit)

	t.Run("archived list refuses item edits", func(t *testing.T) {
		_, err := svc.UpdatePriceList(ctx, created.ID, &domain.UpdatePriceListRequest{
			Name:   created.Name,
			Status: domain.PriceListStatusArchived,
		})
		require.NoError(t, err)

		_, err = svc.AddItem(ctx, created.ID, &domain.CreatePriceListItemRequest{
			ProductCode: "ANYA-M8",
			UnitPrice:   10,
		})
		assert.ErrorIs(t, err, ErrStatusLocked)
	})
}

func TestPriceListService_CSVRoundTrip(t *testing.T) {
	svc, _ := newPriceListService(t)
	ctx := userCtx("Varga Judit")

	list, err := svc.CreatePriceList(ctx, &domain.CreatePriceListRequest{Name: "import teszt"})
	require.NoError(t, err)

	csvBody := strings.Join([]string{
		"productCode,productName,unitPrice,unit",
		"CSAVAR-M8,Hatlapfejű csavar M8,42.50,db",
		"ANYA-M8,Hatlapú anya M8,12.00,db",
		",hiányzó cikkszám,5.00,db",
		"ROSSZ-AR,rossz ár,nem-szam,db",
	}, "\n")

	result, err := svc.ImportItemsCSV(ctx, list.ID, strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Equal(t, 5, result.Errors[1].Row)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportItemsCSV(ctx, list.ID, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "productCode,productName,unitPrice,unit", lines[0])
	assert.Contains(t, buf.String(), "CSAVAR-M8,Hatlapfejű csavar M8,42.50,db")
	assert.Contains(t, buf.String(), "ANYA-M8,Hatlapú anya M8,12.00,db")

	t.Run("missing header is rejected", func(t *testing.T) {
		_, err := svc.ImportItemsCSV(ctx, list.ID, strings.NewReader(""))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestPriceListService_SupplierLinks(t *testing.T) {
	svc, db := newPriceListService(t)
	ctx := userCtx("Varga Judit")

	list, err := svc.CreatePriceList(ctx, &domain.CreatePriceListRequest{Name: "beszállítói árlista"})
	require.NoError(t, err)

	supplier := testutil.CreatePartner(t, db, "Acél Kft.")

	customerOnly := &domain.Partner{Name: "Csak vevő Bt.", CountryCode: "HU", IsCustomer: true, IsActive: true}
	require.NoError(t, db.Create(customerOnly).Error)

	t.Run("only supplier partners can be linked", func(t *testing.T) {
		err := svc.LinkSupplier(ctx, list.ID, customerOnly.ID)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("linked supplier shows up on the partner's lists", func(t *testing.T) {
		require.NoError(t, svc.LinkSupplier(ctx, list.ID, supplier.ID))

		lists, err := svc.ListBySupplier(ctx, supplier.ID)
		require.NoError(t, err)
		require.Len(t, lists, 1)
		assert.Equal(t, list.ID, lists[0].ID)

		got, err := svc.GetPriceList(ctx, list.ID)
		require.NoError(t, err)
		require.Len(t, got.Suppliers, 1)
		assert.Equal(t, supplier.ID, got.Suppliers[0].ID)
	})

	t.Run("unlink removes the association", func(t *testing.T) {
		require.NoError(t, svc.UnlinkSupplier(ctx, list.ID, supplier.ID))

		lists, err := svc.ListBySupplier(ctx, supplier.ID)
		require.NoError(t, err)
		assert.Empty(t, lists)
	})
}
