package mapper

import (
	"testing"

	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOpportunityForm(t *testing.T) {
	valid := OpportunityForm{
		Name:         "Gépsor bővítés",
		Ertek:        "1500000",
		Valoszinuseg: "60",
		Currency:     "HUF",
	}

	t.Run("valid form maps to request", func(t *testing.T) {
		req, errs := MapOpportunityForm(valid)
		require.Empty(t, errs)
		require.NotNil(t, req)
		assert.Equal(t, "Gépsor bővítés", req.Name)
		assert.Equal(t, 1500000.0, req.Ertek)
		assert.Equal(t, 60, req.Valoszinuseg)
	})

	t.Run("empty optional fields are absent, not empty strings", func(t *testing.T) {
		f := valid
		f.PartnerID = ""
		f.ExpectedCloseDate = ""
		req, errs := MapOpportunityForm(f)
		require.Empty(t, errs)
		assert.Nil(t, req.PartnerID)
		assert.Nil(t, req.ExpectedCloseDate)
	})

	t.Run("valoszinuseg above 100 is rejected without a DTO", func(t *testing.T) {
		f := valid
		f.Valoszinuseg = "150"
		req, errs := MapOpportunityForm(f)
		assert.Nil(t, req)
		assert.Contains(t, errs, "valoszinuseg")
	})

	t.Run("negative valoszinuseg is rejected", func(t *testing.T) {
		f := valid
		f.Valoszinuseg = "-1"
		req, errs := MapOpportunityForm(f)
		assert.Nil(t, req)
		assert.Contains(t, errs, "valoszinuseg")
	})

	t.Run("junk numeric input yields a field error", func(t *testing.T) {
		f := valid
		f.Ertek = "sok"
		req, errs := MapOpportunityForm(f)
		assert.Nil(t, req)
		assert.Equal(t, "must be a number", errs["ertek"])
	})

	t.Run("comma decimal separator is accepted", func(t *testing.T) {
		f := valid
		f.Ertek = "1500,5"
		req, errs := MapOpportunityForm(f)
		require.Empty(t, errs)
		assert.Equal(t, 1500.5, req.Ertek)
	})

	t.Run("unknown stage is rejected", func(t *testing.T) {
		f := valid
		f.Stage = "paused"
		req, errs := MapOpportunityForm(f)
		assert.Nil(t, req)
		assert.Contains(t, errs, "stage")
	})
}

func TestMapIntrastatItemForm(t *testing.T) {
	valid := IntrastatItemForm{
		PartnerOrszagKod:  "DE",
		Tarifaszam:        "84212300",
		StatisztikaiErtek: "1000",
		SzamlazottOsszeg:  "1100",
		NettoSuly:         "12.5",
		Mennyiseg:         "3",
	}

	t.Run("valid form maps to request", func(t *testing.T) {
		req, errs := MapIntrastatItemForm(valid)
		require.Empty(t, errs)
		require.NotNil(t, req)
		assert.Equal(t, "DE", req.PartnerOrszagKod)
		assert.Equal(t, 1000.0, req.StatisztikaiErtek)
	})

	t.Run("three-letter country code names the expected format", func(t *testing.T) {
		f := valid
		f.PartnerOrszagKod = "DEU"
		req, errs := MapIntrastatItemForm(f)
		assert.Nil(t, req)
		assert.Contains(t, errs["partnerOrszagKod"], "ISO 3166-1 alpha-2")
	})

	t.Run("lowercase country code is rejected", func(t *testing.T) {
		f := valid
		f.PartnerOrszagKod = "de"
		req, errs := MapIntrastatItemForm(f)
		assert.Nil(t, req)
		assert.Contains(t, errs["partnerOrszagKod"], "ISO 3166-1 alpha-2")
	})

	t.Run("negative statistical value is rejected", func(t *testing.T) {
		f := valid
		f.StatisztikaiErtek = "-10"
		req, errs := MapIntrastatItemForm(f)
		assert.Nil(t, req)
		assert.Contains(t, errs, "statisztikaiErtek")
	})

	t.Run("all failing fields are reported at once", func(t *testing.T) {
		f := IntrastatItemForm{PartnerOrszagKod: "x", Mennyiseg: "sok"}
		req, errs := MapIntrastatItemForm(f)
		assert.Nil(t, req)
		assert.Contains(t, errs, "partnerOrszagKod")
		assert.Contains(t, errs, "tarifaszam")
		assert.Contains(t, errs, "mennyiseg")
		assert.Contains(t, errs, "statisztikaiErtek")
	})
}

func TestMapReturnForm(t *testing.T) {
	valid := ReturnForm{
		WarehouseCode: "BP01",
		ProductCode:   "CSAVAR-M8",
		Mennyiseg:     "5",
		Ok:            "hibas",
	}

	t.Run("valid form maps to request", func(t *testing.T) {
		req, errs := MapReturnForm(valid)
		require.Empty(t, errs)
		require.NotNil(t, req)
		assert.Equal(t, "hibas", req.Ok)
		assert.Equal(t, 5.0, req.Mennyiseg)
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		f := valid
		f.Mennyiseg = "0"
		req, errs := MapReturnForm(f)
		assert.Nil(t, req)
		assert.Contains(t, errs, "mennyiseg")
	})

	t.Run("missing reason code is rejected", func(t *testing.T) {
		f := valid
		f.Ok = ""
		req, errs := MapReturnForm(f)
		assert.Nil(t, req)
		assert.Equal(t, "required", errs["ok"])
	})

	t.Run("invalid partner id is a field error", func(t *testing.T) {
		f := valid
		f.PartnerID = "not-a-uuid"
		req, errs := MapReturnForm(f)
		assert.Nil(t, req)
		assert.Contains(t, errs, "partnerId")
	})
}

func TestMapPriceListItemForm(t *testing.T) {
	t.Run("valid row maps to request", func(t *testing.T) {
		req, errs := MapPriceListItemForm(PriceListItemForm{
			ProductCode: "CSAVAR-M8",
			ProductName: "Csavar M8",
			UnitPrice:   "12,50",
			Unit:        "db",
		})
		require.Empty(t, errs)
		assert.Equal(t, 12.5, req.UnitPrice)
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		req, errs := MapPriceListItemForm(PriceListItemForm{
			ProductCode: "CSAVAR-M8",
			UnitPrice:   "-1",
		})
		assert.Nil(t, req)
		assert.Contains(t, errs, "unitPrice")
	})
}

func TestMapperTimestamps(t *testing.T) {
	// DTO timestamps are ISO 8601 with a trailing Z.
	p := &domain.Partner{}
	dto := ToPartnerDTO(p)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`, dto.CreatedAt)
}
