package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/mapper"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/service"
	"github.com/merkur-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIntrastatRouter(t *testing.T) chi.Router {
	t.Helper()
	db := testutil.SetupTestDB(t)
	intrastatRepo := repository.NewIntrastatRepository(db)
	svc := service.NewIntrastatService(db, intrastatRepo, repository.NewWorkflowLogRepository(db), zap.NewNop())
	exportSvc := service.NewIntrastatExportService(intrastatRepo, zap.NewNop())
	h := NewIntrastatHandler(svc, exportSvc, zap.NewNop())

	r := chi.NewRouter()
	r.Use(testUser)
	r.Route("/api/v1/intrastat/declarations", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Post("/{id}/items", h.AddItem)
		r.Put("/{id}/items/{itemId}", h.UpdateItem)
	})
	return r
}

func createDeclaration(t *testing.T, router chi.Router) domain.IntrastatDeclarationDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/intrastat/declarations", domain.CreateIntrastatDeclarationRequest{
		Ev:        2026,
		Honap:     8,
		Direction: domain.IntrastatDirectionArrival,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var dto domain.IntrastatDeclarationDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

func TestIntrastatHandler_AddItem(t *testing.T) {
	router := newIntrastatRouter(t)
	decl := createDeclaration(t, router)
	itemsPath := "/api/v1/intrastat/declarations/" + decl.ID.String() + "/items"

	t.Run("valid form item is created", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, itemsPath, mapper.IntrastatItemForm{
			PartnerOrszagKod:  "DE",
			Tarifaszam:        "72142000",
			StatisztikaiErtek: "125000,50",
			SzamlazottOsszeg:  "124000",
			NettoSuly:         "850",
			Mennyiseg:         "10",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var item domain.IntrastatItemDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
		assert.Equal(t, "DE", item.PartnerOrszagKod)
		assert.Equal(t, 125000.50, item.StatisztikaiErtek)
	})

	t.Run("lowercase country code is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, itemsPath, mapper.IntrastatItemForm{
			PartnerOrszagKod:  "de",
			Tarifaszam:        "72142000",
			StatisztikaiErtek: "125000",
			SzamlazottOsszeg:  "124000",
			NettoSuly:         "850",
			Mennyiseg:         "10",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Contains(t, apiErr.Errors["partnerOrszagKod"], "ISO 3166-1 alpha-2")
	})

	t.Run("non-alpha country code is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, itemsPath, mapper.IntrastatItemForm{
			PartnerOrszagKod:  "d1",
			Tarifaszam:        "72142000",
			StatisztikaiErtek: "125000",
			SzamlazottOsszeg:  "124000",
			NettoSuly:         "850",
			Mennyiseg:         "10",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Contains(t, apiErr.Errors, "partnerOrszagKod")
	})

	t.Run("junk numeric field is reported per field", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, itemsPath, mapper.IntrastatItemForm{
			PartnerOrszagKod:  "AT",
			Tarifaszam:        "72142000",
			StatisztikaiErtek: "sok",
			SzamlazottOsszeg:  "124000",
			NettoSuly:         "850",
			Mennyiseg:         "10",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Contains(t, apiErr.Errors, "statisztikaiErtek")
	})
}

func TestIntrastatHandler_UpdateItem(t *testing.T) {
	router := newIntrastatRouter(t)
	decl := createDeclaration(t, router)
	itemsPath := "/api/v1/intrastat/declarations/" + decl.ID.String() + "/items"

	created := doJSON(t, router, http.MethodPost, itemsPath, mapper.IntrastatItemForm{
		PartnerOrszagKod:  "SK",
		Tarifaszam:        "72142000",
		StatisztikaiErtek: "90000",
		SzamlazottOsszeg:  "90000",
		NettoSuly:         "400",
		Mennyiseg:         "5",
	})
	require.Equal(t, http.StatusCreated, created.Code)
	var item domain.IntrastatItemDTO
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &item))

	t.Run("lowercase country code is rejected on update too", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, itemsPath+"/"+item.ID.String(), mapper.IntrastatItemForm{
			PartnerOrszagKod:  "sk",
			Tarifaszam:        "72142000",
			StatisztikaiErtek: "90000",
			SzamlazottOsszeg:  "90000",
			NettoSuly:         "400",
			Mennyiseg:         "5",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Contains(t, apiErr.Errors["partnerOrszagKod"], "ISO 3166-1 alpha-2")
	})

	t.Run("valid update is persisted", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, itemsPath+"/"+item.ID.String(), mapper.IntrastatItemForm{
			PartnerOrszagKod:  "CZ",
			Tarifaszam:        "72142000",
			StatisztikaiErtek: "95000",
			SzamlazottOsszeg:  "95000",
			NettoSuly:         "410",
			Mennyiseg:         "5",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var updated domain.IntrastatItemDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "CZ", updated.PartnerOrszagKod)
	})
}
