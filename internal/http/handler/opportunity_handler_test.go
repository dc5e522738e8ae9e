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

func newOpportunityRouter(t *testing.T) chi.Router {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := service.NewOpportunityService(
		repository.NewOpportunityRepository(db),
		repository.NewPartnerRepository(db),
		zap.NewNop(),
	)
	h := NewOpportunityHandler(svc, zap.NewNop())

	r := chi.NewRouter()
	r.Use(testUser)
	r.Route("/api/v1/opportunities", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
	})
	return r
}

func TestOpportunityHandler_CreateForm(t *testing.T) {
	router := newOpportunityRouter(t)

	t.Run("string form fields are converted", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/opportunities", mapper.OpportunityForm{
			Name:         "Acélszerkezet projekt",
			Ertek:        "1500000,50",
			Valoszinuseg: "60",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var dto domain.OpportunityDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Equal(t, 1500000.50, dto.Ertek)
		assert.Equal(t, 60, dto.Valoszinuseg)
		assert.Equal(t, "/api/v1/opportunities/"+dto.ID.String(), rec.Header().Get("Location"))
	})

	t.Run("probability outside 0-100 is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/opportunities", mapper.OpportunityForm{
			Name:         "Rossz esély",
			Ertek:        "1000",
			Valoszinuseg: "150",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Contains(t, apiErr.Errors, "valoszinuseg")
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/opportunities", mapper.OpportunityForm{
			Ertek:        "1000",
			Valoszinuseg: "50",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Contains(t, apiErr.Errors, "name")
	})
}

func TestOpportunityHandler_UpdateForm(t *testing.T) {
	router := newOpportunityRouter(t)

	created := doJSON(t, router, http.MethodPost, "/api/v1/opportunities", mapper.OpportunityForm{
		Name:         "Csarnoképítés",
		Ertek:        "8000000",
		Valoszinuseg: "40",
	})
	require.Equal(t, http.StatusCreated, created.Code)
	var dto domain.OpportunityDTO
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &dto))

	t.Run("invalid number is reported per field", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/v1/opportunities/"+dto.ID.String(), mapper.OpportunityForm{
			Name:         "Csarnoképítés",
			Ertek:        "sok",
			Valoszinuseg: "40",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Contains(t, apiErr.Errors, "ertek")
	})

	t.Run("valid form update is persisted", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/v1/opportunities/"+dto.ID.String(), mapper.OpportunityForm{
			Name:         "Csarnoképítés II. ütem",
			Ertek:        "9500000",
			Valoszinuseg: "55",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var updated domain.OpportunityDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Csarnoképítés II. ütem", updated.Name)
		assert.Equal(t, 9500000.0, updated.Ertek)
		assert.Equal(t, 55, updated.Valoszinuseg)
	})
}
