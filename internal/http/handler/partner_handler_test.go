package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/merkur-erp/erp-api/internal/auth"
	"github.com/merkur-erp/erp-api/internal/domain"
	"github.com/merkur-erp/erp-api/internal/repository"
	"github.com/merkur-erp/erp-api/internal/service"
	"github.com/merkur-erp/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPartnerRouter(t *testing.T) chi.Router {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := service.NewPartnerService(repository.NewPartnerRepository(db), zap.NewNop())
	h := NewPartnerHandler(svc, zap.NewNop())

	r := chi.NewRouter()
	r.Use(testUser)
	r.Route("/api/v1/partners", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

// testUser stands in for the JWT middleware
func testUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.WithUserContext(r.Context(), &auth.UserContext{
			UserID:      uuid.New(),
			DisplayName: "Kiss Anna",
			Roles:       []domain.UserRoleType{domain.RoleAdmin},
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPartnerHandler_Create(t *testing.T) {
	router := newPartnerRouter(t)

	t.Run("created partner is returned with a location header", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/partners", domain.CreatePartnerRequest{
			Name:       "Acélker Kft.",
			TaxNumber:  "12345678-2-42",
			IsSupplier: true,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var dto domain.PartnerDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
		assert.Equal(t, "Acélker Kft.", dto.Name)
		assert.Equal(t, "HU", dto.CountryCode)
		assert.Equal(t, "/api/v1/partners/"+dto.ID.String(), rec.Header().Get("Location"))
	})

	t.Run("missing name fails validation", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/partners", domain.CreatePartnerRequest{
			City: "Budapest",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Contains(t, apiErr.Errors, "name")
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/partners", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPartnerHandler_GetByID(t *testing.T) {
	router := newPartnerRouter(t)

	t.Run("invalid uuid", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/partners/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing partner", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/partners/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("round trip", func(t *testing.T) {
		created := doJSON(t, router, http.MethodPost, "/api/v1/partners", domain.CreatePartnerRequest{
			Name: "Vevő Zrt.",
		})
		require.Equal(t, http.StatusCreated, created.Code)
		var dto domain.PartnerDTO
		require.NoError(t, json.Unmarshal(created.Body.Bytes(), &dto))

		rec := doJSON(t, router, http.MethodGet, "/api/v1/partners/"+dto.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.PartnerDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, dto.ID, got.ID)
	})
}

func TestPartnerHandler_ListPagination(t *testing.T) {
	router := newPartnerRouter(t)

	for _, name := range []string{"Első Kft.", "Második Bt.", "Harmadik Zrt."} {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/partners", domain.CreatePartnerRequest{Name: name})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/partners?page=2&pageSize=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ListResponse[domain.PartnerDTO]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Total)
	assert.Len(t, resp.Items, 1)

	// the previous API generation paginated with skip/take
	rec = doJSON(t, router, http.MethodGet, "/api/v1/partners?skip=2&take=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp = domain.ListResponse[domain.PartnerDTO]{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Total)
	assert.Len(t, resp.Items, 1)
}

func TestPartnerHandler_Delete(t *testing.T) {
	router := newPartnerRouter(t)

	created := doJSON(t, router, http.MethodPost, "/api/v1/partners", domain.CreatePartnerRequest{Name: "Törlendő Kft."})
	require.Equal(t, http.StatusCreated, created.Code)
	var dto domain.PartnerDTO
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &dto))

	rec := doJSON(t, router, http.MethodDelete, "/api/v1/partners/"+dto.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/partners/"+dto.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
