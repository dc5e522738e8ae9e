package query

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery(t *testing.T) {
	t.Run("omits nil and empty values", func(t *testing.T) {
		var namePtr *string
		q := BuildQuery(map[string]any{
			"status":    "PENDING",
			"partnerId": nil,
			"name":      namePtr,
			"search":    "",
			"page":      1,
			"pageSize":  50,
		})

		assert.Equal(t, "page=1&pageSize=50&status=PENDING", q)
	})

	t.Run("never emits a literal null", func(t *testing.T) {
		q := BuildQuery(map[string]any{
			"a": nil,
			"b": (*int)(nil),
			"c": "x",
		})
		assert.NotContains(t, q, "null")
		assert.Equal(t, "c=x", q)
	})

	t.Run("dereferences non-nil pointers", func(t *testing.T) {
		name := "csavar"
		q := BuildQuery(map[string]any{"name": &name})
		assert.Equal(t, "name=csavar", q)
	})

	t.Run("escapes reserved characters", func(t *testing.T) {
		q := BuildQuery(map[string]any{"search": "a&b=c"})
		assert.Equal(t, "search=a%26b%3Dc", q)
	})

	t.Run("keys are sorted for determinism", func(t *testing.T) {
		q := BuildQuery(map[string]any{"z": 1, "a": 2, "m": 3})
		assert.True(t, strings.Index(q, "a=") < strings.Index(q, "m="))
		assert.True(t, strings.Index(q, "m=") < strings.Index(q, "z="))
	})

	t.Run("formats numbers and bools", func(t *testing.T) {
		q := BuildQuery(map[string]any{
			"take":     int64(10),
			"min":      12.5,
			"archived": false,
		})
		assert.Equal(t, "archived=false&min=12.5&take=10", q)
	})
}

func TestParseListParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/returns", nil)
		p := ParseListParams(r)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, DefaultPageSize, p.PageSize)
		assert.Equal(t, 0, p.Offset())
	})

	t.Run("explicit window", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/returns?page=3&pageSize=10", nil)
		p := ParseListParams(r)
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 10, p.PageSize)
		assert.Equal(t, 20, p.Offset())
	})

	t.Run("page size is capped", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/returns?pageSize=100000", nil)
		p := ParseListParams(r)
		assert.Equal(t, MaxPageSize, p.PageSize)
	})

	t.Run("junk falls back to defaults", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/returns?page=abc&pageSize=-5", nil)
		p := ParseListParams(r)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, DefaultPageSize, p.PageSize)
	})

	t.Run("skip and take aliases", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/returns?skip=40&take=10", nil)
		p := ParseListParams(r)
		assert.Equal(t, 10, p.PageSize)
		assert.Equal(t, 40, p.Offset())
	})

	t.Run("skip wins over page when both are sent", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/returns?page=3&pageSize=10&skip=5", nil)
		p := ParseListParams(r)
		assert.Equal(t, 10, p.PageSize)
		assert.Equal(t, 5, p.Offset())
	})

	t.Run("take is capped like pageSize", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/returns?take=100000", nil)
		p := ParseListParams(r)
		assert.Equal(t, MaxPageSize, p.PageSize)
	})

	t.Run("negative skip is ignored", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/returns?skip=-1&take=10", nil)
		p := ParseListParams(r)
		assert.Equal(t, 0, p.Offset())
	})
}
