// Package query holds the shared helpers for list pagination and for
// building HTTP query strings towards external services.
package query

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
)

const (
	// DefaultPageSize is applied when the client does not request a page size.
	DefaultPageSize = 20
	// MaxPageSize caps the page size a client may request.
	MaxPageSize = 200
)

// ListParams carries the pagination window of a list request.
type ListParams struct {
	Page     int
	PageSize int

	// skip overrides the page-derived offset when the client paginates
	// with the skip/take parameter names.
	skip *int
}

// Offset converts the 1-based page into a row offset.
func (p ListParams) Offset() int {
	if p.skip != nil {
		return *p.skip
	}
	return (p.Page - 1) * p.PageSize
}

// ParseListParams extracts page/pageSize from the request query, applying
// defaults and caps. The skip/take parameter names are accepted as aliases
// for clients of the previous API generation. Malformed or negative values
// fall back to defaults.
func ParseListParams(r *http.Request) ListParams {
	p := ListParams{Page: 1, PageSize: DefaultPageSize}

	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			p.Page = v
		}
	}
	if s := r.URL.Query().Get("pageSize"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			p.PageSize = v
		}
	}
	if s := r.URL.Query().Get("take"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			p.PageSize = v
		}
	}
	if s := r.URL.Query().Get("skip"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			p.skip = &v
		}
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// BuildQuery renders the given parameters as a URL query string (without the
// leading "?"). Nil values, nil pointers and empty strings are omitted
// entirely; the output never contains a literal "null". Keys are emitted in
// sorted order so the result is deterministic.
func BuildQuery(params map[string]any) string {
	values := url.Values{}
	for key, raw := range params {
		s, ok := stringify(raw)
		if !ok {
			continue
		}
		values.Set(key, s)
	}
	return values.Encode()
}

// stringify converts a parameter value to its query representation. The
// second return value is false when the parameter must be omitted.
func stringify(raw any) (string, bool) {
	if raw == nil {
		return "", false
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return "", false
		}
		return stringify(rv.Elem().Interface())
	}

	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		s := v.String()
		if s == "" {
			return "", false
		}
		return s, true
	default:
		return fmt.Sprintf("%v", raw), true
	}
}
