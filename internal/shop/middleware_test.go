package shop

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestResolverPrefersHeader(t *testing.T) {
	headerShop := uuid.New()
	hostShop := uuid.New()
	fallback := uuid.New()
	r := NewResolver("", map[string]uuid.UUID{"Store.Example.com": hostShop}, fallback)

	req := httptest.NewRequest(http.MethodPost, "http://store.example.com:8080/api/v1/tax/calculate", nil)
	req.Header.Set(DefaultHeader, headerShop.String())
	id, err := r.Resolve(req)
	require.NoError(t, err)
	require.Equal(t, headerShop, id)

	req.Header.Del(DefaultHeader)
	id, err = r.Resolve(req)
	require.NoError(t, err)
	require.Equal(t, hostShop, id)

	req = httptest.NewRequest(http.MethodPost, "http://other.example.com/", nil)
	id, err = r.Resolve(req)
	require.NoError(t, err)
	require.Equal(t, fallback, id)
}

func TestMiddlewareRejectsMissingOrInvalidShop(t *testing.T) {
	r := NewResolver("", nil, uuid.Nil)
	var seen uuid.UUID
	h := r.Middleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		seen, _ = From(req.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DefaultHeader, "not-a-uuid")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	id := uuid.New()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DefaultHeader, id.String())
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, id, seen)
}

func TestParseHosts(t *testing.T) {
	id := uuid.New()
	hosts, err := ParseHosts(" shop.test=" + id.String() + " ,")
	require.NoError(t, err)
	require.Equal(t, id, hosts["shop.test"])

	_, err = ParseHosts("broken")
	require.Error(t, err)
}
