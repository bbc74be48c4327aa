package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/obs"
)

func TestPprofHandlerRequiresBasicAuth(t *testing.T) {
	h := obs.PprofHandler("ops", "s3cret")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pprof/cmdline", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/pprof/cmdline", nil)
	req.SetBasicAuth("ops", "s3cret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestPprofHandlerOpenWithoutUser(t *testing.T) {
	rr := httptest.NewRecorder()
	obs.PprofHandler("", "").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pprof/cmdline", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}
