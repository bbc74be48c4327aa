package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/shop"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareLimitsPerShopAndClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := Handler{
		Limiter: Limiter{Client: client, Prefix: "pricing:rl:"},
		Config:  Config{Scope: "apply", Window: time.Minute, Max: 1},
		Logger:  zerolog.Nop(),
	}.Middleware(okHandler())

	shopA, shopB := uuid.New(), uuid.New()
	request := func(shopID uuid.UUID, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/discounts/apply", nil)
		req.RemoteAddr = ip + ":5000"
		req = req.WithContext(shop.With(req.Context(), shopID))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusOK, request(shopA, "10.0.0.1").Code)
	limited := request(shopA, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	require.Equal(t, "1", limited.Header().Get("X-RateLimit-Limit"))
	require.NotEmpty(t, limited.Header().Get("Retry-After"))
	require.Contains(t, limited.Body.String(), "RATE_LIMITED")

	require.Equal(t, http.StatusOK, request(shopB, "10.0.0.1").Code)
	require.Equal(t, http.StatusOK, request(shopA, "10.0.0.2").Code)
}

func TestMiddlewareFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	h := Handler{
		Limiter: Limiter{Client: client},
		Config:  Config{Scope: "apply", Key: func(*http.Request) string { return "k" }, Window: time.Second, Max: 1},
		Logger:  zerolog.Nop(),
	}.Middleware(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}
