package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyRejectsReplay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := 0
	h := Idem{R: client, TTL: time.Minute}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/admin/discounts", nil)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	require.Equal(t, http.StatusCreated, send("abc"))
	require.Equal(t, http.StatusConflict, send("abc"))
	require.Equal(t, http.StatusCreated, send("other"))
	require.Equal(t, http.StatusCreated, send(""))
	require.Equal(t, 3, calls)
}
