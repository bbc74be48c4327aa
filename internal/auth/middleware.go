package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/obs"
)

// AdminKeyHeader carries the admin API key.
const AdminKeyHeader = "X-Admin-Key"

// Middleware wires authentication context into HTTP handlers.
type Middleware struct {
	Tokens   *Tokens
	AdminKey AdminKey
	Logger   zerolog.Logger
}

// Authenticate attaches the customer identifier when a valid bearer token is
// present. Requests without a token, or with an invalid one, continue
// anonymously.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || m.Tokens == nil {
			next.ServeHTTP(w, r)
			return
		}
		customerID, err := m.Tokens.Parse(token)
		if err != nil {
			m.Logger.Debug().Err(err).Msg("ignoring invalid customer token")
			next.ServeHTTP(w, r)
			return
		}
		obs.Annotate(r.Context(), "customer_id", customerID)
		next.ServeHTTP(w, r.WithContext(common.WithCustomerID(r.Context(), customerID)))
	})
}

// RequireAdmin rejects requests without a valid admin key.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := m.AdminKey.Verify(strings.TrimSpace(r.Header.Get(AdminKeyHeader)))
		if err != nil {
			if errors.Is(err, ErrAdminKeyNotConfigured) {
				common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "admin access is disabled", nil)
				return
			}
			m.Logger.Error().Err(err).Msg("admin key verification failed")
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin key", nil)
			return
		}
		if !ok {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid admin key", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithAdmin(r.Context())))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
