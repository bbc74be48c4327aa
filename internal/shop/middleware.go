package shop

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/obs"
)

// DefaultHeader carries the shop id on storefront requests.
const DefaultHeader = "X-Shop-ID"

// Resolver resolves the shop from a header, the request host, or a configured default.
type Resolver struct {
	HeaderName string
	Hosts      map[string]uuid.UUID
	Default    uuid.UUID
}

// NewResolver returns a resolver. hosts maps storefront hostnames to shop ids.
func NewResolver(headerName string, hosts map[string]uuid.UUID, defaultShop uuid.UUID) *Resolver {
	if headerName == "" {
		headerName = DefaultHeader
	}
	normalized := make(map[string]uuid.UUID, len(hosts))
	for host, id := range hosts {
		normalized[strings.ToLower(strings.TrimSpace(host))] = id
	}
	return &Resolver{HeaderName: headerName, Hosts: normalized, Default: defaultShop}
}

// Middleware resolves the shop and rejects requests where none applies.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id, err := r.Resolve(req)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), map[string]string{"header": r.HeaderName})
			return
		}
		obs.Annotate(req.Context(), "shop_id", id.String())
		next.ServeHTTP(w, req.WithContext(With(req.Context(), id)))
	})
}

// Resolve finds the shop id for the request.
func (r *Resolver) Resolve(req *http.Request) (uuid.UUID, error) {
	if raw := strings.TrimSpace(req.Header.Get(r.HeaderName)); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid shop id %q", raw)
		}
		return id, nil
	}
	if id, ok := r.Hosts[hostWithoutPort(req.Host)]; ok {
		return id, nil
	}
	if r.Default != uuid.Nil {
		return r.Default, nil
	}
	return uuid.Nil, fmt.Errorf("shop is required")
}

// ParseHosts parses "host=uuid,host=uuid" mappings.
func ParseHosts(value string) (map[string]uuid.UUID, error) {
	out := map[string]uuid.UUID{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		host, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("shop host mapping %q: expected host=id", pair)
		}
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("shop host mapping %q: %w", pair, err)
		}
		out[strings.ToLower(strings.TrimSpace(host))] = id
	}
	return out, nil
}

func hostWithoutPort(hostport string) string {
	hostport = strings.ToLower(strings.TrimSpace(hostport))
	if hostport == "" {
		return ""
	}
	if strings.HasPrefix(hostport, "[") {
		if idx := strings.Index(hostport, "]"); idx != -1 {
			return hostport[1:idx]
		}
	}
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return hostport
}
