package tax

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/common"
	dbgen "github.com/noah-isme/toko-pricing/internal/db/gen"
	"github.com/noah-isme/toko-pricing/internal/httpx"
	"github.com/noah-isme/toko-pricing/internal/money"
	"github.com/noah-isme/toko-pricing/internal/shop"
)

// AdminQuerier captures the database methods used by zone administration.
type AdminQuerier interface {
	ListTaxZonesByShop(ctx context.Context, shopID pgtype.UUID) ([]dbgen.TaxZone, error)
	CreateTaxZone(ctx context.Context, arg dbgen.CreateTaxZoneParams) (dbgen.TaxZone, error)
}

// CacheInvalidator drops cached zones for a shop.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, shopID uuid.UUID) error
}

// WarmScheduler enqueues a background cache warm-up for a shop.
type WarmScheduler interface {
	ScheduleWarm(ctx context.Context, shopID uuid.UUID) error
}

// AdminHandler exposes tax zone maintenance endpoints.
type AdminHandler struct {
	Q      AdminQuerier
	Cache  CacheInvalidator
	Warm   WarmScheduler
	Logger zerolog.Logger
}

type zonePayload struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Code        string          `json:"code" validate:"required,max=64"`
	Country     string          `json:"country" validate:"required,country"`
	State       string          `json:"state" validate:"max=64"`
	PostalCodes []string        `json:"postal_codes" validate:"omitempty,dive,required,max=16"`
	Rate        decimal.Decimal `json:"rate"`
	TaxShipping *bool           `json:"tax_shipping"`
	Priority    int32           `json:"priority"`
}

// ZoneResponse is the administrative view of a zone.
type ZoneResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	Country     string      `json:"country"`
	State       *string     `json:"state"`
	PostalCodes []string    `json:"postal_codes"`
	Rate        json.Number `json:"rate"`
	TaxShipping bool        `json:"tax_shipping"`
	Priority    int32       `json:"priority"`
	CreatedAt   time.Time   `json:"created_at"`
}

func newZoneResponse(row dbgen.TaxZone) ZoneResponse {
	resp := ZoneResponse{
		ID:          uuid.UUID(row.ID.Bytes),
		Name:        row.Name,
		Code:        row.Code,
		Country:     row.Country,
		PostalCodes: row.PostalCodes,
		Rate:        money.Rate(money.FromNumeric(row.Rate)),
		TaxShipping: row.TaxShipping,
		Priority:    row.Priority,
		CreatedAt:   row.CreatedAt.Time,
	}
	if resp.PostalCodes == nil {
		resp.PostalCodes = []string{}
	}
	if row.State.Valid {
		state := row.State.String
		resp.State = &state
	}
	return resp
}

// List returns the shop's zones by priority.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shop.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	rows, err := h.Q.ListTaxZonesByShop(r.Context(), pgUUID(shopID))
	if err != nil {
		h.Logger.Error().Err(err).Msg("list tax zones failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list tax zones", nil)
		return
	}
	out := make([]ZoneResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, newZoneResponse(row))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Create inserts a zone.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shop.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	var p zonePayload
	if err := httpx.Decode(r, &p); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if p.Rate.IsNegative() || p.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "rate must be a fraction in [0, 1)", nil)
		return
	}
	taxShipping := true
	if p.TaxShipping != nil {
		taxShipping = *p.TaxShipping
	}
	state := pgtype.Text{}
	if s := strings.TrimSpace(p.State); s != "" {
		state = pgtype.Text{String: strings.ToUpper(s), Valid: true}
	}
	postal := make([]string, 0, len(p.PostalCodes))
	for _, code := range p.PostalCodes {
		postal = append(postal, strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", "")))
	}
	row, err := h.Q.CreateTaxZone(r.Context(), dbgen.CreateTaxZoneParams{
		ShopID:      pgUUID(shopID),
		Name:        strings.TrimSpace(p.Name),
		Code:        strings.TrimSpace(p.Code),
		Country:     strings.ToUpper(p.Country),
		State:       state,
		PostalCodes: postal,
		Rate:        money.ToNumeric(p.Rate),
		TaxShipping: taxShipping,
		Priority:    p.Priority,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "tax zone code already exists", nil)
			return
		}
		h.Logger.Error().Err(err).Msg("create tax zone failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create tax zone", nil)
		return
	}
	if h.Cache != nil {
		if err := h.Cache.Invalidate(r.Context(), shopID); err != nil {
			h.Logger.Warn().Err(err).Str("shop_id", shopID.String()).Msg("tax zone cache invalidation failed")
		}
	}
	if h.Warm != nil {
		if err := h.Warm.ScheduleWarm(r.Context(), shopID); err != nil {
			h.Logger.Warn().Err(err).Str("shop_id", shopID.String()).Msg("schedule cache warm failed")
		}
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": newZoneResponse(row)})
}
