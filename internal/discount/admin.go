package discount

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

// AdminQuerier captures the database methods used by discount administration.
type AdminQuerier interface {
	ListDiscountsByShop(ctx context.Context, arg dbgen.ListDiscountsByShopParams) ([]dbgen.Discount, error)
	CreateDiscount(ctx context.Context, arg dbgen.CreateDiscountParams) (dbgen.Discount, error)
	UpdateDiscount(ctx context.Context, arg dbgen.UpdateDiscountParams) (dbgen.Discount, error)
}

// CacheInvalidator drops cached pricing data for a shop.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, shopID uuid.UUID) error
}

// WarmScheduler enqueues a background cache warm-up for a shop.
type WarmScheduler interface {
	ScheduleWarm(ctx context.Context, shopID uuid.UUID) error
}

// AdminHandler exposes discount maintenance endpoints.
type AdminHandler struct {
	Q               AdminQuerier
	Cache           CacheInvalidator
	Warm            WarmScheduler
	Logger          zerolog.Logger
	DefaultPriority int
}

type discountPayload struct {
	Title                         string          `json:"title" validate:"required,max=200"`
	Method                        string          `json:"method" validate:"required,oneof=code automatic"`
	Code                          *string         `json:"code" validate:"omitempty,max=64"`
	Type                          string          `json:"type" validate:"required,oneof=order product shipping buy_x_get_y"`
	ValueType                     string          `json:"value_type" validate:"omitempty,oneof=percentage fixed"`
	Value                         decimal.Decimal `json:"value"`
	IsActive                      *bool           `json:"is_active"`
	StartsAt                      *time.Time      `json:"starts_at"`
	EndsAt                        *time.Time      `json:"ends_at"`
	Priority                      *int            `json:"priority"`
	CombinesWithProductDiscounts  bool            `json:"combines_with_product_discounts"`
	CombinesWithOrderDiscounts    bool            `json:"combines_with_order_discounts"`
	CombinesWithShippingDiscounts bool            `json:"combines_with_shipping_discounts"`
	MinimumSubtotal               decimal.Decimal `json:"minimum_subtotal"`
	UsageLimit                    *int32          `json:"usage_limit" validate:"omitempty,gte=0"`
	PerCustomerLimit              *int32          `json:"per_customer_limit" validate:"omitempty,gte=1"`
	ProductIDs                    []int64         `json:"product_ids" validate:"omitempty,dive,gt=0"`
	BuyProductIDs                 []int64         `json:"buy_product_ids" validate:"omitempty,dive,gt=0"`
	BuyQuantity                   int32           `json:"buy_quantity" validate:"gte=0"`
	GetProductIDs                 []int64         `json:"get_product_ids" validate:"omitempty,dive,gt=0"`
	GetQuantity                   int32           `json:"get_quantity" validate:"gte=0"`
	Repeat                        bool            `json:"repeat"`
}

// DiscountResponse is the administrative view of a discount.
type DiscountResponse struct {
	ID                            uuid.UUID   `json:"id"`
	Title                         string      `json:"title"`
	Method                        Method      `json:"method"`
	Code                          *string     `json:"code"`
	Type                          Type        `json:"type"`
	ValueType                     ValueType   `json:"value_type"`
	Value                         json.Number `json:"value"`
	IsActive                      bool        `json:"is_active"`
	StartsAt                      *time.Time  `json:"starts_at"`
	EndsAt                        *time.Time  `json:"ends_at"`
	Priority                      int         `json:"priority"`
	CombinesWithProductDiscounts  bool        `json:"combines_with_product_discounts"`
	CombinesWithOrderDiscounts    bool        `json:"combines_with_order_discounts"`
	CombinesWithShippingDiscounts bool        `json:"combines_with_shipping_discounts"`
	MinimumSubtotal               json.Number `json:"minimum_subtotal"`
	UsageLimit                    *int32      `json:"usage_limit"`
	UsedCount                     int32       `json:"used_count"`
	PerCustomerLimit              *int32      `json:"per_customer_limit"`
	ProductIDs                    []int64     `json:"product_ids,omitempty"`
	BuyProductIDs                 []int64     `json:"buy_product_ids,omitempty"`
	BuyQuantity                   int         `json:"buy_quantity,omitempty"`
	GetProductIDs                 []int64     `json:"get_product_ids,omitempty"`
	GetQuantity                   int         `json:"get_quantity,omitempty"`
	Repeat                        bool        `json:"repeat,omitempty"`
	CreatedAt                     time.Time   `json:"created_at"`
}

// List returns the shop's discounts, newest first.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shop.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	page := common.ParsePagination(r, 50)
	rows, err := h.Q.ListDiscountsByShop(r.Context(), dbgen.ListDiscountsByShopParams{
		ShopID: pgUUID(shopID),
		Limit:  int32(page.PerPage),
		Offset: int32(page.Offset()),
	})
	if err != nil {
		h.Logger.Error().Err(err).Msg("list discounts failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list discounts", nil)
		return
	}
	out := make([]DiscountResponse, 0, len(rows))
	for _, row := range rows {
		resp, err := newDiscountResponse(row)
		if err != nil {
			h.Logger.Error().Err(err).Str("discount_id", uuid.UUID(row.ID.Bytes).String()).Msg("discount mapping failed")
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list discounts", nil)
			return
		}
		out = append(out, resp)
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out, "pagination": page})
}

// Create inserts a new discount.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shop.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	var payload discountPayload
	if err := httpx.Decode(r, &payload); err != nil {
		httpx.WriteError(w, err)
		return
	}
	params, err := buildCreateParams(shopID, payload, h.DefaultPriority)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	row, err := h.Q.CreateDiscount(r.Context(), params)
	if err != nil {
		h.writeStoreError(w, err, "failed to create discount")
		return
	}
	h.respondWritten(w, r, http.StatusCreated, shopID, row)
}

// Update replaces the discount identified by the {id} route parameter.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shop.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid discount id", nil)
		return
	}
	var payload discountPayload
	if err := httpx.Decode(r, &payload); err != nil {
		httpx.WriteError(w, err)
		return
	}
	create, err := buildCreateParams(shopID, payload, h.DefaultPriority)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	row, err := h.Q.UpdateDiscount(r.Context(), updateParams(id, create))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "discount not found", nil)
			return
		}
		h.writeStoreError(w, err, "failed to update discount")
		return
	}
	h.respondWritten(w, r, http.StatusOK, shopID, row)
}

func (h *AdminHandler) respondWritten(w http.ResponseWriter, r *http.Request, status int, shopID uuid.UUID, row dbgen.Discount) {
	h.refresh(r.Context(), shopID)
	resp, err := newDiscountResponse(row)
	if err != nil {
		h.Logger.Error().Err(err).Msg("discount mapping failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to render discount", nil)
		return
	}
	common.JSON(w, status, map[string]any{"data": resp})
}

// refresh invalidates cached discounts and schedules a warm-up. Failures are
// logged: the cache TTL bounds staleness.
func (h *AdminHandler) refresh(ctx context.Context, shopID uuid.UUID) {
	if h.Cache != nil {
		if err := h.Cache.Invalidate(ctx, shopID); err != nil {
			h.Logger.Warn().Err(err).Str("shop_id", shopID.String()).Msg("discount cache invalidation failed")
		}
	}
	if h.Warm != nil {
		if err := h.Warm.ScheduleWarm(ctx, shopID); err != nil {
			h.Logger.Warn().Err(err).Str("shop_id", shopID.String()).Msg("schedule cache warm failed")
		}
	}
}

func (h *AdminHandler) writeStoreError(w http.ResponseWriter, err error, message string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			common.JSONError(w, http.StatusConflict, "CONFLICT", "discount code already exists", nil)
			return
		case "23514":
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "discount violates a constraint", map[string]string{"constraint": pgErr.ConstraintName})
			return
		}
	}
	h.Logger.Error().Err(err).Msg(message)
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", message, nil)
}

func buildCreateParams(shopID uuid.UUID, p discountPayload, defaultPriority int) (dbgen.CreateDiscountParams, error) {
	method, err := ParseMethod(p.Method)
	if err != nil {
		return dbgen.CreateDiscountParams{}, errors.New("invalid method")
	}
	typ, err := ParseType(p.Type)
	if err != nil {
		return dbgen.CreateDiscountParams{}, errors.New("invalid type")
	}
	valueType := ValueTypePercentage
	if p.ValueType != "" {
		if valueType, err = ParseValueType(p.ValueType); err != nil {
			return dbgen.CreateDiscountParams{}, errors.New("invalid value_type")
		}
	}

	code := pgtype.Text{}
	if p.Code != nil && strings.TrimSpace(*p.Code) != "" {
		code = pgtype.Text{String: strings.TrimSpace(*p.Code), Valid: true}
	}
	if method == MethodCode && !code.Valid {
		return dbgen.CreateDiscountParams{}, errors.New("code is required for code discounts")
	}
	if p.Value.IsNegative() {
		return dbgen.CreateDiscountParams{}, errors.New("value must not be negative")
	}
	if p.MinimumSubtotal.IsNegative() {
		return dbgen.CreateDiscountParams{}, errors.New("minimum_subtotal must not be negative")
	}
	if valueType == ValueTypePercentage && typ != TypeShipping && p.Value.GreaterThan(money.Hundred()) {
		return dbgen.CreateDiscountParams{}, errors.New("percentage value must not exceed 100")
	}
	if p.StartsAt != nil && p.EndsAt != nil && p.EndsAt.Before(*p.StartsAt) {
		return dbgen.CreateDiscountParams{}, errors.New("ends_at must not be before starts_at")
	}
	switch typ {
	case TypeProduct:
		if len(p.ProductIDs) == 0 {
			return dbgen.CreateDiscountParams{}, errors.New("product_ids is required for product discounts")
		}
	case TypeBuyXGetY:
		if p.BuyQuantity < 1 || p.GetQuantity < 1 {
			return dbgen.CreateDiscountParams{}, errors.New("buy_quantity and get_quantity must be at least 1")
		}
	}

	priority := int32(defaultPriority)
	if p.Priority != nil {
		priority = int32(*p.Priority)
	}
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return dbgen.CreateDiscountParams{
		ShopID:                        pgUUID(shopID),
		Title:                         strings.TrimSpace(p.Title),
		Method:                        string(method),
		Code:                          code,
		Type:                          string(typ),
		ValueType:                     string(valueType),
		Value:                         money.ToNumeric(p.Value),
		IsActive:                      active,
		StartsAt:                      timeToNullable(p.StartsAt),
		EndsAt:                        timeToNullable(p.EndsAt),
		Priority:                      priority,
		CombinesWithProductDiscounts:  p.CombinesWithProductDiscounts,
		CombinesWithOrderDiscounts:    p.CombinesWithOrderDiscounts,
		CombinesWithShippingDiscounts: p.CombinesWithShippingDiscounts,
		MinimumSubtotal:               money.ToNumeric(p.MinimumSubtotal),
		UsageLimit:                    int4(p.UsageLimit),
		PerCustomerLimit:              int4(p.PerCustomerLimit),
		ProductIds:                    nonNil(p.ProductIDs),
		BuyProductIds:                 nonNil(p.BuyProductIDs),
		BuyQuantity:                   p.BuyQuantity,
		GetProductIds:                 nonNil(p.GetProductIDs),
		GetQuantity:                   p.GetQuantity,
		RepeatOffer:                   p.Repeat,
	}, nil
}

func updateParams(id uuid.UUID, c dbgen.CreateDiscountParams) dbgen.UpdateDiscountParams {
	return dbgen.UpdateDiscountParams{
		ID:                            pgUUID(id),
		ShopID:                        c.ShopID,
		Title:                         c.Title,
		Method:                        c.Method,
		Code:                          c.Code,
		Type:                          c.Type,
		ValueType:                     c.ValueType,
		Value:                         c.Value,
		IsActive:                      c.IsActive,
		StartsAt:                      c.StartsAt,
		EndsAt:                        c.EndsAt,
		Priority:                      c.Priority,
		CombinesWithProductDiscounts:  c.CombinesWithProductDiscounts,
		CombinesWithOrderDiscounts:    c.CombinesWithOrderDiscounts,
		CombinesWithShippingDiscounts: c.CombinesWithShippingDiscounts,
		MinimumSubtotal:               c.MinimumSubtotal,
		UsageLimit:                    c.UsageLimit,
		PerCustomerLimit:              c.PerCustomerLimit,
		ProductIds:                    c.ProductIds,
		BuyProductIds:                 c.BuyProductIds,
		BuyQuantity:                   c.BuyQuantity,
		GetProductIds:                 c.GetProductIds,
		GetQuantity:                   c.GetQuantity,
		RepeatOffer:                   c.RepeatOffer,
	}
}

func newDiscountResponse(row dbgen.Discount) (DiscountResponse, error) {
	d, err := FromModel(row)
	if err != nil {
		return DiscountResponse{}, err
	}
	resp := DiscountResponse{
		ID:                            d.ID,
		Title:                         d.Title,
		Method:                        d.Method,
		Type:                          d.Type(),
		ValueType:                     d.ValueType(),
		Value:                         money.JSON(d.Value()),
		IsActive:                      d.IsActive,
		StartsAt:                      d.StartsAt,
		EndsAt:                        d.EndsAt,
		Priority:                      d.Priority,
		CombinesWithProductDiscounts:  d.CombinesWithProductDiscounts,
		CombinesWithOrderDiscounts:    d.CombinesWithOrderDiscounts,
		CombinesWithShippingDiscounts: d.CombinesWithShippingDiscounts,
		MinimumSubtotal:               money.JSON(d.MinimumSubtotal),
		UsageLimit:                    d.UsageLimit,
		UsedCount:                     d.UsedCount,
		PerCustomerLimit:              d.PerCustomerLimit,
		CreatedAt:                     d.CreatedAt,
	}
	if d.Code != "" {
		code := d.Code
		resp.Code = &code
	}
	switch rule := d.Rule.(type) {
	case ProductRule:
		resp.ProductIDs = rule.ProductIDs
	case BuyXGetYRule:
		resp.BuyProductIDs = rule.BuyProductIDs
		resp.BuyQuantity = rule.BuyQuantity
		resp.GetProductIDs = rule.GetProductIDs
		resp.GetQuantity = rule.GetQuantity
		resp.Repeat = rule.Repeat
	}
	return resp, nil
}

func timeToNullable(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}

func int4(v *int32) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: *v, Valid: true}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
