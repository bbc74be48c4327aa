package discount

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/httpx"
	"github.com/noah-isme/toko-pricing/internal/money"
	"github.com/noah-isme/toko-pricing/internal/pricing"
	"github.com/noah-isme/toko-pricing/internal/shop"
)

// Handler exposes the storefront discount endpoints.
type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

type applyRequest struct {
	Code          string           `json:"code" validate:"required,max=64"`
	Items         []httpx.LineItem `json:"items" validate:"required"`
	ExistingTypes []string         `json:"existing_types" validate:"omitempty,dive,oneof=product order shipping buy_x_get_y"`
	ShippingCost  *decimal.Decimal `json:"shipping_cost,omitempty"`
}

type automaticRequest struct {
	Items        []httpx.LineItem `json:"items" validate:"required"`
	ShippingCost *decimal.Decimal `json:"shipping_cost,omitempty"`
}

// LineAdjustmentResponse is the wire shape of a line adjustment.
type LineAdjustmentResponse struct {
	ID             int64       `json:"id"`
	VariantID      *int64      `json:"variant_id"`
	DiscountAmount json.Number `json:"discount_amount"`
	IsGift         bool        `json:"is_gift"`
}

// ApplyResponse is the body returned for an accepted code.
type ApplyResponse struct {
	OK                     bool                     `json:"ok"`
	Code                   string                   `json:"code"`
	Label                  string                   `json:"label"`
	Type                   Type                     `json:"type"`
	ValueType              ValueType                `json:"value_type"`
	Value                  json.Number              `json:"value"`
	DiscountAmount         json.Number              `json:"discount_amount"`
	OrderDiscountAmount    json.Number              `json:"order_discount_amount"`
	ProductDiscountAmount  json.Number              `json:"product_discount_amount"`
	ShippingDiscountAmount json.Number              `json:"shipping_discount_amount"`
	FreeShipping           bool                     `json:"free_shipping"`
	LineAdjustments        []LineAdjustmentResponse `json:"line_adjustments"`
}

type promotion struct {
	Code      string    `json:"code"`
	Label     string    `json:"label"`
	Type      Type      `json:"type"`
	ValueType ValueType `json:"value_type"`
}

type automaticResponse struct {
	OK                    bool                                         `json:"ok"`
	Promotions            []promotion                                  `json:"promotions"`
	LineAdjustmentsByCode map[string]map[string]LineAdjustmentResponse `json:"line_adjustments_by_code"`
	OrderDiscountTotal    json.Number                                  `json:"order_discount_total"`
	ProductDiscountTotal  json.Number                                  `json:"product_discount_total"`
	ShippingDiscountTotal json.Number                                  `json:"shipping_discount_total"`
	FreeShipping          bool                                         `json:"free_shipping"`
}

// Apply validates a discount code against the posted cart.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	shopID, ok := shop.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	var req applyRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	existing, err := ParseCategories(req.ExistingTypes)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	customerID, _ := common.CustomerID(r.Context())
	applied, err := h.Svc.ApplyCode(r.Context(), CodeRequest{
		ShopID:       shopID,
		Code:         req.Code,
		CustomerID:   customerID,
		Lines:        httpx.CartLines(req.Items),
		Existing:     existing,
		ShippingCost: req.ShippingCost,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, NewApplyResponse(applied))
}

// Automatic evaluates the shop's automatic discounts against the posted cart.
func (h *Handler) Automatic(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	shopID, ok := shop.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	var req automaticRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	customerID, _ := common.CustomerID(r.Context())
	outcome, err := h.Svc.ApplyAutomatic(r.Context(), AutomaticRequest{
		ShopID:       shopID,
		CustomerID:   customerID,
		Lines:        httpx.CartLines(req.Items),
		ShippingCost: req.ShippingCost,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := automaticResponse{
		OK:                    true,
		Promotions:            make([]promotion, 0, len(outcome.Applied)),
		LineAdjustmentsByCode: make(map[string]map[string]LineAdjustmentResponse, len(outcome.Applied)),
		OrderDiscountTotal:    money.JSON(outcome.OrderTotal),
		ProductDiscountTotal:  money.JSON(outcome.ProductTotal),
		ShippingDiscountTotal: money.JSON(outcome.ShippingTotal),
		FreeShipping:          outcome.FreeShipping,
	}
	for _, a := range outcome.Applied {
		key := a.Discount.Key()
		resp.Promotions = append(resp.Promotions, promotion{
			Code:      key,
			Label:     a.Discount.Label(),
			Type:      a.Discount.Type(),
			ValueType: a.Discount.ValueType(),
		})
		byLine := make(map[string]LineAdjustmentResponse, len(a.Result.LineAdjustments))
		for lineKey, adj := range a.Result.LineAdjustments {
			byLine[lineKey] = adjustmentResponse(adj)
		}
		resp.LineAdjustmentsByCode[key] = byLine
	}
	common.JSON(w, http.StatusOK, resp)
}

// NewApplyResponse renders an applied code.
func NewApplyResponse(a Applied) ApplyResponse {
	adjustments := a.Result.Adjustments()
	lines := make([]LineAdjustmentResponse, 0, len(adjustments))
	for _, adj := range adjustments {
		lines = append(lines, adjustmentResponse(adj))
	}
	return ApplyResponse{
		OK:                     true,
		Code:                   a.Discount.Key(),
		Label:                  a.Discount.Label(),
		Type:                   a.Discount.Type(),
		ValueType:              a.Discount.ValueType(),
		Value:                  money.JSON(a.Discount.Value()),
		DiscountAmount:         money.JSON(a.Result.TotalDiscount),
		OrderDiscountAmount:    money.JSON(a.Result.OrderDiscountAmount),
		ProductDiscountAmount:  money.JSON(a.Result.ProductDiscountAmount),
		ShippingDiscountAmount: money.JSON(a.Result.ShippingDiscountAmount),
		FreeShipping:           a.Result.FreeShipping,
		LineAdjustments:        lines,
	}
}

func adjustmentResponse(adj LineAdjustment) LineAdjustmentResponse {
	var variant *int64
	if adj.VariantID != 0 {
		v := adj.VariantID
		variant = &v
	}
	return LineAdjustmentResponse{
		ID:             adj.ProductID,
		VariantID:      variant,
		DiscountAmount: money.JSON(adj.DiscountAmount),
		IsGift:         adj.IsGift,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if msg, ok := RejectionMessage(err); ok {
		common.Reject(w, msg)
		return
	}
	if errors.Is(err, pricing.ErrMalformedCartLine) {
		common.Reject(w, err.Error())
		return
	}
	h.Logger.Error().Err(err).Msg("discount request failed")
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to evaluate discounts", nil)
}
