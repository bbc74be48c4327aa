package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/discount"
	"github.com/noah-isme/toko-pricing/internal/httpx"
	"github.com/noah-isme/toko-pricing/internal/money"
	"github.com/noah-isme/toko-pricing/internal/pricing"
	"github.com/noah-isme/toko-pricing/internal/shop"
	"github.com/noah-isme/toko-pricing/internal/tax"
)

// Handler exposes the quote endpoint.
type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

type quoteRequest struct {
	Items        []httpx.LineItem    `json:"items" validate:"required"`
	Codes        []string            `json:"codes" validate:"max=10,dive,required,max=64"`
	ShippingCost *decimal.Decimal    `json:"shipping_cost,omitempty"`
	Address      *tax.AddressPayload `json:"address,omitempty"`
}

type appliedCode struct {
	Code           string        `json:"code"`
	Label          string        `json:"label"`
	Type           discount.Type `json:"type"`
	DiscountAmount json.Number   `json:"discount_amount"`
	FreeShipping   bool          `json:"free_shipping"`
}

type rejectedCode struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type quoteResponse struct {
	Subtotal               json.Number    `json:"subtotal"`
	PromoDiscount          json.Number    `json:"promo_discount"`
	AutomaticDiscountTotal json.Number    `json:"automatic_discount_total"`
	ShippingCost           json.Number    `json:"shipping_cost"`
	ShippingDiscountTotal  json.Number    `json:"shipping_discount_total"`
	TaxTotal               json.Number    `json:"tax_total"`
	TaxRate                json.Number    `json:"tax_rate"`
	Total                  json.Number    `json:"total"`
	Negative               bool           `json:"negative"`
	AppliedCodes           []appliedCode  `json:"applied_codes"`
	RejectedCodes          []rejectedCode `json:"rejected_codes"`
}

// Quote prices the posted cart.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	shopID, ok := shop.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	var req quoteRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	customerID, _ := common.CustomerID(r.Context())
	in := Input{
		ShopID:     shopID,
		CustomerID: customerID,
		Lines:      httpx.CartLines(req.Items),
		Codes:      req.Codes,
	}
	if req.ShippingCost != nil {
		in.ShippingCost = *req.ShippingCost
	}
	if req.Address != nil {
		addr := req.Address.Address()
		in.Address = &addr
	}
	q, err := h.Svc.Quote(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, newQuoteResponse(q))
}

func newQuoteResponse(q Quote) quoteResponse {
	resp := quoteResponse{
		Subtotal:               money.JSON(q.Subtotal),
		PromoDiscount:          money.JSON(q.PromoDiscount),
		AutomaticDiscountTotal: money.JSON(q.AutomaticDiscountTotal),
		ShippingCost:           money.JSON(q.ShippingCost),
		ShippingDiscountTotal:  money.JSON(q.ShippingDiscountTotal),
		TaxTotal:               money.JSON(q.TaxTotal),
		TaxRate:                money.Rate(q.TaxRate),
		Total:                  money.JSON(q.Total),
		Negative:               q.Negative,
		AppliedCodes:           make([]appliedCode, 0, len(q.Applied)),
		RejectedCodes:          make([]rejectedCode, 0, len(q.Rejected)),
	}
	for _, a := range q.Applied {
		resp.AppliedCodes = append(resp.AppliedCodes, appliedCode{
			Code:           a.Discount.Key(),
			Label:          a.Discount.Label(),
			Type:           a.Discount.Type(),
			DiscountAmount: money.JSON(a.Result.TotalDiscount),
			FreeShipping:   a.Result.FreeShipping,
		})
	}
	for _, rc := range q.Rejected {
		resp.RejectedCodes = append(resp.RejectedCodes, rejectedCode{Code: rc.Code, Message: rc.Message})
	}
	return resp
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrMalformedCartLine):
		common.Reject(w, err.Error())
	case errors.Is(err, tax.ErrInvalidAddress):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		h.Logger.Error().Err(err).Msg("quote failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to price cart", nil)
	}
}
