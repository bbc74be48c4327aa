package tax

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/httpx"
	"github.com/noah-isme/toko-pricing/internal/money"
	"github.com/noah-isme/toko-pricing/internal/shop"
)

// Handler exposes the storefront tax endpoints.
type Handler struct {
	Calc   *Calculator
	Logger zerolog.Logger
}

// AddressPayload is the wire shape of an address.
type AddressPayload struct {
	Country    string `json:"country" validate:"required,country"`
	State      string `json:"state,omitempty" validate:"max=64"`
	PostalCode string `json:"postal_code,omitempty" validate:"max=16"`
}

// Address converts the payload.
func (p AddressPayload) Address() Address {
	return Address{Country: p.Country, State: p.State, PostalCode: p.PostalCode}
}

type calculateRequest struct {
	Subtotal     decimal.Decimal  `json:"subtotal"`
	ShippingCost *decimal.Decimal `json:"shipping_cost,omitempty"`
	Address      AddressPayload   `json:"address"`
}

type includedRequest struct {
	Price   decimal.Decimal `json:"price"`
	Address AddressPayload  `json:"address"`
}

// ZoneRef is the short form of a zone in responses.
type ZoneRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

// ComponentResponse is one breakdown entry.
type ComponentResponse struct {
	Component     string      `json:"component"`
	TaxableAmount json.Number `json:"taxable_amount"`
	TaxAmount     json.Number `json:"tax_amount"`
}

// CalculateResponse is the body of a forward tax calculation.
type CalculateResponse struct {
	TaxTotal  json.Number         `json:"tax_total"`
	TaxRate   json.Number         `json:"tax_rate"`
	TaxZone   *ZoneRef            `json:"tax_zone"`
	Breakdown []ComponentResponse `json:"breakdown"`
}

type includedResponse struct {
	TaxTotal          json.Number `json:"tax_total"`
	TaxRate           json.Number `json:"tax_rate"`
	PriceExcludingTax json.Number `json:"price_excluding_tax"`
}

// NewCalculateResponse renders a Result.
func NewCalculateResponse(res Result) CalculateResponse {
	out := CalculateResponse{
		TaxTotal:  money.JSON(res.TaxTotal),
		TaxRate:   money.Rate(res.TaxRate),
		Breakdown: make([]ComponentResponse, 0, len(res.Breakdown)),
	}
	if res.Zone != nil {
		out.TaxZone = &ZoneRef{ID: res.Zone.ID, Name: res.Zone.Name, Code: res.Zone.Code}
	}
	for _, c := range res.Breakdown {
		out.Breakdown = append(out.Breakdown, ComponentResponse{
			Component:     c.Name,
			TaxableAmount: money.JSON(c.TaxableAmount),
			TaxAmount:     money.JSON(c.TaxAmount),
		})
	}
	return out
}

// Calculate handles forward tax calculation.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shop.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	var req calculateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	shipping := decimal.Zero
	if req.ShippingCost != nil {
		shipping = *req.ShippingCost
	}
	res, err := h.Calc.Calculate(r.Context(), shopID, req.Subtotal, req.Address.Address(), shipping)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, NewCalculateResponse(res))
}

// Included handles extraction of tax from a tax-inclusive price.
func (h *Handler) Included(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shop.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop is required", nil)
		return
	}
	var req includedRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.Calc.CalculateIncludedTax(r.Context(), shopID, req.Price, req.Address.Address())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, includedResponse{
		TaxTotal:          money.JSON(res.TaxTotal),
		TaxRate:           money.Rate(res.TaxRate),
		PriceExcludingTax: money.JSON(res.PriceExcludingTax),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidAddress) || errors.Is(err, ErrNegativeAmount) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	h.Logger.Error().Err(err).Msg("tax calculation failed")
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to calculate tax", nil)
}
