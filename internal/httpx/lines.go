package httpx

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/pricing"
)

// LineItem is the wire shape of a cart line. Quantity and price bounds are
// checked by pricing.ValidateLines so that they surface as domain errors.
type LineItem struct {
	ID        int64           `json:"id"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	VariantID *int64          `json:"variant_id,omitempty"`
}

// CartLines converts wire items into cart lines.
func CartLines(items []LineItem) []pricing.CartLine {
	lines := make([]pricing.CartLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.CartLine{
			ProductID: it.ID,
			VariantID: it.VariantID,
			UnitPrice: it.Price,
			Quantity:  it.Qty,
		})
	}
	return lines
}
