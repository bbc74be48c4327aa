package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/money"
)

// Inputs carries the already-computed components folded into an order total.
type Inputs struct {
	Subtotal               decimal.Decimal
	PromoDiscount          decimal.Decimal
	AutomaticDiscountTotal decimal.Decimal
	ShippingCostBase       decimal.Decimal
	ShippingDiscountTotal  decimal.Decimal
	TaxTotal               decimal.Decimal
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal               decimal.Decimal
	PromoDiscount          decimal.Decimal
	AutomaticDiscountTotal decimal.Decimal
	ShippingCost           decimal.Decimal
	ShippingDiscountTotal  decimal.Decimal
	Shipping               decimal.Decimal
	TaxTotal               decimal.Decimal
	Total                  decimal.Decimal
	// Negative is set when discounts exceed what the order is worth. The
	// total is reported as computed and left for the caller to reject.
	Negative bool
}

// Aggregate folds subtotal, discounts and shipping into the order total.
// Tax is carried for display only: prices are tax-inclusive.
func Aggregate(in Inputs) Summary {
	shipping := money.NonNegative(in.ShippingCostBase.Sub(in.ShippingDiscountTotal))
	total := in.Subtotal.
		Sub(in.PromoDiscount).
		Sub(in.AutomaticDiscountTotal).
		Add(shipping)
	total = money.Round(total)
	return Summary{
		Subtotal:               in.Subtotal,
		PromoDiscount:          in.PromoDiscount,
		AutomaticDiscountTotal: in.AutomaticDiscountTotal,
		ShippingCost:           in.ShippingCostBase,
		ShippingDiscountTotal:  in.ShippingDiscountTotal,
		Shipping:               shipping,
		TaxTotal:               in.TaxTotal,
		Total:                  total,
		Negative:               total.IsNegative(),
	}
}
