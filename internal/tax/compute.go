package tax

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/money"
)

// Compute applies zone's rate to subtotal and, unless the zone excludes it,
// shipping. The shipping component takes the remainder of the rounded total
// so the breakdown sums exactly. A nil zone yields zero tax.
func Compute(zone *Zone, subtotal, shipping decimal.Decimal) Result {
	if zone == nil || !zone.Rate.IsPositive() {
		res := Result{TaxTotal: decimal.Zero, TaxRate: decimal.Zero, Zone: zone, Breakdown: []Component{}}
		if zone != nil {
			res.TaxRate = zone.Rate
		}
		return res
	}
	rate := zone.Rate
	base := subtotal
	includeShipping := zone.TaxShipping && shipping.IsPositive()
	if includeShipping {
		base = base.Add(shipping)
	}
	total := money.Round(base.Mul(rate))
	subtotalTax := money.Round(subtotal.Mul(rate))
	if subtotalTax.GreaterThan(total) {
		subtotalTax = total
	}
	breakdown := []Component{{Name: ComponentSubtotal, TaxableAmount: subtotal, TaxAmount: subtotalTax}}
	if includeShipping {
		breakdown = append(breakdown, Component{
			Name:          ComponentShipping,
			TaxableAmount: shipping,
			TaxAmount:     total.Sub(subtotalTax),
		})
	}
	return Result{TaxTotal: total, TaxRate: rate, Zone: zone, Breakdown: breakdown}
}

// ExtractIncluded splits a tax-inclusive price at rate. Only the tax is
// rounded; the net price is the remainder.
func ExtractIncluded(price, rate decimal.Decimal) IncludedResult {
	if !rate.IsPositive() {
		return IncludedResult{TaxTotal: decimal.Zero, TaxRate: decimal.Zero, PriceExcludingTax: price}
	}
	net := price.Div(decimal.NewFromInt(1).Add(rate))
	tax := money.Round(price.Sub(net))
	return IncludedResult{TaxTotal: tax, TaxRate: rate, PriceExcludingTax: price.Sub(tax)}
}

// AddTax returns the tax-inclusive price for a net amount at rate.
func AddTax(net, rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return money.Round(net)
	}
	return money.Round(net.Mul(decimal.NewFromInt(1).Add(rate)))
}
