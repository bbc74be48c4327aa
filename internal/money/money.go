// Package money holds decimal helpers shared by the pricing components.
package money

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for currency amounts.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round rounds half away from zero to currency precision. Amounts handled by
// the engine are non-negative, so this is round-half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Percent returns pct percent of base, rounded. pct is clamped to [0, 100].
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	pct = Clamp(pct, decimal.Zero, hundred)
	return Round(base.Mul(pct).Div(hundred))
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// NonNegative returns zero for negative amounts.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Sum adds the provided amounts.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// IsHundred reports whether pct is at least 100.
func IsHundred(pct decimal.Decimal) bool {
	return pct.GreaterThanOrEqual(hundred)
}

// Hundred returns the decimal 100.
func Hundred() decimal.Decimal { return hundred }

// JSON renders an amount with exactly two fractional digits as a JSON number.
func JSON(d decimal.Decimal) json.Number {
	return json.Number(Round(d).StringFixed(Places))
}

// Rate renders a rate fraction as a JSON number without trailing padding.
func Rate(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
