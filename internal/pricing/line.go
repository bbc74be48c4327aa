package pricing

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrMalformedCartLine is returned when a cart line fails structural validation.
var ErrMalformedCartLine = errors.New("malformed cart line")

// CartLine is one purchasable row of a cart.
type CartLine struct {
	ProductID int64
	VariantID *int64
	UnitPrice decimal.Decimal
	Quantity  int
}

// Variant returns the variant id, 0 when the line has none.
func (l CartLine) Variant() int64 {
	if l.VariantID == nil {
		return 0
	}
	return *l.VariantID
}

// Subtotal returns unit price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Key identifies the line for adjustment bookkeeping.
func (l CartLine) Key() string {
	return LineKey(l.ProductID, l.VariantID)
}

// LineKey formats "<productId>-<variantId>" with 0 standing for no variant.
func LineKey(productID int64, variantID *int64) string {
	var variant int64
	if variantID != nil {
		variant = *variantID
	}
	return strconv.FormatInt(productID, 10) + "-" + strconv.FormatInt(variant, 10)
}

// Validate checks a single line.
func (l CartLine) Validate() error {
	switch {
	case l.ProductID <= 0:
		return fmt.Errorf("%w: product id must be positive", ErrMalformedCartLine)
	case l.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", ErrMalformedCartLine)
	case l.UnitPrice.IsNegative():
		return fmt.Errorf("%w: unit price must not be negative", ErrMalformedCartLine)
	case l.VariantID != nil && *l.VariantID < 0:
		return fmt.Errorf("%w: variant id must not be negative", ErrMalformedCartLine)
	}
	return nil
}

// ValidateLines validates every line, reporting the first offending index.
func ValidateLines(lines []CartLine) error {
	for i, line := range lines {
		if err := line.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	return nil
}

// Subtotal sums the line subtotals.
func Subtotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ProductIDs returns the distinct product ids present in lines.
func ProductIDs(lines []CartLine) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(lines))
	for _, line := range lines {
		ids[line.ProductID] = struct{}{}
	}
	return ids
}
