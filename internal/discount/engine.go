package discount

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/money"
	"github.com/noah-isme/toko-pricing/internal/pricing"
)

const (
	// MessageNoEligibleLines is reported when nothing in the cart is targeted.
	MessageNoEligibleLines = "no eligible lines"
	// MessageNoEffect is reported when the discount matched but is worth nothing.
	MessageNoEffect = "discount has no effect"
)

// Application is one discount evaluated against one cart.
type Application struct {
	Discount   Discount
	CustomerID string
	Lines      []pricing.CartLine
	Subtotal   decimal.Decimal
	ProductIDs map[int64]struct{}
}

// NewApplication derives the subtotal and product set from lines.
func NewApplication(d Discount, customerID string, lines []pricing.CartLine) Application {
	return Application{
		Discount:   d,
		CustomerID: customerID,
		Lines:      lines,
		Subtotal:   pricing.Subtotal(lines),
		ProductIDs: pricing.ProductIDs(lines),
	}
}

// LineAdjustment is the discount attributed to one cart line key.
type LineAdjustment struct {
	ProductID      int64
	VariantID      int64
	DiscountAmount decimal.Decimal
	IsGift         bool
}

// Result is the outcome of evaluating one discount.
type Result struct {
	OK                     bool
	Message                string
	TotalDiscount          decimal.Decimal
	OrderDiscountAmount    decimal.Decimal
	ProductDiscountAmount  decimal.Decimal
	ShippingDiscountAmount decimal.Decimal
	FreeShipping           bool
	// ShippingPercent is a percentage-off shipping discount that becomes an
	// amount once a shipping cost is known.
	ShippingPercent decimal.Decimal
	LineAdjustments map[string]LineAdjustment
}

func notEligible(message string) Result {
	return Result{OK: false, Message: message, LineAdjustments: map[string]LineAdjustment{}}
}

func (r Result) withTotal() Result {
	r.TotalDiscount = r.OrderDiscountAmount.Add(r.ProductDiscountAmount).Add(r.ShippingDiscountAmount)
	return r
}

// WithShippingCost resolves shipping amounts against cost: free shipping and
// percentages become amounts, fixed amounts are capped at cost.
func (r Result) WithShippingCost(cost decimal.Decimal) Result {
	cost = money.NonNegative(cost)
	out := r
	out.LineAdjustments = r.LineAdjustments
	switch {
	case r.FreeShipping:
		out.ShippingDiscountAmount = cost
	case r.ShippingPercent.IsPositive():
		out.ShippingDiscountAmount = money.Percent(cost, r.ShippingPercent)
	default:
		out.ShippingDiscountAmount = decimal.Min(r.ShippingDiscountAmount, cost)
	}
	return out.withTotal()
}

// Adjustments returns the line adjustments ordered by product then variant.
func (r Result) Adjustments() []LineAdjustment {
	out := make([]LineAdjustment, 0, len(r.LineAdjustments))
	for _, adj := range r.LineAdjustments {
		out = append(out, adj)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].VariantID < out[j].VariantID
	})
	return out
}

// Evaluate computes the effect of app's discount on its cart. It is pure.
// An unknown rule implementation is a programming error and panics.
func Evaluate(app Application) Result {
	if len(app.Lines) == 0 {
		return notEligible(MessageNoEligibleLines)
	}
	switch rule := app.Discount.Rule.(type) {
	case OrderRule:
		return evaluateOrder(app, rule)
	case ProductRule:
		return evaluateProduct(app, rule)
	case ShippingRule:
		return evaluateShipping(rule)
	case BuyXGetYRule:
		return evaluateBuyXGetY(app, rule)
	default:
		panic(fmt.Sprintf("discount: unsupported rule %T", app.Discount.Rule))
	}
}

// amountOff applies a percentage or a capped fixed amount to base.
func amountOff(vt ValueType, value, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() || !value.IsPositive() {
		return decimal.Zero
	}
	if vt == ValueTypePercentage {
		return money.Percent(base, value)
	}
	return money.Round(decimal.Min(value, base))
}

func evaluateOrder(app Application, rule OrderRule) Result {
	amount := amountOff(rule.ValueType, rule.Value, app.Subtotal)
	if !amount.IsPositive() {
		return notEligible(MessageNoEffect)
	}
	return Result{
		OK:                  true,
		OrderDiscountAmount: amount,
		LineAdjustments:     map[string]LineAdjustment{},
	}.withTotal()
}

func evaluateProduct(app Application, rule ProductRule) Result {
	targets := idSet(rule.ProductIDs)
	adjustments := map[string]LineAdjustment{}
	matched := false
	total := decimal.Zero
	for _, line := range app.Lines {
		if _, ok := targets[line.ProductID]; !ok {
			continue
		}
		matched = true
		amount := amountOff(rule.ValueType, rule.Value, line.Subtotal())
		if !amount.IsPositive() {
			continue
		}
		key := line.Key()
		adj := adjustments[key]
		adj.ProductID = line.ProductID
		adj.VariantID = line.Variant()
		adj.DiscountAmount = adj.DiscountAmount.Add(amount)
		adjustments[key] = adj
		total = total.Add(amount)
	}
	if !matched {
		return notEligible(MessageNoEligibleLines)
	}
	if !total.IsPositive() {
		return notEligible(MessageNoEffect)
	}
	return Result{
		OK:                    true,
		ProductDiscountAmount: total,
		LineAdjustments:       adjustments,
	}.withTotal()
}

func evaluateShipping(rule ShippingRule) Result {
	res := Result{OK: true, LineAdjustments: map[string]LineAdjustment{}}
	if !rule.Value.IsPositive() {
		return notEligible(MessageNoEffect)
	}
	switch {
	case rule.ValueType == ValueTypeFixed:
		res.ShippingDiscountAmount = money.Round(rule.Value)
	case money.IsHundred(rule.Value):
		res.FreeShipping = true
	default:
		res.ShippingPercent = rule.Value
	}
	return res.withTotal()
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
