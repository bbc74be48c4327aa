package discount

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/pricing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(productID int64, qty int, price string) pricing.CartLine {
	return pricing.CartLine{ProductID: productID, Quantity: qty, UnitPrice: dec(price)}
}

func variantLine(productID, variantID int64, qty int, price string) pricing.CartLine {
	l := line(productID, qty, price)
	l.VariantID = &variantID
	return l
}

func discountWith(rule Rule) Discount {
	return Discount{ID: uuid.New(), Method: MethodCode, Code: "TEST", Rule: rule, IsActive: true}
}

func evaluate(rule Rule, lines ...pricing.CartLine) Result {
	return Evaluate(NewApplication(discountWith(rule), "", lines))
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(dec(want)), "expected %s, got %s", want, got.StringFixed(2))
}

func TestOrderPercentageScenario(t *testing.T) {
	res := evaluate(OrderRule{ValueType: ValueTypePercentage, Value: dec("10")},
		line(1, 2, "25.00"), line(2, 1, "50.00"))

	require.True(t, res.OK)
	requireAmount(t, "10.00", res.OrderDiscountAmount)
	requireAmount(t, "10.00", res.TotalDiscount)
	require.Empty(t, res.LineAdjustments)

	shipping := dec("4.95")
	summary := pricing.Aggregate(pricing.Inputs{
		Subtotal:         dec("100.00"),
		PromoDiscount:    res.OrderDiscountAmount,
		ShippingCostBase: shipping,
	})
	requireAmount(t, "94.95", summary.Total)
}

func TestOrderFixedNeverExceedsSubtotal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		var lines []pricing.CartLine
		for n := rng.Intn(4) + 1; n > 0; n-- {
			cents := rng.Int63n(10000)
			lines = append(lines, pricing.CartLine{
				ProductID: rng.Int63n(20) + 1,
				Quantity:  rng.Intn(3) + 1,
				UnitPrice: decimal.New(cents, -2),
			})
		}
		subtotal := pricing.Subtotal(lines)
		value := subtotal.Add(decimal.New(rng.Int63n(5000)+1, -2))
		res := evaluate(OrderRule{ValueType: ValueTypeFixed, Value: value}, lines...)
		if subtotal.IsZero() {
			require.False(t, res.OK)
			continue
		}
		require.True(t, res.OK)
		require.True(t, res.OrderDiscountAmount.Equal(subtotal), "iteration %d: %s != %s", i, res.OrderDiscountAmount, subtotal)
	}
}

func TestProductScenarioTargetsOnlyListedProducts(t *testing.T) {
	res := evaluate(ProductRule{ValueType: ValueTypePercentage, Value: dec("50"), ProductIDs: []int64{5}},
		line(5, 2, "20.00"), line(7, 1, "30.00"))

	require.True(t, res.OK)
	requireAmount(t, "20.00", res.ProductDiscountAmount)
	require.Len(t, res.LineAdjustments, 1)
	adj, ok := res.LineAdjustments["5-0"]
	require.True(t, ok)
	requireAmount(t, "20.00", adj.DiscountAmount)
	_, touched := res.LineAdjustments["7-0"]
	require.False(t, touched)
}

func TestProductLineSumEqualsProductAmount(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		var lines []pricing.CartLine
		for n := rng.Intn(6) + 1; n > 0; n-- {
			l := pricing.CartLine{
				ProductID: rng.Int63n(6) + 1,
				Quantity:  rng.Intn(5) + 1,
				UnitPrice: decimal.New(rng.Int63n(9999)+1, -2),
			}
			if rng.Intn(2) == 0 {
				v := rng.Int63n(3) + 1
				l.VariantID = &v
			}
			lines = append(lines, l)
		}
		rule := ProductRule{ValueType: ValueTypePercentage, Value: decimal.New(rng.Int63n(10000), -2), ProductIDs: []int64{1, 2, 3}}
		if rng.Intn(2) == 0 {
			rule.ValueType = ValueTypeFixed
			rule.Value = decimal.New(rng.Int63n(5000), -2)
		}
		res := evaluate(rule, lines...)
		sum := decimal.Zero
		for _, adj := range res.LineAdjustments {
			sum = sum.Add(adj.DiscountAmount)
		}
		require.True(t, sum.Equal(res.ProductDiscountAmount), "iteration %d", i)
		require.True(t, res.TotalDiscount.Equal(res.OrderDiscountAmount.Add(res.ProductDiscountAmount).Add(res.ShippingDiscountAmount)))
	}
}

func TestProductFixedCappedPerLineAndAccumulatedByKey(t *testing.T) {
	res := evaluate(ProductRule{ValueType: ValueTypeFixed, Value: dec("15"), ProductIDs: []int64{3}},
		variantLine(3, 9, 1, "10.00"), variantLine(3, 9, 2, "10.00"), line(3, 1, "40.00"))

	require.True(t, res.OK)
	requireAmount(t, "25.00", res.LineAdjustments["3-9"].DiscountAmount)
	requireAmount(t, "15.00", res.LineAdjustments["3-0"].DiscountAmount)
	requireAmount(t, "40.00", res.ProductDiscountAmount)
}

func TestNoEligibleLines(t *testing.T) {
	res := evaluate(ProductRule{ValueType: ValueTypePercentage, Value: dec("10"), ProductIDs: []int64{99}}, line(1, 1, "5.00"))
	require.False(t, res.OK)
	require.Equal(t, MessageNoEligibleLines, res.Message)

	res = evaluate(OrderRule{ValueType: ValueTypePercentage, Value: dec("10")})
	require.False(t, res.OK)
	require.Equal(t, MessageNoEligibleLines, res.Message)
}

func TestPercentagesAreClamped(t *testing.T) {
	res := evaluate(OrderRule{ValueType: ValueTypePercentage, Value: dec("150")}, line(1, 1, "80.00"))
	require.True(t, res.OK)
	requireAmount(t, "80.00", res.OrderDiscountAmount)

	res = evaluate(OrderRule{ValueType: ValueTypePercentage, Value: dec("-5")}, line(1, 1, "80.00"))
	require.False(t, res.OK)
	require.Equal(t, MessageNoEffect, res.Message)
}

func TestRoundingHalfUpPerComponent(t *testing.T) {
	res := evaluate(OrderRule{ValueType: ValueTypePercentage, Value: dec("15")}, line(1, 1, "0.10"))
	requireAmount(t, "0.02", res.OrderDiscountAmount)
}

func TestShippingVariants(t *testing.T) {
	cart := []pricing.CartLine{line(1, 1, "30.00")}

	free := evaluate(ShippingRule{ValueType: ValueTypePercentage, Value: dec("100")}, cart...)
	require.True(t, free.OK)
	require.True(t, free.FreeShipping)
	requireAmount(t, "0", free.ShippingDiscountAmount)
	resolved := free.WithShippingCost(dec("6.50"))
	requireAmount(t, "6.50", resolved.ShippingDiscountAmount)
	requireAmount(t, "6.50", resolved.TotalDiscount)
	requireAmount(t, "0", free.TotalDiscount)

	fixed := evaluate(ShippingRule{ValueType: ValueTypeFixed, Value: dec("10")}, cart...)
	requireAmount(t, "10.00", fixed.ShippingDiscountAmount)
	requireAmount(t, "4.00", fixed.WithShippingCost(dec("4.00")).ShippingDiscountAmount)

	half := evaluate(ShippingRule{ValueType: ValueTypePercentage, Value: dec("50")}, cart...)
	require.False(t, half.FreeShipping)
	requireAmount(t, "50", half.ShippingPercent)
	requireAmount(t, "2.48", half.WithShippingCost(dec("4.95")).ShippingDiscountAmount)
}

type bogusRule struct{}

func (bogusRule) Type() Type { return "bogus" }
func (bogusRule) sealed()    {}

func TestUnknownRulePanics(t *testing.T) {
	require.Panics(t, func() {
		evaluate(bogusRule{}, line(1, 1, "1.00"))
	})
}

func TestAdjustmentsSorted(t *testing.T) {
	res := evaluate(ProductRule{ValueType: ValueTypeFixed, Value: dec("1"), ProductIDs: []int64{1, 2}},
		variantLine(2, 1, 1, "5.00"), variantLine(1, 3, 1, "5.00"), line(1, 1, "5.00"))
	adjs := res.Adjustments()
	require.Len(t, adjs, 3)
	require.Equal(t, int64(1), adjs[0].ProductID)
	require.Equal(t, int64(0), adjs[0].VariantID)
	require.Equal(t, int64(3), adjs[1].VariantID)
	require.Equal(t, int64(2), adjs[2].ProductID)
}
