package checkout

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/discount"
	"github.com/noah-isme/toko-pricing/internal/pricing"
	"github.com/noah-isme/toko-pricing/internal/tax"
)

var (
	testShop = uuid.MustParse("5e0b6a2c-1d44-4e0f-8c3a-9a7d2b1c0f11")
	testNow  = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

type sliceStore []discount.Discount

func (s sliceStore) FindActiveByCode(_ context.Context, shopID uuid.UUID, code string, now time.Time) (discount.Discount, error) {
	for _, d := range s {
		if d.ShopID == shopID && d.Code != "" && strings.EqualFold(d.Code, code) && d.ActiveAt(now) {
			return d, nil
		}
	}
	return discount.Discount{}, discount.ErrInvalidDiscountCode
}

func (s sliceStore) ListActiveAutomatic(_ context.Context, shopID uuid.UUID, now time.Time) ([]discount.Discount, error) {
	var out []discount.Discount
	for _, d := range s {
		if d.ShopID == shopID && d.Method == discount.MethodAutomatic && d.ActiveAt(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (sliceStore) CountCustomerUsage(context.Context, uuid.UUID, string) (int64, error) {
	return 0, nil
}

type staticZones map[string]*tax.Zone

func (z staticZones) ResolveZone(_ context.Context, _ uuid.UUID, addr tax.Address) (*tax.Zone, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return z[strings.ToUpper(addr.Country)], nil
}

func newDiscount(method discount.Method, code string, rule discount.Rule, combines ...discount.Category) discount.Discount {
	d := discount.Discount{
		ID:        uuid.New(),
		ShopID:    testShop,
		Title:     code,
		Method:    method,
		Code:      code,
		Rule:      rule,
		IsActive:  true,
		CreatedAt: testNow.Add(-time.Hour),
	}
	for _, c := range combines {
		switch c {
		case discount.CategoryProduct:
			d.CombinesWithProductDiscounts = true
		case discount.CategoryOrder:
			d.CombinesWithOrderDiscounts = true
		case discount.CategoryShipping:
			d.CombinesWithShippingDiscounts = true
		}
	}
	return d
}

func newService(ds ...discount.Discount) *Service {
	resolver := &discount.Resolver{Store: sliceStore(ds), Now: func() time.Time { return testNow }}
	return &Service{
		Discounts: &discount.Service{Resolver: resolver, Logger: zerolog.Nop()},
		Tax: staticZones{
			"NL": {Code: "NL", Name: "Netherlands", Country: "NL", Rate: dec("0.21"), TaxShipping: false},
			"DE": {Code: "DE", Name: "Germany", Country: "DE", Rate: dec("0.19"), TaxShipping: true},
		},
		Logger: zerolog.Nop(),
	}
}

var cart = []pricing.CartLine{
	{ProductID: 1, UnitPrice: dec("50.00"), Quantity: 2},
	{ProductID: 2, UnitPrice: dec("21.00"), Quantity: 1},
}

func TestQuoteCombinesAutomaticCodesAndTax(t *testing.T) {
	svc := newService(
		newDiscount(discount.MethodAutomatic, "", discount.ProductRule{ValueType: discount.ValueTypePercentage, Value: dec("10"), ProductIDs: []int64{2}}, discount.CategoryOrder),
		newDiscount(discount.MethodCode, "SAVE10", discount.OrderRule{ValueType: discount.ValueTypePercentage, Value: dec("10")}, discount.CategoryProduct),
		newDiscount(discount.MethodCode, "SHIP", discount.ShippingRule{ValueType: discount.ValueTypePercentage, Value: dec("100")}),
	)
	addr := tax.Address{Country: "nl"}
	q, err := svc.Quote(context.Background(), Input{
		ShopID:       testShop,
		Lines:        cart,
		Codes:        []string{"SAVE10", " save10 ", "SHIP", "NOPE"},
		ShippingCost: dec("9.00"),
		Address:      &addr,
	})
	require.NoError(t, err)

	requireAmount(t, "121.00", q.Subtotal)
	requireAmount(t, "2.10", q.AutomaticDiscountTotal)
	requireAmount(t, "12.10", q.PromoDiscount)
	requireAmount(t, "0", q.ShippingDiscountTotal)
	requireAmount(t, "115.80", q.Total)
	requireAmount(t, "18.54", q.TaxTotal)
	requireAmount(t, "0.21", q.TaxRate)
	require.False(t, q.Negative)

	require.Len(t, q.Applied, 1)
	require.Equal(t, "SAVE10", q.Applied[0].Discount.Code)
	require.Len(t, q.Rejected, 3)
	require.Equal(t, RejectedCode{Code: "save10", Message: MessageDuplicateCode}, q.Rejected[0])
	require.Equal(t, "SHIP", q.Rejected[1].Code)
	require.Contains(t, q.Rejected[1].Message, "cannot be combined")
	require.Equal(t, "NOPE", q.Rejected[2].Code)
}

func TestQuoteAdmitsCodesInSubmittedOrder(t *testing.T) {
	ship := newDiscount(discount.MethodCode, "SHIP", discount.ShippingRule{ValueType: discount.ValueTypePercentage, Value: dec("100")})
	save := newDiscount(discount.MethodCode, "SAVE10", discount.OrderRule{ValueType: discount.ValueTypePercentage, Value: dec("10")}, discount.CategoryProduct)

	shipFirst, err := newService(ship, save).Quote(context.Background(), Input{
		ShopID: testShop, Lines: cart, Codes: []string{"SHIP", "SAVE10"}, ShippingCost: dec("9.00"),
	})
	require.NoError(t, err)
	require.Len(t, shipFirst.Applied, 1)
	require.Equal(t, "SHIP", shipFirst.Applied[0].Discount.Code)
	requireAmount(t, "9.00", shipFirst.ShippingDiscountTotal)
	requireAmount(t, "121.00", shipFirst.Total)

	saveFirst, err := newService(ship, save).Quote(context.Background(), Input{
		ShopID: testShop, Lines: cart, Codes: []string{"SAVE10", "SHIP"}, ShippingCost: dec("9.00"),
	})
	require.NoError(t, err)
	require.Len(t, saveFirst.Applied, 1)
	require.Equal(t, "SAVE10", saveFirst.Applied[0].Discount.Code)
	requireAmount(t, "117.90", saveFirst.Total)
}

func TestQuoteTaxesNetShippingWhenZoneDoes(t *testing.T) {
	addr := tax.Address{Country: "DE"}
	q, err := newService().Quote(context.Background(), Input{
		ShopID:       testShop,
		Lines:        []pricing.CartLine{{ProductID: 1, UnitPrice: dec("100.00"), Quantity: 1}},
		ShippingCost: dec("19.00"),
		Address:      &addr,
	})
	require.NoError(t, err)
	requireAmount(t, "119.00", q.Total)
	requireAmount(t, "19.00", q.TaxTotal)
	require.Equal(t, "DE", q.TaxZone.Code)
}

func TestQuoteReportsNegativeTotals(t *testing.T) {
	svc := newService(
		newDiscount(discount.MethodAutomatic, "", discount.OrderRule{ValueType: discount.ValueTypeFixed, Value: dec("100")}, discount.CategoryOrder),
		newDiscount(discount.MethodCode, "EXTRA", discount.OrderRule{ValueType: discount.ValueTypeFixed, Value: dec("50")}, discount.CategoryOrder),
	)
	q, err := svc.Quote(context.Background(), Input{
		ShopID:  testShop,
		Lines:   []pricing.CartLine{{ProductID: 1, UnitPrice: dec("100.00"), Quantity: 1}},
		Codes:   []string{"EXTRA"},
		Address: &tax.Address{Country: "NL"},
	})
	require.NoError(t, err)
	requireAmount(t, "-50.00", q.Total)
	require.True(t, q.Negative)
	require.True(t, q.TaxTotal.IsZero())
}

func TestQuoteWithoutAddressOrZone(t *testing.T) {
	q, err := newService().Quote(context.Background(), Input{ShopID: testShop, Lines: cart, Address: &tax.Address{Country: "US"}})
	require.NoError(t, err)
	require.Nil(t, q.TaxZone)
	require.True(t, q.TaxTotal.IsZero())
	requireAmount(t, "121.00", q.Total)
}

func TestQuoteRejectsMalformedLines(t *testing.T) {
	_, err := newService().Quote(context.Background(), Input{
		ShopID: testShop,
		Lines:  []pricing.CartLine{{ProductID: 1, UnitPrice: dec("-1"), Quantity: 1}},
	})
	require.ErrorIs(t, err, pricing.ErrMalformedCartLine)
}
