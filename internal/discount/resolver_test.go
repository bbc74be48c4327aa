package discount

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var tenPercent = OrderRule{ValueType: ValueTypePercentage, Value: dec("10")}

func TestResolveCodeCaseInsensitive(t *testing.T) {
	d := codeDiscount("Spring10", tenPercent)
	r, _ := newResolver(d)

	got, err := r.ResolveCode(context.Background(), testShop, "  spring10 ", Cart{Subtotal: dec("50")}, Categories{})
	require.NoError(t, err)
	require.Equal(t, d.ID, got.ID)
}

func TestResolveCodeUnknownOrOutsideWindow(t *testing.T) {
	expired := codeDiscount("OLD", tenPercent)
	expired.EndsAt = ptrTime(testNow.Add(-time.Minute))
	future := codeDiscount("SOON", tenPercent)
	future.StartsAt = ptrTime(testNow.Add(time.Minute))
	inactive := codeDiscount("OFF", tenPercent)
	inactive.IsActive = false
	otherShop := codeDiscount("ELSEWHERE", tenPercent)
	otherShop.ShopID = uuid.New()
	r, _ := newResolver(expired, future, inactive, otherShop)

	for _, code := range []string{"OLD", "SOON", "OFF", "ELSEWHERE", "NOPE", ""} {
		_, err := r.ResolveCode(context.Background(), testShop, code, Cart{}, Categories{})
		require.ErrorIs(t, err, ErrInvalidDiscountCode, code)
		_, ok := RejectionMessage(err)
		require.True(t, ok)
	}
}

func TestResolveCodeWindowBoundsInclusive(t *testing.T) {
	d := codeDiscount("EDGE", tenPercent)
	d.StartsAt = ptrTime(testNow)
	d.EndsAt = ptrTime(testNow)
	r, _ := newResolver(d)
	_, err := r.ResolveCode(context.Background(), testShop, "EDGE", Cart{}, Categories{})
	require.NoError(t, err)
}

func TestResolveCodeCombinability(t *testing.T) {
	d := codeDiscount("SHIPFREE", ShippingRule{ValueType: ValueTypePercentage, Value: dec("100")})
	d.CombinesWithOrderDiscounts = true
	r, _ := newResolver(d)

	_, err := r.ResolveCode(context.Background(), testShop, "SHIPFREE", Cart{}, NewCategories(CategoryOrder))
	require.NoError(t, err)

	_, err = r.ResolveCode(context.Background(), testShop, "SHIPFREE", Cart{}, NewCategories(CategoryOrder, CategoryProduct))
	require.ErrorIs(t, err, ErrNonCombinableDiscount)
	msg, _ := RejectionMessage(err)
	require.Contains(t, msg, "product")
}

func TestNonCombinableRegardlessOfOwnType(t *testing.T) {
	rules := []Rule{
		tenPercent,
		ProductRule{ValueType: ValueTypeFixed, Value: dec("1"), ProductIDs: []int64{1}},
		ShippingRule{ValueType: ValueTypeFixed, Value: dec("1")},
		BuyXGetYRule{BuyQuantity: 1, GetQuantity: 1},
	}
	existing, err := ParseCategories([]string{"product"})
	require.NoError(t, err)
	for _, rule := range rules {
		d := codeDiscount("X", rule)
		d.CombinesWithOrderDiscounts = true
		d.CombinesWithShippingDiscounts = true
		r, _ := newResolver(d)
		_, err := r.ResolveCode(context.Background(), testShop, "X", Cart{}, existing)
		require.ErrorIs(t, err, ErrNonCombinableDiscount, string(rule.Type()))
	}
}

func TestResolveCodeEligibility(t *testing.T) {
	minimum := codeDiscount("BIG", tenPercent)
	minimum.MinimumSubtotal = dec("100")
	exhausted := codeDiscount("GONE", tenPercent)
	exhausted.UsageLimit = ptrInt32(5)
	exhausted.UsedCount = 5
	perCustomer := codeDiscount("ONCE", tenPercent)
	perCustomer.PerCustomerLimit = ptrInt32(1)
	r, store := newResolver(minimum, exhausted, perCustomer)
	store.usage[perCustomer.ID.String()+"/cust-1"] = 1

	_, err := r.ResolveCode(context.Background(), testShop, "BIG", Cart{Subtotal: dec("99.99")}, Categories{})
	require.ErrorIs(t, err, ErrDiscountNotEligible)
	_, err = r.ResolveCode(context.Background(), testShop, "BIG", Cart{Subtotal: dec("100")}, Categories{})
	require.NoError(t, err)

	_, err = r.ResolveCode(context.Background(), testShop, "GONE", Cart{}, Categories{})
	require.ErrorIs(t, err, ErrDiscountNotEligible)

	_, err = r.ResolveCode(context.Background(), testShop, "ONCE", Cart{CustomerID: "cust-1"}, Categories{})
	require.ErrorIs(t, err, ErrDiscountNotEligible)
	_, err = r.ResolveCode(context.Background(), testShop, "ONCE", Cart{CustomerID: "cust-2"}, Categories{})
	require.NoError(t, err)
}

func TestResolveCodeStoreFailureIsNotRejection(t *testing.T) {
	r, store := newResolver()
	store.err = errors.New("connection refused")
	_, err := r.ResolveCode(context.Background(), testShop, "ANY", Cart{}, Categories{})
	require.Error(t, err)
	_, ok := RejectionMessage(err)
	require.False(t, ok)
}

func TestResolveAutomaticOrdering(t *testing.T) {
	low := automaticDiscount("low", 1, tenPercent)
	highOld := automaticDiscount("high-old", 5, tenPercent)
	highOld.CreatedAt = testNow.Add(-48 * time.Hour)
	highNew := automaticDiscount("high-new", 5, tenPercent)
	ineligible := automaticDiscount("min", 9, tenPercent)
	ineligible.MinimumSubtotal = dec("1000")
	code := codeDiscount("CODE", tenPercent)
	r, _ := newResolver(low, highNew, code, ineligible, highOld)

	got, err := r.ResolveAutomatic(context.Background(), testShop, Cart{Subtotal: dec("10")})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "high-old", got[0].Title)
	require.Equal(t, "high-new", got[1].Title)
	require.Equal(t, "low", got[2].Title)
}

func TestCategoriesImmutable(t *testing.T) {
	base := NewCategories(CategoryOrder)
	next := base.With(CategoryShipping)
	require.True(t, next.Has(CategoryShipping))
	require.False(t, base.Has(CategoryShipping))
	require.Equal(t, []Category{CategoryOrder, CategoryShipping}, next.List())

	_, err := ParseCategories([]string{"bogus"})
	require.Error(t, err)
	parsed, err := ParseCategories([]string{"buy_x_get_y"})
	require.NoError(t, err)
	require.True(t, parsed.Has(CategoryProduct))
}
