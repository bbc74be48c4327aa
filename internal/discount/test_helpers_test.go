package discount

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store.
type memStore struct {
	discounts []Discount
	usage     map[string]int64
	err       error
}

func (m *memStore) FindActiveByCode(_ context.Context, shopID uuid.UUID, code string, now time.Time) (Discount, error) {
	if m.err != nil {
		return Discount{}, m.err
	}
	var found []Discount
	for _, d := range m.discounts {
		if d.ShopID == shopID && d.Code != "" && strings.EqualFold(d.Code, strings.TrimSpace(code)) && d.ActiveAt(now) {
			found = append(found, d)
		}
	}
	if len(found) == 0 {
		return Discount{}, ErrInvalidDiscountCode
	}
	SortByPriority(found)
	return found[0], nil
}

func (m *memStore) ListActiveAutomatic(_ context.Context, shopID uuid.UUID, now time.Time) ([]Discount, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []Discount
	for _, d := range m.discounts {
		if d.ShopID == shopID && d.Method == MethodAutomatic && d.ActiveAt(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) CountCustomerUsage(_ context.Context, discountID uuid.UUID, customerID string) (int64, error) {
	return m.usage[discountID.String()+"/"+customerID], nil
}

var (
	testShop = uuid.MustParse("7c1f1f4e-5d5c-4c55-9d1f-2f8f0a6b1e01")
	testNow  = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
)

func codeDiscount(code string, rule Rule) Discount {
	return Discount{
		ID:        uuid.New(),
		ShopID:    testShop,
		Title:     code + " offer",
		Method:    MethodCode,
		Code:      code,
		Rule:      rule,
		IsActive:  true,
		CreatedAt: testNow.Add(-24 * time.Hour),
	}
}

func automaticDiscount(title string, priority int, rule Rule) Discount {
	return Discount{
		ID:        uuid.New(),
		ShopID:    testShop,
		Title:     title,
		Method:    MethodAutomatic,
		Rule:      rule,
		IsActive:  true,
		Priority:  priority,
		CreatedAt: testNow.Add(-24 * time.Hour),
	}
}

func newResolver(ds ...Discount) (*Resolver, *memStore) {
	store := &memStore{discounts: ds, usage: map[string]int64{}}
	return &Resolver{Store: store, Now: func() time.Time { return testNow }}, store
}

func ptrTime(t time.Time) *time.Time { return &t }

func ptrInt32(v int32) *int32 { return &v }
