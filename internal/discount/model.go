package discount

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pricing/internal/money"
)

// Method describes how a discount reaches the cart.
type Method string

const (
	MethodCode      Method = "code"
	MethodAutomatic Method = "automatic"
)

// Type is the discount kind.
type Type string

const (
	TypeOrder    Type = "order"
	TypeProduct  Type = "product"
	TypeShipping Type = "shipping"
	TypeBuyXGetY Type = "buy_x_get_y"
)

// ValueType selects how Value is interpreted.
type ValueType string

const (
	ValueTypePercentage ValueType = "percentage"
	ValueTypeFixed      ValueType = "fixed"
)

// ParseMethod validates a persisted or requested method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodCode, MethodAutomatic:
		return m, nil
	}
	return "", fmt.Errorf("%w: method %q", ErrUnknownDiscountType, s)
}

// ParseType validates a discount type.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeOrder, TypeProduct, TypeShipping, TypeBuyXGetY:
		return t, nil
	}
	return "", fmt.Errorf("%w: type %q", ErrUnknownDiscountType, s)
}

// ParseValueType validates a value type.
func ParseValueType(s string) (ValueType, error) {
	switch v := ValueType(strings.ToLower(strings.TrimSpace(s))); v {
	case ValueTypePercentage, ValueTypeFixed:
		return v, nil
	}
	return "", fmt.Errorf("%w: value type %q", ErrUnknownDiscountType, s)
}

// Rule is the targeting and value of a discount. The set of implementations
// is closed: OrderRule, ProductRule, ShippingRule and BuyXGetYRule.
type Rule interface {
	Type() Type
	sealed()
}

// OrderRule discounts the whole cart subtotal.
type OrderRule struct {
	ValueType ValueType
	Value     decimal.Decimal
}

// ProductRule discounts lines whose product is in ProductIDs.
type ProductRule struct {
	ValueType  ValueType
	Value      decimal.Decimal
	ProductIDs []int64
}

// ShippingRule discounts the shipping charge.
type ShippingRule struct {
	ValueType ValueType
	Value     decimal.Decimal
}

// BuyXGetYRule gives GetQuantity units for every BuyQuantity units bought.
// Empty id sets match any product.
type BuyXGetYRule struct {
	BuyProductIDs []int64
	BuyQuantity   int
	GetProductIDs []int64
	GetQuantity   int
	Repeat        bool
}

func (OrderRule) Type() Type    { return TypeOrder }
func (ProductRule) Type() Type  { return TypeProduct }
func (ShippingRule) Type() Type { return TypeShipping }
func (BuyXGetYRule) Type() Type { return TypeBuyXGetY }

func (OrderRule) sealed()    {}
func (ProductRule) sealed()  {}
func (ShippingRule) sealed() {}
func (BuyXGetYRule) sealed() {}

// Discount is a configured discount belonging to a shop.
type Discount struct {
	ID       uuid.UUID
	ShopID   uuid.UUID
	Title    string
	Method   Method
	Code     string
	Rule     Rule
	IsActive bool
	StartsAt *time.Time
	EndsAt   *time.Time
	Priority int

	CombinesWithProductDiscounts  bool
	CombinesWithOrderDiscounts    bool
	CombinesWithShippingDiscounts bool

	MinimumSubtotal  decimal.Decimal
	UsageLimit       *int32
	UsedCount        int32
	PerCustomerLimit *int32

	CreatedAt time.Time
}

// Type returns the rule's discount type.
func (d Discount) Type() Type {
	if d.Rule == nil {
		return ""
	}
	return d.Rule.Type()
}

// Category returns the combinability category of the discount.
func (d Discount) Category() Category {
	return CategoryOf(d.Type())
}

// Key identifies the discount in responses: its code, or its id when it has none.
func (d Discount) Key() string {
	if d.Code != "" {
		return d.Code
	}
	return d.ID.String()
}

// Label is the customer-facing name.
func (d Discount) Label() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Key()
}

// ValueType reports how the discount's value is expressed. Buy-x-get-y
// discounts give gift units away at 100%.
func (d Discount) ValueType() ValueType {
	switch r := d.Rule.(type) {
	case OrderRule:
		return r.ValueType
	case ProductRule:
		return r.ValueType
	case ShippingRule:
		return r.ValueType
	}
	return ValueTypePercentage
}

// Value returns the configured value.
func (d Discount) Value() decimal.Decimal {
	switch r := d.Rule.(type) {
	case OrderRule:
		return r.Value
	case ProductRule:
		return r.Value
	case ShippingRule:
		return r.Value
	}
	return money.Hundred()
}

// ActiveAt reports whether the discount is enabled and now lies within its window.
func (d Discount) ActiveAt(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && now.After(*d.EndsAt) {
		return false
	}
	return true
}

// CombinesWith reports whether the discount declares it can stack with c.
func (d Discount) CombinesWith(c Category) bool {
	switch c {
	case CategoryProduct:
		return d.CombinesWithProductDiscounts
	case CategoryOrder:
		return d.CombinesWithOrderDiscounts
	case CategoryShipping:
		return d.CombinesWithShippingDiscounts
	}
	return false
}
