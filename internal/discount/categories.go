package discount

import (
	"fmt"
	"strings"
)

// Category groups discount types for combinability checks.
type Category uint8

const (
	CategoryProduct Category = 1 << iota
	CategoryOrder
	CategoryShipping
)

var allCategories = []Category{CategoryProduct, CategoryOrder, CategoryShipping}

// CategoryOf maps a discount type to its category. Buy-x-get-y discounts
// reduce line prices and count as product discounts.
func CategoryOf(t Type) Category {
	switch t {
	case TypeOrder:
		return CategoryOrder
	case TypeShipping:
		return CategoryShipping
	case TypeProduct, TypeBuyXGetY:
		return CategoryProduct
	}
	return 0
}

func (c Category) String() string {
	switch c {
	case CategoryProduct:
		return "product"
	case CategoryOrder:
		return "order"
	case CategoryShipping:
		return "shipping"
	}
	return "unknown"
}

// ParseCategory accepts a category name or a discount type name.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "product", string(TypeBuyXGetY):
		return CategoryProduct, nil
	case "order":
		return CategoryOrder, nil
	case "shipping":
		return CategoryShipping, nil
	}
	return 0, fmt.Errorf("unknown discount category %q", s)
}

// Categories is an immutable set of categories already applied to a cart.
// With returns a new set; the receiver is never modified.
type Categories struct {
	bits Category
}

// NewCategories builds a set from cs.
func NewCategories(cs ...Category) Categories {
	var s Categories
	for _, c := range cs {
		s = s.With(c)
	}
	return s
}

// ParseCategories parses names such as the request's existing_types.
func ParseCategories(names []string) (Categories, error) {
	var s Categories
	for _, name := range names {
		c, err := ParseCategory(name)
		if err != nil {
			return Categories{}, err
		}
		s = s.With(c)
	}
	return s, nil
}

// With returns a set that also contains c.
func (s Categories) With(c Category) Categories {
	return Categories{bits: s.bits | c}
}

// Has reports membership.
func (s Categories) Has(c Category) bool {
	return c != 0 && s.bits&c == c
}

// Empty reports whether no category is present.
func (s Categories) Empty() bool { return s.bits == 0 }

// List returns the members in a fixed order.
func (s Categories) List() []Category {
	out := make([]Category, 0, len(allCategories))
	for _, c := range allCategories {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}
