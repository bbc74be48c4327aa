package discount

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store provides read access to persisted discounts.
type Store interface {
	// FindActiveByCode returns the active discount whose code matches
	// case-insensitively, or ErrInvalidDiscountCode.
	FindActiveByCode(ctx context.Context, shopID uuid.UUID, code string, now time.Time) (Discount, error)
	// ListActiveAutomatic returns the shop's active automatic discounts.
	ListActiveAutomatic(ctx context.Context, shopID uuid.UUID, now time.Time) ([]Discount, error)
	// CountCustomerUsage returns how often the customer redeemed the discount.
	CountCustomerUsage(ctx context.Context, discountID uuid.UUID, customerID string) (int64, error)
}

// Cart is the part of the cart the resolver needs for eligibility checks.
type Cart struct {
	Subtotal   decimal.Decimal
	CustomerID string
}

// Resolver selects the discounts that may apply to a cart.
type Resolver struct {
	Store Store
	Now   func() time.Time
}

// ResolveCode finds the discount for code and checks that it may join a cart
// that already carries the existing categories.
func (r *Resolver) ResolveCode(ctx context.Context, shopID uuid.UUID, code string, cart Cart, existing Categories) (Discount, error) {
	if r == nil || r.Store == nil {
		return Discount{}, errors.New("discount resolver not configured")
	}
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return Discount{}, reject(ErrInvalidDiscountCode, "discount code is required")
	}
	now := r.now()
	d, err := r.Store.FindActiveByCode(ctx, shopID, trimmed, now)
	if err != nil {
		if errors.Is(err, ErrInvalidDiscountCode) {
			return Discount{}, reject(ErrInvalidDiscountCode, "discount code %q is not valid", trimmed)
		}
		return Discount{}, fmt.Errorf("find discount by code: %w", err)
	}
	// Cached or racing rows may have left their window since the query ran.
	if d.Method != MethodCode || !d.ActiveAt(now) {
		return Discount{}, reject(ErrInvalidDiscountCode, "discount code %q is not valid", trimmed)
	}
	if err := r.checkEligibility(ctx, d, cart); err != nil {
		return Discount{}, err
	}
	if err := CheckCombinable(d, existing); err != nil {
		return Discount{}, err
	}
	return d, nil
}

// ResolveAutomatic returns the shop's eligible automatic discounts ordered by
// priority descending, then creation time and id ascending.
func (r *Resolver) ResolveAutomatic(ctx context.Context, shopID uuid.UUID, cart Cart) ([]Discount, error) {
	if r == nil || r.Store == nil {
		return nil, errors.New("discount resolver not configured")
	}
	now := r.now()
	all, err := r.Store.ListActiveAutomatic(ctx, shopID, now)
	if err != nil {
		return nil, fmt.Errorf("list automatic discounts: %w", err)
	}
	out := make([]Discount, 0, len(all))
	for _, d := range all {
		if d.Method != MethodAutomatic || !d.ActiveAt(now) {
			continue
		}
		if err := r.checkEligibility(ctx, d, cart); err != nil {
			var rej *Rejection
			if errors.As(err, &rej) {
				continue
			}
			return nil, err
		}
		out = append(out, d)
	}
	SortByPriority(out)
	return out, nil
}

// CheckCombinable requires d to declare compatibility with every category in existing.
func CheckCombinable(d Discount, existing Categories) error {
	for _, c := range existing.List() {
		if !d.CombinesWith(c) {
			return reject(ErrNonCombinableDiscount, "this discount cannot be combined with %s discounts already applied", c)
		}
	}
	return nil
}

// SortByPriority orders discounts by priority descending, then created_at and id ascending.
func SortByPriority(ds []Discount) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return strings.Compare(a.ID.String(), b.ID.String()) < 0
	})
}

func (r *Resolver) checkEligibility(ctx context.Context, d Discount, cart Cart) error {
	if d.MinimumSubtotal.IsPositive() && cart.Subtotal.LessThan(d.MinimumSubtotal) {
		return reject(ErrDiscountNotEligible, "a minimum subtotal of %s is required", d.MinimumSubtotal.StringFixed(2))
	}
	if d.UsageLimit != nil && *d.UsageLimit >= 0 && d.UsedCount >= *d.UsageLimit {
		return reject(ErrDiscountNotEligible, "this discount has reached its usage limit")
	}
	if d.PerCustomerLimit != nil && *d.PerCustomerLimit > 0 && cart.CustomerID != "" {
		used, err := r.Store.CountCustomerUsage(ctx, d.ID, cart.CustomerID)
		if err != nil {
			return fmt.Errorf("count customer usage: %w", err)
		}
		if used >= int64(*d.PerCustomerLimit) {
			return reject(ErrDiscountNotEligible, "you have already used this discount the maximum number of times")
		}
	}
	return nil
}

func (r *Resolver) now() time.Time {
	if r != nil && r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
