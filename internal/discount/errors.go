package discount

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDiscountCode is returned when no active discount matches the code.
	ErrInvalidDiscountCode = errors.New("invalid discount code")
	// ErrNonCombinableDiscount is returned when the discount cannot stack with one already applied.
	ErrNonCombinableDiscount = errors.New("discount cannot be combined")
	// ErrNoEligibleLines is returned when the discount targets nothing in the cart.
	ErrNoEligibleLines = errors.New("no eligible lines")
	// ErrDiscountNotEligible is returned when the cart or customer does not meet the discount's conditions.
	ErrDiscountNotEligible = errors.New("discount not eligible")
	// ErrUnknownDiscountType is returned when a persisted enum value is not recognised.
	ErrUnknownDiscountType = errors.New("unknown discount type")
)

// Rejection carries the customer-facing reason a discount was refused.
type Rejection struct {
	Reason  error
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Message)
}

func (r *Rejection) Unwrap() error { return r.Reason }

func reject(reason error, format string, args ...any) error {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// RejectionMessage returns the customer-facing message of err if it is a Rejection.
func RejectionMessage(err error) (string, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Message, true
	}
	return "", false
}

// rejectionReason is a stable metrics label for err.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDiscountCode):
		return "invalid_code"
	case errors.Is(err, ErrNonCombinableDiscount):
		return "not_combinable"
	case errors.Is(err, ErrNoEligibleLines):
		return "no_eligible_lines"
	case errors.Is(err, ErrDiscountNotEligible):
		return "not_eligible"
	}
	return "other"
}
