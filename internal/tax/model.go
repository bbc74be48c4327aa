// Package tax resolves tax zones from addresses and computes forward and
// included tax.
package tax

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAddress is returned when an address has no usable country.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrNegativeAmount is returned when a taxable amount is below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// Address is the part of a shipping address used for zone lookup.
type Address struct {
	Country    string
	State      string
	PostalCode string
}

// Normalize trims the fields and upper-cases country and state.
func (a Address) Normalize() Address {
	return Address{
		Country:    strings.ToUpper(strings.TrimSpace(a.Country)),
		State:      strings.ToUpper(strings.TrimSpace(a.State)),
		PostalCode: strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(a.PostalCode), " ", "")),
	}
}

// Validate requires a two-letter country.
func (a Address) Validate() error {
	if len(strings.TrimSpace(a.Country)) != 2 {
		return ErrInvalidAddress
	}
	return nil
}

// Zone is a geographic region with a tax rate.
type Zone struct {
	ID          uuid.UUID
	ShopID      uuid.UUID
	Name        string
	Code        string
	Country     string
	State       string
	PostalCodes []string
	// Rate is a fraction: 0.21 is 21%.
	Rate        decimal.Decimal
	TaxShipping bool
	Priority    int
}

// Component names used in breakdowns.
const (
	ComponentSubtotal = "subtotal"
	ComponentShipping = "shipping"
)

// Component is one taxed part of an order.
type Component struct {
	Name          string
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
}

// Result is a forward tax calculation. Zone is nil for untaxed regions.
type Result struct {
	TaxTotal  decimal.Decimal
	TaxRate   decimal.Decimal
	Zone      *Zone
	Breakdown []Component
}

// IncludedResult splits a tax-inclusive price. PriceExcludingTax plus
// TaxTotal always equals the input price.
type IncludedResult struct {
	TaxTotal          decimal.Decimal
	TaxRate           decimal.Decimal
	PriceExcludingTax decimal.Decimal
}
