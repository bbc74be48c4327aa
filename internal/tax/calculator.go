package tax

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/toko-pricing/internal/obs"
)

var tracer = otel.Tracer("pricing.tax")

// ZoneStore provides a shop's tax zones for one country.
type ZoneStore interface {
	ZonesForCountry(ctx context.Context, shopID uuid.UUID, country string) ([]Zone, error)
}

// Calculator resolves zones and computes tax.
type Calculator struct {
	Store  ZoneStore
	Logger zerolog.Logger
}

// ResolveZone returns the zone for addr, or nil when the region is untaxed.
func (c *Calculator) ResolveZone(ctx context.Context, shopID uuid.UUID, addr Address) (*Zone, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	addr = addr.Normalize()
	zones, err := c.Store.ZonesForCountry(ctx, shopID, addr.Country)
	if err != nil {
		return nil, fmt.Errorf("load tax zones: %w", err)
	}
	return Resolve(zones, addr), nil
}

// Calculate computes forward tax on subtotal and shippingCost.
func (c *Calculator) Calculate(ctx context.Context, shopID uuid.UUID, subtotal decimal.Decimal, addr Address, shippingCost decimal.Decimal) (Result, error) {
	ctx, span := tracer.Start(ctx, "tax.Calculate")
	defer span.End()
	defer obs.ObserveLatency("tax_calculate", time.Now())

	if subtotal.IsNegative() || shippingCost.IsNegative() {
		return Result{}, ErrNegativeAmount
	}
	zone, err := c.ResolveZone(ctx, shopID, addr)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	res := Compute(zone, subtotal, shippingCost)
	obs.ObserveTaxCalculation("forward", zone != nil)
	if zone != nil {
		span.SetAttributes(attribute.String("tax.zone", zone.Code))
	}
	return res, nil
}

// CalculateIncludedTax extracts the tax embedded in a tax-inclusive price.
func (c *Calculator) CalculateIncludedTax(ctx context.Context, shopID uuid.UUID, price decimal.Decimal, addr Address) (IncludedResult, error) {
	ctx, span := tracer.Start(ctx, "tax.CalculateIncludedTax")
	defer span.End()
	defer obs.ObserveLatency("tax_included", time.Now())

	if price.IsNegative() {
		return IncludedResult{}, ErrNegativeAmount
	}
	zone, err := c.ResolveZone(ctx, shopID, addr)
	if err != nil {
		span.RecordError(err)
		return IncludedResult{}, err
	}
	obs.ObserveTaxCalculation("included", zone != nil)
	if zone == nil {
		return ExtractIncluded(price, decimal.Zero), nil
	}
	span.SetAttributes(attribute.String("tax.zone", zone.Code))
	return ExtractIncluded(price, zone.Rate), nil
}
