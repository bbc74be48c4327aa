// Package checkout assembles full cart quotes from automatic discounts,
// discount codes, tax and shipping.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/toko-pricing/internal/discount"
	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/pricing"
	"github.com/noah-isme/toko-pricing/internal/tax"
)

var tracer = otel.Tracer("pricing.checkout")

// MessageDuplicateCode is reported for a code submitted more than once.
const MessageDuplicateCode = "discount code already applied"

// Discounts is the discount service used by quotes.
type Discounts interface {
	ApplyAutomatic(ctx context.Context, req discount.AutomaticRequest) (discount.AutomaticOutcome, error)
	ApplyCode(ctx context.Context, req discount.CodeRequest) (discount.Applied, error)
}

// ZoneResolver resolves the tax zone of an address.
type ZoneResolver interface {
	ResolveZone(ctx context.Context, shopID uuid.UUID, addr tax.Address) (*tax.Zone, error)
}

// Service prices carts.
type Service struct {
	Discounts Discounts
	Tax       ZoneResolver
	Logger    zerolog.Logger
}

// Input is a cart to quote.
type Input struct {
	ShopID       uuid.UUID
	CustomerID   string
	Lines        []pricing.CartLine
	Codes        []string
	ShippingCost decimal.Decimal
	// Address is optional; without it no tax is reported.
	Address *tax.Address
}

// RejectedCode is a submitted code that was not applied.
type RejectedCode struct {
	Code    string
	Message string
}

// Quote is the priced cart.
type Quote struct {
	pricing.Summary
	Automatic discount.AutomaticOutcome
	Applied   []discount.Applied
	Rejected  []RejectedCode
	TaxRate   decimal.Decimal
	TaxZone   *tax.Zone
}

// Quote evaluates automatic discounts, then admits codes one at a time
// against the categories already applied, then extracts the tax embedded in
// the discounted total.
func (s *Service) Quote(ctx context.Context, in Input) (Quote, error) {
	ctx, span := tracer.Start(ctx, "checkout.Quote")
	defer span.End()
	defer obs.ObserveLatency("quote", time.Now())

	if err := pricing.ValidateLines(in.Lines); err != nil {
		return Quote{}, err
	}
	shippingBase := decimal.Max(in.ShippingCost, decimal.Zero)
	automatic, err := s.Discounts.ApplyAutomatic(ctx, discount.AutomaticRequest{
		ShopID:       in.ShopID,
		CustomerID:   in.CustomerID,
		Lines:        in.Lines,
		ShippingCost: &shippingBase,
	})
	if err != nil {
		return Quote{}, fmt.Errorf("automatic discounts: %w", err)
	}

	q := Quote{Automatic: automatic, TaxRate: decimal.Zero}
	existing := automatic.Categories()
	promo := decimal.Zero
	shippingDiscount := automatic.ShippingTotal
	seen := map[string]struct{}{}
	for _, raw := range in.Codes {
		code := strings.TrimSpace(raw)
		norm := strings.ToUpper(code)
		if _, dup := seen[norm]; dup {
			q.Rejected = append(q.Rejected, RejectedCode{Code: code, Message: MessageDuplicateCode})
			continue
		}
		seen[norm] = struct{}{}

		applied, err := s.Discounts.ApplyCode(ctx, discount.CodeRequest{
			ShopID:       in.ShopID,
			Code:         code,
			CustomerID:   in.CustomerID,
			Lines:        in.Lines,
			Existing:     existing,
			ShippingCost: &shippingBase,
		})
		if err != nil {
			msg, ok := discount.RejectionMessage(err)
			if !ok {
				return Quote{}, fmt.Errorf("apply code %q: %w", code, err)
			}
			q.Rejected = append(q.Rejected, RejectedCode{Code: code, Message: msg})
			continue
		}
		existing = existing.With(applied.Discount.Category())
		promo = promo.Add(applied.Result.OrderDiscountAmount).Add(applied.Result.ProductDiscountAmount)
		shippingDiscount = shippingDiscount.Add(applied.Result.ShippingDiscountAmount)
		q.Applied = append(q.Applied, applied)
	}
	shippingDiscount = decimal.Min(shippingDiscount, shippingBase)

	subtotal := pricing.Subtotal(in.Lines)
	taxTotal := decimal.Zero
	if in.Address != nil {
		zone, err := s.Tax.ResolveZone(ctx, in.ShopID, *in.Address)
		if err != nil {
			return Quote{}, err
		}
		if zone != nil {
			base := decimal.Max(subtotal.Sub(promo).Sub(automatic.Total()), decimal.Zero)
			if zone.TaxShipping {
				base = base.Add(decimal.Max(shippingBase.Sub(shippingDiscount), decimal.Zero))
			}
			included := tax.ExtractIncluded(base, zone.Rate)
			taxTotal = included.TaxTotal
			q.TaxRate = zone.Rate
			q.TaxZone = zone
		}
	}

	q.Summary = pricing.Aggregate(pricing.Inputs{
		Subtotal:               subtotal,
		PromoDiscount:          promo,
		AutomaticDiscountTotal: automatic.Total(),
		ShippingCostBase:       shippingBase,
		ShippingDiscountTotal:  shippingDiscount,
		TaxTotal:               taxTotal,
	})
	if q.Negative {
		s.Logger.Warn().
			Str("shop_id", in.ShopID.String()).
			Str("total", q.Total.StringFixed(2)).
			Msg("quote total is negative")
	}
	span.SetAttributes(
		attribute.Int("quote.codes_applied", len(q.Applied)),
		attribute.Int("quote.codes_rejected", len(q.Rejected)),
	)
	return q, nil
}
