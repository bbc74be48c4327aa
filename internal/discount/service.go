package discount

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/toko-pricing/internal/obs"
	"github.com/noah-isme/toko-pricing/internal/pricing"
)

var tracer = otel.Tracer("pricing.discount")

// Service orchestrates validation, resolution and evaluation of discounts.
type Service struct {
	Resolver *Resolver
	Logger   zerolog.Logger
}

// CodeRequest asks whether a code applies to a cart.
type CodeRequest struct {
	ShopID     uuid.UUID
	Code       string
	CustomerID string
	Lines      []pricing.CartLine
	Existing   Categories
	// ShippingCost, when set, resolves shipping discounts into amounts.
	ShippingCost *decimal.Decimal
}

// Applied pairs a discount with its evaluation.
type Applied struct {
	Discount Discount
	Result   Result
}

// AutomaticRequest evaluates the shop's automatic discounts against a cart.
type AutomaticRequest struct {
	ShopID       uuid.UUID
	CustomerID   string
	Lines        []pricing.CartLine
	ShippingCost *decimal.Decimal
}

// AutomaticOutcome sums the independently evaluated automatic discounts.
type AutomaticOutcome struct {
	Applied       []Applied
	OrderTotal    decimal.Decimal
	ProductTotal  decimal.Decimal
	ShippingTotal decimal.Decimal
	FreeShipping  bool
}

// Total is the sum of order and product amounts, which reduce merchandise.
func (o AutomaticOutcome) Total() decimal.Decimal {
	return o.OrderTotal.Add(o.ProductTotal)
}

// Categories returns the categories of the applied discounts.
func (o AutomaticOutcome) Categories() Categories {
	var s Categories
	for _, a := range o.Applied {
		s = s.With(a.Discount.Category())
	}
	return s
}

// ApplyCode resolves and evaluates a discount code. Refusals are returned as
// *Rejection wrapping one of the package's sentinel errors.
func (s *Service) ApplyCode(ctx context.Context, req CodeRequest) (Applied, error) {
	ctx, span := tracer.Start(ctx, "discount.ApplyCode")
	defer span.End()
	defer obs.ObserveLatency("discount_apply_code", time.Now())

	if err := pricing.ValidateLines(req.Lines); err != nil {
		return Applied{}, err
	}
	cart := Cart{Subtotal: pricing.Subtotal(req.Lines), CustomerID: req.CustomerID}
	d, err := s.Resolver.ResolveCode(ctx, req.ShopID, req.Code, cart, req.Existing)
	if err != nil {
		s.recordFailure(span, err)
		return Applied{}, err
	}
	span.SetAttributes(
		attribute.String("discount.id", d.ID.String()),
		attribute.String("discount.type", string(d.Type())),
	)

	res := Evaluate(NewApplication(d, req.CustomerID, req.Lines))
	if !res.OK {
		obs.ObserveDiscountEvaluation(string(MethodCode), string(d.Type()), "no_effect")
		err := reject(ErrNoEligibleLines, "%s", res.Message)
		s.recordFailure(span, err)
		return Applied{Discount: d, Result: res}, err
	}
	if req.ShippingCost != nil {
		res = res.WithShippingCost(*req.ShippingCost)
	}
	obs.ObserveDiscountEvaluation(string(MethodCode), string(d.Type()), "ok")
	s.Logger.Debug().
		Str("shop_id", req.ShopID.String()).
		Str("discount_id", d.ID.String()).
		Str("discount_total", res.TotalDiscount.StringFixed(2)).
		Msg("discount code applied")
	return Applied{Discount: d, Result: res}, nil
}

// ApplyAutomatic evaluates every eligible automatic discount against the
// original cart and sums the results. Discounts with no effect are skipped.
func (s *Service) ApplyAutomatic(ctx context.Context, req AutomaticRequest) (AutomaticOutcome, error) {
	ctx, span := tracer.Start(ctx, "discount.ApplyAutomatic")
	defer span.End()
	defer obs.ObserveLatency("discount_apply_automatic", time.Now())

	out := AutomaticOutcome{
		OrderTotal:    decimal.Zero,
		ProductTotal:  decimal.Zero,
		ShippingTotal: decimal.Zero,
	}
	if err := pricing.ValidateLines(req.Lines); err != nil {
		return out, err
	}
	cart := Cart{Subtotal: pricing.Subtotal(req.Lines), CustomerID: req.CustomerID}
	candidates, err := s.Resolver.ResolveAutomatic(ctx, req.ShopID, cart)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}
	for _, d := range candidates {
		res := Evaluate(NewApplication(d, req.CustomerID, req.Lines))
		if !res.OK {
			obs.ObserveDiscountEvaluation(string(MethodAutomatic), string(d.Type()), "no_effect")
			continue
		}
		if req.ShippingCost != nil {
			res = res.WithShippingCost(*req.ShippingCost)
		}
		obs.ObserveDiscountEvaluation(string(MethodAutomatic), string(d.Type()), "ok")
		out.Applied = append(out.Applied, Applied{Discount: d, Result: res})
		out.OrderTotal = out.OrderTotal.Add(res.OrderDiscountAmount)
		out.ProductTotal = out.ProductTotal.Add(res.ProductDiscountAmount)
		out.ShippingTotal = out.ShippingTotal.Add(res.ShippingDiscountAmount)
		out.FreeShipping = out.FreeShipping || res.FreeShipping
	}
	span.SetAttributes(attribute.Int("discount.applied", len(out.Applied)))
	return out, nil
}

func (s *Service) recordFailure(span trace.Span, err error) {
	if _, ok := RejectionMessage(err); ok {
		reason := rejectionReason(err)
		obs.ObserveDiscountRejection(reason)
		span.SetAttributes(attribute.String("discount.rejection", reason))
		return
	}
	s.Logger.Error().Err(err).Msg("discount resolution failed")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
