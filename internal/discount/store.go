package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/cache"
	dbgen "github.com/noah-isme/toko-pricing/internal/db/gen"
	"github.com/noah-isme/toko-pricing/internal/money"
)

// Querier captures the database methods required by the discount store.
type Querier interface {
	GetActiveDiscountByCode(ctx context.Context, arg dbgen.GetActiveDiscountByCodeParams) (dbgen.Discount, error)
	ListAutomaticDiscounts(ctx context.Context, shopID pgtype.UUID) ([]dbgen.Discount, error)
	CountDiscountUsageByCustomer(ctx context.Context, arg dbgen.CountDiscountUsageByCustomerParams) (int64, error)
}

// PGStore reads discounts from Postgres. Automatic discount lists are cached
// per shop in Redis; the window filter runs after the cache so entries stay
// valid as time passes.
type PGStore struct {
	Q      Querier
	Cache  *cache.Cache
	Logger zerolog.Logger
}

// FindActiveByCode implements Store.
func (s *PGStore) FindActiveByCode(ctx context.Context, shopID uuid.UUID, code string, now time.Time) (Discount, error) {
	row, err := s.Q.GetActiveDiscountByCode(ctx, dbgen.GetActiveDiscountByCodeParams{
		ShopID: pgUUID(shopID),
		Code:   strings.TrimSpace(code),
		At:     pgtype.Timestamptz{Time: now, Valid: true},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Discount{}, ErrInvalidDiscountCode
		}
		return Discount{}, err
	}
	return FromModel(row)
}

// ListActiveAutomatic implements Store.
func (s *PGStore) ListActiveAutomatic(ctx context.Context, shopID uuid.UUID, now time.Time) ([]Discount, error) {
	rows, err := s.automaticRows(ctx, shopID)
	if err != nil {
		return nil, err
	}
	out := make([]Discount, 0, len(rows))
	for _, row := range rows {
		d, err := FromModel(row)
		if err != nil {
			return nil, err
		}
		if d.ActiveAt(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

// CountCustomerUsage implements Store.
func (s *PGStore) CountCustomerUsage(ctx context.Context, discountID uuid.UUID, customerID string) (int64, error) {
	return s.Q.CountDiscountUsageByCustomer(ctx, dbgen.CountDiscountUsageByCustomerParams{
		DiscountID: pgUUID(discountID),
		CustomerID: customerID,
	})
}

// Invalidate drops the shop's cached automatic discounts.
func (s *PGStore) Invalidate(ctx context.Context, shopID uuid.UUID) error {
	return s.Cache.Delete(ctx, cache.KeyAutomaticDiscounts(shopID.String()))
}

// Warm reloads the shop's automatic discounts into the cache.
func (s *PGStore) Warm(ctx context.Context, shopID uuid.UUID) error {
	rows, err := s.Q.ListAutomaticDiscounts(ctx, pgUUID(shopID))
	if err != nil {
		return fmt.Errorf("list automatic discounts: %w", err)
	}
	return s.Cache.SetJSON(ctx, cache.KeyAutomaticDiscounts(shopID.String()), rows)
}

func (s *PGStore) automaticRows(ctx context.Context, shopID uuid.UUID) ([]dbgen.Discount, error) {
	key := cache.KeyAutomaticDiscounts(shopID.String())
	var rows []dbgen.Discount
	found, err := s.Cache.GetJSON(ctx, key, &rows)
	if err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("discount cache read failed")
	}
	if found {
		return rows, nil
	}
	rows, err = s.Q.ListAutomaticDiscounts(ctx, pgUUID(shopID))
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetJSON(ctx, key, rows); err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("discount cache write failed")
	}
	return rows, nil
}

// FromModel converts the generated sqlc model into a Discount.
func FromModel(row dbgen.Discount) (Discount, error) {
	method, err := ParseMethod(row.Method)
	if err != nil {
		return Discount{}, err
	}
	typ, err := ParseType(row.Type)
	if err != nil {
		return Discount{}, err
	}
	valueType, err := ParseValueType(row.ValueType)
	if err != nil {
		return Discount{}, err
	}
	value := money.FromNumeric(row.Value)

	d := Discount{
		ID:                            uuid.UUID(row.ID.Bytes),
		ShopID:                        uuid.UUID(row.ShopID.Bytes),
		Title:                         row.Title,
		Method:                        method,
		IsActive:                      row.IsActive,
		Priority:                      int(row.Priority),
		CombinesWithProductDiscounts:  row.CombinesWithProductDiscounts,
		CombinesWithOrderDiscounts:    row.CombinesWithOrderDiscounts,
		CombinesWithShippingDiscounts: row.CombinesWithShippingDiscounts,
		MinimumSubtotal:               money.FromNumeric(row.MinimumSubtotal),
		UsageLimit:                    nullableInt32(row.UsageLimit),
		UsedCount:                     row.UsedCount,
		PerCustomerLimit:              nullableInt32(row.PerCustomerLimit),
	}
	if row.Code.Valid {
		d.Code = row.Code.String
	}
	if row.StartsAt.Valid {
		t := row.StartsAt.Time
		d.StartsAt = &t
	}
	if row.EndsAt.Valid {
		t := row.EndsAt.Time
		d.EndsAt = &t
	}
	if row.CreatedAt.Valid {
		d.CreatedAt = row.CreatedAt.Time
	}

	switch typ {
	case TypeOrder:
		d.Rule = OrderRule{ValueType: valueType, Value: value}
	case TypeProduct:
		d.Rule = ProductRule{ValueType: valueType, Value: value, ProductIDs: row.ProductIds}
	case TypeShipping:
		d.Rule = ShippingRule{ValueType: valueType, Value: value}
	case TypeBuyXGetY:
		d.Rule = BuyXGetYRule{
			BuyProductIDs: row.BuyProductIds,
			BuyQuantity:   int(row.BuyQuantity),
			GetProductIDs: row.GetProductIds,
			GetQuantity:   int(row.GetQuantity),
			Repeat:        row.RepeatOffer,
		}
	}
	return d, nil
}

func nullableInt32(v pgtype.Int4) *int32 {
	if v.Valid {
		val := v.Int32
		return &val
	}
	return nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}
