package tax

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/cache"
	dbgen "github.com/noah-isme/toko-pricing/internal/db/gen"
	"github.com/noah-isme/toko-pricing/internal/money"
)

// Querier captures the database methods required by the zone store.
type Querier interface {
	ListTaxZonesByCountry(ctx context.Context, arg dbgen.ListTaxZonesByCountryParams) ([]dbgen.TaxZone, error)
	ListTaxZonesByShop(ctx context.Context, shopID pgtype.UUID) ([]dbgen.TaxZone, error)
}

// PGStore reads tax zones from Postgres through a per shop and country cache.
type PGStore struct {
	Q      Querier
	Cache  *cache.Cache
	Logger zerolog.Logger
}

// ZonesForCountry implements ZoneStore.
func (s *PGStore) ZonesForCountry(ctx context.Context, shopID uuid.UUID, country string) ([]Zone, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	key := cache.KeyTaxZones(shopID.String(), country)
	var rows []dbgen.TaxZone
	found, err := s.Cache.GetJSON(ctx, key, &rows)
	if err != nil {
		s.Logger.Warn().Err(err).Str("key", key).Msg("tax zone cache read failed")
	}
	if !found {
		rows, err = s.Q.ListTaxZonesByCountry(ctx, dbgen.ListTaxZonesByCountryParams{
			ShopID:  pgUUID(shopID),
			Country: country,
		})
		if err != nil {
			return nil, err
		}
		if err := s.Cache.SetJSON(ctx, key, rows); err != nil {
			s.Logger.Warn().Err(err).Str("key", key).Msg("tax zone cache write failed")
		}
	}
	zones := make([]Zone, 0, len(rows))
	for _, row := range rows {
		zones = append(zones, FromModel(row))
	}
	return zones, nil
}

// Invalidate drops every cached country list of the shop.
func (s *PGStore) Invalidate(ctx context.Context, shopID uuid.UUID) error {
	return s.Cache.DeleteMatching(ctx, cache.KeyTaxZonesPattern(shopID.String()))
}

// Warm caches the shop's zones grouped by country.
func (s *PGStore) Warm(ctx context.Context, shopID uuid.UUID) error {
	rows, err := s.Q.ListTaxZonesByShop(ctx, pgUUID(shopID))
	if err != nil {
		return fmt.Errorf("list tax zones: %w", err)
	}
	byCountry := map[string][]dbgen.TaxZone{}
	for _, row := range rows {
		country := strings.ToUpper(row.Country)
		byCountry[country] = append(byCountry[country], row)
	}
	for country, group := range byCountry {
		if err := s.Cache.SetJSON(ctx, cache.KeyTaxZones(shopID.String(), country), group); err != nil {
			return err
		}
	}
	return nil
}

// FromModel converts the generated sqlc model into a Zone.
func FromModel(row dbgen.TaxZone) Zone {
	z := Zone{
		ID:          uuid.UUID(row.ID.Bytes),
		ShopID:      uuid.UUID(row.ShopID.Bytes),
		Name:        row.Name,
		Code:        row.Code,
		Country:     strings.ToUpper(row.Country),
		PostalCodes: row.PostalCodes,
		Rate:        money.FromNumeric(row.Rate),
		TaxShipping: row.TaxShipping,
		Priority:    int(row.Priority),
	}
	if row.State.Valid {
		z.State = row.State.String
	}
	return z
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}
