package tax

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/cache"
	dbgen "github.com/noah-isme/toko-pricing/internal/db/gen"
	"github.com/noah-isme/toko-pricing/internal/money"
)

var testShop = uuid.MustParse("0b7c4a52-8f65-4c39-9a51-3f0f6b8a9d10")

type fakeQuerier struct {
	rows         []dbgen.TaxZone
	countryCalls int
	err          error
}

func (f *fakeQuerier) ListTaxZonesByCountry(_ context.Context, arg dbgen.ListTaxZonesByCountryParams) ([]dbgen.TaxZone, error) {
	f.countryCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := []dbgen.TaxZone{}
	for _, row := range f.rows {
		if row.Country == arg.Country {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeQuerier) ListTaxZonesByShop(_ context.Context, _ pgtype.UUID) ([]dbgen.TaxZone, error) {
	return f.rows, f.err
}

func (f *fakeQuerier) CreateTaxZone(_ context.Context, arg dbgen.CreateTaxZoneParams) (dbgen.TaxZone, error) {
	if f.err != nil {
		return dbgen.TaxZone{}, f.err
	}
	row := dbgen.TaxZone{
		ID:          pgUUID(uuid.New()),
		ShopID:      arg.ShopID,
		Name:        arg.Name,
		Code:        arg.Code,
		Country:     arg.Country,
		State:       arg.State,
		PostalCodes: arg.PostalCodes,
		Rate:        arg.Rate,
		TaxShipping: arg.TaxShipping,
		Priority:    arg.Priority,
		CreatedAt:   pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}
	f.rows = append(f.rows, row)
	return row, nil
}

func zoneRow(code, country, rate string) dbgen.TaxZone {
	return dbgen.TaxZone{
		ID:          pgUUID(uuid.New()),
		ShopID:      pgUUID(testShop),
		Name:        code + " zone",
		Code:        code,
		Country:     country,
		PostalCodes: []string{},
		Rate:        money.ToNumeric(dec(rate)),
		TaxShipping: true,
	}
}

func newPGStore(t *testing.T, q *fakeQuerier) (*PGStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &PGStore{Q: q, Cache: cache.New(client, "tax_zones", time.Minute), Logger: zerolog.Nop()}, mr
}

func TestPGStoreReadThroughPerCountry(t *testing.T) {
	q := &fakeQuerier{rows: []dbgen.TaxZone{zoneRow("NL", "NL", "0.21"), zoneRow("DE", "DE", "0.19")}}
	store, mr := newPGStore(t, q)
	ctx := context.Background()

	zones, err := store.ZonesForCountry(ctx, testShop, "nl")
	require.NoError(t, err)
	require.Len(t, zones, 1)
	require.Equal(t, "NL", zones[0].Code)
	requireAmount(t, "0.21", zones[0].Rate)
	require.True(t, mr.Exists(cache.KeyTaxZones(testShop.String(), "NL")))

	_, err = store.ZonesForCountry(ctx, testShop, "NL")
	require.NoError(t, err)
	require.Equal(t, 1, q.countryCalls)

	empty, err := store.ZonesForCountry(ctx, testShop, "FR")
	require.NoError(t, err)
	require.Empty(t, empty)
	require.Equal(t, 2, q.countryCalls)

	require.NoError(t, store.Invalidate(ctx, testShop))
	require.False(t, mr.Exists(cache.KeyTaxZones(testShop.String(), "NL")))
	require.False(t, mr.Exists(cache.KeyTaxZones(testShop.String(), "FR")))
}

func TestPGStoreWarmGroupsByCountry(t *testing.T) {
	q := &fakeQuerier{rows: []dbgen.TaxZone{zoneRow("NL", "NL", "0.21"), zoneRow("NL-LOW", "NL", "0.09"), zoneRow("DE", "DE", "0.19")}}
	store, mr := newPGStore(t, q)
	ctx := context.Background()

	require.NoError(t, store.Warm(ctx, testShop))
	require.True(t, mr.Exists(cache.KeyTaxZones(testShop.String(), "NL")))
	require.True(t, mr.Exists(cache.KeyTaxZones(testShop.String(), "DE")))

	zones, err := store.ZonesForCountry(ctx, testShop, "NL")
	require.NoError(t, err)
	require.Len(t, zones, 2)
	require.Zero(t, q.countryCalls)
}

func TestCalculatorEndToEnd(t *testing.T) {
	nl := zoneRow("NL", "NL", "0.21")
	q := &fakeQuerier{rows: []dbgen.TaxZone{nl}}
	store, _ := newPGStore(t, q)
	calc := &Calculator{Store: store, Logger: zerolog.Nop()}
	ctx := context.Background()

	res, err := calc.Calculate(ctx, testShop, dec("100.00"), Address{Country: "NL"}, dec("10.00"))
	require.NoError(t, err)
	requireAmount(t, "23.10", res.TaxTotal)
	require.Equal(t, "NL", res.Zone.Code)

	inc, err := calc.CalculateIncludedTax(ctx, testShop, dec("121.00"), Address{Country: "nl"})
	require.NoError(t, err)
	requireAmount(t, "21.00", inc.TaxTotal)
	requireAmount(t, "100.00", inc.PriceExcludingTax)

	untaxed, err := calc.Calculate(ctx, testShop, dec("100.00"), Address{Country: "US"}, dec("0"))
	require.NoError(t, err)
	require.Nil(t, untaxed.Zone)
	require.True(t, untaxed.TaxTotal.IsZero())

	_, err = calc.Calculate(ctx, testShop, dec("1"), Address{Country: "Netherlands"}, dec("0"))
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, err = calc.CalculateIncludedTax(ctx, testShop, dec("-1"), Address{Country: "NL"})
	require.ErrorIs(t, err, ErrNegativeAmount)

	q.err = errors.New("db down")
	_, err = calc.Calculate(ctx, testShop, dec("1"), Address{Country: "DE"}, dec("0"))
	require.Error(t, err)
}
